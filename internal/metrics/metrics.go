// Package metrics exposes Prometheus metrics for the HTTP surface, the notes
// store and the workspace registry.
package metrics

import (
	"context"
	"strconv"
	"time"

	"quiknote-be/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	StoreChanges *prometheus.CounterVec
	SinkFailures prometheus.Counter
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StoreChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_changes_total",
			Help:      "Changes applied to workspace stores, by kind",
		}, []string{"kind"}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_change_publish_failures_total",
			Help:      "Changes that could not be handed to the event bus",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.StoreChanges,
		c.SinkFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TrackWorkspaces registers a gauge read from count on every scrape.
func (c *Collector) TrackWorkspaces(namespace string, count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workspaces_active",
		Help:      "Signed-in workspaces held in memory",
	}, func() float64 { return float64(count()) }))
}

// Middleware records request count and latency per route template.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()

		// Resolve errors here so the recorded status is the one sent.
		if err := ctx.Next(); err != nil {
			if herr := ctx.App().ErrorHandler(ctx, err); herr != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := ctx.Response().StatusCode()
		route := ctx.Route().Path
		c.HTTPRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}

// Sink counts every change before handing it to next. A nil next only counts.
func (c *Collector) Sink(next store.EventSink) store.EventSink {
	return &countingSink{c: c, next: next}
}

type countingSink struct {
	c    *Collector
	next store.EventSink
}

func (s *countingSink) Publish(ctx context.Context, change store.Change) error {
	s.c.StoreChanges.WithLabelValues(string(change.Kind)).Inc()
	if s.next == nil {
		return nil
	}
	if err := s.next.Publish(ctx, change); err != nil {
		s.c.SinkFailures.Inc()
		return err
	}
	return nil
}
