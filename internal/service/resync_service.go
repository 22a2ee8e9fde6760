package service

import (
	"context"
	"time"

	"quiknote-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ResyncService periodically reloads every live workspace so edits made
// from other clients show up without a manual refresh.
type ResyncService struct {
	schedule string
	sync     ISyncService
	log      logger.ILogger
	timeout  time.Duration
	cron     *cron.Cron
}

func NewResyncService(schedule string, sync ISyncService, log logger.ILogger) *ResyncService {
	return &ResyncService{
		schedule: schedule,
		sync:     sync,
		log:      log,
		timeout:  time.Minute,
	}
}

// Start schedules the job. An empty schedule disables it.
func (r *ResyncService) Start() error {
	if r.schedule == "" {
		r.log.Info("ResyncService", "Periodic resync disabled", nil)
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.run); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.log.Info("ResyncService", "Periodic resync scheduled", map[string]interface{}{"schedule": r.schedule})
	return nil
}

func (r *ResyncService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	start := time.Now()
	n := r.sync.ResyncAll(ctx)
	r.log.Info("ResyncService", "Workspaces resynced", map[string]interface{}{
		"workspaces":  n,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// Stop waits for a running job to finish.
func (r *ResyncService) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
