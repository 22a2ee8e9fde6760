// Package breaker wraps a remote.Backend so that a failing backend is cut off
// for a while instead of every request waiting on it.
package breaker

import (
	"context"
	"errors"
	"io"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"

	"github.com/sony/gobreaker"
)

const module = "Breaker"

type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// businessErrors are answers from a healthy backend and never trip the breaker.
var businessErrors = []error{
	remote.ErrNotFound,
	remote.ErrUnauthorized,
	remote.ErrInvalidCredentials,
	remote.ErrConflict,
	context.Canceled,
}

func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	for _, b := range businessErrors {
		if errors.Is(err, b) {
			return true
		}
	}
	return false
}

// New builds one breaker. All backends produced by a wrapped factory share
// it, since they talk to the same upstream.
func New(cfg Config, log logger.ILogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(module, "Circuit breaker state changed", map[string]interface{}{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
		IsSuccessful: isSuccessful,
	})
}

// WrapFactory decorates every Backend produced by factory with cb.
func WrapFactory(factory remote.BackendFactory, cb *gobreaker.CircuitBreaker) remote.BackendFactory {
	return func() (remote.Backend, error) {
		b, err := factory()
		if err != nil {
			return nil, err
		}
		return Wrap(b, cb), nil
	}
}

func Wrap(b remote.Backend, cb *gobreaker.CircuitBreaker) remote.Backend {
	return &backend{
		inner:     b,
		notes:     &collection[remote.NoteRecord, remote.NoteFields]{inner: b.Notes(), cb: cb},
		notebooks: &collection[remote.NotebookRecord, remote.NotebookFields]{inner: b.Notebooks(), cb: cb},
		account:   &account{inner: b.Account(), cb: cb},
		files:     &files{inner: b.Files(), cb: cb},
	}
}

type backend struct {
	inner     remote.Backend
	notes     remote.NoteCollection
	notebooks remote.NotebookCollection
	account   remote.AccountService
	files     remote.FileStorage
}

func (b *backend) Notes() remote.NoteCollection         { return b.notes }
func (b *backend) Notebooks() remote.NotebookCollection { return b.notebooks }
func (b *backend) Account() remote.AccountService       { return b.account }
func (b *backend) Files() remote.FileStorage            { return b.files }

func run[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	v, _ := out.(T)
	return v, err
}

func exec(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

type collection[R any, F any] struct {
	inner remote.Collection[R, F]
	cb    *gobreaker.CircuitBreaker
}

func (c *collection[R, F]) Create(ctx context.Context, ownerId string, fields F) (*R, error) {
	return run(c.cb, func() (*R, error) { return c.inner.Create(ctx, ownerId, fields) })
}

func (c *collection[R, F]) ListByOwner(ctx context.Context, ownerId string) ([]*R, error) {
	return run(c.cb, func() ([]*R, error) { return c.inner.ListByOwner(ctx, ownerId) })
}

func (c *collection[R, F]) Get(ctx context.Context, id string) (*R, error) {
	return run(c.cb, func() (*R, error) { return c.inner.Get(ctx, id) })
}

func (c *collection[R, F]) Update(ctx context.Context, id string, fields F) (*R, error) {
	return run(c.cb, func() (*R, error) { return c.inner.Update(ctx, id, fields) })
}

func (c *collection[R, F]) Delete(ctx context.Context, id string) error {
	return exec(c.cb, func() error { return c.inner.Delete(ctx, id) })
}

type account struct {
	inner remote.AccountService
	cb    *gobreaker.CircuitBreaker
}

type loginResult struct {
	auth    *entity.AuthSession
	profile *entity.Profile
}

func (a *account) Login(ctx context.Context, email, password string) (*entity.AuthSession, *entity.Profile, error) {
	res, err := run(a.cb, func() (loginResult, error) {
		auth, profile, err := a.inner.Login(ctx, email, password)
		return loginResult{auth: auth, profile: profile}, err
	})
	return res.auth, res.profile, err
}

// Logout always reaches the inner client so local tokens get cleared even
// while the breaker is open.
func (a *account) Logout(ctx context.Context) error {
	return a.inner.Logout(ctx)
}

func (a *account) Register(ctx context.Context, email, password, name string) (*entity.Profile, error) {
	return run(a.cb, func() (*entity.Profile, error) { return a.inner.Register(ctx, email, password, name) })
}

func (a *account) CurrentSession(ctx context.Context) (*entity.AuthSession, error) {
	return a.inner.CurrentSession(ctx)
}

func (a *account) CurrentProfile(ctx context.Context) (*entity.Profile, error) {
	return run(a.cb, func() (*entity.Profile, error) { return a.inner.CurrentProfile(ctx) })
}

func (a *account) Resume(ctx context.Context, auth entity.AuthSession) error {
	return exec(a.cb, func() error { return a.inner.Resume(ctx, auth) })
}

func (a *account) UpdateName(ctx context.Context, name string) (*entity.Profile, error) {
	return run(a.cb, func() (*entity.Profile, error) { return a.inner.UpdateName(ctx, name) })
}

func (a *account) UpdateEmail(ctx context.Context, email, currentPassword string) (*entity.Profile, error) {
	return run(a.cb, func() (*entity.Profile, error) { return a.inner.UpdateEmail(ctx, email, currentPassword) })
}

func (a *account) UpdatePreferences(ctx context.Context, prefs map[string]interface{}) (*entity.Profile, error) {
	return run(a.cb, func() (*entity.Profile, error) { return a.inner.UpdatePreferences(ctx, prefs) })
}

type files struct {
	inner remote.FileStorage
	cb    *gobreaker.CircuitBreaker
}

func (f *files) Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error) {
	return run(f.cb, func() (string, error) { return f.inner.Upload(ctx, name, contentType, data) })
}

func (f *files) Delete(ctx context.Context, fileId string) error {
	return exec(f.cb, func() error { return f.inner.Delete(ctx, fileId) })
}

func (f *files) ViewURL(fileId string) string {
	return f.inner.ViewURL(fileId)
}
