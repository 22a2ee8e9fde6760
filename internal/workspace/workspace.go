// Package workspace keeps one signed-in session and its notes store per
// browser login. Workspaces live in memory and are rebuilt from persisted
// backend tokens after eviction or restart.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/repository/contract"
	"quiknote-be/internal/session"
	"quiknote-be/internal/store"
)

const module = "Workspace"

var ErrSessionExpired = errors.New("session expired, please log in again")

type Workspace struct {
	Id      string
	Backend remote.Backend
	Session *session.Session
	Store   *store.Store
}

// UserID of the signed-in user, or "" after logout.
func (w *Workspace) UserID() string {
	return w.Session.UserID()
}

type Registry struct {
	factory   remote.BackendFactory
	tokens    contract.SessionTokenRepository
	log       logger.ILogger
	sink      store.EventSink
	storeOpts []store.Option
	ttl       time.Duration

	live  *cache.Cache
	group singleflight.Group
}

type Option func(*Registry)

func WithEventSink(sink store.EventSink) Option {
	return func(r *Registry) { r.sink = sink }
}

func WithStoreOptions(opts ...store.Option) Option {
	return func(r *Registry) { r.storeOpts = append(r.storeOpts, opts...) }
}

// WithTTL sets the idle expiry of in-memory workspaces and of persisted
// tokens.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

func NewRegistry(factory remote.BackendFactory, tokens contract.SessionTokenRepository, log logger.ILogger, opts ...Option) *Registry {
	r := &Registry{
		factory: factory,
		tokens:  tokens,
		log:     log,
		ttl:     time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.live = cache.New(r.ttl, 10*time.Minute)
	return r
}

// open builds a signed-out workspace that is not yet registered.
func (r *Registry) open(id string) (*Workspace, error) {
	backend, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	sess := session.New(backend.Account(), backend.Files(), r.log)
	opts := append([]store.Option{}, r.storeOpts...)
	if r.sink != nil {
		opts = append(opts, store.WithEventSink(r.sink))
	}
	st := store.New(backend, sess, r.log, opts...)
	sess.OnChange(func(p *entity.Profile) {
		if p == nil {
			st.Clear()
		}
	})

	return &Workspace{Id: id, Backend: backend, Session: sess, Store: st}, nil
}

// Login signs in on a fresh backend client, registers the workspace and
// loads its collections.
func (r *Registry) Login(ctx context.Context, email, password string) (*Workspace, error) {
	ws, err := r.open(uuid.NewString())
	if err != nil {
		return nil, err
	}
	if _, err := ws.Session.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return ws, r.activate(ctx, ws)
}

// Register creates the account and signs it in, like Login.
func (r *Registry) Register(ctx context.Context, email, password, name string) (*Workspace, error) {
	ws, err := r.open(uuid.NewString())
	if err != nil {
		return nil, err
	}
	if _, err := ws.Session.Register(ctx, email, password, name); err != nil {
		return nil, err
	}
	return ws, r.activate(ctx, ws)
}

func (r *Registry) activate(ctx context.Context, ws *Workspace) error {
	if tokens := ws.Session.Tokens(); tokens != nil {
		if err := r.tokens.Save(ctx, ws.Id, *tokens, r.ttl); err != nil {
			r.log.Warn(module, "Failed to persist session tokens", map[string]interface{}{
				"workspace_id": ws.Id,
				"error":        err,
			})
		}
	}
	r.live.SetDefault(ws.Id, ws)
	ws.Store.FetchAll(ctx)
	r.log.Info(module, "Workspace opened", map[string]interface{}{
		"workspace_id": ws.Id,
		"user_id":      ws.UserID(),
	})
	return nil
}

// Get returns the live workspace, rebuilding it from persisted tokens when
// it is no longer in memory.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	if x, ok := r.live.Get(id); ok {
		ws := x.(*Workspace)
		r.live.SetDefault(id, ws)
		return ws, nil
	}

	v, err, _ := r.group.Do(id, func() (interface{}, error) {
		if x, ok := r.live.Get(id); ok {
			return x, nil
		}
		return r.rebuild(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (r *Registry) rebuild(ctx context.Context, id string) (*Workspace, error) {
	tokens, err := r.tokens.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session tokens: %w", err)
	}
	if tokens == nil {
		return nil, ErrSessionExpired
	}

	ws, err := r.open(id)
	if err != nil {
		return nil, err
	}
	if _, err := ws.Session.Resume(ctx, *tokens); err != nil {
		r.log.Warn(module, "Failed to resume session", map[string]interface{}{
			"workspace_id": id,
			"error":        err,
		})
		if !rejected(err) {
			return nil, err
		}
		_ = r.tokens.Delete(ctx, id)
		return nil, ErrSessionExpired
	}

	// Resume may have refreshed the tokens.
	if current := ws.Session.Tokens(); current != nil {
		if err := r.tokens.Save(ctx, id, *current, r.ttl); err != nil {
			r.log.Warn(module, "Failed to persist session tokens", map[string]interface{}{
				"workspace_id": id,
				"error":        err,
			})
		}
	}
	r.live.SetDefault(id, ws)
	ws.Store.FetchAll(ctx)
	r.log.Info(module, "Workspace rebuilt", map[string]interface{}{
		"workspace_id": id,
		"user_id":      ws.UserID(),
	})
	return ws, nil
}

// rejected reports whether the backend refused the tokens themselves, as
// opposed to being unreachable.
func rejected(err error) bool {
	return errors.Is(err, remote.ErrUnauthorized) || errors.Is(err, remote.ErrInvalidCredentials)
}

// Logout ends the backend session and forgets the workspace.
func (r *Registry) Logout(ctx context.Context, id string) error {
	ws, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	logoutErr := ws.Session.Logout(ctx)
	r.live.Delete(id)
	if err := r.tokens.Delete(ctx, id); err != nil {
		r.log.Warn(module, "Failed to delete session tokens", map[string]interface{}{
			"workspace_id": id,
			"error":        err,
		})
	}
	return logoutErr
}

// Each calls fn for every workspace currently in memory.
func (r *Registry) Each(fn func(*Workspace)) {
	for _, item := range r.live.Items() {
		fn(item.Object.(*Workspace))
	}
}

func (r *Registry) Count() int {
	return r.live.ItemCount()
}
