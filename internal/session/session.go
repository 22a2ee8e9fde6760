// Package session tracks who is signed in to one backend client and exposes
// the account and profile operations of that user.
package session

import (
	"context"
	"sync"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
)

const module = "Session"

// Listener is notified after every profile change. It receives nil on logout.
type Listener func(profile *entity.Profile)

type Session struct {
	account remote.AccountService
	files   remote.FileStorage
	log     logger.ILogger
	clock   func() time.Time

	mu          sync.RWMutex
	profile     *entity.Profile
	auth        *entity.AuthSession
	avatarStamp int64
	listeners   []Listener
}

type Option func(*Session)

func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

func New(account remote.AccountService, files remote.FileStorage, log logger.ILogger, opts ...Option) *Session {
	s := &Session{
		account: account,
		files:   files,
		log:     log,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers a listener. Listeners run synchronously after the
// session state is updated.
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) Login(ctx context.Context, email, password string) (*entity.Profile, error) {
	auth, profile, err := s.account.Login(ctx, email, password)
	if err != nil {
		s.log.Warn(module, "Login failed", map[string]interface{}{"email": email, "error": err})
		return nil, &OperationError{Op: "log in", Err: err}
	}

	s.set(auth, profile)
	s.log.Info(module, "User logged in", map[string]interface{}{"user_id": profile.Id})
	return profile.Clone(), nil
}

// Register ends any current session, creates the account and signs in.
func (s *Session) Register(ctx context.Context, email, password, name string) (*entity.Profile, error) {
	if s.UserID() != "" {
		if err := s.Logout(ctx); err != nil {
			s.log.Warn(module, "Failed to end previous session before register", map[string]interface{}{"error": err})
		}
	}

	if _, err := s.account.Register(ctx, email, password, name); err != nil {
		s.log.Warn(module, "Register failed", map[string]interface{}{"email": email, "error": err})
		return nil, &OperationError{Op: "register", Err: err}
	}
	return s.Login(ctx, email, password)
}

// Logout ends the remote session. Local state is dropped even when the
// remote call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.account.Logout(ctx)
	s.set(nil, nil)
	if err != nil {
		s.log.Error(module, "Failed to log out", map[string]interface{}{"error": err})
		return &OperationError{Op: "log out", Err: err}
	}
	return nil
}

// CheckStatus loads the current user if the backend still has a session.
// Failures are logged and reported as signed out.
func (s *Session) CheckStatus(ctx context.Context) *entity.Profile {
	auth, err := s.account.CurrentSession(ctx)
	if err != nil || auth == nil {
		if err != nil {
			s.log.Warn(module, "Failed to check session", map[string]interface{}{"error": err})
		}
		s.set(nil, nil)
		return nil
	}

	profile, err := s.account.CurrentProfile(ctx)
	if err != nil {
		s.log.Warn(module, "Failed to load profile", map[string]interface{}{"error": err})
		s.set(nil, nil)
		return nil
	}
	s.set(auth, profile)
	return profile.Clone()
}

// Resume attaches previously issued tokens and loads the profile.
func (s *Session) Resume(ctx context.Context, auth entity.AuthSession) (*entity.Profile, error) {
	if err := s.account.Resume(ctx, auth); err != nil {
		return nil, &OperationError{Op: "resume session", Err: err}
	}
	profile, err := s.account.CurrentProfile(ctx)
	if err != nil {
		return nil, &OperationError{Op: "resume session", Err: err}
	}
	if current, err := s.account.CurrentSession(ctx); err == nil && current != nil {
		auth = *current
	}
	s.set(&auth, profile)
	return profile.Clone(), nil
}

func (s *Session) Profile() *entity.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// UserID implements store.Owner.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return ""
	}
	return s.profile.Id
}

func (s *Session) Tokens() *entity.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil
	}
	auth := *s.auth
	return &auth
}

func (s *Session) set(auth *entity.AuthSession, profile *entity.Profile) {
	s.mu.Lock()
	s.auth = auth
	s.profile = profile.Clone()
	if profile != nil && s.avatarStamp == 0 {
		s.avatarStamp = s.clock().UnixMilli()
	}
	if profile == nil {
		s.avatarStamp = 0
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(profile.Clone())
	}
}

func (s *Session) setProfile(profile *entity.Profile) {
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()
	s.set(auth, profile)
}
