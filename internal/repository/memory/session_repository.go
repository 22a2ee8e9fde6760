package memory

import (
	"context"
	"time"

	"quiknote-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionTokenRepository keeps tokens in process memory. It is used when no
// Redis is configured; tokens do not survive a restart.
type SessionTokenRepository struct {
	cache *cache.Cache
}

func NewSessionTokenRepository() *SessionTokenRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionTokenRepository{
		cache: c,
	}
}

func (r *SessionTokenRepository) Save(ctx context.Context, sessionId string, auth entity.AuthSession, ttl time.Duration) error {
	r.cache.Set(sessionId, auth, ttl)
	return nil
}

func (r *SessionTokenRepository) Get(ctx context.Context, sessionId string) (*entity.AuthSession, error) {
	if x, found := r.cache.Get(sessionId); found {
		auth := x.(entity.AuthSession)
		return &auth, nil
	}
	return nil, nil
}

func (r *SessionTokenRepository) Delete(ctx context.Context, sessionId string) error {
	r.cache.Delete(sessionId)
	return nil
}
