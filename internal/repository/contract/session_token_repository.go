package contract

import (
	"context"
	"time"

	"quiknote-be/internal/entity"
)

// SessionTokenRepository persists backend tokens by BFF session id so a
// workspace can be rebuilt after it was evicted from memory.
type SessionTokenRepository interface {
	Save(ctx context.Context, sessionId string, auth entity.AuthSession, ttl time.Duration) error
	// Get returns nil without error when nothing is stored.
	Get(ctx context.Context, sessionId string) (*entity.AuthSession, error)
	Delete(ctx context.Context, sessionId string) error
}
