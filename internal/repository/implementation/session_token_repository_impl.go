package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "quiknote:session:"

type SessionTokenRepositoryImpl struct {
	rdb *redis.Client
}

func NewSessionTokenRepository(rdb *redis.Client) contract.SessionTokenRepository {
	return &SessionTokenRepositoryImpl{rdb: rdb}
}

func (r *SessionTokenRepositoryImpl) Save(ctx context.Context, sessionId string, auth entity.AuthSession, ttl time.Duration) error {
	payload, err := json.Marshal(auth)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+sessionId, payload, ttl).Err()
}

func (r *SessionTokenRepositoryImpl) Get(ctx context.Context, sessionId string) (*entity.AuthSession, error) {
	payload, err := r.rdb.Get(ctx, sessionKeyPrefix+sessionId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var auth entity.AuthSession
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (r *SessionTokenRepositoryImpl) Delete(ctx context.Context, sessionId string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+sessionId).Err()
}
