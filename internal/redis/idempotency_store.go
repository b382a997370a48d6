package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/eaglebank/ledger/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyResponsePrefix = "idempotency:response:"
	idempotencyLockPrefix     = "idempotency:lock:"
)

// IdempotencyStore records responses per idempotency key and guards keys
// that are still being processed.
type IdempotencyStore struct {
	client    *goredis.Client
	responses *ViewCache[models.IdempotentResponse]
	lockTTL   time.Duration
}

func NewIdempotencyStore(client *goredis.Client, ttl, lockTTL time.Duration, logger *zap.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		client:    client,
		responses: NewViewCache[models.IdempotentResponse](client, ttl, logger),
		lockTTL:   lockTTL,
	}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*models.IdempotentResponse, bool) {
	return s.responses.Get(ctx, idempotencyResponsePrefix+key)
}

// Acquire takes the in-flight lock for key. It returns false when another
// request holds it.
func (s *IdempotencyStore) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyLockPrefix+key, "1", s.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire idempotency lock: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, key string, resp *models.IdempotentResponse) {
	s.responses.Set(ctx, idempotencyResponsePrefix+key, resp)
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) {
	s.client.Del(ctx, idempotencyLockPrefix+key)
}
