package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helpdesk/ticket-system/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed create can hold a key.
	pendingTTL = 30 * time.Second
)

// IdempotencyStore records which ticket an Idempotency-Key produced.
// Key format: idem:ticket:<user_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key with SETNX. When the key is already held it returns the
// held value; a claim that expires between the two calls is retried once.
func (s *IdempotencyStore) Reserve(ctx context.Context, userID, key string) (string, error) {
	k := s.key(userID, key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, ports.IdempotencyPending, pendingTTL).Result()
		if err != nil {
			return "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return "", nil
		}

		held, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("idempotency reserve: %w", err)
		}
		return held, nil
	}
	return "", fmt.Errorf("idempotency reserve: key %q churned", key)
}

// Complete stores ticketID under key for the full ttl.
func (s *IdempotencyStore) Complete(ctx context.Context, userID, key, ticketID string) error {
	if err := s.client.Set(ctx, s.key(userID, key), ticketID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, userID, key string) error {
	if err := s.client.Del(ctx, s.key(userID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(userID, key string) string {
	return fmt.Sprintf("idem:ticket:%s:%s", userID, key)
}
