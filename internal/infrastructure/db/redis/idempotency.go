package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed purchase can hold its key.
	pendingTTL = time.Minute
	pending    = "pending"
)

// IdempotencyStore maps purchase idempotency keys to the ticket they created.
// Key format: idem:ticket:<user_id>:<client key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. A non-positive ttl uses one day.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim takes key with SETNX. A losing caller reads the current binding.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := s.client.SetNX(ctx, idempotencyKey(key), pending, pendingTTL).Result()
	if err != nil {
		return false, "", fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return true, "", nil
	}

	val, err := s.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; report it as still in flight.
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return false, boundTicket(val), nil
}

// Complete binds key to ticketID for the full retention period.
func (s *IdempotencyStore) Complete(ctx context.Context, key, ticketID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Set(ctx, idempotencyKey(key), ticketID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.client.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

// Ping backs the readiness probe.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func idempotencyKey(key string) string {
	return "idem:ticket:" + key
}

// boundTicket returns the ticket id stored under a key, or "" while the
// purchase holding it is still pending.
func boundTicket(val string) string {
	if val == pending {
		return ""
	}
	return val
}
