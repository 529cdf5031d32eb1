package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CooldownStore implements ports.CooldownStore using Redis SET NX.
type CooldownStore struct {
	client *goredis.Client
}

// NewCooldownStore creates a new Redis-backed cooldown store.
func NewCooldownStore(client *goredis.Client) *CooldownStore {
	return &CooldownStore{client: client}
}

// Acquire atomically takes the cooldown slot if it is free.
// Returns true if acquired, false if the cooldown is still active.
func (s *CooldownStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, cooldown still active
			return false, nil
		}
		return false, fmt.Errorf("redis cooldown acquire: %w", err)
	}
	return result == "OK", nil
}

// Release frees the slot early, used when the guarded action fails after the
// slot was taken.
func (s *CooldownStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis cooldown release: %w", err)
	}
	return nil
}

// Remaining reports how long until the slot frees up (0 if free).
func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis cooldown ttl: %w", err)
	}
	// TTL returns negative values for missing keys or keys without expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
