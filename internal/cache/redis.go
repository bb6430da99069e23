package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxJitter = 5 * time.Minute

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache keeps snapshots for roughly baseTTL. Entries that carry an
// ExpiresAt never outlive it by more than the jitter.
func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: baseTTL}
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &snap, nil
}

func (r *RedisCache) Set(ctx context.Context, sessionID string, snap *SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(sessionID), data, r.ttl(snap)).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) ttl(snap *SessionSnapshot) time.Duration {
	ttl := r.baseTTL
	if !snap.ExpiresAt.IsZero() {
		if until := time.Until(snap.ExpiresAt); until < ttl {
			ttl = until
		}
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl + time.Duration(rand.Int63n(int64(maxJitter)))
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
