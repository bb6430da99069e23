package cache

import (
	"context"
	"testing"
	"time"

	"clubstore/internal/cart"
	"clubstore/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl), mr
}

func sampleSnapshot() *SessionSnapshot {
	return &SessionSnapshot{
		Cart: cart.Snapshot{
			Lines: []domain.CartLine{
				{ProductID: "p1", Name: "Home Jersey", UnitPriceCents: 50000, Quantity: 2},
				{ProductID: "p2", Name: "Scarf", UnitPriceCents: 30000, Quantity: 1},
			},
			IsOpen: true,
		},
		UserID:      "u1",
		AccessToken: "tok",
	}
}

func TestSetThenGet(t *testing.T) {
	c, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "s1", sampleSnapshot()))

	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Cart.Lines, 2)
	assert.True(t, got.Cart.IsOpen)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, int64(50000), got.Cart.Lines[0].UnitPriceCents)
}

func TestGet_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t, time.Hour)
	got, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, mr.Set(cacheKey("s1"), "{not json"))

	_, err := c.Get(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSetAppliesTTLWithJitter(t *testing.T) {
	c, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, c.Set(context.Background(), "s1", sampleSnapshot()))

	ttl := mr.TTL(cacheKey("s1"))
	assert.GreaterOrEqual(t, ttl, time.Hour)
	assert.Less(t, ttl, time.Hour+maxJitter)
}

func TestSetCapsTTLAtSessionExpiry(t *testing.T) {
	c, mr := setupTestRedis(t, 24*time.Hour)
	snap := sampleSnapshot()
	snap.ExpiresAt = time.Now().Add(10 * time.Minute)
	require.NoError(t, c.Set(context.Background(), "s1", snap))

	assert.Less(t, mr.TTL(cacheKey("s1")), 10*time.Minute+maxJitter)
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	require.NoError(t, c.Set(context.Background(), "s1", sampleSnapshot()))

	mr.FastForward(time.Minute + maxJitter)
	_, err := c.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "s1", sampleSnapshot()))
	require.NoError(t, c.Delete(ctx, "s1"))
	assert.False(t, mr.Exists(cacheKey("s1")))
	require.NoError(t, c.Delete(ctx, "s1"))
}
