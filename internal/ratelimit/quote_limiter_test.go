package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, rate float64, burst int) (*QuoteLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewQuoteLimiterWithClient(client, rate, burst)
	require.NoError(t, err)
	return limiter, mr
}

func TestQuoteLimiter_BurstThenDeny(t *testing.T) {
	limiter, _ := newLimiter(t, 0.001, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "buckets are per client")
}

func TestQuoteLimiter_SetsExpiry(t *testing.T) {
	limiter, mr := newLimiter(t, 1, 4)

	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	key := keyQuoteClient + "10.0.0.1"
	require.True(t, mr.Exists(key))
	assert.Equal(t, 8*time.Second, mr.TTL(key))
}

func TestQuoteLimiter_DisabledAllows(t *testing.T) {
	var limiter *QuoteLimiter
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewQuoteLimiterWithClient_RejectsBadLimits(t *testing.T) {
	_, err := NewQuoteLimiterWithClient(nil, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}
