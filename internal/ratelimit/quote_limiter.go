package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

const keyQuoteClient = "skyfare:quote:client:"

// QuoteLimiter throttles the pricing endpoints per client. A nil limiter
// allows everything.
type QuoteLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewQuoteLimiterWithClient(client redis.Scripter, rate float64, burst int) (*QuoteLimiter, error) {
	if rate <= 0 || burst <= 0 {
		return nil, ErrInvalidLimit
	}
	return &QuoteLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}, nil
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes a token for the client, typically its remote IP.
func (l *QuoteLimiter) Allow(ctx context.Context, client string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}
	return l.bucket.Allow(ctx, keyQuoteClient+client, l.rate, l.burst)
}
