package ratelimit

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/skyfare/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewQuoteLimiter),
)

// NewQuoteLimiter connects the quote limiter to redis when rate limiting is
// enabled and returns nil otherwise. The client is closed with the app.
func NewQuoteLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*QuoteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	limiter, err := NewQuoteLimiterWithClient(client, limitCfg.QuoteRate, limitCfg.QuoteBurst)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Quotes fail closed while redis is down; startup does not.
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("rate limit redis unreachable", zap.String("addr", addr), zap.Error(err))
				return nil
			}
			log.Info("quote rate limit enabled",
				zap.String("addr", addr),
				zap.Float64("rate_per_second", limitCfg.QuoteRate),
				zap.Int("burst", limitCfg.QuoteBurst),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return limiter, nil
}
