package locking

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/courierfare/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("locking",
	fx.Provide(NewClient),
	fx.Provide(NewLocker),
)

// NewClient returns a Redis client, or nil when no address is configured.
// Every consumer tolerates the nil client and degrades to process-local
// behavior.
func NewClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, refresh locking degrades to process-local", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client
}
