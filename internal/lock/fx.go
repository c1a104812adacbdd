package lock

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(provideClient),
	fx.Provide(NewLocker),
)

// provideClient returns nil when redis is unconfigured; the locker degrades
// to a no-op and minting relies on the database constraint alone.
func provideClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	log.Info("redis lock client configured", zap.String("addr", cfg.RedisAddr))
	return client
}
