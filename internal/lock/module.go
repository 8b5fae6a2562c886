package lock

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Victorious-hub/Open-Graph/internal/config"
)

var (
	Module = fx.Provide(
		NewLocker,
	)
)

// NewLocker uses Redis when REDIS_ADDR is set so that several app instances
// share the lock; a single instance falls back to an in-process lock.
func NewLocker(lc fx.Lifecycle, cfg *config.Config, l *zap.SugaredLogger) (Locker, error) {
	if cfg.RedisAddr == "" {
		l.Info("REDIS_ADDR not set, using in-process link lock")
		return NewLocalLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Info("Closing redis client.")
			return client.Close()
		},
	})

	return NewRedisLocker(client, cfg.LockTTL, l), nil
}
