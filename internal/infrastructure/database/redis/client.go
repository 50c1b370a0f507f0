// Package redis provides the run-scoped cache and the run lock that keeps
// two pipeline executions from racing on the same input.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// NewClient connects to Redis and verifies the connection with a bounded
// ping.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.CodeCacheError, "redis ping failed")
	}

	logger.Info("redis client ready", logging.String("addr", cfg.Addr))
	return client, nil
}
