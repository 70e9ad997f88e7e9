package redis

import (
	"improvehub/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when no address is configured; callers treat a
// nil client as "feature disabled".
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
