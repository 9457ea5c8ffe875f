package redis

import (
	"context"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Client *redis.Client

const revokedTokenPrefix = "auth:revoked:"

// Init creates the Redis client and verifies connectivity.
func Init(cfg *config.RedisConfig) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return nil
}

// Close closes the Redis connection.
func Close() error {
	if Client == nil {
		return nil
	}
	logger.Info("Redis connection closed")
	return Client.Close()
}

// Get returns the Redis client.
func Get() *redis.Client {
	return Client
}

// RevokeToken puts a token on the denylist until it would have expired anyway.
func RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if ttl <= 0 {
		return nil
	}
	return Client.Set(ctx, revokedTokenPrefix+token, 1, ttl).Err()
}

// IsTokenRevoked reports whether a token is on the denylist.
func IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	if Client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}
	n, err := Client.Exists(ctx, revokedTokenPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
