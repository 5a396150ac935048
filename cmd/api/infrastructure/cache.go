package infrastructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"signage-user-service/internal/config"
	redisclient "signage-user-service/pkg/redis"
)

// NewRedisClient creates a new Redis client with configuration
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	redisConfig := redisclient.Config{
		Host:           cfg.Redis.Host,
		Port:           cfg.Redis.Port,
		Password:       cfg.Redis.Password,
		DB:             cfg.Redis.DB,
		MaxRetries:     cfg.Redis.MaxRetries,
		PoolSize:       cfg.Redis.PoolSize,
		MinIdleConn:    cfg.Redis.MinIdleConn,
		ConnectTimeout: time.Duration(cfg.DB.ConnectTimeout) * time.Second,
	}

	rdb, err := redisclient.NewClient(redisConfig, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
