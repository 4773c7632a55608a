package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"habitflow/internal/config"
	"habitflow/internal/domain/repository"
)

// NewClient creates and verifies a Redis client.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// MarkerStorage stores day-boundary and XP latch markers in Redis.
// Markers are plain strings and never expire: a stale marker simply
// reads as "some other day" on the next comparison.
type MarkerStorage struct {
	client *redis.Client
}

// NewMarkerStorage creates a new marker storage
func NewMarkerStorage(client *redis.Client) repository.MarkerStorage {
	return &MarkerStorage{client: client}
}

// Get retrieves a marker value, or "" when it is not set.
func (s *MarkerStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get marker: %w", err)
	}
	return value, nil
}

// Set stores a marker value.
func (s *MarkerStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set marker: %w", err)
	}
	return nil
}
