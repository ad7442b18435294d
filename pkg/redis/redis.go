package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/evanoh/storepulse-backend/config"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const dashboardStatsKey = "dashboard:stats"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		// Leave the cache disabled rather than half-connected.
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance. Nil when Init was never
// called or failed; callers treat that as "cache disabled".
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// CacheDashboardStats stores the serialized admin dashboard counts.
func CacheDashboardStats(ctx context.Context, payload []byte, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	if err := client.Set(ctx, dashboardStatsKey, payload, ttl).Err(); err != nil {
		logger.Error("Failed to cache dashboard stats", err, nil)
		return err
	}

	logger.Debug("Dashboard stats cached", map[string]interface{}{
		"ttl": ttl.String(),
	})
	return nil
}

// GetCachedDashboardStats returns the cached dashboard counts, or nil when
// the cache is cold or disabled.
func GetCachedDashboardStats(ctx context.Context) ([]byte, error) {
	if client == nil {
		return nil, nil
	}

	payload, err := client.Get(ctx, dashboardStatsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached dashboard stats", err, nil)
		return nil, err
	}

	return payload, nil
}
