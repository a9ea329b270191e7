package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
)

// RedisClient wraps the shared Redis connection used by the rate limiter and
// the embedding cache. A disabled client means every consumer runs in-memory.
type RedisClient struct {
	client  *redis.Client
	enabled bool
	addr    string
	logger  *monitoring.Logger
}

// NewRedisClient connects to addr. An empty addr yields a disabled client and
// no error; a failed ping yields a disabled client and the ping error.
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *monitoring.Logger) (*RedisClient, error) {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	if addr == "" {
		logger.Warn("Redis address not configured, using in-memory rate limiting and cache")
		return &RedisClient{enabled: false, logger: logger}, nil
	}

	logger.Info("Initializing Redis client", zap.String("addr", addr), zap.Int("db", db))

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis ping failed, falling back to in-memory stores", zap.Error(err))
		_ = client.Close()
		return &RedisClient{enabled: false, addr: addr, logger: logger}, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Redis client connected", zap.String("addr", addr))

	return &RedisClient{
		client:  client,
		enabled: true,
		addr:    addr,
		logger:  logger,
	}, nil
}

// GetClient returns the underlying Redis client, nil when disabled
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// IsEnabled returns whether Redis is connected
func (r *RedisClient) IsEnabled() bool {
	return r != nil && r.enabled
}

// HealthCheck pings Redis
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if !r.IsEnabled() {
		return fmt.Errorf("redis is disabled")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.IsEnabled() && r.client != nil {
		r.logger.Info("Closing Redis client connection")
		return r.client.Close()
	}
	return nil
}

// GetPoolStats returns Redis connection pool statistics
func (r *RedisClient) GetPoolStats() map[string]interface{} {
	if !r.IsEnabled() || r.client == nil {
		return map[string]interface{}{"enabled": false}
	}

	stats := r.client.PoolStats()

	return map[string]interface{}{
		"enabled":     true,
		"addr":        r.addr,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}
