package cache

import (
	"context"
	"fmt"
	"time"

	"example.com/backstage/services/assets/config"

	"github.com/go-redis/redis/v8"
)

// Cache key prefixes. Item entries are keyed by numeric id, tag entries by
// the normalized tag so fuzzy lookups can short-circuit on repeat queries.
const (
	itemKeyPrefix = "inventory:item:"
	tagKeyPrefix  = "inventory:tag:"
)

// ItemKey builds the cache key for an inventory item by id.
func ItemKey(id uint) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, id)
}

// TagKey builds the cache key for a normalized tag lookup.
func TagKey(normalizedTag string) string {
	return tagKeyPrefix + normalizedTag
}

// RedisClient is an interface for Redis operations
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// redisClient implements the RedisClient interface
type redisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg config.RedisConfig) (RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisClient{client: client}, nil
}

// Get retrieves a value from Redis
func (r *redisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Set stores a value in Redis with expiration
func (r *redisClient) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from Redis
func (r *redisClient) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (r *redisClient) Close() error {
	return r.client.Close()
}
