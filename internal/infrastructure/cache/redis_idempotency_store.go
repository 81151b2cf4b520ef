package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotelops/backend/internal/domain/shared"
)

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// Suitable for deployments where multiple instances share replay state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "payment:idempotency:",
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing
// Redis client. Useful for testing or sharing a client.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "payment:idempotency:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim stores value under token unless the token is already claimed.
// SETNX makes the claim atomic across instances.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, token, value string, ttl time.Duration) (bool, string, error) {
	key := s.keyPrefix + token

	claimed, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("failed to claim idempotency token: %w", err)
	}
	if claimed {
		return true, value, nil
	}

	existing, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			// Claimed key expired between SETNX and GET
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to read idempotency token: %w", err)
	}
	return false, existing, nil
}

// Lookup returns the value stored under token, or empty when unknown
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, token string) (string, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up idempotency token: %w", err)
	}
	return value, nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisIdempotencyStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
