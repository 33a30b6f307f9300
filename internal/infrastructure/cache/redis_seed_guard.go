package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "littlelemon:seed:"

// releaseScript deletes the key only while it still holds this guard's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSeedGuard implements shared.SeedGuard with SET NX PX, so processes
// sharing one database also share one claim.
type RedisSeedGuard struct {
	client    *redis.Client
	keyPrefix string
	token     string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSeedGuard connects to Redis and verifies the connection
func NewRedisSeedGuard(cfg RedisConfig) (*RedisSeedGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSeedGuardWithClient(client, ""), nil
}

// NewRedisSeedGuardWithClient creates a guard over an existing client
func NewRedisSeedGuardWithClient(client *redis.Client, keyPrefix string) *RedisSeedGuard {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisSeedGuard{
		client:    client,
		keyPrefix: keyPrefix,
		token:     uuid.NewString(),
	}
}

// Acquire claims key for ttl
func (g *RedisSeedGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, g.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire seed guard %s: %w", key, err)
	}
	return ok, nil
}

// Release drops the claim if this guard still owns it
func (g *RedisSeedGuard) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, g.token).Err(); err != nil {
		return fmt.Errorf("failed to release seed guard %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisSeedGuard) Close() error {
	return g.client.Close()
}

// Client returns the underlying Redis client
func (g *RedisSeedGuard) Client() *redis.Client {
	return g.client
}

var _ shared.SeedGuard = (*RedisSeedGuard)(nil)
