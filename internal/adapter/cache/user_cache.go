package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "signage-user-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by name.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, name string) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// cachedUser is the wire form of a cached user. It carries the password
// hash so that authentication can be served from the cache.
type cachedUser struct {
	Name         string   `json:"name"`
	Groups       []string `json:"groups"`
	PasswordHash string   `json:"password_hash"`
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cacheKey generates a Redis key for a user name.
func (c *RedisUserCache) cacheKey(name string) string {
	return "user:" + name
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, name string) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.cacheKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.String("name", name))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	groups := cu.Groups
	if groups == nil {
		groups = []string{}
	}

	c.log.Debug("cache hit", zap.String("name", name))
	return &domain.User{Name: cu.Name, Groups: groups, PasswordHash: cu.PasswordHash}, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(cachedUser{
		Name:         user.Name,
		Groups:       user.Groups,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("name", user.Name), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(user.Name), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("name", user.Name), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("name", user.Name), zap.Duration("ttl", c.ttl))
	return nil
}
