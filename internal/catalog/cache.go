package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"FundLens/internal/model"

	"github.com/redis/go-redis/v9"
)

// Cache stores the most recent fund list.
type Cache interface {
	Get(ctx context.Context) ([]model.Fund, bool, error)
	Set(ctx context.Context, funds []model.Fund, ttl time.Duration) error
}

// MemoryCache keeps the list in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	funds   []model.Fund
	expires time.Time
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context) ([]model.Fund, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.funds == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	return c.funds, true, nil
}

func (c *MemoryCache) Set(_ context.Context, funds []model.Fund, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funds = funds
	c.expires = c.now().Add(ttl)
	return nil
}

// RedisCache stores the list as JSON under a single key, so several
// server instances share one scrape.
type RedisCache struct {
	Client *redis.Client
	Key    string
}

// NewRedisCache connects to redis and checks the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int, key string) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{Client: rdb, Key: key}, nil
}

func (c *RedisCache) Get(ctx context.Context) ([]model.Fund, bool, error) {
	raw, err := c.Client.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var funds []model.Fund
	if err := json.Unmarshal(raw, &funds); err != nil {
		return nil, false, fmt.Errorf("decode cached funds: %w", err)
	}
	return funds, true, nil
}

func (c *RedisCache) Set(ctx context.Context, funds []model.Fund, ttl time.Duration) error {
	raw, err := json.Marshal(funds)
	if err != nil {
		return fmt.Errorf("encode funds: %w", err)
	}
	if err := c.Client.Set(ctx, c.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (c *RedisCache) Close() error {
	return c.Client.Close()
}
