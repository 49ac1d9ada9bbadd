package external

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"quill/app/models"

	"github.com/redis/go-redis/v9"
)

// Cache holds mapped posts per category key. Entries are replaced or dropped
// whole, never partially.
type Cache interface {
	Get(ctx context.Context, key string) ([]*models.Post, bool)
	Set(ctx context.Context, key string, posts []*models.Post) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	posts   []*models.Post
	expires time.Time
}

// MemoryCache is an in-process Cache with a fixed freshness window.
type MemoryCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates a MemoryCache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]*models.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.posts, true
}

func (c *MemoryCache) Set(_ context.Context, key string, posts []*models.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{posts: posts, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// redisClient is the subset of *redis.Client used by RedisCache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// redisNewClient builds the redis client; tests replace it.
var redisNewClient = func(opt *redis.Options) redisClient {
	return redis.NewClient(opt)
}

// RedisCache stores mapped posts as JSON in redis with an expiry.
type RedisCache struct {
	client redisClient
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to redis and returns a Cache with the given ttl.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redisNewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "quill:external:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]*models.Post, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []*models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *RedisCache) Set(ctx context.Context, key string, posts []*models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Close closes the redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
