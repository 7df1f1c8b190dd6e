// Package cache implements the TTL analysis cache in front of the
// analysis orchestrator — the only mutable shared state in the
// pipeline. Two interchangeable backends satisfy the same interface:
// an in-process mutex-guarded map (the default), and an optional
// Redis-backed store for multi-instance deployments.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"urlsentry/internal/models"
)

// AnalysisCache is the contract both backends satisfy.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (models.AnalysisResult, bool)
	Set(ctx context.Context, key string, result models.AnalysisResult)
	Close() error
}

// New builds the configured backend: Redis when redisAddr is
// non-empty, otherwise the in-process bounded map.
func New(redisAddr string, maxSize int, ttl time.Duration) AnalysisCache {
	if redisAddr != "" {
		return NewRedisCache(redisAddr, ttl)
	}
	return NewMemoryCache(maxSize, ttl)
}

// entry pairs a cached result with its expiry time and its
// position in the LRU eviction list.
type entry struct {
	key     string
	result  models.AnalysisResult
	expires time.Time
	elem    *list.Element
}

// MemoryCache is a bounded LRU map with per-entry TTL expiry. A single
// mutex guards both the map and the eviction list; reads also mutate
// LRU order, so there is no separate read path to optimise.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*entry
	order   *list.List
	maxSize int
	ttl     time.Duration
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 2000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		items:   make(map[string]*entry),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return models.AnalysisResult{}, false
	}
	if time.Now().After(e.expires) {
		c.order.Remove(e.elem)
		delete(c.items, key)
		return models.AnalysisResult{}, false
	}
	c.order.MoveToFront(e.elem)
	return e.result, true
}

func (c *MemoryCache) Set(_ context.Context, key string, result models.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[key]; ok {
		existing.result = result
		existing.expires = time.Now().Add(c.ttl)
		c.order.MoveToFront(existing.elem)
		return
	}

	e := &entry{key: key, result: result, expires: time.Now().Add(c.ttl)}
	e.elem = c.order.PushFront(e)
	c.items[key] = e

	for len(c.items) > c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

func (c *MemoryCache) Close() error { return nil }

// RedisCache backs the same cache contract with Redis SETEX/GET, for
// deployments that want the analysis cache shared across instances
// rather than per-process. go-redis/redis/v8 is present unused in the
// reference's go.mod; this is where this codebase puts it to work.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.AnalysisResult, bool) {
	data, err := c.client.Get(ctx, "urlsentry:analysis:"+key).Bytes()
	if err != nil {
		return models.AnalysisResult{}, false
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.AnalysisResult{}, false
	}
	return result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result models.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.SetEX(ctx, "urlsentry:analysis:"+key, data, c.ttl)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
