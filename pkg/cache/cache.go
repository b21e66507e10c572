package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second

	defaultTTL = 5 * time.Minute
)

var (
	ErrDisabled = errors.New("cache disabled")
	ErrMiss     = errors.New("key not found")
)

type Cache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

func NewCache(addr string, enable bool, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if !enable {
		return &Cache{enabled: false, ttl: ttl}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
		ttl:     ttl,
	}, nil
}

// Enabled reports whether values are actually stored.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext creates a context with timeout for Redis operations
func (c *Cache) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), defaultOperationTimeout)
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) error {
	if !c.enabled {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, expiration).Err()
}

func (c *Cache) Get(key string, dest interface{}) error {
	if !c.enabled {
		return ErrDisabled
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrMiss
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Delete(key string) error {
	if !c.enabled {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeletePattern(pattern string) error {
	if !c.enabled {
		return nil
	}

	ctx, cancel := c.operationContext()
	defer cancel()

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Close() error {
	if !c.enabled {
		return nil
	}
	return c.client.Close()
}

func componentKey(id uint) string {
	return fmt.Sprintf("page_component:%d", id)
}

func pageKey(id uint) string {
	return fmt.Sprintf("page:%d", id)
}

func pageSlugKey(slug string) string {
	return "page_slug:" + slug
}

const (
	componentListKey = "page_components:list"
	pageListKey      = "pages:list"
)

func (c *Cache) CacheComponent(id uint, component interface{}) error {
	return c.Set(componentKey(id), component, c.ttl)
}

func (c *Cache) GetCachedComponent(id uint, dest interface{}) error {
	return c.Get(componentKey(id), dest)
}

func (c *Cache) CacheComponentList(list interface{}) error {
	return c.Set(componentListKey, list, c.ttl)
}

func (c *Cache) GetCachedComponentList(dest interface{}) error {
	return c.Get(componentListKey, dest)
}

// InvalidateComponent drops the cached component and the cached list.
func (c *Cache) InvalidateComponent(id uint) error {
	if err := c.Delete(componentKey(id)); err != nil {
		return err
	}
	return c.Delete(componentListKey)
}

func (c *Cache) CachePage(id uint, page interface{}) error {
	return c.Set(pageKey(id), page, c.ttl)
}

func (c *Cache) GetCachedPage(id uint, dest interface{}) error {
	return c.Get(pageKey(id), dest)
}

func (c *Cache) CachePageBySlug(slug string, page interface{}) error {
	return c.Set(pageSlugKey(slug), page, c.ttl)
}

func (c *Cache) GetCachedPageBySlug(slug string, dest interface{}) error {
	return c.Get(pageSlugKey(slug), dest)
}

func (c *Cache) CachePageList(list interface{}) error {
	return c.Set(pageListKey, list, c.ttl)
}

func (c *Cache) GetCachedPageList(dest interface{}) error {
	return c.Get(pageListKey, dest)
}

// InvalidatePages drops every cached page, slug lookup and page list.
func (c *Cache) InvalidatePages() error {
	if err := c.DeletePattern("page:*"); err != nil {
		return err
	}
	if err := c.DeletePattern("page_slug:*"); err != nil {
		return err
	}
	return c.Delete(pageListKey)
}
