package courses

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache for single-course lookups. All methods are
// nil-safe so the service can run without Redis in tests.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a course cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func courseKey(id int64) string {
	return fmt.Sprintf("course:%d", id)
}

// Get returns the cached course, if present.
func (c *Cache) Get(ctx context.Context, id int64) (*Course, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var course Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, false
	}
	return &course, true
}

// Set stores the course. Failures are ignored; the cache is best effort.
func (c *Cache) Set(ctx context.Context, course *Course) {
	if c == nil || c.client == nil || course == nil {
		return
	}
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	c.client.Set(ctx, courseKey(course.ID), data, c.ttl)
}

// Invalidate drops the cached course.
func (c *Cache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, courseKey(id))
}
