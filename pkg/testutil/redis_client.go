package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/VAIOT/lottery-backend/pkg/xredis"
)

// InMemoryRedisClient is a map-backed replacement of the redis client. TTLs
// are ignored.
type InMemoryRedisClient struct {
	mutex  sync.Mutex
	values map[string]string
}

func NewInMemoryRedisClient() *InMemoryRedisClient {
	return &InMemoryRedisClient{values: make(map[string]string)}
}

func (c *InMemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.values[key]
	return ok, nil
}

func (c *InMemoryRedisClient) Get(ctx context.Context, key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.values[key]
	if !ok {
		return "", xredis.ErrNotFound
	}

	return value, nil
}

func (c *InMemoryRedisClient) Set(ctx context.Context, key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.values[key] = value
	return nil
}

func (c *InMemoryRedisClient) Del(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.values, key)
	return nil
}

func (c *InMemoryRedisClient) SetObj(
	ctx context.Context, key string, obj any, ttl time.Duration,
) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b))
}

func (c *InMemoryRedisClient) GetObj(ctx context.Context, key string, v any) error {
	value, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(value), v)
}
