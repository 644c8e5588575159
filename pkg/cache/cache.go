// Package cache provides a small key/value store used for upstream lookups
// and rate throttles. Memory backs single instances and tests; Redis backs
// multi-instance deployments.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	rediscli "github.com/Payphone-Digital/customer-service/pkg/redis"
)

var ErrMiss = errors.New("cache: miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent stores value only when key is missing or expired.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type item struct {
	value      []byte
	expiration int64
}

// Memory is an in-process Store with periodic eviction.
type Memory struct {
	items map[string]item
	mu    sync.RWMutex
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

func NewMemory() *Memory {
	c := &Memory{
		items: make(map[string]item),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.startGC(time.Minute)
	return c
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return nil, ErrMiss
	}
	return it.value, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value, expiration: c.now().Add(ttl).UnixNano()}
	return nil
}

func (c *Memory) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if it, found := c.items[key]; found && now.UnixNano() <= it.expiration {
		return false, nil
	}
	c.items[key] = item{value: value, expiration: now.Add(ttl).UnixNano()}
	return true, nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Close stops the eviction goroutine.
func (c *Memory) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Memory) startGC(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now().UnixNano()
			c.mu.Lock()
			for k, v := range c.items {
				if now > v.expiration {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Redis adapts the redis client to Store.
type Redis struct {
	client *rediscli.Client
}

func NewRedis(client *rediscli.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key)
	if errors.Is(err, rediscli.ErrMiss) {
		return nil, ErrMiss
	}
	return data, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl)
}

func (r *Redis) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Delete(ctx, key)
}
