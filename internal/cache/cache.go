package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"SignalDesk/internal/model"
)

const keyPrefix = "signal:latest:"

// SignalCache keeps the latest signal per asset. Get reports ok=false on a miss.
type SignalCache interface {
	Put(ctx context.Context, sig *model.TradingSignal) error
	Get(ctx context.Context, asset string) (*model.TradingSignal, bool, error)
	Close() error
}

func key(asset string) string { return keyPrefix + asset }

// RedisSignalCache stores signals as JSON under signal:latest:<asset>.
type RedisSignalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSignalCache connects to addr and verifies the connection.
func NewRedisSignalCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSignalCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSignalCache{client: client, ttl: ttl}, nil
}

func (c *RedisSignalCache) Put(ctx context.Context, sig *model.TradingSignal) error {
	b, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	if err := c.client.Set(ctx, key(sig.Asset), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", sig.Asset, err)
	}
	return nil
}

func (c *RedisSignalCache) Get(ctx context.Context, asset string) (*model.TradingSignal, bool, error) {
	b, err := c.client.Get(ctx, key(asset)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", asset, err)
	}
	var sig model.TradingSignal
	if err := json.Unmarshal(b, &sig); err != nil {
		return nil, false, fmt.Errorf("decode cached signal %s: %w", asset, err)
	}
	return &sig, true, nil
}

func (c *RedisSignalCache) Close() error { return c.client.Close() }

type memoryEntry struct {
	sig     model.TradingSignal
	expires time.Time
}

// MemorySignalCache is the in-process fallback when Redis is not configured.
type MemorySignalCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemorySignalCache creates a cache whose entries expire after ttl (never when ttl <= 0).
func NewMemorySignalCache(ttl time.Duration) *MemorySignalCache {
	return &MemorySignalCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *MemorySignalCache) Put(_ context.Context, sig *model.TradingSignal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{sig: *sig}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[sig.Asset] = e
	return nil
}

func (c *MemorySignalCache) Get(_ context.Context, asset string) (*model.TradingSignal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[asset]
	if !ok || (!e.expires.IsZero() && c.now().After(e.expires)) {
		return nil, false, nil
	}
	sig := e.sig
	return &sig, true, nil
}

func (c *MemorySignalCache) Close() error { return nil }
