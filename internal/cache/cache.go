package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache is a byte-oriented TTL store shared by the coords and forecast
// namespaces. Implementations must be safe for concurrent readers and writers
// with insert-or-update semantics; last writer wins on a racing key, which is
// acceptable because entries are idempotent recomputations of the same
// upstream data.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InMemoryCache implements Cache with a mutex-guarded map and TTL-based
// expiration. Expired entries are removed on access.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
}

// cacheEntry stores a cached value with its expiration timestamp. Entries are
// owned exclusively by the store.
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache instance.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves the cached value for the key if present and not expired.
// Returns (value, true, nil) on a hit, (nil, false, nil) on miss or expiry.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a writer may have refreshed the key.
		if cur, ok := c.data[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores a value with the specified TTL. The entry expires after the TTL
// elapses and is removed on the next Get.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetJSON decodes the cached value for key into a fresh T. Decoding on every
// read means callers always receive an independent snapshot; a cached value
// is never aliased or mutated in place.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var out T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// SetJSON encodes value as JSON and stores it under key with the given TTL.
func SetJSON[T any](ctx context.Context, c Cache, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
