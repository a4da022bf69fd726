// Package cache stores compiled layouts and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP service
//   - [NewNullCache]: stores nothing; used when caching is off
//
// # Keys
//
// A [Keyer] derives keys from content hashes, never from file names, so
// editing a layout source or changing a render option always misses:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(src), cache.LayoutKeyOpts{Width: 320, Height: 480})
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON loads key into v. It returns ErrCacheMiss when the key is absent
// or the stored bytes no longer decode into v.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || json.Unmarshal(data, v) != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON stores v as JSON under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// NewNullCache returns a cache that stores nothing and always misses.
func NewNullCache() Cache { return nullCache{} }

type nullCache struct{}

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error { return nil }
func (nullCache) Close() error { return nil }
