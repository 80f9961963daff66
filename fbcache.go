// Package fbcache is a bounded-capacity, disk-backed cache. Values live as
// files under an exclusively-owned directory, addressed by opaque keys, with
// least-frequently-used entries evicted when capacity runs out.
//
// The cache keeps its in-memory index and the directory contents consistent
// under concurrent use and I/O failure: files are written before their index
// entries commit, and deleted before their index entries drop. A single
// instance is safe for use from any number of goroutines.
package fbcache

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/croldan/fbcache/internal/cache"
	"github.com/croldan/fbcache/internal/eviction"
	_ "github.com/croldan/fbcache/internal/eviction/lfu"
	_ "github.com/croldan/fbcache/internal/eviction/lru"
	"github.com/croldan/fbcache/internal/keygen"
	"github.com/croldan/fbcache/internal/storage"
)

// Errors surfaced by cache operations. StorageError and ClearError carry
// extra payload; the rest are sentinels matched with errors.Is.
var (
	ErrKeyNotFound   = cache.ErrKeyNotFound
	ErrKeyCollision  = cache.ErrKeyCollision
	ErrValueTooLarge = cache.ErrValueTooLarge
	ErrInvariant     = cache.ErrInvariant
	ErrInvalidKey    = keygen.ErrInvalidKey
	ErrKeyRequired   = keygen.ErrKeyRequired
)

// StorageError wraps an I/O failure, carrying the operation and key.
type StorageError = cache.StorageError

// ClearError names the entries a Clear call could not remove.
type ClearError = cache.ClearError

// Cache is a shared handle to one file-backed cache instance.
type Cache struct {
	engine *cache.Cache
	group  singleflight.Group
}

// New initializes the storage directory and assembles a cache from the
// configuration. The directory is created when missing; a non-empty or
// non-directory path fails with ErrInit.
func New(cfg Config) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	if err := initDir(cfg.Fs, cfg.Dir); err != nil {
		return nil, err
	}

	policy, err := eviction.New(cfg.EvictionPolicy)
	if err != nil {
		return nil, err
	}

	engine := cache.New(cfg.Dir, cfg.Capacity, cfg.Mode, storage.New(cfg.Fs), policy, keygen.New(cfg.KeyStrategy))
	return &Cache{engine: engine}, nil
}

// Put stores value and returns the key it lives under. An empty key asks the
// configured key strategy for one; a supplied key that is already live fails
// with ErrKeyCollision. Room is made by evicting least-frequently-used
// entries before the value is admitted.
func (c *Cache) Put(ctx context.Context, key string, value []byte) (string, error) {
	return c.engine.Put(ctx, key, value)
}

// Get returns the value stored under key and counts the access.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.engine.Get(ctx, key)
}

// GetOrPut returns the value under key, running loader and storing its
// result on a miss. Concurrent misses for the same key run the loader once
// and share the outcome.
func (c *Cache) GetOrPut(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	value, err := c.engine.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	shared, err, _ := c.group.Do(key, func() (any, error) {
		value, err := c.engine.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			return nil, err
		}

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := c.engine.Put(ctx, key, loaded); err != nil {
			// Lost a race against a direct Put: serve the winner's value.
			if errors.Is(err, ErrKeyCollision) {
				return c.engine.Get(ctx, key)
			}
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return shared.([]byte), nil
}

// Remove deletes the entry stored under key.
func (c *Cache) Remove(ctx context.Context, key string) error {
	return c.engine.Remove(ctx, key)
}

// Clear removes every entry, best-effort. When some entries cannot be
// deleted it returns a ClearError naming them; they stay live.
func (c *Cache) Clear(ctx context.Context) error {
	return c.engine.Clear(ctx)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.engine.Len()
}

// Capacity returns the configured limit, in entries or bytes per Mode.
func (c *Cache) Capacity() int64 {
	return c.engine.Capacity()
}

// Mode returns the capacity accounting mode.
func (c *Cache) Mode() Mode {
	return c.engine.Mode()
}

// Size returns the total byte size of live entries.
func (c *Cache) Size() int64 {
	return c.engine.Size()
}
