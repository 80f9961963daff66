// Package cache implements the engine of the file-backed cache: the key
// index, capacity accounting and the ordering guarantees between in-memory
// bookkeeping and on-disk state.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/croldan/fbcache/internal/eviction"
	"github.com/croldan/fbcache/internal/keygen"
	"github.com/croldan/fbcache/internal/storage"
)

// Mode selects how capacity is accounted.
type Mode int

const (
	// ModeEntries bounds the number of live entries.
	ModeEntries Mode = iota
	// ModeBytes bounds the total byte size of live entries.
	ModeBytes
)

type entry struct {
	path string
	size int64
}

// Cache coordinates the index, the eviction policy and the storage backend.
//
// One mutex serializes every operation end to end, including its I/O, so the
// index never disagrees with what the policy tracks and len() never exceeds
// capacity at any observable instant, eviction windows included. The index
// commits only after a successful write, and files are deleted before their
// index entries, so a completed operation leaves no orphan files and no
// dangling entries.
type Cache struct {
	mu        sync.Mutex
	dir       string
	capacity  int64
	mode      Mode
	store     *storage.Backend
	policy    eviction.Policy
	keys      *keygen.Generator
	entries   map[string]entry
	usedBytes int64
}

// New assembles an engine over an already-initialized root directory.
// Capacity must be positive; its unit depends on mode.
func New(dir string, capacity int64, mode Mode, store *storage.Backend, policy eviction.Policy, keys *keygen.Generator) *Cache {
	return &Cache{
		dir:      dir,
		capacity: capacity,
		mode:     mode,
		store:    store,
		policy:   policy,
		keys:     keys,
		entries:  make(map[string]entry),
	}
}

// Put stores value under key, evicting least-frequently-used entries first
// when room has to be made. An empty key asks the key generator for a fresh
// one; a supplied key that is already live fails with ErrKeyCollision.
// The key actually used is returned.
func (c *Cache) Put(ctx context.Context, key string, value []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == "" {
		generated, err := c.generateKey()
		if err != nil {
			return "", err
		}
		key = generated
	} else {
		if err := c.keys.Validate(key); err != nil {
			return "", err
		}
		if _, live := c.entries[key]; live {
			return "", fmt.Errorf("%w: %s", ErrKeyCollision, key)
		}
	}

	size := int64(len(value))
	if c.mode == ModeBytes && size > c.capacity {
		return "", fmt.Errorf("%w: %d bytes into a %d byte cache", ErrValueTooLarge, size, c.capacity)
	}
	if err := c.makeRoom(ctx, size); err != nil {
		return "", err
	}

	path := filepath.Join(c.dir, key)
	if err := c.store.Write(ctx, path, value); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &StorageError{Op: "write", Key: key, Err: err}
	}

	if err := ctx.Err(); err != nil {
		// Written but not committed: the file must not stay reachable.
		_ = c.store.Delete(context.WithoutCancel(ctx), path)
		return "", err
	}

	c.entries[key] = entry{path: path, size: size}
	c.usedBytes += size
	c.policy.RecordAccess(key)
	return key, nil
}

// Get returns the value stored under key and refreshes its frequency.
// An indexed key whose backing file cannot be read is dropped from the
// index and the policy before the failure is surfaced.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	data, err := c.store.Read(ctx, ent.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Dangling entry. Self-heal, but still report the failure.
		c.dropEntry(key, ent)
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}

	c.policy.RecordAccess(key)
	return data, nil
}

// Remove deletes the entry stored under key. When the file deletion fails
// the entry stays live and the failure is surfaced.
func (c *Cache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if err := c.store.Delete(ctx, ent.path); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &StorageError{Op: "delete", Key: key, Err: err}
	}

	c.dropEntry(key, ent)
	return nil
}

// Clear removes every entry, best-effort. Entries whose deletion fails stay
// live and are reported together in a ClearError.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	failed := make(map[string]error)
	for key, ent := range c.entries {
		if err := c.store.Delete(ctx, ent.path); err != nil {
			failed[key] = err
			continue
		}
		c.dropEntry(key, ent)
	}

	if len(failed) > 0 {
		return &ClearError{Failed: failed}
	}
	return nil
}

// Len returns the number of live entries. No I/O.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured limit (entries or bytes, per Mode).
func (c *Cache) Capacity() int64 {
	return c.capacity
}

// Mode returns the capacity accounting mode.
func (c *Cache) Mode() Mode {
	return c.mode
}

// Size returns the total byte size of live entries. No I/O.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedBytes
}

// generateKey asks the key generator for a fresh key, re-rolling on the
// off chance the identifier is already live.
func (c *Cache) generateKey() (string, error) {
	for {
		key, err := c.keys.Generate()
		if err != nil {
			return "", err
		}
		if _, live := c.entries[key]; !live {
			return key, nil
		}
	}
}

// makeRoom evicts least-used entries until the incoming value fits.
// Eviction runs strictly before admission: one eviction per slot in entry
// mode, as many as needed in byte mode. Each eviction deletes the file
// first and only then drops the bookkeeping.
func (c *Cache) makeRoom(ctx context.Context, incoming int64) error {
	for c.needsRoom(incoming) {
		victim, ok := c.policy.EvictCandidate()
		if !ok {
			return fmt.Errorf("%w: %d entries indexed but the eviction policy is empty", ErrInvariant, len(c.entries))
		}

		ent, ok := c.entries[victim]
		if !ok {
			return fmt.Errorf("%w: eviction candidate %q is not indexed", ErrInvariant, victim)
		}

		if err := c.store.Delete(ctx, ent.path); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &StorageError{Op: "delete", Key: victim, Err: err}
		}
		c.dropEntry(victim, ent)
	}
	return nil
}

func (c *Cache) needsRoom(incoming int64) bool {
	if c.mode == ModeBytes {
		return c.usedBytes+incoming > c.capacity
	}
	return int64(len(c.entries)) >= c.capacity
}

func (c *Cache) dropEntry(key string, ent entry) {
	delete(c.entries, key)
	c.usedBytes -= ent.size
	c.policy.Remove(key)
}
