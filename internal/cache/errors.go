package cache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrKeyNotFound is returned when the requested key has no live entry.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyCollision is returned when a caller-supplied key is already live.
	ErrKeyCollision = errors.New("key already exists")

	// ErrValueTooLarge is returned in byte-capacity mode when a value cannot
	// fit even with every other entry evicted.
	ErrValueTooLarge = errors.New("value larger than cache capacity")

	// ErrInvariant indicates the index and the eviction policy disagree.
	// It is not recoverable: it means a bug inside the cache.
	ErrInvariant = errors.New("cache invariant violated")
)

// StorageError wraps an I/O failure from the storage backend, carrying the
// operation and the key it happened for.
type StorageError struct {
	Op  string // "write", "read" or "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ClearError aggregates the per-key failures of a Clear call. Failed names
// the keys that survived, each with the error that kept it alive.
type ClearError struct {
	Failed map[string]error
}

func (e *ClearError) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for key := range e.Failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("clear left %d entries behind: %s", len(keys), strings.Join(keys, ", "))
}

func (e *ClearError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}
