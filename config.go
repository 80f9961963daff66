package fbcache

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/croldan/fbcache/internal/cache"
	"github.com/croldan/fbcache/internal/keygen"
)

// Mode selects how Capacity is accounted.
type Mode = cache.Mode

const (
	// ModeEntries bounds the number of live entries. This is the default.
	ModeEntries = cache.ModeEntries
	// ModeBytes bounds the total byte size of live entries.
	ModeBytes = cache.ModeBytes
)

// KeyStrategy selects where cache keys come from.
type KeyStrategy = keygen.Strategy

const (
	// RandomKeys generates a fresh UUIDv4 per stored value. This is the
	// default. Caller-supplied keys are still accepted and validated.
	RandomKeys = keygen.Random
	// StructuredKeys requires caller-supplied path-like keys, validated for
	// filesystem safety.
	StructuredKeys = keygen.Structured
)

// ErrInit is returned when the storage directory cannot be initialized:
// the path is not a directory, is not accessible, or already holds files.
var ErrInit = errors.New("cannot initialize backing directory")

// DefaultEvictionPolicy is used when Config.EvictionPolicy is empty.
const DefaultEvictionPolicy = "lfu"

// Config holds the construction-time configuration of a Cache.
type Config struct {
	// Dir is the storage directory, owned exclusively by this cache for its
	// lifetime. It is created when missing; an existing directory must be
	// empty.
	Dir string

	// Capacity bounds the cache: maximum entries in ModeEntries, maximum
	// total bytes in ModeBytes. Must be positive.
	Capacity int64

	// Mode selects the capacity unit.
	Mode Mode

	// KeyStrategy selects random or structured keys.
	KeyStrategy KeyStrategy

	// EvictionPolicy names a registered eviction policy ("lfu" or "lru").
	// Empty selects DefaultEvictionPolicy.
	EvictionPolicy string

	// Fs overrides the backing filesystem. Nil selects the OS filesystem.
	Fs afero.Fs
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.Fs == nil {
		out.Fs = afero.NewOsFs()
	}
	if out.EvictionPolicy == "" {
		out.EvictionPolicy = DefaultEvictionPolicy
	}
	return out
}

func (cfg *Config) validate() error {
	if cfg.Dir == "" {
		return fmt.Errorf("%w: no directory configured", ErrInit)
	}
	if cfg.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", cfg.Capacity)
	}
	return nil
}

// initDir prepares dir as the cache's exclusive storage location.
func initDir(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	if os.IsNotExist(err) {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrInit, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInit, dir)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s is not empty", ErrInit, dir)
	}
	return nil
}
