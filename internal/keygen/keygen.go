// Package keygen provides the cache's key source: either fresh random
// identifiers, or caller-supplied path-like keys validated for filesystem
// safety. The strategy set is closed and fixed at construction time.
package keygen

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how cache keys are produced.
type Strategy int

const (
	// Random generates a fresh UUIDv4 per key.
	Random Strategy = iota
	// Structured accepts caller-supplied keys, validated for filesystem safety.
	Structured
)

// ErrKeyRequired is returned when the structured strategy is asked to
// generate a key: structured keys must always come from the caller.
var ErrKeyRequired = errors.New("structured key strategy requires an explicit key")

// ErrInvalidKey is returned when a caller-supplied key is not safe to use as
// a filename under the cache directory.
var ErrInvalidKey = errors.New("invalid key")

const maxKeyLength = 255

// Generator produces and validates cache keys for one strategy.
type Generator struct {
	strategy Strategy
}

func New(strategy Strategy) *Generator {
	return &Generator{strategy: strategy}
}

func (g *Generator) Strategy() Strategy {
	return g.strategy
}

// Generate returns a fresh key. Collision resistance comes from the UUIDv4
// identifier space; the engine still checks candidates against live keys and
// may call Generate again.
func (g *Generator) Generate() (string, error) {
	if g.strategy == Structured {
		return "", ErrKeyRequired
	}
	return newRandomKey(), nil
}

// Validate checks that a caller-supplied key maps to exactly one file name
// directly under the cache directory. It rejects traversal segments,
// separators and reserved characters regardless of strategy.
func (g *Generator) Validate(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key exceeds %d bytes", ErrInvalidKey, maxKeyLength)
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: traversal segment %q", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("%w: path separator in %q", ErrInvalidKey, key)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: NUL byte in key", ErrInvalidKey)
	}
	return nil
}
