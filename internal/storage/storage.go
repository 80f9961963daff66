// Package storage persists cache values as files through an afero.Fs, so
// production runs on the OS filesystem while tests can run in memory and
// inject I/O faults.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Backend performs the byte-level file operations for the cache.
//
// Writes go through a temporary file in the destination directory and are
// renamed into place, so a failed or interrupted write never leaves a file
// a later read would treat as valid content. Operations on distinct paths
// never interfere.
type Backend struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Backend {
	return &Backend{fs: fs}
}

// Write stores data at path atomically.
func (b *Backend) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := afero.TempFile(b.fs, filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	err = b.fs.Rename(tmpName, path)
	if err != nil {
		// Some filesystems (afero's MemMapFs among them) refuse to rename
		// over an existing file; the engine serializes writers, so dropping
		// the old file first is safe.
		if removeErr := b.fs.Remove(path); removeErr == nil {
			err = b.fs.Rename(tmpName, path)
		}
	}
	if err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename to final path: %w", err)
	}
	return nil
}

// Read returns the full content stored at path.
func (b *Backend) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes the file stored at path.
func (b *Backend) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
