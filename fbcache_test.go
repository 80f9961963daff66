package fbcache_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/croldan/fbcache"
)

func newCache(t *testing.T, cfg fbcache.Config) *fbcache.Cache {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(t.TempDir(), "cache")
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 16
	}
	c, err := fbcache.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := fbcache.New(fbcache.Config{Capacity: 1})
	if !errors.Is(err, fbcache.ErrInit) {
		t.Errorf("expected ErrInit for missing dir, got %v", err)
	}

	_, err = fbcache.New(fbcache.Config{Dir: t.TempDir(), Capacity: 0})
	if err == nil {
		t.Error("expected error for zero capacity")
	}

	_, err = fbcache.New(fbcache.Config{Dir: t.TempDir(), Capacity: 1, EvictionPolicy: "nope"})
	if err == nil {
		t.Error("expected error for unknown eviction policy")
	}
}

func TestNew_RefusesNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "leftover"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := fbcache.New(fbcache.Config{Dir: dir, Capacity: 1})
	if !errors.Is(err, fbcache.ErrInit) {
		t.Errorf("expected ErrInit for non-empty dir, got %v", err)
	}
}

func TestNew_RefusesNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := fbcache.New(fbcache.Config{Dir: file, Capacity: 1})
	if !errors.Is(err, fbcache.ErrInit) {
		t.Errorf("expected ErrInit for non-directory, got %v", err)
	}
}

func TestRoundTripOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := newCache(t, fbcache.Config{Dir: dir})
	ctx := context.Background()

	value := []byte("bytes on disk")
	key, err := c.Put(ctx, "", value)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// The value is a real file named after the key.
	onDisk, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		t.Fatalf("backing file missing: %v", err)
	}
	if !bytes.Equal(onDisk, value) {
		t.Errorf("backing file holds %q, want %q", onDisk, value)
	}

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}
}

func TestGetOrPut(t *testing.T) {
	c := newCache(t, fbcache.Config{KeyStrategy: fbcache.StructuredKeys})
	ctx := context.Background()

	var loads atomic.Int64
	loader := func(context.Context) ([]byte, error) {
		loads.Add(1)
		return []byte("loaded"), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrPut(ctx, "artifact", loader)
			if err != nil {
				t.Errorf("GetOrPut failed: %v", err)
				return
			}
			if string(got) != "loaded" {
				t.Errorf("GetOrPut returned %q", got)
			}
		}()
	}
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("expected a single load, got %d", n)
	}
	if c.Len() != 1 {
		t.Errorf("expected one entry, got %d", c.Len())
	}

	// Hits never run the loader again.
	if _, err := c.GetOrPut(ctx, "artifact", loader); err != nil {
		t.Fatalf("GetOrPut hit failed: %v", err)
	}
	if n := loads.Load(); n != 1 {
		t.Errorf("loader ran on a hit: %d loads", n)
	}
}

func TestGetOrPut_LoaderError(t *testing.T) {
	c := newCache(t, fbcache.Config{KeyStrategy: fbcache.StructuredKeys})

	errLoad := errors.New("upstream gone")
	_, err := c.GetOrPut(context.Background(), "artifact", func(context.Context) ([]byte, error) {
		return nil, errLoad
	})
	if !errors.Is(err, errLoad) {
		t.Errorf("expected loader error to surface, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed load must not commit an entry, len=%d", c.Len())
	}
}

func TestClearEmptiesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := newCache(t, fbcache.Config{Dir: dir})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.Put(ctx, "", []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, got %d entries", len(entries))
	}
}

func TestStats(t *testing.T) {
	c := newCache(t, fbcache.Config{Capacity: 3})
	ctx := context.Background()

	if _, err := c.Put(ctx, "", []byte("abcd")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if c.Capacity() != 3 {
		t.Errorf("Capacity = %d, want 3", c.Capacity())
	}
	if c.Size() != 4 {
		t.Errorf("Size = %d, want 4", c.Size())
	}
	if c.Mode() != fbcache.ModeEntries {
		t.Errorf("Mode = %v, want ModeEntries", c.Mode())
	}
}
