package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/croldan/fbcache"
	"github.com/croldan/fbcache/internal/errutil"
)

// CacheHandler exposes a cache over HTTP.
//
// Routes:
//
//	POST   /cache          store body under a generated key, returns the key
//	PUT    /cache/{key}    store body under key
//	GET    /cache/{key}    return the stored bytes
//	DELETE /cache/{key}    remove the entry
//	DELETE /cache          clear the cache
//	GET    /stats          index size, capacity and byte usage
type CacheHandler struct {
	Cache *fbcache.Cache
}

func NewCacheHandler(cache *fbcache.Cache) *CacheHandler {
	return &CacheHandler{Cache: cache}
}

func (h *CacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "stats" && r.Method == http.MethodGet:
		h.stats(w, r)
	case len(parts) == 1 && parts[0] == "cache":
		h.collection(w, r)
	case len(parts) == 2 && parts[0] == "cache":
		h.entry(w, r, parts[1])
	default:
		http.Error(w, "Invalid path. Expected /cache, /cache/{key} or /stats", http.StatusBadRequest)
	}
}

func (h *CacheHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.put(w, r, "")
	case http.MethodDelete:
		if err := h.Cache.Clear(r.Context()); err != nil {
			errutil.ReportError(err, "Failed to clear cache")
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CacheHandler) entry(w http.ResponseWriter, r *http.Request, key string) {
	switch r.Method {
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodGet, http.MethodHead:
		value, err := h.Cache.Get(r.Context(), key)
		if err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(value)))
		if r.Method == http.MethodHead {
			return
		}
		if _, err := w.Write(value); err != nil {
			errutil.LogMsg(err, "Failed to write response", "key", key)
		}
	case http.MethodDelete:
		if err := h.Cache.Remove(r.Context(), key); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CacheHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	value, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	stored, err := h.Cache.Put(r.Context(), key, value)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", "/cache/"+stored)
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintln(w, stored)
}

func (h *CacheHandler) stats(w http.ResponseWriter, _ *http.Request) {
	mode := "entries"
	if h.Cache.Mode() == fbcache.ModeBytes {
		mode = "bytes"
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"len":      h.Cache.Len(),
		"capacity": h.Cache.Capacity(),
		"size":     h.Cache.Size(),
		"mode":     mode,
	})
	errutil.LogMsg(err, "Failed to encode stats")
}

// writeError maps cache errors onto HTTP statuses.
func (h *CacheHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fbcache.ErrKeyNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, fbcache.ErrKeyCollision):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, fbcache.ErrValueTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, fbcache.ErrInvalidKey), errors.Is(err, fbcache.ErrKeyRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		errutil.ReportError(err, "Cache operation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
