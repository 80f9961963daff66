package lru

import (
	"container/list"
	"sync"

	"github.com/croldan/fbcache/internal/eviction"
)

// LRU implements the eviction.Policy interface using Least Recently Used
// logic. It is kept as an alternate to the default LFU policy.
type LRU struct {
	mu    sync.Mutex
	list  *list.List
	items map[string]*list.Element
}

func init() {
	eviction.Register("lru", func() eviction.Policy {
		return New()
	})
}

func New() *LRU {
	return &LRU{
		list:  list.New(),
		items: make(map[string]*list.Element),
	}
}

func (l *LRU) RecordAccess(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.list.MoveToFront(elem)
		return
	}
	l.items[key] = l.list.PushFront(key)
}

func (l *LRU) EvictCandidate() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem := l.list.Back()
	if elem == nil {
		return "", false
	}
	return elem.Value.(string), true
}

func (l *LRU) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.list.Remove(elem)
		delete(l.items, key)
	}
}

func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
