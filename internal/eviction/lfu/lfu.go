package lfu

import (
	"container/list"
	"sync"

	"github.com/croldan/fbcache/internal/eviction"
)

// LFU implements the eviction.Policy interface using Least Frequently Used
// logic with O(1) frequency buckets.
//
// Each bucket is a list of keys sharing one frequency, ordered by insertion
// sequence (front = newest). The eviction candidate is the back of the
// minimum-frequency bucket, so ties between equally-infrequent keys break
// toward the key inserted longest ago.
type LFU struct {
	mu      sync.Mutex
	buckets map[int64]*list.List
	items   map[string]*list.Element
	minFreq int64
	nextSeq uint64
}

type entry struct {
	key  string
	freq int64
	seq  uint64
}

func init() {
	eviction.Register("lfu", func() eviction.Policy {
		return New()
	})
}

func New() *LFU {
	return &LFU{
		buckets: make(map[int64]*list.List),
		items:   make(map[string]*list.Element),
	}
}

func (l *LFU) RecordAccess(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.promote(elem)
		return
	}

	ent := &entry{key: key, freq: 1, seq: l.nextSeq}
	l.nextSeq++
	l.items[key] = l.bucket(1).PushFront(ent)
}

// promote moves an entry into the next frequency bucket, keeping the
// bucket's insertion-sequence ordering intact.
func (l *LFU) promote(elem *list.Element) {
	ent := elem.Value.(*entry)
	l.unlink(elem)

	ent.freq++
	l.items[ent.key] = insertOrdered(l.bucket(ent.freq), ent)
}

func (l *LFU) EvictCandidate() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) == 0 {
		return "", false
	}

	elem := l.buckets[l.minFreq].Back()
	return elem.Value.(*entry).key, true
}

func (l *LFU) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[key]; ok {
		l.unlink(elem)
		delete(l.items, key)
	}
}

func (l *LFU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// unlink removes the element from its bucket, dropping the bucket when it
// empties and recomputing minFreq as needed.
func (l *LFU) unlink(elem *list.Element) {
	ent := elem.Value.(*entry)
	bucket := l.buckets[ent.freq]
	bucket.Remove(elem)
	if bucket.Len() > 0 {
		return
	}
	delete(l.buckets, ent.freq)
	if ent.freq != l.minFreq {
		return
	}
	l.minFreq = 0
	for freq := range l.buckets {
		if l.minFreq == 0 || freq < l.minFreq {
			l.minFreq = freq
		}
	}
}

func (l *LFU) bucket(freq int64) *list.List {
	b, ok := l.buckets[freq]
	if !ok {
		b = list.New()
		l.buckets[freq] = b
	}
	if l.minFreq == 0 || freq < l.minFreq {
		l.minFreq = freq
	}
	return b
}

// insertOrdered places ent so the list stays ordered by descending seq from
// front to back. Promotions usually land in an empty or tiny bucket, so the
// scan from the back is short in practice.
func insertOrdered(l *list.List, ent *entry) *list.Element {
	for e := l.Back(); e != nil; e = e.Prev() {
		if e.Value.(*entry).seq > ent.seq {
			return l.InsertAfter(ent, e)
		}
	}
	return l.PushFront(ent)
}
