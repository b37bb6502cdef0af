// Package dedupe tracks in-flight work keys so the same request is not
// processed twice while a first copy is still pending.
package dedupe

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records keys of pending work.
type Deduper interface {
	// SeenAndRecord atomically reports whether key is already recorded and
	// records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key once its work finished or was abandoned.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// ContentKey derives a stable key for an upload: the owner plus the hash of
// every part in order.
func ContentKey(owner string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(owner))
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return owner + ":" + hex.EncodeToString(h.Sum(nil))
}

// inMemoryDeduper keeps keys in a map with an insertion-ordered list. When
// bounded and full, the oldest key is evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.keys) >= d.maxSize {
		d.evictOldest()
	}
	d.keys[key] = d.order.PushFront(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.keys, el.Value.(string))
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.keys))
}
