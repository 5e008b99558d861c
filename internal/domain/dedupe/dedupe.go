// Package dedupe tracks which attendee pairs are already connected.
package dedupe

import (
	"sync"
	"sync/atomic"
)

// Deduper records seen attendee pairs. Pairs are unordered: (a, b) and (b, a)
// are the same pair.
type Deduper interface {
	// SeenAndRecord atomically checks whether the pair was seen and records it if not.
	// Returns true if the pair was already recorded.
	SeenAndRecord(a, b string) bool

	// Unrecord releases a pair so it can be recorded again.
	Unrecord(a, b string)

	Size() int64
}

// pairKey is the canonical, order-independent key for a pair.
type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// pairDeduper implements Deduper with a mutex-guarded set. It is safe to share
// across goroutines, so concurrent producers can reserve pairs without conflicts.
type pairDeduper struct {
	mu   sync.Mutex
	seen map[pairKey]struct{}
	size atomic.Int64
}

// NewPairDeduper creates an empty pair deduper.
func NewPairDeduper(opts ...Option) Deduper {
	d := &pairDeduper{}
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	d.seen = make(map[pairKey]struct{}, cfg.expected)
	return d
}

func (d *pairDeduper) SeenAndRecord(a, b string) bool {
	k := keyOf(a, b)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[k]; ok {
		return true
	}
	d.seen[k] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *pairDeduper) Unrecord(a, b string) {
	k := keyOf(a, b)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[k]; ok {
		delete(d.seen, k)
		d.size.Add(-1)
	}
}

func (d *pairDeduper) Size() int64 {
	return d.size.Load()
}
