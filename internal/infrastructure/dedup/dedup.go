// Package dedup provides a bloom-filter-backed spam suppressor for the
// audit log: a gateway stuck failing the same probe thousands of times in
// a run would otherwise fill the JSONL trail with identical lines.
package dedup

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter reports whether a key has been seen before. A key that was seen
// is always reported as seen; a new key is occasionally reported as seen
// too, at roughly the configured false-positive rate.
type Filter struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n expected distinct keys at the
// given false-positive rate.
func NewFilter(n uint, falsePositiveRate float64) *Filter {
	return &Filter{filter: bloom.NewWithEstimates(n, falsePositiveRate)}
}

// SeenBefore tests and records key in one atomic step: it returns true if
// key was already present, and unconditionally adds it either way.
func (f *Filter) SeenBefore(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter.TestAndAdd([]byte(key))
}
