package index

import (
	"sync"
	"time"
)

// RangeIndex holds the candidate ranges currently in use by the redirect endpoint.
// The list is replaced as a whole on reload; readers always get a copy.
type RangeIndex struct {
	mu         sync.RWMutex
	ranges     []string
	source     string    // file path, or "defaults"
	lastReload time.Time // Timestamp of last successful reload
}

// NewRangeIndex creates an empty index
func NewRangeIndex() *RangeIndex {
	return &RangeIndex{}
}

// Update replaces the candidate list
func (idx *RangeIndex) Update(ranges []string, source string) {
	cp := append([]string(nil), ranges...)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.ranges = cp
	idx.source = source
	idx.lastReload = time.Now()
}

// Ranges returns the candidates in try order
func (idx *RangeIndex) Ranges() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]string(nil), idx.ranges...)
}

// Count returns the number of candidates
func (idx *RangeIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.ranges)
}

// Source returns where the current list was loaded from
func (idx *RangeIndex) Source() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.source
}

// GetLastReload returns the timestamp of the last update
func (idx *RangeIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
