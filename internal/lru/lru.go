// Package lru implements the LRU eviction manager (component C5). It
// tracks per-file access recency with O(1) promotion on every touch, and
// evicts the least recently used files once the store's memory footprint
// crosses the configured threshold.
//
// Recency is tracked with a doubly linked list indexed by FileID, giving
// O(1) promotion and eviction (see DESIGN.md for the redesign rationale).
package lru

import (
	"container/list"
	"sync"

	"github.com/kensave/CodeCortX-MCP/internal/types"
)

type entry struct {
	fileID types.FileID
	path   string
}

// Tracker records file access order. It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	order *list.List
	index map[types.FileID]*list.Element
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		order: list.New(),
		index: make(map[types.FileID]*list.Element),
	}
}

// Touch records an access to fileID, moving it to the most-recently-used
// end of the order in O(1).
func (t *Tracker) Touch(fileID types.FileID, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.index[fileID]; ok {
		t.order.MoveToBack(el)
		return
	}
	el := t.order.PushBack(entry{fileID: fileID, path: path})
	t.index[fileID] = el
}

// Remove drops fileID from tracking, e.g. because the file was deleted.
func (t *Tracker) Remove(fileID types.FileID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.index[fileID]; ok {
		t.order.Remove(el)
		delete(t.index, fileID)
	}
}

// LeastRecent returns up to n of the least-recently-used file IDs, oldest
// first.
func (t *Tracker) LeastRecent(n int) []types.FileID {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.FileID, 0, n)
	for el := t.order.Front(); el != nil && len(out) < n; el = el.Next() {
		out = append(out, el.Value.(entry).fileID)
	}
	return out
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// MemorySource reports the store's current memory footprint, so the
// eviction manager can decide whether to act without owning the store
// itself.
type MemorySource interface {
	MemoryBytes() int64
	RemoveFile(types.FileID)
}

// Manager ties a Tracker to a budget: eviction starts once memory use
// reaches Threshold*MaxMemoryBytes and reclaims least-recent files until
// use drops back below that same line.
type Manager struct {
	Tracker        *Tracker
	MaxMemoryBytes int64
	Threshold      float64
}

// NewManager builds a Manager for a given memory budget in megabytes and an
// eviction threshold expressed as a fraction of that budget (e.g. 0.8).
func NewManager(maxMemoryMB int, threshold float64) *Manager {
	return &Manager{
		Tracker:        NewTracker(),
		MaxMemoryBytes: int64(maxMemoryMB) * 1024 * 1024,
		Threshold:      threshold,
	}
}

// EvictIfNeeded removes least-recently-used files from store until memory
// use drops below Threshold*MaxMemoryBytes. The same line both triggers
// the sweep and bounds it, so any configured threshold, however small,
// actually reclaims down past it. Returns the file IDs it evicted.
func (m *Manager) EvictIfNeeded(store MemorySource) []types.FileID {
	if m.MaxMemoryBytes <= 0 {
		return nil
	}

	target := int64(float64(m.MaxMemoryBytes) * m.Threshold)
	if store.MemoryBytes() < target {
		return nil
	}

	var evicted []types.FileID
	for store.MemoryBytes() >= target {
		victims := m.Tracker.LeastRecent(1)
		if len(victims) == 0 {
			break
		}
		victim := victims[0]
		store.RemoveFile(victim)
		m.Tracker.Remove(victim)
		evicted = append(evicted, victim)
	}
	return evicted
}
