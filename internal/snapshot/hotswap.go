package snapshot

import "sync"

// HotSwap is a thread-safe holder that lets a long-running host replace the
// active snapshot atomically. Readers always see a complete snapshot, never
// a half-built one.
type HotSwap struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewHotSwap(initial *Snapshot) *HotSwap {
	return &HotSwap{current: initial}
}

// Current returns the active snapshot.
func (h *HotSwap) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Swap atomically replaces the active snapshot. The old snapshot stays valid
// for readers that already hold it.
func (h *HotSwap) Swap(next *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = next
}
