package nav

import (
	"sync"
	"time"
)

// Entry is one recorded navigation
type Entry struct {
	Page      Page
	Timestamp time.Time
}

// History is a back/forward stack with a cursor.
type History struct {
	mu      sync.RWMutex
	items   []Entry
	cursor  int
	maxSize int
}

// NewHistory creates a history that keeps at most maxSize entries (0 = 100).
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &History{cursor: -1, maxSize: maxSize}
}

// Push records p after the cursor, discarding forward entries.
func (h *History) Push(p Page) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items[:h.cursor+1], Entry{Page: p, Timestamp: time.Now()})
	if len(h.items) > h.maxSize {
		h.items = h.items[len(h.items)-h.maxSize:]
	}
	h.cursor = len(h.items) - 1
}

// Peek returns the entry delta steps from the cursor without moving.
func (h *History) Peek(delta int) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i := h.cursor + delta
	if i < 0 || i >= len(h.items) {
		return Entry{}, false
	}
	return h.items[i], true
}

// Move shifts the cursor by delta when the target exists.
func (h *History) Move(delta int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.cursor + delta
	if i < 0 || i >= len(h.items) {
		return false
	}
	h.cursor = i
	return true
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Pages lists recorded pages, oldest first.
func (h *History) Pages() []Page {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Page, len(h.items))
	for i, e := range h.items {
		out[i] = e.Page
	}
	return out
}

// Restore replaces the history with pages and puts the cursor on the last.
func (h *History) Restore(pages []Page) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = h.items[:0]
	now := time.Now()
	for _, p := range pages {
		if p.Known() {
			h.items = append(h.items, Entry{Page: p, Timestamp: now})
		}
	}
	if len(h.items) > h.maxSize {
		h.items = h.items[len(h.items)-h.maxSize:]
	}
	h.cursor = len(h.items) - 1
}
