package nav

import "sync"

type historyEntry struct {
	state State
	path  string
}

type popListener struct {
	fn func(string)
}

// MemoryHistory is an in-process History with a browser-like entry stack.
// It backs server-side renders and tests, where there is no real browser.
type MemoryHistory struct {
	mu        sync.Mutex
	entries   []historyEntry
	index     int
	listeners []*popListener
}

// NewMemoryHistory creates a history whose single entry is location.
func NewMemoryHistory(location string) *MemoryHistory {
	if location == "" {
		location = "/"
	}
	return &MemoryHistory{
		entries: []historyEntry{{path: location}},
	}
}

// Location implements History.
func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].path
}

// Push implements History.
func (h *MemoryHistory) Push(state State, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], historyEntry{state: state, path: path})
	h.index++
}

// Replace implements History.
func (h *MemoryHistory) Replace(state State, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = historyEntry{state: state, path: path}
}

// OnPopState implements History.
func (h *MemoryHistory) OnPopState(fn func(location string)) func() {
	l := &popListener{fn: fn}

	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, other := range h.listeners {
			if other == l {
				h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// Back moves one entry back and fires popstate. It reports false at the
// first entry, where browsers do nothing.
func (h *MemoryHistory) Back() bool {
	return h.Go(-1)
}

// Forward moves one entry forward and fires popstate.
func (h *MemoryHistory) Forward() bool {
	return h.Go(1)
}

// Go moves delta entries and fires popstate. Out-of-range moves are ignored.
func (h *MemoryHistory) Go(delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	location := h.entries[target].path
	listeners := make([]*popListener, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, l := range listeners {
		l.fn(location)
	}
	return true
}

// Len returns the number of entries in the stack.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// State returns the state stored with the current entry.
func (h *MemoryHistory) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].state
}

var _ History = (*MemoryHistory)(nil)
