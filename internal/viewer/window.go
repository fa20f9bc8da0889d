package viewer

import (
	"sync"

	"github.com/anmol-28/livedatatest/internal/model"
)

// Window holds the most recently rendered events, newest first. Insertion is
// always at the front; once the capacity is exceeded the single oldest entry
// is evicted from the back.
type Window struct {
	mu       sync.RWMutex
	capacity int
	events   []model.PositionEvent
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		events:   make([]model.PositionEvent, 0, capacity),
	}
}

// Insert places e at the front of the window, evicting the tail entry if the
// window is full.
func (w *Window) Insert(e model.PositionEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.events = append([]model.PositionEvent{e}, w.events...)
	if len(w.events) > w.capacity {
		w.events = w.events[:w.capacity]
	}
}

// Events returns a copy of the window contents, newest first.
func (w *Window) Events() []model.PositionEvent {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]model.PositionEvent, len(w.events))
	copy(out, w.events)
	return out
}

// Len returns the current number of entries.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.events)
}

// Capacity returns the configured bound.
func (w *Window) Capacity() int {
	return w.capacity
}
