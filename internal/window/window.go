// Package window implements the rolling event buffer the agent observes.
package window

import (
	"sync"
	"time"

	"github.com/paymentops/vigil/internal/model"
)

// Default bounds for the event window.
const (
	DefaultDuration  = 60 * time.Second
	DefaultMaxEvents = 10000
)

// Window retains recent transaction events and evicts them lazily by
// age. Eviction happens at insert and read time, never on a timer. The
// buffer is additionally bounded by a maximum event count so that
// clock-skewed or timestamp-heavy inputs cannot grow it without limit.
//
// Window is safe for concurrent use: the run loop ticks on a timer
// while an event source may feed from another goroutine.
type Window struct {
	events    []model.TransactionEvent
	duration  time.Duration
	maxEvents int
	mu        sync.Mutex
}

// New creates a window retaining events no older than duration, holding
// at most maxEvents. Non-positive arguments fall back to the defaults.
func New(duration time.Duration, maxEvents int) *Window {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &Window{
		duration:  duration,
		maxEvents: maxEvents,
	}
}

// Add appends one event to the window. An event with a zero timestamp
// is stamped with the current time rather than treated as expired.
func (w *Window) Add(event model.TransactionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.events = append(w.events, event)
	w.evictLocked(time.Now())
}

// Snapshot returns a copy of all retained events no older than the
// window duration relative to now. The returned slice is owned by the
// caller; later mutations of the window do not affect it.
func (w *Window) Snapshot(now time.Time) []model.TransactionEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evictLocked(now)

	out := make([]model.TransactionEvent, len(w.events))
	copy(out, w.events)
	return out
}

// Len returns the number of events currently retained relative to now.
func (w *Window) Len(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evictLocked(now)
	return len(w.events)
}

// Duration returns the retention period of the window.
func (w *Window) Duration() time.Duration {
	return w.duration
}

// Clear drops every retained event.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = nil
}

// evictLocked drops events older than the window duration, then trims
// the oldest events beyond the count bound. A full filter pass keeps the
// window correct even when events arrive out of timestamp order.
func (w *Window) evictLocked(now time.Time) {
	cutoff := now.Add(-w.duration)

	kept := w.events[:0]
	for _, e := range w.events {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	w.events = kept

	if len(w.events) > w.maxEvents {
		over := len(w.events) - w.maxEvents
		w.events = append(w.events[:0], w.events[over:]...)
	}
}
