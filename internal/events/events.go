// Package events is a small in-process pub/sub bus for snapshot lifecycle
// events.
package events

import (
	"sync"
	"time"

	"librarybookings/internal/logging"
	"librarybookings/internal/snapshot"
)

// Type names an event.
type Type string

const (
	// SnapshotLoaded carries a freshly loaded snapshot.
	SnapshotLoaded Type = "snapshot.loaded"
	// SnapshotFailed carries the error of a failed reload.
	SnapshotFailed Type = "snapshot.failed"
)

// Event is a lightweight lifecycle event.
type Event struct {
	Type      Type
	Snapshot  *snapshot.Snapshot
	Err       error
	CreatedAt time.Time
	// Initial marks the load done at startup, before any reload.
	Initial bool
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[Type][]Handler
	mu          sync.RWMutex
	logger      logging.Logger
}

// NewBus constructs an empty bus. Handler errors are logged to logger.
func NewBus(logger logging.Logger) *Bus {
	return &Bus{
		subscribers: make(map[Type][]Handler),
		logger:      logging.OrNop(logger),
	}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs the subscribers of the event type in registration order and
// returns how many of them failed.
func (b *Bus) Publish(event Event) int {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	failed := 0
	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil {
			failed++
			b.logger.Error("event handler failed", "event", string(event.Type), "error", err.Error())
		}
	}
	return failed
}
