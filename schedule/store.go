/*
store.go - Boundary contracts for schedule persistence and change fan-out

PURPOSE:
  The reconciler does not care where snapshots live (SQLite, memory, a
  remote service) or who listens for changes. It talks to these two
  interfaces; implementations are injected by the caller.

NOTIFICATION:
  Notify fires after the corresponding save completes. No ordering
  guarantee beyond that. The notifier is an explicit dependency passed
  into the Reconciler rather than a process-wide emitter, so the core
  carries no ambient state.

IMPLEMENTATIONS:
  - store/memory.go: In-memory snapshot store (testing/dev)
  - store/sqlite: SQLite-backed snapshot store (production)
*/
package schedule

import (
	"context"
	"sync"
)

// EventUpdated is the event name published after a reconciliation saves
// an updated snapshot.
const EventUpdated = "schedules:updated"

// SnapshotStore loads and saves the full schedule snapshot.
type SnapshotStore interface {
	// Load returns the current snapshot. A missing store yields an empty
	// (non-nil) snapshot, not an error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the stored snapshot wholesale (last-writer-wins).
	Save(ctx context.Context, snap Snapshot) error
}

// Notifier publishes schedule-change events to interested subscribers.
type Notifier interface {
	Notify(event string, snap Snapshot)
}

// =============================================================================
// FAN-OUT NOTIFIER
// =============================================================================

// FanOut is a Notifier that dispatches synchronously to every subscribed
// function. Subscribers must not block.
type FanOut struct {
	mu   sync.RWMutex
	subs []func(event string, snap Snapshot)
}

func NewFanOut() *FanOut { return &FanOut{} }

// Subscribe registers fn for all future notifications.
func (f *FanOut) Subscribe(fn func(event string, snap Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *FanOut) Notify(event string, snap Snapshot) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, fn := range f.subs {
		fn(event, snap)
	}
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Snapshot) {}
