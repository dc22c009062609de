// Package store provides SnapshotStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/leave-planner/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory snapshot store (for testing/dev)
// =============================================================================

// Memory holds the schedule snapshot in process memory. It is the
// stand-in for the browser's local storage: a single well-known slot
// holding the full key-to-slots mapping.
type Memory struct {
	mu   sync.RWMutex
	snap schedule.Snapshot
}

func NewMemory() *Memory {
	return &Memory{snap: schedule.Snapshot{}}
}

// Load returns a deep copy of the stored snapshot, so callers can mutate
// their copy freely.
func (m *Memory) Load(_ context.Context) (schedule.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone(), nil
}

// Save replaces the stored snapshot wholesale. Last writer wins.
func (m *Memory) Save(_ context.Context, snap schedule.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}
