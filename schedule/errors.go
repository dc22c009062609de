/*
errors.go - Error types for schedule reconciliation

ERROR CATEGORIES:
  1. Caller-contract warnings - non-approved request applied (no-op)
  2. Data errors - malformed keys or dates in stored/request data
  3. Persistence errors - the computation succeeded but the save did not

SAVE vs COMPUTE:
  A reconciliation either completes its full date range in memory or
  fails before anything is written. When the in-memory result is good but
  the store rejects it, the error is a *SaveError carrying the computed
  snapshot, so callers can retry the save without recomputing.
*/
package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotApproved is returned when applying a request that is not in
	// approved status. The snapshot is returned unchanged; this is a
	// caller-contract warning, not a fatal condition.
	ErrNotApproved = errors.New("leave request is not approved")

	// ErrBadKey is returned for schedule keys that do not conform to the
	// canonical "{agentId}_{YYYY-MM-DD-monday}" format.
	ErrBadKey = errors.New("malformed schedule key")
)

// SaveError reports that a computed snapshot could not be persisted.
// The computation itself succeeded; Snapshot holds the result.
type SaveError struct {
	Snapshot Snapshot
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to persist schedule snapshot: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
