/*
reconcile.go - Leave-to-schedule reconciliation

PURPOSE:
  Converts an approved leave request into schedule mutations, and reverses
  them on cancellation. This is the core business rule of the planner.

APPLY RULES:
  - Only approved requests mutate anything; others are a warned no-op.
  - Every calendar day in the inclusive range is visited; Sundays are
    skipped (never scheduled, never mutated).
  - A touched week with no stored schedule is materialized from
    DefaultWeek first, so marking one day off does not lose the rest of
    the week's template.
  - Every slot on a covered day is set to off; other fields and other
    days are preserved.

CANCEL RULES:
  - Same iteration and Sunday skip.
  - Only slots currently off revert to working. A slot authored as break
    stays break.
  - Absent weeks are skipped; nothing to cancel implies nothing to create.

KNOWN LIMITATION:
  Off slots are not tagged with the owning request, so cancelling one of
  two overlapping approved requests reverts days the other still covers.
  The surrounding approval flow avoids overlapping approvals; exact
  reversal would require per-slot request tagging.

SEE ALSO:
  - key.go: Key derivation and day naming
  - store.go: Persistence and notification contracts
*/
package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-planner/leave"
)

// =============================================================================
// PURE RECONCILIATION
// =============================================================================

// ApplyLeave returns a new snapshot with the request's working days
// marked off. The input snapshot is never mutated. A non-approved
// request returns the snapshot unchanged together with ErrNotApproved.
func ApplyLeave(agentID string, req leave.Request, snap Snapshot) (Snapshot, error) {
	if !req.Approved() {
		return snap, ErrNotApproved
	}

	start, end, err := req.Range()
	if err != nil {
		return snap, err
	}

	out := snap.Clone()
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}

		key := Key(agentID, d)
		week, ok := out[key]
		if !ok {
			week = DefaultWeek()
		}

		day := DayName(d)
		for i := range week {
			if week[i].Day == day {
				week[i].Status = StatusOff
			}
		}
		out[key] = week
	}
	return out, nil
}

// CancelLeave returns a new snapshot with the request's days reverted:
// off slots become working again, break and working slots are left
// alone. Weeks absent from the snapshot are skipped.
func CancelLeave(agentID string, req leave.Request, snap Snapshot) (Snapshot, error) {
	start, end, err := req.Range()
	if err != nil {
		return snap, err
	}

	out := snap.Clone()
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}

		key := Key(agentID, d)
		week, ok := out[key]
		if !ok {
			continue
		}

		day := DayName(d)
		for i := range week {
			if week[i].Day == day && week[i].Status == StatusOff {
				week[i].Status = StatusWorking
			}
		}
		out[key] = week
	}
	return out, nil
}

// =============================================================================
// RECONCILER SERVICE - Persistence and notification around the pure core
// =============================================================================

// Reconciler wires the pure reconciliation functions to a snapshot store
// and a change notifier.
type Reconciler struct {
	Store    SnapshotStore
	Notifier Notifier
	Logger   *zap.Logger
}

func NewReconciler(store SnapshotStore, notifier Notifier, logger *zap.Logger) *Reconciler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{Store: store, Notifier: notifier, Logger: logger}
}

// Apply loads the current snapshot, applies the request, saves, and
// notifies. A non-approved request is a warned no-op returning the
// stored snapshot unchanged. A failed save returns a *SaveError carrying
// the computed snapshot.
func (r *Reconciler) Apply(ctx context.Context, agentID string, req leave.Request) (Snapshot, error) {
	snap, err := r.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := ApplyLeave(agentID, req, snap)
	if errors.Is(err, ErrNotApproved) {
		r.Logger.Warn("apply called with non-approved request",
			zap.String("request_id", req.ID),
			zap.String("agent_id", agentID),
			zap.String("status", string(req.Status)))
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	return r.persist(ctx, updated)
}

// Cancel loads the current snapshot, reverts the request's days, saves,
// and notifies.
func (r *Reconciler) Cancel(ctx context.Context, agentID string, req leave.Request) (Snapshot, error) {
	snap, err := r.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := CancelLeave(agentID, req, snap)
	if err != nil {
		return nil, err
	}

	return r.persist(ctx, updated)
}

func (r *Reconciler) persist(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if err := r.Store.Save(ctx, snap); err != nil {
		return snap, &SaveError{Snapshot: snap, Err: err}
	}
	r.Notifier.Notify(EventUpdated, snap)
	return snap, nil
}
