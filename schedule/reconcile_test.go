package schedule_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-planner/leave"
	"github.com/warp/leave-planner/schedule"
	"github.com/warp/leave-planner/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func approvedLeave(leaveType leave.Type, startDate, endDate string) leave.Request {
	return leave.Request{
		ID:        "req-1",
		AgentID:   "A1",
		Type:      leaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    leave.StatusApproved,
	}
}

// slotsForDay filters a week down to one day's slots.
func slotsForDay(week []schedule.Slot, day string) []schedule.Slot {
	var out []schedule.Slot
	for _, s := range week {
		if s.Day == day {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// DEFAULT WEEK TEMPLATE
// =============================================================================

func TestDefaultWeek_SixteenSlots(t *testing.T) {
	week := schedule.DefaultWeek()
	require.Len(t, week, 16)

	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		assert.Len(t, slotsForDay(week, day), 3, day)
	}
	assert.Len(t, slotsForDay(week, "Saturday"), 1)
	assert.Empty(t, slotsForDay(week, "Sunday"), "the template never schedules Sunday")
}

func TestDefaultWeek_SlotShape(t *testing.T) {
	week := schedule.DefaultWeek()

	monday := slotsForDay(week, "Monday")
	require.Len(t, monday, 3)
	assert.Equal(t, schedule.Slot{Day: "Monday", Time: schedule.LabelMorning, Status: schedule.StatusWorking, StartTime: "08:00", EndTime: "12:00"}, monday[0])
	assert.Equal(t, schedule.Slot{Day: "Monday", Time: schedule.LabelMidday, Status: schedule.StatusBreak, StartTime: "12:00", EndTime: "13:00"}, monday[1])
	assert.Equal(t, schedule.Slot{Day: "Monday", Time: schedule.LabelAfternoon, Status: schedule.StatusWorking, StartTime: "13:00", EndTime: "17:00"}, monday[2])

	saturday := slotsForDay(week, "Saturday")
	require.Len(t, saturday, 1)
	assert.Equal(t, schedule.Slot{Day: "Saturday", Time: schedule.LabelMorning, Status: schedule.StatusWorking, StartTime: "08:00", EndTime: "13:00"}, saturday[0])
}

// =============================================================================
// APPLY
// =============================================================================

func TestApplyLeave_NotApproved_NoOp(t *testing.T) {
	// GIVEN: A pending request
	// WHEN: Applying it
	// THEN: The snapshot is returned unchanged with ErrNotApproved
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-04")
	req.Status = leave.StatusPending

	snap := schedule.Snapshot{}
	got, err := schedule.ApplyLeave("A1", req, snap)

	assert.ErrorIs(t, err, schedule.ErrNotApproved)
	assert.Empty(t, got)
}

func TestApplyLeave_MaterializesDefaultWeek(t *testing.T) {
	// GIVEN: An empty snapshot
	// WHEN: Applying a Monday-Tuesday leave
	// THEN: The whole week template is materialized, with only the two
	//       covered days off
	req := approvedLeave(leave.TypeRTT, "2024-06-03", "2024-06-04")

	got, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)

	week, ok := got["A1_2024-06-03"]
	require.True(t, ok, "week should be created under the canonical key")
	require.Len(t, week, 16, "the rest of the template must not be lost")

	for _, s := range slotsForDay(week, "Monday") {
		assert.Equal(t, schedule.StatusOff, s.Status)
	}
	for _, s := range slotsForDay(week, "Tuesday") {
		assert.Equal(t, schedule.StatusOff, s.Status)
	}
	wednesday := slotsForDay(week, "Wednesday")
	assert.Equal(t, schedule.StatusWorking, wednesday[0].Status, "uncovered days stay on the template")
	assert.Equal(t, schedule.StatusBreak, wednesday[1].Status)
}

func TestApplyLeave_PreservesSlotFields(t *testing.T) {
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-03")

	got, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)

	monday := slotsForDay(got["A1_2024-06-03"], "Monday")
	require.Len(t, monday, 3)
	assert.Equal(t, "08:00", monday[0].StartTime, "times survive the status change")
	assert.Equal(t, "12:00", monday[0].EndTime)
	assert.Equal(t, schedule.LabelMorning, monday[0].Time)
}

func TestApplyLeave_SkipsSunday(t *testing.T) {
	// GIVEN: A leave spanning Saturday 2024-01-06 through Sunday 2024-01-07
	// WHEN: Applying it
	// THEN: Only Saturday's single slot goes off; Sunday produces nothing
	req := approvedLeave(leave.TypePaid, "2024-01-06", "2024-01-07")

	got, err := schedule.ApplyLeave("A2", req, schedule.Snapshot{})
	require.NoError(t, err)
	require.Len(t, got, 1, "only the one touched week exists")

	week := got["A2_2024-01-01"]
	require.Len(t, week, 16)

	saturday := slotsForDay(week, "Saturday")
	require.Len(t, saturday, 1)
	assert.Equal(t, schedule.StatusOff, saturday[0].Status)

	assert.Empty(t, slotsForDay(week, "Sunday"), "no Sunday slot may ever appear")

	offCount := 0
	for _, s := range week {
		if s.Status == schedule.StatusOff {
			offCount++
		}
	}
	assert.Equal(t, 1, offCount, "exactly the Saturday slot is off")
}

func TestApplyLeave_SpansMultipleWeeks(t *testing.T) {
	// Wednesday 2024-06-05 through Tuesday 2024-06-11 touches two weeks.
	req := approvedLeave(leave.TypePaid, "2024-06-05", "2024-06-11")

	got, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	week1 := got["A1_2024-06-03"]
	week2 := got["A1_2024-06-10"]
	require.NotNil(t, week1)
	require.NotNil(t, week2)

	assert.Equal(t, schedule.StatusOff, slotsForDay(week1, "Friday")[0].Status)
	assert.Equal(t, schedule.StatusOff, slotsForDay(week2, "Monday")[0].Status)
	assert.Equal(t, schedule.StatusWorking, slotsForDay(week2, "Wednesday")[0].Status)
}

func TestApplyLeave_DoesNotMutateInput(t *testing.T) {
	snap := schedule.Snapshot{"A1_2024-06-03": schedule.DefaultWeek()}
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-03")

	_, err := schedule.ApplyLeave("A1", req, snap)
	require.NoError(t, err)

	monday := slotsForDay(snap["A1_2024-06-03"], "Monday")
	assert.Equal(t, schedule.StatusWorking, monday[0].Status, "caller's snapshot must stay untouched")
}

func TestApplyLeave_InvertedRange_ZeroIterations(t *testing.T) {
	req := approvedLeave(leave.TypePaid, "2024-06-10", "2024-06-03")

	got, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, got, "start after end means nothing to do")
}

func TestApplyLeave_MalformedDate(t *testing.T) {
	req := approvedLeave(leave.TypePaid, "junk", "2024-06-03")

	_, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	assert.ErrorIs(t, err, leave.ErrMalformedDate)
}

// =============================================================================
// CANCEL
// =============================================================================

func TestApplyThenCancel_RestoresWorkingSlots(t *testing.T) {
	// GIVEN: An applied leave over a default week
	// WHEN: Cancelling the same request
	// THEN: Every slot that was working before is working again
	req := approvedLeave(leave.TypeRTT, "2024-06-03", "2024-06-04")

	applied, err := schedule.ApplyLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)

	reverted, err := schedule.CancelLeave("A1", req, applied)
	require.NoError(t, err)

	week := reverted["A1_2024-06-03"]
	monday := slotsForDay(week, "Monday")
	assert.Equal(t, schedule.StatusWorking, monday[0].Status)
	assert.Equal(t, schedule.StatusWorking, monday[2].Status)
}

func TestCancelLeave_OnlyOffSlotsReverted(t *testing.T) {
	// A slot authored as break on a covered day must stay break.
	week := schedule.DefaultWeek()
	snap := schedule.Snapshot{"A1_2024-06-03": week}

	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-03")
	got, err := schedule.CancelLeave("A1", req, snap)
	require.NoError(t, err)

	monday := slotsForDay(got["A1_2024-06-03"], "Monday")
	assert.Equal(t, schedule.StatusWorking, monday[0].Status)
	assert.Equal(t, schedule.StatusBreak, monday[1].Status, "break survives cancellation")
	assert.Equal(t, schedule.StatusWorking, monday[2].Status)
}

func TestCancelLeave_AbsentWeekSkipped(t *testing.T) {
	// No stored week means nothing to cancel; no default is synthesized.
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-04")

	got, err := schedule.CancelLeave("A1", req, schedule.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCancelLeave_SkipsSunday(t *testing.T) {
	req := approvedLeave(leave.TypePaid, "2024-01-06", "2024-01-07")

	applied, err := schedule.ApplyLeave("A2", req, schedule.Snapshot{})
	require.NoError(t, err)

	reverted, err := schedule.CancelLeave("A2", req, applied)
	require.NoError(t, err)

	week := reverted["A2_2024-01-01"]
	assert.Equal(t, schedule.StatusWorking, slotsForDay(week, "Saturday")[0].Status)
	assert.Empty(t, slotsForDay(week, "Sunday"))
}

// =============================================================================
// RECONCILER SERVICE
// =============================================================================

type failingStore struct{}

func (failingStore) Load(context.Context) (schedule.Snapshot, error) {
	return schedule.Snapshot{}, nil
}

func (failingStore) Save(context.Context, schedule.Snapshot) error {
	return errors.New("disk full")
}

func TestReconciler_ApplyPersistsAndNotifies(t *testing.T) {
	mem := store.NewMemory()
	fanout := schedule.NewFanOut()

	var gotEvent string
	var gotWeeks int
	fanout.Subscribe(func(event string, snap schedule.Snapshot) {
		gotEvent = event
		gotWeeks = len(snap)
	})

	rec := schedule.NewReconciler(mem, fanout, nil)
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-04")

	snap, err := rec.Apply(context.Background(), "A1", req)
	require.NoError(t, err)
	require.Contains(t, snap, "A1_2024-06-03")

	// Persisted
	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stored, "A1_2024-06-03")

	// Notified after save
	assert.Equal(t, schedule.EventUpdated, gotEvent)
	assert.Equal(t, 1, gotWeeks)
}

func TestReconciler_NonApprovedRequest_WarnedNoOp(t *testing.T) {
	mem := store.NewMemory()
	fanout := schedule.NewFanOut()

	notified := false
	fanout.Subscribe(func(string, schedule.Snapshot) { notified = true })

	rec := schedule.NewReconciler(mem, fanout, nil)
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-04")
	req.Status = leave.StatusRefused

	snap, err := rec.Apply(context.Background(), "A1", req)
	require.NoError(t, err, "a caller-contract violation is not a fatal error")
	assert.Empty(t, snap)
	assert.False(t, notified, "nothing changed, nothing to announce")
}

func TestReconciler_SaveFailure_ReturnsSaveError(t *testing.T) {
	// GIVEN: A store whose Save always fails
	// WHEN: Applying a valid approved request
	// THEN: The error is a *SaveError still carrying the computed snapshot
	fanout := schedule.NewFanOut()
	notified := false
	fanout.Subscribe(func(string, schedule.Snapshot) { notified = true })

	rec := schedule.NewReconciler(failingStore{}, fanout, nil)
	req := approvedLeave(leave.TypePaid, "2024-06-03", "2024-06-04")

	snap, err := rec.Apply(context.Background(), "A1", req)
	require.Error(t, err)

	var saveErr *schedule.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Contains(t, saveErr.Snapshot, "A1_2024-06-03", "the in-memory result survives the failed save")
	assert.Contains(t, snap, "A1_2024-06-03")
	assert.False(t, notified, "notification only fires after a successful save")
}

func TestReconciler_CancelRoundTrip(t *testing.T) {
	mem := store.NewMemory()
	rec := schedule.NewReconciler(mem, nil, nil)
	req := approvedLeave(leave.TypeRTT, "2024-06-03", "2024-06-05")
	ctx := context.Background()

	_, err := rec.Apply(ctx, "A1", req)
	require.NoError(t, err)

	snap, err := rec.Cancel(ctx, "A1", req)
	require.NoError(t, err)

	week := snap["A1_2024-06-03"]
	for _, day := range []string{"Monday", "Tuesday", "Wednesday"} {
		for _, s := range slotsForDay(week, day) {
			assert.NotEqual(t, schedule.StatusOff, s.Status, "%s should be reverted", day)
		}
	}
}
