/*
Package schedule implements weekly schedule bookkeeping and the
leave-to-schedule reconciler.

PURPOSE:
  An agent's working week is a list of slots (morning/midday/afternoon per
  day). All weeks live in a Snapshot: a mapping from a canonical schedule
  key ("{agentId}_{mondayDate}") to that week's slots. Approving a leave
  request marks the covered days off; cancelling an approved request
  reverts them to working.

KEY CONCEPTS IN THIS FILE (types.go):
  - Slot: The smallest schedulable unit (day + label + status + times)
  - Snapshot: The full schedule store, treated as a value
  - DefaultWeek: The canonical "never configured yet" weekly template

VALUE SEMANTICS:
  Every reconciliation operation takes a Snapshot and returns a new one.
  Two operations on different snapshots cannot corrupt each other; callers
  serialize writes to the persisted store themselves (last-writer-wins).

SEE ALSO:
  - key.go: Schedule key codec
  - reconcile.go: ApplyLeave / CancelLeave
  - store.go: SnapshotStore and Notifier boundary contracts
*/
package schedule

// =============================================================================
// SLOTS
// =============================================================================

type SlotStatus string

const (
	StatusWorking SlotStatus = "working"
	StatusBreak   SlotStatus = "break"
	StatusOff     SlotStatus = "off"
)

type SlotLabel string

const (
	LabelMorning   SlotLabel = "Morning"
	LabelMidday    SlotLabel = "Midday"
	LabelAfternoon SlotLabel = "Afternoon"
)

// Slot is one schedulable unit within a day. Day holds an English weekday
// name (Monday through Saturday; Sunday is never scheduled).
type Slot struct {
	Day       string     `json:"day"`
	Time      SlotLabel  `json:"time"`
	Status    SlotStatus `json:"status"`
	StartTime string     `json:"startTime,omitempty"`
	EndTime   string     `json:"endTime,omitempty"`
}

// =============================================================================
// SNAPSHOT - Full schedule store as a value
// =============================================================================

// Snapshot maps schedule keys to weekly slot lists.
type Snapshot map[string][]Slot

// Clone returns a deep copy. Reconciliation operations clone before
// mutating so the caller's snapshot is never touched.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for key, slots := range s {
		copied := make([]Slot, len(slots))
		copy(copied, slots)
		out[key] = copied
	}
	return out
}

// =============================================================================
// DEFAULT WEEK TEMPLATE
// =============================================================================

// DefaultWeek produces the canonical weekly template used when a touched
// week has no stored schedule yet: Monday through Friday get a working
// morning, a midday break, and a working afternoon; Saturday gets a
// single working morning. 16 slots, fixed order, no Sunday.
func DefaultWeek() []Slot {
	weekdays := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

	slots := make([]Slot, 0, 16)
	for _, day := range weekdays {
		slots = append(slots,
			Slot{Day: day, Time: LabelMorning, Status: StatusWorking, StartTime: "08:00", EndTime: "12:00"},
			Slot{Day: day, Time: LabelMidday, Status: StatusBreak, StartTime: "12:00", EndTime: "13:00"},
			Slot{Day: day, Time: LabelAfternoon, Status: StatusWorking, StartTime: "13:00", EndTime: "17:00"},
		)
	}
	slots = append(slots, Slot{Day: "Saturday", Time: LabelMorning, Status: StatusWorking, StartTime: "08:00", EndTime: "13:00"})
	return slots
}
