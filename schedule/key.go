/*
key.go - Schedule key codec

PURPOSE:
  Derives the canonical identifier for "this agent's schedule for the week
  containing date D" and parses it back. The key format is
  "{agentId}_{YYYY-MM-DD}" where the date is always the Monday of the week.

STRICTNESS:
  ParseKey accepts exactly one format. Keys whose date component is not a
  Monday, not a real date, or not the canonical zero-padded rendering are
  rejected. Loose matching (prefix or substring lookups across naming
  schemes) is deliberately not supported; non-conforming stored keys
  surface as errors instead of being silently matched.

SEE ALSO:
  - types.go: Snapshot keyed by these strings
  - reconcile.go: Key derivation during range iteration
*/
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/leave-planner/leave"
)

// WeekStart returns the Monday on or before t, at UTC midnight.
// Sunday rolls back six days; Monday itself is returned unchanged.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	offset := 1 - int(day.Weekday()) // Sunday=0 .. Saturday=6
	if day.Weekday() == time.Sunday {
		offset = -6
	}
	return day.AddDate(0, 0, offset)
}

// Key returns the canonical schedule key for the week containing d.
func Key(agentID string, d time.Time) string {
	return fmt.Sprintf("%s_%s", agentID, WeekStart(d).Format("2006-01-02"))
}

// ParseKey splits a schedule key back into agent id and week start.
// The agent id may itself contain underscores; the date is always the
// final component.
func ParseKey(key string) (agentID string, weekStart time.Time, err error) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}

	agentID = key[:i]
	datePart := key[i+1:]
	weekStart, err = leave.ParseDate(datePart)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}

	// ParseDate reads the components numerically, so "2024-6-3" would pass.
	// Requiring the canonical zero-padded rendering keeps one week to one
	// key; a lax parser would let two spellings address the same week.
	if leave.FormatDate(weekStart) != datePart {
		return "", time.Time{}, fmt.Errorf("%w: %q: date is not in canonical form", ErrBadKey, key)
	}
	if weekStart.Weekday() != time.Monday {
		return "", time.Time{}, fmt.Errorf("%w: %q: date is not a Monday", ErrBadKey, key)
	}
	return agentID, weekStart, nil
}

// DayName returns the English weekday name for t, matching Slot.Day.
func DayName(t time.Time) string {
	return t.Weekday().String()
}
