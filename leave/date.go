/*
date.go - Literal calendar-date parsing

PURPOSE:
  Leave requests carry dates as plain YYYY-MM-DD strings. Parsing them
  through a timezone-aware parser and converting back can shift the date
  by a day depending on the host timezone. ParseDate takes the three
  numeric components literally and builds a UTC midnight time.Time, so a
  request for "2024-06-03" always means June 3rd.

VALIDATION:
  Components must be numeric and form a real calendar date. time.Date
  normalizes overflow (February 30th becomes March 2nd), so the result is
  round-tripped against the input components to reject such inputs.

SEE ALSO:
  - balance.go: Skips requests with malformed dates (contributes zero)
  - schedule/reconcile.go: Uses the same parser for range iteration
*/
package leave

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDate is returned when a date string is not a valid
// YYYY-MM-DD calendar date.
var ErrMalformedDate = errors.New("malformed date")

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.Time,
// taking the year/month/day components literally.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes out-of-range components; reject anything that
	// does not round-trip.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Range parses the request's date range. The range is inclusive on both
// ends; an inverted range (start after end) is valid input that yields
// zero iterations downstream.
func (r Request) Range() (start, end time.Time, err error) {
	start, err = ParseDate(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseDate(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
