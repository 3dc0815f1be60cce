package conditions

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ParseWindow parses a pair of bounds. Date-only bounds cover the whole UTC day,
// so an end of "2026-06-10" includes every departure on June 10th.
func ParseWindow(start, end string) (Window, error) {
	from, _, err := parseBound(start)
	if err != nil {
		return Window{}, err
	}
	to, dateOnly, err := parseBound(end)
	if err != nil {
		return Window{}, err
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return Window{}, fmt.Errorf("end %q is before start %q", end, start)
	}
	return Window{Start: from, End: to}, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", raw)
	}
	return t.UTC(), false, nil
}

// WholeDays counts complete 24h periods from "from" to "to", rounding toward negative infinity.
func WholeDays(from, to time.Time) int {
	return floorDiv(to.Sub(from), 24*time.Hour)
}

// WholeHours counts complete hours from "from" to "to", rounding toward negative infinity.
func WholeHours(from, to time.Time) int {
	return floorDiv(to.Sub(from), time.Hour)
}

// StayNights is the number of nights between departure and return. Zero or negative stays are 0.
func StayNights(departure, ret time.Time) int {
	nights := WholeDays(departure, ret)
	if nights < 0 {
		return 0
	}
	return nights
}

// IncludesSaturdayNight reports whether the stay spans the night from a Saturday into Sunday.
func IncludesSaturdayNight(departure, ret time.Time) bool {
	day := truncateDay(departure.UTC())
	last := truncateDay(ret.UTC())
	for !day.After(last) {
		if day.Weekday() == time.Saturday && day.Add(24*time.Hour).Compare(last) <= 0 {
			return true
		}
		day = day.Add(24 * time.Hour)
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func floorDiv(d, unit time.Duration) int {
	q := d / unit
	if d%unit != 0 && d < 0 {
		q--
	}
	return int(q)
}

// ParseInstant parses a YYYY-MM-DD or RFC 3339 value. With endOfDay set, a
// date-only value resolves to the last instant of that UTC day.
func ParseInstant(raw string, endOfDay bool) (time.Time, error) {
	t, dateOnly, err := parseBound(raw)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly && endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
