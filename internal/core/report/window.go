package report

import (
	"fmt"
	"time"
)

// Window is a named relative date range anchored at the run's as-of instant.
// The set is closed: every window the engine materializes is listed here, and
// anything else is rejected at the boundary with ErrInvalidWindow.
type Window string

const (
	Window1Day    Window = "1_day_ago"
	Window7Days   Window = "7_days_ago"
	Window1Month  Window = "1_month_ago"
	Window3Months Window = "3_months_ago"
	Window6Months Window = "6_months_ago"
	Window1Year   Window = "1_year_ago"
	WindowAllTime Window = "all_time"
)

// windowDays maps each relative window to its length in days.
// all_time is handled separately (it starts at the zero time).
var windowDays = map[Window]int{
	Window1Day:    1,
	Window7Days:   7,
	Window1Month:  30,
	Window3Months: 90,
	Window6Months: 180,
	Window1Year:   365,
}

// Windows returns every window in the order the orchestrator sweeps them.
func Windows() []Window {
	return []Window{
		Window1Day,
		Window7Days,
		Window1Month,
		Window3Months,
		Window6Months,
		Window1Year,
		WindowAllTime,
	}
}

// Valid reports whether w is a recognized window name.
func (w Window) Valid() bool {
	if w == WindowAllTime {
		return true
	}
	_, ok := windowDays[w]
	return ok
}

// Days returns the window length in days. all_time has no length; ok is false.
func (w Window) Days() (days int, ok bool) {
	days, ok = windowDays[w]
	return days, ok
}

// Range is a resolved [Start, End] date range. Both ends are inclusive when
// filtering order timestamps.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve maps the window to a concrete date range anchored at asOf.
// Resolution is pure: the same window and asOf always produce the same range.
func (w Window) Resolve(asOf time.Time) (Range, error) {
	if w == WindowAllTime {
		return Range{Start: time.Time{}, End: asOf}, nil
	}
	days, ok := windowDays[w]
	if !ok {
		return Range{}, fmt.Errorf("window %q: %w", string(w), ErrInvalidWindow)
	}
	return Range{Start: asOf.AddDate(0, 0, -days), End: asOf}, nil
}
