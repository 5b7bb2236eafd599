package model

import "time"

// Weekend coverage runs from Saturday 05:30 through Monday 05:30 in the
// team's reference timezone. During this window every case is treated as
// near-immediately actionable.
const weekendEdgeHour, weekendEdgeMinute = 5, 30

// WeekendWindow is the weekend coverage interval containing or following
// the given instant, computed in the supplied reference location.
type WeekendWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the instant falls inside the window.
func (w WeekendWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WeekendWindowAt returns the weekend window whose Saturday is the one
// nearest to now: the current window while inside it, otherwise the
// upcoming one.
func WeekendWindowAt(now time.Time, loc *time.Location) WeekendWindow {
	local := now.In(loc)

	// Walk back to the most recent Saturday edge.
	daysSinceSaturday := (int(local.Weekday()) - int(time.Saturday) + 7) % 7
	sat := time.Date(local.Year(), local.Month(), local.Day(), weekendEdgeHour, weekendEdgeMinute, 0, 0, loc)
	sat = sat.AddDate(0, 0, -daysSinceSaturday)

	w := WeekendWindow{Start: sat, End: sat.AddDate(0, 0, 2)}
	if !local.Before(w.End) {
		// The most recent window is over; the relevant one is next week's.
		w = WeekendWindow{Start: sat.AddDate(0, 0, 7), End: sat.AddDate(0, 0, 9)}
	}
	return w
}

// IsWeekend reports whether the instant falls inside weekend coverage in
// the given reference location. Re-derived on every call so a boundary
// crossing mid-session takes effect immediately.
func IsWeekend(now time.Time, loc *time.Location) bool {
	local := now.In(loc)
	daysSinceSaturday := (int(local.Weekday()) - int(time.Saturday) + 7) % 7
	sat := time.Date(local.Year(), local.Month(), local.Day(), weekendEdgeHour, weekendEdgeMinute, 0, 0, loc)
	sat = sat.AddDate(0, 0, -daysSinceSaturday)

	return !local.Before(sat) && local.Before(sat.AddDate(0, 0, 2))
}
