package domain

import "time"

// TimeWindow is a closed interval [Start, End] in absolute time.
//
// No ordering is enforced between Start and End: an inverted window
// simply never contains any instant.
type TimeWindow struct {
	Start time.Time
	End   time.Time

	// valid is false for the zero window and for windows built from
	// unparseable date/time cells.
	valid bool
}

// NewTimeWindow builds a window from two absolute instants.
func NewTimeWindow(start, end time.Time) TimeWindow {
	return TimeWindow{Start: start, End: end, valid: true}
}

// Valid reports whether the window was built from real instants.
func (w TimeWindow) Valid() bool {
	return w.valid
}

// Contains reports whether start <= t <= end. Both bounds are inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.valid {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}
