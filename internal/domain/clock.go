package domain

import (
	"fmt"
	"time"
)

// DisplayLayout renders instants in traces and logs.
const DisplayLayout = "2006-01-02 15:04:05 MST"

// Clock supplies "now" and renders instants in the reference timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock reading the system time, displayed in loc.
func NewClock(loc *time.Location) *Clock {
	return NewClockFunc(loc, time.Now)
}

// NewClockFunc returns a clock driven by now (useful for tests).
func NewClockFunc(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// LoadClock resolves an IANA zone identifier such as "America/Denver".
func LoadClock(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid reference timezone %q: %w", zone, err)
	}
	return NewClock(loc), nil
}

// Now returns the current instant expressed in the reference zone.
// Comparisons on the returned value are absolute.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Location is the reference timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Format renders t in the reference timezone.
func (c *Clock) Format(t time.Time) string {
	return t.In(c.loc).Format(DisplayLayout)
}
