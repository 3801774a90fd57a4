package services

import "time"

// Clock yields the current instant in the calendar location used to decide what "today" is
type Clock struct {
	now      func() time.Time
	location *time.Location
}

// NewClock returns a wall clock in loc (UTC when nil)
func NewClock(loc *time.Location) Clock {
	return NewFixedClock(time.Now, loc)
}

// NewFixedClock returns a clock driven by now; tests and one-shot runs pin the date with it
func NewFixedClock(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, location: loc}
}

// Today returns the current instant expressed in the clock location
func (c Clock) Today() time.Time {
	if c.now == nil {
		return time.Now().In(c.location)
	}
	return c.now().In(c.location)
}

// Location returns the clock location
func (c Clock) Location() *time.Location {
	return c.location
}
