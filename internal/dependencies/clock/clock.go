package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// DayKey returns the UTC calendar date of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
