// Package clock is the single source of "now" for the planner. Operations
// read the clock once and pass the value down, so a single request never
// sees two different "todays".
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Real reports the machine's local time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
