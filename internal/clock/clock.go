// Package clock provides the time source used for stamping unlocks and
// resolving "today", so callers and tests can substitute a fixed instant.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a function to Clock
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Today formats the clock's current day in its own location
func Today(c Clock, layout string) string {
	return c.Now().Format(layout)
}
