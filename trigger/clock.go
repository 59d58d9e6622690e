package trigger

import "time"

// Clock tells a calendar-based trigger what time it is. The zero value of
// every trigger config uses the system clock in the local time zone. Supply
// your own to pin time (and zone) in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function into a Clock.
type ClockFunc func() time.Time

// Now satisfies the Clock interface.
func (f ClockFunc) Now() time.Time {
	return f()
}

// systemClock is the default Clock: time.Now in the local zone.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Our types must satisfy the Clock interface.
var (
	_ Clock = ClockFunc(nil)
	_ Clock = systemClock{}
)
