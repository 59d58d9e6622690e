package trigger

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DailyConfig is the data needed to create a Daily trigger. Any integers are
// accepted; out-of-range values are folded into range, never rejected, so a
// declarative config layer can pass numbers through untouched.
type DailyConfig struct {
	TimeOfDay      int   // 24-hour time as a 4-digit integer: 1430 is 14:30. Hours fold mod 24, minutes 60-99 bump the hour.
	SkipDays       int   // Days to skip between rotations. 0 rotates every day, 1 every other day.
	StartDayOfWeek int   // Anchor weekday for the cycle, 0 = Sunday. Taken mod 7. Only matters when SkipDays is set.
	Clock          Clock // Source of local time. Defaults to the system clock. Set it in tests.
}

// Daily is a trigger that rotates the log once per cycle of SkipDays+1 days,
// at TimeOfDay in the local time zone. The schedule is kept as a single
// epoch-seconds cell advanced with compare-and-swap, so any number of
// logging goroutines may evaluate it at once and exactly one of them wins
// each due threshold. Cycle advancement happens in civil (calendar) time,
// not fixed 24-hour steps, so the configured time of day holds across
// daylight-saving transitions.
type Daily struct {
	next     atomic.Int64 // next trigger point, epoch seconds.
	fault    faultCell    // set once on a fatal calendar fault; the trigger is dead after.
	hour     int
	minute   int
	skipDays int
	startDay int
	clock    Clock
	loc      *time.Location
}

// NewDaily returns a trigger which rotates the log on a daily schedule.
// The first trigger point is computed from the current local time: today at
// TimeOfDay if today is a cycle day and that time has not passed yet,
// otherwise the next cycle day.
func NewDaily(config *DailyConfig) *Daily {
	if config == nil {
		config = &DailyConfig{}
	}

	trigger := &Daily{
		hour:     (mod(config.TimeOfDay/100, 24) + mod(config.TimeOfDay, 100)/60) % 24,
		minute:   mod(config.TimeOfDay, 100) % 60,
		skipDays: config.SkipDays,
		startDay: mod(config.StartDayOfWeek, 7),
		clock:    config.Clock,
	}

	if trigger.skipDays < 0 {
		trigger.skipDays = 0
	}

	if trigger.clock == nil {
		trigger.clock = systemClock{}
	}

	now := trigger.clock.Now()
	trigger.loc = now.Location()
	trigger.next.Store(trigger.firstTriggerPoint(now).Unix())

	return trigger
}

// Evaluate returns true when the schedule is due and this caller won the
// advance. Before the threshold it returns false without mutating anything;
// that is the hot path. Satisfies the Trigger interface.
//
// A calendar result that cannot be valid (the advanced threshold not after
// the previous one) means a broken clock, an unsupported date range, or bad
// timezone data. That is reported as an ErrScheduleFault, and the trigger
// stays non-functional, returning the same fault and never rotating, until
// it is reconstructed. It never panics and never kills the process.
func (d *Daily) Evaluate(_ *LogFile) (bool, error) {
	if fault := d.fault.get(); fault != nil {
		return false, fault
	}

	next := d.next.Load()
	if d.clock.Now().Unix() < next {
		return false, nil
	}

	// Reconstruct the civil date the threshold falls on and add the cycle
	// period in calendar days, pinned to the configured time of day.
	last := time.Unix(next, 0).In(d.loc)

	// Calendar day-addition with an intact clock and timezone database always
	// moves forward; anything else means the environment is broken, and
	// rotating on garbage dates is worse than not rotating.
	after := d.civilTime(last.Year(), last.Month(), last.Day()+d.skipDays+1)
	if !after.After(last) {
		return false, d.fault.latch(fmt.Errorf("%w: advancing %s by %d day(s) did not move forward",
			ErrScheduleFault, last.Format(time.RFC3339), d.skipDays+1))
	}

	// Another goroutine already advanced this threshold; it rotates, we don't.
	if !d.next.CompareAndSwap(next, after.Unix()) {
		return false, nil
	}

	return true, nil
}

// NextTime reports the next scheduled rotation instant in the trigger's zone.
func (d *Daily) NextTime() time.Time {
	return time.Unix(d.next.Load(), 0).In(d.loc)
}

// firstTriggerPoint computes the initial threshold from the current time.
func (d *Daily) firstTriggerPoint(now time.Time) time.Time {
	var (
		period  = d.skipDays + 1
		weekday = int(now.Weekday()) // Sunday is 0, same anchor as StartDayOfWeek.
	)

	if weekday < d.startDay {
		weekday += 7
	}

	daysIntoCycle := (weekday - d.startDay) % period
	daysLeftInCycle := period - daysIntoCycle

	day := now.Day()
	if daysIntoCycle != 0 || !d.beforeTimeOfDay(now) {
		day += daysLeftInCycle
	}

	return d.civilTime(now.Year(), now.Month(), day)
}

// beforeTimeOfDay returns true if t's local time of day is earlier than the
// configured rotation time.
func (d *Daily) beforeTimeOfDay(t time.Time) bool {
	return t.Hour()*3600+t.Minute()*60+t.Second() < d.hour*3600+d.minute*60
}

// civilTime builds the instant for a local calendar day at the configured
// time of day. Day values past the end of the month are normalized into the
// following months. A fall-back DST overlap maps one civil time onto two
// instants; the earlier one is chosen, deterministically. A spring-forward
// gap (the civil time does not exist that day) is absorbed by pushing
// through the gap.
func (d *Daily) civilTime(year int, month time.Month, day int) time.Time {
	when := time.Date(year, month, day, d.hour, d.minute, 0, 0, d.loc)

	// Probe the common DST offsets. If stepping back still reads the same
	// civil time, the wall clock repeated itself and we landed on the later
	// instant of the pair.
	for _, delta := range []time.Duration{time.Hour, 30 * time.Minute} {
		if earlier := when.Add(-delta); earlier.Hour() == when.Hour() &&
			earlier.Minute() == when.Minute() && earlier.Day() == when.Day() {
			return earlier
		}
	}

	return when
}

// mod is the remainder of a/n folded into [0,n), for hostile config inputs.
func mod(a, n int) int {
	return (a%n + n) % n
}

// Our trigger must satisfy the Trigger interface.
var _ Trigger = (*Daily)(nil)
