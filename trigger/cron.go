package trigger

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron is a trigger driven by a standard 5-field cron expression, for
// schedules the Daily trigger cannot express (several times a day, specific
// months, and so forth). It runs no goroutines of its own: like Daily, it
// keeps a single epoch-seconds threshold advanced with compare-and-swap on
// the caller's logging goroutines. It never reads the log file metadata.
type Cron struct {
	next     atomic.Int64
	fault    faultCell
	schedule cron.Schedule
	clock    Clock
	loc      *time.Location
}

// NewCron returns a trigger that rotates the log on a cron schedule.
// The expression is validated here: one that cannot be parsed, or that
// parses but never fires (February 30th), is an ErrBadSchedule. Pass a nil
// Clock to use the system clock in the local zone.
func NewCron(expression string, clock Clock) (*Cron, error) {
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadSchedule, expression, err)
	}

	trigger, err := NewCronSchedule(schedule, clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %q never fires", ErrBadSchedule, expression)
	}

	return trigger, nil
}

// NewCronSchedule is NewCron for a pre-built schedule: robfig/cron's parser
// options beyond the standard five fields, or your own Schedule
// implementation. A schedule with no upcoming occurrence is an ErrBadSchedule.
func NewCronSchedule(schedule cron.Schedule, clock Clock) (*Cron, error) {
	if schedule == nil {
		return nil, fmt.Errorf("%w: nil schedule", ErrBadSchedule)
	}

	if clock == nil {
		clock = systemClock{}
	}

	trigger := &Cron{schedule: schedule, clock: clock}

	now := trigger.clock.Now()
	trigger.loc = now.Location()

	// The cron library reports "no next occurrence" as the zero time.
	first := trigger.schedule.Next(now)
	if first.IsZero() {
		return nil, fmt.Errorf("%w: no occurrence after %s", ErrBadSchedule, now.Format(time.RFC3339))
	}

	trigger.next.Store(first.Unix())

	return trigger, nil
}

// Evaluate returns true when the schedule is due and this caller won the
// advance. A schedule that was valid at construction but has no further
// occurrence latches an ErrScheduleFault: the trigger is dead until rebuilt.
// Satisfies the Trigger interface.
func (c *Cron) Evaluate(_ *LogFile) (bool, error) {
	if fault := c.fault.get(); fault != nil {
		return false, fault
	}

	next := c.next.Load()
	if c.clock.Now().Unix() < next {
		return false, nil
	}

	last := time.Unix(next, 0).In(c.loc)

	after := c.schedule.Next(last)
	if after.IsZero() || !after.After(last) {
		return false, c.fault.latch(fmt.Errorf("%w: no occurrence after %s",
			ErrScheduleFault, last.Format(time.RFC3339)))
	}

	if !c.next.CompareAndSwap(next, after.Unix()) {
		return false, nil
	}

	return true, nil
}

// NextTime reports the next scheduled rotation instant in the trigger's zone.
func (c *Cron) NextTime() time.Time {
	return time.Unix(c.next.Load(), 0).In(c.loc)
}

// Our trigger must satisfy the Trigger interface.
var _ Trigger = (*Cron)(nil)
