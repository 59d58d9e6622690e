package trigger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/triggerr/trigger"
)

// stepClock is a settable Clock for walking a trigger through a schedule.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func newYork(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err, "the timezone database is required for these tests")

	return loc
}

// monday10 is 2024-01-01T10:00, a Monday, in the given zone.
func monday10(loc *time.Location) time.Time {
	return time.Date(2024, time.January, 1, 10, 0, 0, 0, loc)
}

func TestDailyTimeOfDayNormalization(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	loc := newYork(t)

	for _, test := range []struct {
		timeOfDay int
		want      time.Time
	}{
		{1530, time.Date(2024, time.January, 1, 15, 30, 0, 0, loc)}, // later today.
		{2400, time.Date(2024, time.January, 2, 0, 0, 0, 0, loc)},   // 24:00 folds to midnight, already past.
		{2530, time.Date(2024, time.January, 2, 1, 30, 0, 0, loc)},  // 25:30 folds to 01:30, already past.
		{1490, time.Date(2024, time.January, 1, 15, 30, 0, 0, loc)}, // minute 90 bumps the hour.
	} {
		daily := trigger.NewDaily(&trigger.DailyConfig{
			TimeOfDay: test.timeOfDay,
			Clock:     &stepClock{now: monday10(loc)},
		})
		assert.Equal(test.want.Unix(), daily.NextTime().Unix(),
			"time_of_day %d normalized wrong", test.timeOfDay)
	}
}

func TestDailyFirstTriggerPoint(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	loc := newYork(t)

	// Midnight has passed by 10:00, so the first trigger is tomorrow.
	daily := trigger.NewDaily(&trigger.DailyConfig{Clock: &stepClock{now: monday10(loc)}})
	assert.Equal(time.Date(2024, time.January, 2, 0, 0, 0, 0, loc).Unix(), daily.NextTime().Unix())
}

func TestDailyHostileConfig(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	loc := newYork(t)

	// Nothing is rejected: negatives and out-of-range values fold into range.
	daily := trigger.NewDaily(&trigger.DailyConfig{
		TimeOfDay:      -1,
		SkipDays:       -3,
		StartDayOfWeek: 10,
		Clock:          &stepClock{now: monday10(loc)},
	})

	rotate, err := daily.Evaluate(nil)
	assert.NoError(err)
	assert.False(rotate)
}

func TestDailyNotDueIsIdempotent(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: monday10(loc)}
	daily := trigger.NewDaily(&trigger.DailyConfig{Clock: clock})
	threshold := daily.NextTime()

	for range 5 {
		rotate, err := daily.Evaluate(nil)
		assert.NoError(err)
		assert.False(rotate, "not due yet")
		assert.Equal(threshold, daily.NextTime(), "an early evaluate must not move the schedule")
	}
}

// TestDailyEndToEnd is the construct/wait/rotate scenario: built at Monday
// 10:00 with a midnight schedule, nothing happens at 23:00, the first append
// past midnight rotates exactly once, and the threshold lands on the next
// midnight.
func TestDailyEndToEnd(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: monday10(loc)}
	daily := trigger.NewDaily(&trigger.DailyConfig{Clock: clock})

	clock.now = time.Date(2024, time.January, 1, 23, 0, 0, 0, loc)
	rotate, err := daily.Evaluate(nil)
	assert.NoError(err)
	assert.False(rotate)
	assert.Equal(time.Date(2024, time.January, 2, 0, 0, 0, 0, loc).Unix(), daily.NextTime().Unix())

	clock.now = time.Date(2024, time.January, 2, 0, 5, 0, 0, loc)
	rotate, err = daily.Evaluate(nil)
	assert.NoError(err)
	assert.True(rotate, "midnight has passed, rotate")
	assert.Equal(time.Date(2024, time.January, 3, 0, 0, 0, 0, loc).Unix(), daily.NextTime().Unix())

	rotate, err = daily.Evaluate(nil)
	assert.NoError(err)
	assert.False(rotate, "one rotation per threshold")
}

// TestDailySpringForward crosses the 2024-03-10 US spring-forward boundary.
// The schedule must keep the configured wall-clock time, which makes the
// absolute gap 23 hours, not 24.
func TestDailySpringForward(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: time.Date(2024, time.March, 9, 10, 0, 0, 0, loc)}
	daily := trigger.NewDaily(&trigger.DailyConfig{TimeOfDay: 1200, Clock: clock})

	before := daily.NextTime()
	assert.Equal(time.Date(2024, time.March, 9, 12, 0, 0, 0, loc).Unix(), before.Unix())

	clock.now = before
	rotate, err := daily.Evaluate(nil)
	assert.NoError(err)
	assert.True(rotate)

	after := daily.NextTime()
	assert.Equal(12, after.Hour(), "the wall-clock hour must survive the DST shift")
	assert.Equal(0, after.Minute())
	assert.Equal(23*time.Hour, after.Sub(before), "spring forward eats an hour of absolute time")
}

// TestDailyFallBack crosses the 2024-11-03 US fall-back boundary with a
// schedule inside the repeated 01:00-02:00 hour. The ambiguous civil time
// must resolve to the earlier instant, giving an exact 24 hour gap.
func TestDailyFallBack(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: time.Date(2024, time.November, 2, 0, 0, 0, 0, loc)}
	daily := trigger.NewDaily(&trigger.DailyConfig{TimeOfDay: 130, Clock: clock})

	before := daily.NextTime()
	assert.Equal(time.Date(2024, time.November, 2, 1, 30, 0, 0, loc).Unix(), before.Unix())

	clock.now = before
	rotate, err := daily.Evaluate(nil)
	assert.NoError(err)
	assert.True(rotate)

	after := daily.NextTime()
	assert.Equal(1, after.Hour())
	assert.Equal(30, after.Minute())
	assert.Equal(24*time.Hour, after.Sub(before), "the earlier of the two 01:30s is 24h out; the later is 25h")
}

// TestDailyWeekly anchors a one-week cycle on Wednesday and walks it: every
// rotation must land on a Wednesday, a calendar week apart.
func TestDailyWeekly(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: monday10(loc)} // 2024-01-01 is a Monday.
	daily := trigger.NewDaily(&trigger.DailyConfig{
		SkipDays:       6,
		StartDayOfWeek: 3, // Wednesday.
		Clock:          clock,
	})

	next := daily.NextTime()
	assert.Equal(time.Date(2024, time.January, 3, 0, 0, 0, 0, loc).Unix(), next.Unix(),
		"the first cycle day after Monday is Wednesday the 3rd")

	for range 8 {
		assert.Equal(time.Wednesday, next.Weekday())

		clock.now = next.Add(time.Minute)
		rotate, err := daily.Evaluate(nil)
		assert.NoError(err)
		assert.True(rotate)

		previous := next
		next = daily.NextTime()
		assert.Equal(previous.AddDate(0, 0, 7).Unix(), next.Unix(), "one calendar week per cycle")
	}
}

// TestDailyConcurrentAdvance makes sure a due threshold is won by exactly one
// of many concurrent evaluates.
func TestDailyConcurrentAdvance(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	loc := newYork(t)
	clock := &stepClock{now: monday10(loc)}
	daily := trigger.NewDaily(&trigger.DailyConfig{Clock: clock})
	clock.now = time.Date(2024, time.January, 2, 0, 5, 0, 0, loc)

	const goroutines = 16

	results := make(chan bool, goroutines)

	for range goroutines {
		go func() {
			rotate, err := daily.Evaluate(nil)
			assert.NoError(err)
			results <- rotate
		}()
	}

	trues := 0

	for range goroutines {
		if <-results {
			trues++
		}
	}

	assert.Equal(1, trues, "exactly one caller may win a due threshold")
}
