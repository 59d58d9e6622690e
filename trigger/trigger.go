// Package trigger decides when a log file must be rotated. Every policy in
// this package is a Trigger: a decision point the rotation orchestrator asks
// once per append, before the write happens. Triggers never rotate, rename,
// or touch files themselves; they answer yes or no, cheaply, from any number
// of goroutines at once. All mutable trigger state lives in atomic cells, so
// the hot logging path never takes a lock.
package trigger

//go:generate mockgen -destination=../mocks/trigger.go -package=mocks golift.io/triggerr/trigger Trigger

import (
	"errors"
	"time"
)

// Custom errors returned by this package.
var (
	// ErrScheduleFault means calendar arithmetic produced an impossible
	// result: a broken system clock, an unsupported date range, or a bad
	// timezone database. A trigger that returns this is non-functional and
	// keeps returning it until it is rebuilt. It never rotates again.
	ErrScheduleFault = errors.New("rotation schedule fault")
	// ErrBadSchedule is returned when a cron expression cannot be parsed.
	ErrBadSchedule = errors.New("invalid rotation schedule")
)

// LogFile describes the file currently being appended to. The orchestrator
// fills one in on every append. The Client and Daily triggers ignore it
// entirely; custom Trigger implementations may care about size or age.
type LogFile struct {
	Path    string    // Full path to the active log file.
	Size    int64     // Current size of the active log file in bytes.
	Created time.Time // When the active log file was opened or created.
}

// Trigger is a rotation policy. Evaluate is called once per append attempt,
// before the write, potentially from many goroutines at the same time. It
// must be non-blocking and complete in bounded time. Returning true means
// rotate the log before writing the pending message. Side effects are
// limited to the trigger's own scheduling state.
type Trigger interface {
	Evaluate(file *LogFile) (bool, error)
}
