// Package triggerr is a log rotation module designed to plug directly into a
// standard go logger. The New() methods return a simple io.WriteCloser that
// works with most log packages. What sets it apart is that the decision to
// rotate is a pluggable, lock-free Trigger evaluated once per append: rotate
// daily at a configured local time (daylight-saving safe), on a cron
// schedule, or exactly when some other part of your app arms the trigger.
//
//	https://pkg.go.dev/golift.io/triggerr/trigger
//
// Triggers only decide. The mechanics of a rotation - naming the backup,
// pruning old backups, compressing - live behind the Archiver interface,
// with working implementations in the archive and compressor packages. The
// configurr package builds triggers from declarative YAML or JSON.
//
//	https://pkg.go.dev/golift.io/triggerr/archive
//	https://pkg.go.dev/golift.io/triggerr/configurr
//
// Use this package if you write your own log file and need it rotated on a
// calendar or on demand, not just when it gets big.
package triggerr
