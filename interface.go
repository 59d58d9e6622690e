package triggerr

//go:generate mockgen -destination=mocks/archiver.go -package=mocks golift.io/triggerr Archiver

// Archiver supplies the mechanics of a rotation once a trigger has decided
// one must happen: naming and moving the old file away, and pruning backups.
// The archive package provides a working Archiver. Use it directly, or
// extend it with your own methods and interface.
type Archiver interface {
	// Rotate is called any time a file needs to be rotated.
	Rotate(fileName string) (newFile string, err error)
	// Post is called after rotation finishes and the new file is created/opened.
	// This is blocking, so if it does something like compress the rotated file,
	// it should run in a go routine and return immediately.
	Post(fileName, newFile string)

	// Dirs is called once on startup.
	// This should do any validation and return a list of directories to create.
	Dirs(fileName string) (dirPaths []string, err error)
}
