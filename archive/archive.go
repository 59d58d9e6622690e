// Package archive provides an Archiver for triggerr that renames backup log
// files with a time stamp in the name. This package provides the ability to
// limit backup log files by count (number of logs) and by age (of files).
// By default rotated log files are named: service-2006-01-02T15-04-05.000.log.
// Control the time format with the Layout.Format parameter.
package archive

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golift.io/triggerr"
	"golift.io/triggerr/filer"
)

// Layout defines how time-stamped backup logs have their file names decided.
type Layout struct {
	filer.Filer

	ArchiveDir string        // Location where rotated backup logs are moved to.
	FileCount  int           // Maximum number of rotated log files.
	FileAge    time.Duration // Maximum age of rotated files.
	UseUTC     bool          // Sets the time zone to UTC when writing Time Formats (backup files).
	Format     string        // Format for Go Time. Used as the name.
	Joiner     string        // The string between the file name prefix and time stamp. Default: -
	// Mockable interfaces. Can be used for custom processing. Setting these is very optional.
	PostRotate func(fileName, newFile string)
}

// Some Formats you may use in your app.
const (
	FormatDefault = "2006-01-02T15-04-05.000" // Default: Used if Format = ""
	FormatNoSecnd = "2006-01-02T15-04-05"     // Example: Same thing, sans msec.
	FormatDayOnly = "2006-01-02"              // Example: For daily rotations.
)

// Some constants this package uses; not really needed externally.
const (
	LogExt        = ".log"
	DefaultJoiner = "-"
	GZext         = ".gz"
)

// backup is one rotated log file and the time stamp parsed from its name.
type backup struct {
	path  string
	stamp time.Time
}

// Post satisfies the Archiver interface.
func (l *Layout) Post(fileName, newFile string) {
	if l.PostRotate != nil {
		l.PostRotate(fileName, newFile)
	}
}

// Rotate moves the active log file to its time-stamped backup name and
// prunes old backups. Satisfies the Archiver interface.
func (l *Layout) Rotate(fileName string) (string, error) {
	now := time.Now()
	if l.UseUTC {
		now = now.UTC()
	}

	var (
		dir     = l.archiveDir(fileName)
		newFile = filepath.Join(dir, l.prefix(fileName)+now.Format(l.Format)+LogExt)
	)

	err := l.Rename(fileName, newFile)
	if err != nil {
		return "", fmt.Errorf("error renaming log: %w", err)
	}

	return newFile, l.prune(l.backups(fileName))
}

// Dirs validates input data and returns the list of directories being used.
func (l *Layout) Dirs(fileName string) ([]string, error) {
	if l.Format == "" {
		l.Format = FormatDefault
	}

	if l.Joiner == "" {
		l.Joiner = DefaultJoiner
	}

	if l.Filer == nil {
		l.Filer = filer.Default()
	}

	switch fpath := filepath.Dir(fileName); {
	case l.ArchiveDir == "" || fpath == l.ArchiveDir:
		return []string{fpath}, nil
	default:
		return []string{fpath, l.ArchiveDir}, nil
	}
}

func (l *Layout) archiveDir(fileName string) string {
	if l.ArchiveDir != "" {
		return l.ArchiveDir
	}

	return filepath.Dir(fileName)
}

// prefix returns the expected - or created - prefix on our log files.
func (l *Layout) prefix(fileName string) string {
	return strings.TrimSuffix(filepath.Base(fileName), LogExt) + l.Joiner
}

// prune deletes backups older than FileAge, then deletes the oldest
// remaining backups until no more than FileCount are left.
func (l *Layout) prune(backups []backup) error {
	remaining := len(backups)

	for _, b := range backups {
		tooOld := l.FileAge > 0 && time.Since(b.stamp) >= l.FileAge
		tooMany := l.FileCount > 0 && remaining > l.FileCount

		if !tooOld && !tooMany {
			continue
		}

		err := l.Remove(b.path)
		if err != nil {
			return fmt.Errorf("error removing file: %w", err)
		}

		remaining--
	}

	return nil
}

// backups finds all the backup log files whose names match our Time Format,
// sorted oldest first.
func (l *Layout) backups(fileName string) []backup {
	var (
		list   []backup
		dir    = l.archiveDir(fileName)
		prefix = l.prefix(fileName)
	)

	entries, err := l.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue // not our file.
		}

		part := strings.TrimSuffix(strings.TrimPrefix(name, prefix), GZext)

		stamp, err := time.Parse(l.Format, strings.TrimSuffix(part, LogExt))
		if err != nil {
			continue // if err != nil, then not our file.
		}

		list = append(list, backup{path: filepath.Join(dir, name), stamp: stamp})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].stamp.Before(list[j].stamp) })

	return list
}

// Our interface must satisfy a triggerr.Archiver.
var _ triggerr.Archiver = (*Layout)(nil)
