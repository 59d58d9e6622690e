package triggerr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golift.io/triggerr/filer"
	"golift.io/triggerr/trigger"
)

// These are the default directory and log file POSIX modes.
const (
	FileMode os.FileMode = 0o600
	DirMode  os.FileMode = 0o750
)

// openRetryInterval is how long to wait before retrying openLog after a failure.
// Prevents a storm of syscalls when the log file has permission or other persistent errors.
const openRetryInterval = 10 * time.Second

// Custom errors returned by this package.
var (
	ErrNilArchiver = errors.New("nil Archiver interface provided")
)

// Config is the data needed to create a new Logger.
type Config struct {
	Archiver Archiver        // REQUIRED: Names and prunes backups on rotation. Use your own or the archive package.
	Trigger  trigger.Trigger // Rotation policy, asked before every append. Default: a trigger.Client (rotate on demand only).
	Filepath string          // Full path to log file. Set this, the default is lousy.
	FileMode os.FileMode     // POSIX mode for new files.
	DirMode  os.FileMode     // POSIX mode for new folders.
}

// Logger is what you get in return for providing a Config. Use this to set
// log output. You must obtain a Logger by calling one of the New() procedures.
type Logger struct {
	config      *Config       // incoming configuration.
	log         chan []byte   // incoming log messages passed across go routines.
	resp        chan *resp    // response sent back across go routines.
	signal      chan struct{} // used for Rotate and Close ops.
	size        int64         // the size of the active open file.
	created     time.Time     // the date the active open file was created.
	File        *os.File      // The active open file. Useful for direct writing.
	Archiver    Archiver      // copied from config for brevity.
	filer.Filer               // overridable file system procedures.
	lastOpenErr error         // last error from openLog; used to avoid retry storm.
	lastOpened  time.Time     // when openLog was last attempted (for backoff).
}

// resp is used to send responses back across our go routines.
type resp struct {
	size int64
	err  error
}

// New takes in your configuration and returns a Logger you can use with
// log.SetOutput(). The provided logger consults the configured Trigger on
// every append and handles rotation and post-actions like compression.
func New(config *Config) (*Logger, error) {
	logger := &Logger{config: config, Archiver: config.Archiver, Filer: filer.Default()}

	err := logger.initialize(false)
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// NewMust takes in your configuration and returns a Logger you can use with
// log.SetOutput(). If an error occurs opening the log file, making log directories,
// or rotating files it is ignored (and retried later). Do not pass a Nil Archiver.
func NewMust(config *Config) *Logger {
	logger := &Logger{config: config, Archiver: config.Archiver, Filer: filer.Default()}

	err := logger.initialize(true)
	if errors.Is(err, ErrNilArchiver) {
		panic(err)
	}

	return logger
}

// initialize runs all the startup routines.
func (l *Logger) initialize(ignoreErrors bool) error {
	if l.Archiver == nil {
		// No goroutine gets started for a config that can never work.
		return ErrNilArchiver
	}

	var err error

	defer func() {
		if err == nil || ignoreErrors {
			l.log = make(chan []byte)
			l.resp = make(chan *resp)
			l.signal = make(chan struct{})

			go l.processLogChannel()
		}
	}()

	if err = l.setConfigDefaults(); err != nil {
		return err
	}

	err = l.checkAndRotate()

	return err
}

// setConfigDefaults does exactly what it says. Sets missing values.
func (l *Logger) setConfigDefaults() error {
	if l.config.Filepath == "" {
		l.config.Filepath = filepath.Join(os.TempDir(), filepath.Base(os.Args[0])+"-triggerr.log")
	}

	if l.config.Trigger == nil {
		// No policy means rotate only when asked: Rotate() still works.
		l.config.Trigger = trigger.NewClient()
	}

	if l.config.DirMode == 0 {
		l.config.DirMode = DirMode
	}

	if l.config.FileMode == 0 {
		l.config.FileMode = FileMode
	}

	dirs, err := l.Archiver.Dirs(l.config.Filepath)
	if err != nil {
		return fmt.Errorf("validating Archiver: %w", err)
	}

	for _, dir := range dirs {
		err := l.MkdirAll(dir, l.config.DirMode)
		if err != nil {
			return fmt.Errorf("making directories for logfiles: %w", err)
		}
	}

	return nil
}

// processLogChannel runs in a go routine and reads the incoming logs channel.
// Received logs are dispatched to the write method. Replies are then sent to the
// response channel. This also handles log rotation and routine shutdown. Everything
// except specific background actions (compression?) happen in this one go routine.
func (l *Logger) processLogChannel() {
	for {
		select {
		case b := <-l.log:
			size, err := l.write(b)
			l.resp <- &resp{int64(size), err}
		case _, ok := <-l.signal:
			if !ok {
				l.signal = nil
				l.resp <- &resp{err: l.stop()}

				return
			}

			size, err := l.rotate()
			l.resp <- &resp{size, err}
		}
	}
}

// openLog opens the log file for writing.
// If the file exists, it is appended to. If it does not exist, it is created.
// Any necessary folders are also created.
func (l *Logger) openLog() error {
	err := l.MkdirAll(filepath.Dir(l.config.Filepath), l.config.DirMode)
	if err != nil {
		return fmt.Errorf("making directories for logfiles: %w", err)
	}

	perm := os.O_WRONLY | os.O_APPEND

	if info, err := l.Stat(l.config.Filepath); err != nil {
		// File doesn't exist, or something wrong, truncate it!
		perm = os.O_WRONLY | os.O_TRUNC | os.O_CREATE
		l.size = 0
		l.created = time.Now()
	} else {
		// File exists, append to it!
		l.size = info.Size()
		l.created = info.CreateTime
	}

	l.File, err = l.OpenFile(l.config.Filepath, perm, l.config.FileMode)
	if err != nil {
		return fmt.Errorf("error with new logfile: %w", err)
	}

	return nil
}

// Write sends data directly to the file. This satisfies the io.WriteCloser interface.
// You should generally not call this and instead pass *Logger into log.SetOutput().
func (l *Logger) Write(b []byte) (int, error) {
	l.log <- b
	resp := <-l.resp

	return int(resp.size), resp.err
}

// write sends a message into the log file after everything checks out - from a channel message.
func (l *Logger) write(b []byte) (int, error) {
	if err := l.checkAndRotate(); err != nil {
		return 0, err
	}

	size, err := l.File.Write(b)
	l.size += int64(size)

	if err != nil {
		return size, fmt.Errorf("error writing log msg: %w", err)
	}

	return size, nil
}

// checkAndRotate makes sure the log file is open, then asks the Trigger if
// this append should rotate first, and rotates if so. A trigger fault (a
// broken clock or calendar, see the trigger package) is returned to the
// caller of Write: the append is skipped, rotation stops happening, and the
// logging pipeline above us decides what to do. We never abort the process.
// When the log file cannot be opened (e.g. permission denied), retries are
// backed off to avoid a storm of syscalls that can cause high CPU and IO.
func (l *Logger) checkAndRotate() error {
	if l.File == nil {
		if l.lastOpenErr != nil && time.Since(l.lastOpened) < openRetryInterval {
			return l.lastOpenErr
		}

		l.lastOpened = time.Now()

		err := l.openLog()
		if err != nil {
			l.lastOpenErr = err

			return err
		}

		l.lastOpenErr = nil
	}

	file := &trigger.LogFile{Path: l.config.Filepath, Size: l.size, Created: l.created}

	rotate, err := l.config.Trigger.Evaluate(file)
	if err != nil {
		return fmt.Errorf("rotation trigger: %w", err)
	}

	if rotate {
		if _, err := l.rotate(); err != nil {
			return err
		}
	}

	return nil
}

// Rotate forces the log to rotate immediately. Returns the size of the rotated log.
func (l *Logger) Rotate() (int64, error) {
	l.signal <- struct{}{}
	resp := <-l.resp

	return resp.size, resp.err
}

// rotate renames the log - from a channel message.
func (l *Logger) rotate() (int64, error) {
	size := l.size

	if err := l.close(); err != nil {
		return size, err
	}

	fpath, err := l.Archiver.Rotate(l.config.Filepath)
	if fpath != "" {
		defer l.Archiver.Post(l.config.Filepath, fpath)
	}

	if err != nil {
		return size, fmt.Errorf("error archiving log: %w", err)
	}

	l.lastOpenErr = l.openLog()
	if l.lastOpenErr != nil {
		l.lastOpened = time.Now()
	}

	return size, l.lastOpenErr
}

// Close stops the go routines, closes the active log file session and all channels.
// If another Write() is sent, a panic will ensue.
func (l *Logger) Close() error {
	defer close(l.resp)
	close(l.signal)

	return (<-l.resp).err
}

// close closes the active log file - from a channel message.
func (l *Logger) close() error {
	if l.File == nil {
		return nil
	}

	err := l.File.Close()
	l.File = nil

	if err != nil {
		return fmt.Errorf("closing log file %s: %w", l.config.Filepath, err)
	}

	return nil
}

// stop closes everything down.
func (l *Logger) stop() error {
	if l.log != nil {
		close(l.log)
	}

	l.log = nil

	return l.close()
}

// Our interface must satisfy an io.WriteCloser.
var _ io.WriteCloser = (*Logger)(nil)
