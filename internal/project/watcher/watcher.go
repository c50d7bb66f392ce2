// Package watcher reports changes to the files backing project resources.
//
// fsnotify is most reliable when watching directories, so a watcher adds
// the parent directory of every watched file and forwards only events for
// the files themselves. A file does not need to exist to be watched: its
// creation is reported, which is how offline media comes back online.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("file is already being watched")
	ErrNotWatching     = errors.New("file is not being watched")
	ErrPathNotExist    = errors.New("directory does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Gone returns true if the file no longer exists at its path after op.
func (op Op) Gone() bool {
	return op.Has(OpRemove) || op.Has(OpRename)
}

// Event is a change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op is the operation that occurred.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	WatchedFiles  int
	WatchedDirs   int
	PendingEvents int
	TotalEvents   int64
	Errors        int64
	LastError     error
	StartTime     time.Time
}

// Watcher monitors a set of files.
type Watcher interface {
	// WatchFile starts watching path. Its directory must exist.
	WatchFile(path string) error

	// UnwatchFile stops watching path.
	UnwatchFile(path string) error

	// IsWatching returns true if path is watched.
	IsWatching(path string) bool

	// Files returns the watched files.
	Files() []string

	// Events returns the event channel, closed by Close.
	Events() <-chan Event

	// Errors returns the error channel, closed by Close.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error

	Stats() Stats
}

// Config holds watcher configuration.
type Config struct {
	// BufferSize is the size of the event and error channels.
	BufferSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BufferSize: 100}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}
