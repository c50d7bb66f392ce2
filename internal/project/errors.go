package project

import (
	"errors"
	"fmt"
)

// Standard errors returned by the project package.
var (
	// ErrBadMagic indicates the data is not a project file.
	ErrBadMagic = errors.New("not a project file")

	// ErrUnsupportedVersion indicates a file written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported project file version")

	// ErrChecksumMismatch indicates the body does not match its checksum.
	ErrChecksumMismatch = errors.New("project file checksum mismatch")

	// ErrTruncated indicates the file ends before the envelope does.
	ErrTruncated = errors.New("project file truncated")

	// ErrNoFilePath indicates a save without a path on an unsaved project.
	ErrNoFilePath = errors.New("project has no file path")

	// ErrCutOutside indicates a cut frame outside the clip.
	ErrCutOutside = errors.New("cut frame is not inside the clip")

	// ErrNotInTree indicates a resource node that is not in a folder.
	ErrNotInTree = errors.New("resource node is not in the tree")
)

// PathError represents an error associated with a project file path.
type PathError struct {
	Op   string // Operation that failed (load, save, write)
	Path string // File path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// FormatError reports a malformed envelope or body.
type FormatError struct {
	Section string // Envelope part or body key
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("project format: %s: %v", e.Section, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsCorrupt returns true if err means the file content cannot be trusted.
func IsCorrupt(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
