// Package vfs is the file system seen by project saving and loading, media
// probing and script loading. OSFS is the real disk; MemFS keeps
// everything in memory for tests.
//
// Paths are used as given. OSFS uses the host separator; MemFS uses
// forward slashes rooted at "/".
package vfs

import (
	"io"
	"io/fs"
)

// Reader is the read side used by probing and loading.
type Reader interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)

	// Stat reports fs.ErrNotExist (wrapped) for missing paths.
	Stat(path string) (fs.FileInfo, error)
}

// Writer is the write side used by atomic saves.
type Writer interface {
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(path string) error

	// Rename replaces any existing file at newPath.
	Rename(oldPath, newPath string) error
}

// Paths manipulates paths in the file system's own syntax.
type Paths interface {
	Join(elem ...string) string
	Dir(path string) string
	Base(path string) string
}

// VFS is a complete file system.
type VFS interface {
	Reader
	Writer
	Paths
}

// Exists reports whether path can be stat'ed on fsys.
func Exists(fsys Reader, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}
