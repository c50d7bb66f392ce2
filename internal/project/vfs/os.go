package vfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS is the host file system.
type OSFS struct{}

// NewOSFS returns the host file system.
func NewOSFS() *OSFS { return &OSFS{} }

var _ VFS = (*OSFS)(nil)

func (*OSFS) Open(path string) (io.ReadCloser, error) { return os.Open(path) }
func (*OSFS) ReadFile(path string) ([]byte, error)    { return os.ReadFile(path) }
func (*OSFS) Stat(path string) (fs.FileInfo, error)   { return os.Stat(path) }

func (*OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (*OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (*OSFS) Remove(path string) error                     { return os.Remove(path) }
func (*OSFS) Rename(oldPath, newPath string) error         { return os.Rename(oldPath, newPath) }

func (*OSFS) Join(elem ...string) string { return filepath.Join(elem...) }
func (*OSFS) Dir(path string) string     { return filepath.Dir(path) }
func (*OSFS) Base(path string) string    { return filepath.Base(path) }
