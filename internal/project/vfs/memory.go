package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	errIsDir  = syscall.EISDIR
	errNotDir = syscall.ENOTDIR
)

// MemFS holds files and directories in maps keyed by cleaned absolute
// path. Writes need an existing parent directory, as on disk. Safe for
// concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// memInfo implements fs.FileInfo for MemFS entries.
type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
	}
}

var _ VFS = (*MemFS)(nil)

func (m *MemFS) Open(filePath string) (io.ReadCloser, error) {
	data, err := m.read("open", filePath)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	data, err := m.read("read", filePath)
	if err != nil {
		return nil, err
	}
	return slices.Clone(data), nil
}

func (m *MemFS) read(op, filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		if m.dirs[filePath] {
			return nil, &fs.PathError{Op: op, Path: filePath, Err: errIsDir}
		}
		return nil, &fs.PathError{Op: op, Path: filePath, Err: fs.ErrNotExist}
	}
	return f.content, nil
}

func (m *MemFS) Stat(filePath string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	if f, ok := m.files[filePath]; ok {
		return memInfo{name: path.Base(filePath), size: int64(len(f.content)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.dirs[filePath] {
		return memInfo{name: path.Base(filePath), mode: fs.ModeDir | 0o755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: errIsDir}
	}
	if !m.dirs[path.Dir(filePath)] {
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrNotExist}
	}
	m.files[filePath] = &memFile{
		content: slices.Clone(data),
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

func (m *MemFS) MkdirAll(dirPath string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := ""
	for _, part := range strings.Split(strings.Trim(cleanPath(dirPath), "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		if _, ok := m.files[current]; ok {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errNotDir}
		}
		m.dirs[current] = true
	}
	return nil
}

func (m *MemFS) Remove(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if _, ok := m.files[filePath]; ok {
		delete(m.files, filePath)
		return nil
	}
	if !m.dirs[filePath] {
		return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
	}
	prefix := strings.TrimSuffix(filePath, "/") + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: syscall.ENOTEMPTY}
		}
	}
	delete(m.dirs, filePath)
	return nil
}

func (m *MemFS) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath, newPath = cleanPath(oldPath), cleanPath(newPath)
	f, ok := m.files[oldPath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}
	if m.dirs[newPath] {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: errIsDir}
	}
	if !m.dirs[path.Dir(newPath)] {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldPath)
	m.files[newPath] = f
	return nil
}

func (*MemFS) Join(elem ...string) string  { return path.Join(elem...) }
func (*MemFS) Dir(filePath string) string  { return path.Dir(filePath) }
func (*MemFS) Base(filePath string) string { return path.Base(filePath) }

// AddFile writes a file, creating parent directories.
func (m *MemFS) AddFile(filePath string, content []byte) error {
	if err := m.MkdirAll(path.Dir(cleanPath(filePath)), 0o755); err != nil {
		return err
	}
	return m.WriteFile(filePath, content, 0o644)
}

// SetModTime changes a file's modification time.
func (m *MemFS) SetModTime(filePath string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[cleanPath(filePath)]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: filePath, Err: fs.ErrNotExist}
	}
	f.modTime = t
	return nil
}

// Files returns all file paths, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
