package project

import (
	"context"

	"github.com/dshills/splice/internal/project/vfs"
)

// Snapshot encodes the project for writing. It must run on the goroutine
// that owns the project; the returned bytes are independent of it.
func (p *Project) Snapshot() ([]byte, error) {
	return Encode(p)
}

// WriteSnapshot writes data to path through a temporary file in the same
// directory, so a crash never leaves a truncated project behind. It does
// not touch any project and may run on any goroutine.
func WriteSnapshot(fsys vfs.VFS, path string, data []byte) error {
	dir := fsys.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return NewPathError("write", path, err)
	}
	tmp := fsys.Join(dir, "."+fsys.Base(path)+".tmp")
	if err := fsys.WriteFile(tmp, data, 0o644); err != nil {
		return NewPathError("write", path, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return NewPathError("write", path, err)
	}
	return nil
}

// Save writes the project to path, or to its current path when path is
// empty, and marks it saved.
func (p *Project) Save(ctx context.Context, fsys vfs.VFS, path string) error {
	if path == "" {
		path = p.filePath
	}
	if path == "" {
		return ErrNoFilePath
	}
	data, err := p.Snapshot()
	if err != nil {
		return NewPathError("save", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteSnapshot(fsys, path, data); err != nil {
		return err
	}
	p.MarkSaved(path)
	return nil
}

// ReadFile reads project bytes. It may run on any goroutine.
func ReadFile(ctx context.Context, fsys vfs.Reader, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, NewPathError("load", path, err)
	}
	return data, nil
}

// Load reads and decodes the project at path.
func Load(ctx context.Context, fsys vfs.Reader, path string, reg *Registry, opts ...Option) (*Project, error) {
	data, err := ReadFile(ctx, fsys, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := Decode(data, reg, opts...)
	if err != nil {
		return nil, NewPathError("load", path, err)
	}
	p.filePath = path
	p.hasSavedOnce = true
	return p, nil
}
