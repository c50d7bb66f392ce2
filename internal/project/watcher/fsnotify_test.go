package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(WithBufferSize(16))
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func waitFor(t *testing.T, w Watcher, path string, op Op) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				t.Fatal("events channel closed")
			}
			if ev.Path == path && ev.Op.Has(op) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s on %s", op, path)
			return Event{}
		}
	}
}

func TestFSNotifyWatchFileRefcountsDirs(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	a := filepath.Join(dir, "a.mov")
	b := filepath.Join(dir, "b.png")
	if err := w.WatchFile(a); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchFile(b); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchFile(a); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("err = %v, want ErrAlreadyWatching", err)
	}

	stats := w.Stats()
	if stats.WatchedFiles != 2 || stats.WatchedDirs != 1 {
		t.Errorf("stats = %+v, want 2 files in 1 dir", stats)
	}
	if got := w.Files(); len(got) != 2 || got[0] != a {
		t.Errorf("Files() = %v", got)
	}

	if err := w.UnwatchFile(a); err != nil {
		t.Fatal(err)
	}
	if w.Stats().WatchedDirs != 1 {
		t.Error("dir should stay watched while b is watched")
	}
	if err := w.UnwatchFile(b); err != nil {
		t.Fatal(err)
	}
	if w.Stats().WatchedDirs != 0 {
		t.Error("dir should be released with its last file")
	}
	if err := w.UnwatchFile(b); !errors.Is(err, ErrNotWatching) {
		t.Errorf("err = %v, want ErrNotWatching", err)
	}
}

func TestFSNotifyMissingDirectory(t *testing.T) {
	w := newTestWatcher(t)
	err := w.WatchFile(filepath.Join(t.TempDir(), "nope", "a.mov"))
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("err = %v, want ErrPathNotExist", err)
	}
}

func TestFSNotifyReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t)

	target := filepath.Join(dir, "clip.mov")
	if err := w.WatchFile(target); err != nil {
		t.Fatal(err)
	}
	if !w.IsWatching(target) {
		t.Fatal("IsWatching = false")
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, w, target, OpCreate)
	if ev.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w, target, OpRemove)
}

func TestFSNotifyClose(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchFile(filepath.Join(t.TempDir(), "a")); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("err = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
