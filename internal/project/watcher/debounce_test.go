package watcher

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type mockWatcher struct {
	mu     sync.Mutex
	files  map[string]bool
	events chan Event
	errors chan error
	closed bool
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		files:  make(map[string]bool),
		events: make(chan Event, 100),
		errors: make(chan error, 100),
	}
}

func (m *mockWatcher) WatchFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files[path] {
		return ErrAlreadyWatching
	}
	m.files[path] = true
	return nil
}

func (m *mockWatcher) UnwatchFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.files[path] {
		return ErrNotWatching
	}
	delete(m.files, path)
	return nil
}

func (m *mockWatcher) IsWatching(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[path]
}

func (m *mockWatcher) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	return out
}

func (m *mockWatcher) Events() <-chan Event { return m.events }
func (m *mockWatcher) Errors() <-chan error { return m.errors }

func (m *mockWatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
		close(m.errors)
	}
	return nil
}

func (m *mockWatcher) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{WatchedFiles: len(m.files)}
}

func (m *mockWatcher) send(path string, op Op) {
	m.events <- Event{Path: path, Op: op, Timestamp: time.Now()}
}

func receive(t *testing.T, ch <-chan Event, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestDebouncedWatcherCoalesces(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 30*time.Millisecond)
	defer dw.Close()

	mock.send("/media/a.mov", OpCreate)
	mock.send("/media/a.mov", OpWrite)
	mock.send("/media/a.mov", OpWrite)

	ev, ok := receive(t, dw.Events(), time.Second)
	if !ok {
		t.Fatal("expected a debounced event")
	}
	if ev.Path != "/media/a.mov" {
		t.Errorf("Path = %q", ev.Path)
	}
	if !ev.Op.Has(OpCreate) || !ev.Op.Has(OpWrite) {
		t.Errorf("Op = %b, want create|write", ev.Op)
	}

	if _, ok := receive(t, dw.Events(), 100*time.Millisecond); ok {
		t.Error("expected a single event for the burst")
	}
}

func TestDebouncedWatcherSeparatePaths(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 20*time.Millisecond)
	defer dw.Close()

	mock.send("/media/a.mov", OpWrite)
	mock.send("/media/b.png", OpRemove)

	seen := map[string]Op{}
	for range 2 {
		ev, ok := receive(t, dw.Events(), time.Second)
		if !ok {
			t.Fatal("expected two events")
		}
		seen[ev.Path] = ev.Op
	}
	if seen["/media/a.mov"] != OpWrite || seen["/media/b.png"] != OpRemove {
		t.Errorf("seen = %v", seen)
	}
}

func TestDebouncedWatcherFlush(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, time.Hour)
	defer dw.Close()

	mock.send("/media/a.mov", OpWrite)

	deadline := time.Now().Add(time.Second)
	for dw.PendingCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if dw.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", dw.PendingCount())
	}
	if got := dw.Stats().PendingEvents; got != 1 {
		t.Errorf("Stats().PendingEvents = %d, want 1", got)
	}

	dw.Flush()
	if _, ok := receive(t, dw.Events(), time.Second); !ok {
		t.Fatal("Flush should deliver the pending event")
	}
	if dw.PendingCount() != 0 {
		t.Errorf("PendingCount after flush = %d", dw.PendingCount())
	}
}

func TestDebouncedWatcherForwardsErrors(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 10*time.Millisecond)
	defer dw.Close()

	want := errors.New("boom")
	mock.errors <- want

	select {
	case err := <-dw.Errors():
		if !errors.Is(err, want) {
			t.Errorf("err = %v, want %v", err, want)
		}
	case <-time.After(time.Second):
		t.Fatal("expected forwarded error")
	}
}

func TestDebouncedWatcherDelegates(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 0)
	defer dw.Close()

	if dw.delay != DefaultDebounceDelay {
		t.Errorf("delay = %v, want default", dw.delay)
	}
	if err := dw.WatchFile("/media/a.mov"); err != nil {
		t.Fatal(err)
	}
	if !dw.IsWatching("/media/a.mov") || len(dw.Files()) != 1 {
		t.Error("WatchFile should reach the inner watcher")
	}
	if err := dw.UnwatchFile("/media/a.mov"); err != nil {
		t.Fatal(err)
	}
	if err := dw.UnwatchFile("/media/a.mov"); !errors.Is(err, ErrNotWatching) {
		t.Errorf("err = %v, want ErrNotWatching", err)
	}
}

func TestDebouncedWatcherCloseWithPending(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 5*time.Millisecond)

	mock.send("/media/a.mov", OpWrite)
	time.Sleep(time.Millisecond)
	if err := dw.Close(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	// Drain: the channel must be closed, never written after close.
	for range dw.Events() {
	}
	if err := dw.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
