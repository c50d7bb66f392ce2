package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDelay coalesces the burst of writes of a file copy.
const DefaultDebounceDelay = 250 * time.Millisecond

// DebouncedWatcher wraps a Watcher and coalesces rapid changes to the same
// file into one event carrying the combined operations.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	mu       sync.Mutex
	pending  map[string]*pendingEvent
	events   chan Event
	errors   chan error
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

var _ Watcher = (*DebouncedWatcher)(nil)

// NewDebouncedWatcher wraps inner with a debounce delay.
func NewDebouncedWatcher(inner Watcher, delay time.Duration) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}

	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 100),
		errors:  make(chan error, 100),
		closeCh: make(chan struct{}),
	}

	dw.closedWg.Add(1)
	go dw.processLoop()

	return dw
}

func (dw *DebouncedWatcher) WatchFile(path string) error   { return dw.inner.WatchFile(path) }
func (dw *DebouncedWatcher) UnwatchFile(path string) error { return dw.inner.UnwatchFile(path) }
func (dw *DebouncedWatcher) IsWatching(path string) bool   { return dw.inner.IsWatching(path) }
func (dw *DebouncedWatcher) Files() []string               { return dw.inner.Files() }
func (dw *DebouncedWatcher) Events() <-chan Event          { return dw.events }
func (dw *DebouncedWatcher) Errors() <-chan error          { return dw.errors }

// Close stops the debounced watcher and the inner watcher.
func (dw *DebouncedWatcher) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	close(dw.closeCh)
	for path, p := range dw.pending {
		p.timer.Stop()
		delete(dw.pending, path)
	}
	dw.mu.Unlock()

	dw.closedWg.Wait()

	// fireEvent checks closed under mu, so nothing sends after this.
	dw.mu.Lock()
	close(dw.events)
	close(dw.errors)
	dw.mu.Unlock()

	return dw.inner.Close()
}

// Stats returns the inner statistics with the pending count.
func (dw *DebouncedWatcher) Stats() Stats {
	dw.mu.Lock()
	pendingCount := len(dw.pending)
	dw.mu.Unlock()

	stats := dw.inner.Stats()
	stats.PendingEvents = pendingCount
	return stats
}

func (dw *DebouncedWatcher) processLoop() {
	defer dw.closedWg.Done()

	for {
		select {
		case <-dw.closeCh:
			return

		case event, ok := <-dw.inner.Events():
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			dw.forwardError(err)
		}
	}
}

func (dw *DebouncedWatcher) handleEvent(event Event) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.closed {
		return
	}
	if p, exists := dw.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(dw.delay)
		return
	}

	path := event.Path
	dw.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(dw.delay, func() { dw.fireEvent(path) }),
	}
}

func (dw *DebouncedWatcher) fireEvent(path string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	p, exists := dw.pending[path]
	if !exists || dw.closed {
		return
	}
	delete(dw.pending, path)

	select {
	case dw.events <- p.event:
	default:
	}
}

func (dw *DebouncedWatcher) forwardError(err error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.closed {
		return
	}
	select {
	case dw.errors <- err:
	default:
	}
}

// Flush fires all pending events immediately.
func (dw *DebouncedWatcher) Flush() {
	dw.mu.Lock()
	paths := make([]string, 0, len(dw.pending))
	for path, p := range dw.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	dw.mu.Unlock()

	for _, path := range paths {
		dw.fireEvent(path)
	}
}

// PendingCount returns the number of pending events.
func (dw *DebouncedWatcher) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}
