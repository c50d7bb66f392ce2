package app

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the loop's task buffer.
const DefaultQueueSize = 64

// Loop runs tasks one at a time on a single goroutine. The open project,
// its resource manager and its event bus are only touched from loop
// tasks, which is how they stay single-owner while other goroutines
// probe files or wait on the watcher.
type Loop struct {
	tasks chan func()

	started  atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	exited   chan struct{}

	processed atomic.Uint64
	observe   func(time.Duration, error)
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTaskObserver is called on the loop goroutine after every Do task.
func WithTaskObserver(fn func(d time.Duration, err error)) LoopOption {
	return func(l *Loop) {
		l.observe = fn
	}
}

// NewLoop creates a stopped loop. Tasks may be queued before Run.
func NewLoop(queueSize int, opts ...LoopOption) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	l := &Loop{
		tasks:  make(chan func(), queueSize),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks until ctx is done or Stop is called. It returns
// ErrAlreadyRunning if the loop was ever started before.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.exited)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.tasks:
			fn()
			l.processed.Add(1)
		}
	}
}

// Stop asks Run to return. Queued tasks that have not started are dropped.
func (l *Loop) Stop() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.exited }

// Processed returns the number of tasks run.
func (l *Loop) Processed() uint64 { return l.processed.Load() }

func (l *Loop) isExited() bool {
	select {
	case <-l.exited:
		return true
	default:
		return false
	}
}

// Post queues fn without waiting. It fails with ErrQueueFull rather than
// block.
func (l *Loop) Post(fn func()) error {
	if l.isExited() {
		return ErrNotRunning
	}
	select {
	case l.tasks <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs fn on the loop and waits for its result. A panic in fn is
// returned as a *RecoveredPanicError. Do must not be called from a task.
//
// If ctx ends while fn is queued or running, Do returns ctx.Err(); fn
// still runs to completion.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	if l.isExited() {
		return ErrNotRunning
	}

	result := make(chan error, 1)
	task := func() {
		start := time.Now()
		err := runRecovered(fn)
		if l.observe != nil {
			l.observe(time.Since(start), err)
		}
		result <- err
	}

	select {
	case l.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.exited:
		return ErrNotRunning
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.exited:
		select {
		case err := <-result:
			return err
		default:
			return ErrNotRunning
		}
	}
}

func runRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn()
}
