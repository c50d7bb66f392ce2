package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	go func() { _ = l.Run(context.Background()) }()
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})
}

func TestLoop_Do(t *testing.T) {
	var observed []error
	l := NewLoop(4, WithTaskObserver(func(_ time.Duration, err error) {
		observed = append(observed, err)
	}))
	startLoop(t, l)
	ctx := context.Background()

	n := 0
	for range 3 {
		if err := l.Do(ctx, func() error { n++; return nil }); err != nil {
			t.Fatalf("Do() error: %v", err)
		}
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}

	sentinel := errors.New("edit failed")
	if err := l.Do(ctx, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Do() error = %v, want %v", err, sentinel)
	}

	err := l.Do(ctx, func() error { panic("boom") })
	var rec *RecoveredPanicError
	if !errors.As(err, &rec) || rec.Value != "boom" || rec.Stack == "" {
		t.Errorf("Do() error = %v, want recovered panic with stack", err)
	}

	// Read through the loop so the observer slice is not raced.
	var count int
	_ = l.Do(ctx, func() error { count = len(observed); return nil })
	if count != 5 {
		t.Errorf("observer saw %d tasks before the last, want 5", count)
	}
}

func TestLoop_RunTwice(t *testing.T) {
	l := NewLoop(1)
	startLoop(t, l)

	// Wait until the first Run owns the loop.
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestLoop_PostQueueFull(t *testing.T) {
	l := NewLoop(1)

	if err := l.Post(func() {}); err != nil {
		t.Fatalf("first Post() error: %v", err)
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second Post() = %v, want ErrQueueFull", err)
	}

	startLoop(t, l)
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got := l.Processed(); got < 1 {
		t.Errorf("Processed() = %d, want the queued task counted", got)
	}
}

func TestLoop_DoContextDone(t *testing.T) {
	l := NewLoop(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() on a loop that never runs = %v, want DeadlineExceeded", err)
	}
}

func TestLoop_Stopped(t *testing.T) {
	l := NewLoop(1)
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	l.Stop()
	l.Stop()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil after Stop", err)
	}

	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Do() = %v, want ErrNotRunning", err)
	}
	if err := l.Post(func() {}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Post() = %v, want ErrNotRunning", err)
	}
}

func TestLoop_ContextCancelStopsRun(t *testing.T) {
	l := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
