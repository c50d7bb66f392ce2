package app

import (
	"errors"
	"fmt"
	"strings"
)

// Application errors.
var (
	// ErrNoProject is returned by operations that need an open project.
	ErrNoProject = errors.New("no project open")

	// ErrProjectOpen is returned when opening or creating a project while
	// another one is open.
	ErrProjectOpen = errors.New("a project is already open")

	// ErrUnsavedChanges is returned when closing a modified project
	// without force.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrAlreadyRunning is returned by a second Loop.Run.
	ErrAlreadyRunning = errors.New("loop already running")

	// ErrNotRunning is returned when posting to a stopped loop.
	ErrNotRunning = errors.New("loop not running")

	// ErrQueueFull is returned by Post when the task queue is full.
	ErrQueueFull = errors.New("task queue full")
)

// OperationError is a failed project operation.
type OperationError struct {
	Op      string // "new", "open", "save", "close", "script", "check"
	Target  string // usually a file path
	Context string
	Err     error
}

// NewOperationError creates an OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

// WithContext sets Context. It is nil-safe.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError is a failure while starting or stopping a component.
type ComponentError struct {
	Component string // "config", "loop", "watcher"
	Action    string
	Err       error
}

// NewComponentError creates a ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{e.Component}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RecoveredPanicError is a panic caught on the loop goroutine. Stack is
// included in Error, so keep it out of user-facing messages.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error, so errors.As can
// reach a typed corruption panic.
func (e *RecoveredPanicError) Unwrap() error {
	if e == nil {
		return nil
	}
	err, _ := e.Value.(error)
	return err
}
