package history

import (
	"errors"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when a history is created with no limit.
const DefaultMaxEntries = 1000

// EntryInfo provides read-only info about an undo entry.
type EntryInfo struct {
	Description string
	Timestamp   time.Time
}

type undoEntry struct {
	command   Command
	timestamp time.Time
}

// History manages the undo/redo stacks of a project. Like the project it
// edits, it is used from a single goroutine.
type History struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries int

	// onChange is called after every change of the stacks.
	onChange func()
}

// Option configures a History.
type Option func(*History)

// WithOnChange registers fn to be called after Execute, Undo and Redo.
func WithOnChange(fn func()) Option {
	return func(h *History) {
		h.onChange = fn
	}
}

// NewHistory creates a history keeping at most maxEntries undo entries.
func NewHistory(maxEntries int, opts ...Option) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	h := &History{maxEntries: maxEntries}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push adds an already executed command to the undo stack and clears the
// redo stack.
func (h *History) Push(cmd Command) {
	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}
	h.push(cmd)
	h.changed()
}

func (h *History) push(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

func (h *History) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// Undo undoes the last command. A failed undo stays on the undo stack.
func (h *History) Undo() error {
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	if err := entry.command.Undo(); err != nil {
		return err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	h.changed()
	return nil
}

// Redo re-executes the last undone command.
func (h *History) Redo() error {
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	if err := entry.command.Execute(); err != nil {
		return err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, entry)
	h.changed()
	return nil
}

func (h *History) CanUndo() bool   { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool   { return len(h.redoStack) > 0 }
func (h *History) UndoCount() int  { return len(h.undoStack) }
func (h *History) RedoCount() int  { return len(h.redoStack) }
func (h *History) MaxEntries() int { return h.maxEntries }

// BeginGroup starts a command group. Commands pushed while grouping are
// combined into a single undo unit. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup combines the commands since BeginGroup into a CompoundCommand.
func (h *History) EndGroup() {
	if !h.grouping {
		return
	}
	h.grouping = false
	cmds := h.groupCmds
	h.groupCmds = nil
	if len(cmds) == 0 {
		return
	}
	h.push(NewCompoundCommand(h.groupName, cmds...))
	h.changed()
}

// CancelGroup ends a group and undoes the commands executed in it, most
// recent first.
func (h *History) CancelGroup() error {
	h.grouping = false
	cmds := h.groupCmds
	h.groupCmds = nil
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(); err != nil {
			return err
		}
	}
	return nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
}

// UndoInfo returns the undo entries, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	return entryInfo(h.undoStack)
}

// RedoInfo returns the redo entries, oldest first.
func (h *History) RedoInfo() []EntryInfo {
	return entryInfo(h.redoStack)
}

func entryInfo(stack []*undoEntry) []EntryInfo {
	out := make([]EntryInfo, len(stack))
	for i, e := range stack {
		out[i] = EntryInfo{Description: e.command.Description(), Timestamp: e.timestamp}
	}
	return out
}

// PeekUndo returns the next undo entry without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	if len(h.undoStack) == 0 {
		return EntryInfo{}, false
	}
	return entryInfo(h.undoStack[len(h.undoStack)-1:])[0], true
}

// PeekRedo returns the next redo entry without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return entryInfo(h.redoStack[len(h.redoStack)-1:])[0], true
}

// SetMaxEntries changes the limit, dropping the oldest entries if needed.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	h.maxEntries = n
	if len(h.undoStack) > n {
		h.undoStack = h.undoStack[len(h.undoStack)-n:]
	}
}
