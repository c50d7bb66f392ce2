package history

// GroupScope closes a command group with defer:
//
//	defer h.GroupScope("Ripple delete").End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope. Only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope, undoing its commands.
func (g *GroupScope) Cancel() error {
	if !g.active {
		return nil
	}
	g.active = false
	return g.history.CancelGroup()
}

// Transaction runs fn within a group. If fn fails, the commands it
// executed are undone and fn's error is returned.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	if err := fn(); err != nil {
		_ = h.CancelGroup()
		return err
	}
	h.EndGroup()
	return nil
}

// ExecuteGrouped executes multiple commands as a single undo unit.
func (h *History) ExecuteGrouped(name string, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return h.Execute(cmds[0])
	}
	return h.Transaction(name, func() error {
		for _, cmd := range cmds {
			if err := h.Execute(cmd); err != nil {
				return err
			}
		}
		return nil
	})
}

// Checkpoint is a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// UndoToCheckpoint undoes all commands since the checkpoint.
func (h *History) UndoToCheckpoint(cp Checkpoint) error {
	for h.UndoCount() > cp.undoDepth {
		if err := h.Undo(); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes commands up to the checkpoint depth, as far as
// the redo stack allows.
func (h *History) RedoToCheckpoint(cp Checkpoint) error {
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		if err := h.Redo(); err != nil {
			return err
		}
	}
	return nil
}
