package history

import "fmt"

// Command is a reversible edit of a project.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	// A failed Execute must leave the project unchanged.
	Execute() error

	// Undo reverses a successful Execute.
	Undo() error

	// Description returns a human-readable description of the command.
	Description() string
}

// FuncCommand adapts a pair of functions to Command.
type FuncCommand struct {
	Name   string
	DoFn   func() error
	UndoFn func() error
}

// NewFuncCommand creates a command from do and undo functions.
func NewFuncCommand(name string, do, undo func() error) *FuncCommand {
	return &FuncCommand{Name: name, DoFn: do, UndoFn: undo}
}

func (c *FuncCommand) Execute() error      { return c.DoFn() }
func (c *FuncCommand) Undo() error         { return c.UndoFn() }
func (c *FuncCommand) Description() string { return c.Name }

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute() error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo()
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo() error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
