package plugin

import (
	"errors"
	"fmt"
)

// ErrEmptyScript is returned for a script with no code.
var ErrEmptyScript = errors.New("script is empty")

// ScriptError reports a script that failed to run.
type ScriptError struct {
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
