// Package lua provides the sandboxed Lua runtime scripts run in.
//
// A State opens only the base, table, string and math libraries and
// removes every way of loading code from disk. Scripts reach the
// outside world through modules registered as globals.
//
//	state := lua.NewState(
//	    lua.WithExecutionTimeout(5 * time.Second),
//	    lua.WithOutput(func(line string) { logger.Info("%s", line) }),
//	)
//	defer state.Close()
//
//	state.RegisterModule("splice", funcs)
//	if err := state.DoString(ctx, "edit.lua", code); err != nil {
//	    return err
//	}
//
// Execution is bounded two ways: a deadline enforced through the
// LState context, and a budget of calls into Go that module functions
// charge through the Sandbox.
package lua
