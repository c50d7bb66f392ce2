package lua

import (
	"strings"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L *lua.LState

	callLimit int64
	callCount int64

	output func(string)
}

// NewSandbox creates a new sandbox for the Lua state. A callLimit of zero
// or less disables the call budget; a nil output discards print.
func NewSandbox(L *lua.LState, callLimit int64, output func(string)) *Sandbox {
	if output == nil {
		output = func(string) {}
	}
	return &Sandbox{
		L:         L,
		callLimit: callLimit,
		output:    output,
	}
}

// Install removes the loaders and replaces print.
func (s *Sandbox) Install() {
	for _, name := range []string{
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"require",
		"module",
	} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
}

// installPrint routes print to the output function, one call per line.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = lua.LVAsString(L.ToStringMeta(L.Get(i + 1)))
		}
		s.output(strings.Join(parts, "\t"))
		return 0
	}))
}

// ResetCallCount resets the call counter.
func (s *Sandbox) ResetCallCount() {
	atomic.StoreInt64(&s.callCount, 0)
}

// CallCount returns the number of calls charged since the last reset.
func (s *Sandbox) CallCount() int64 {
	return atomic.LoadInt64(&s.callCount)
}

// Exceeded returns true if the call budget is used up.
func (s *Sandbox) Exceeded() bool {
	return s.callLimit > 0 && s.CallCount() > s.callLimit
}

// Charge counts one call into Go and raises a Lua error once the budget
// is exceeded. Module functions call it first.
func (s *Sandbox) Charge(L *lua.LState) {
	if s.callLimit <= 0 {
		atomic.AddInt64(&s.callCount, 1)
		return
	}
	if atomic.AddInt64(&s.callCount, 1) > s.callLimit {
		L.RaiseError("%s", ErrCallLimit.Error())
	}
}
