package lua

import (
	"context"
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestNewState(t *testing.T) {
	state := NewState()
	defer state.Close()

	if state.IsClosed() {
		t.Error("NewState() returned closed state")
	}
	if state.LuaState() == nil {
		t.Error("LuaState() is nil")
	}
	for _, lib := range []string{"string", "table", "math"} {
		if state.GetGlobal(lib) == glua.LNil {
			t.Errorf("library %s should be open", lib)
		}
	}
	for _, lib := range []string{"io", "os", "debug", "package"} {
		if state.GetGlobal(lib) != glua.LNil {
			t.Errorf("library %s should not be open", lib)
		}
	}
}

func TestStateDoString(t *testing.T) {
	state := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), "t", `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v, ok := state.GetGlobal("x").(glua.LNumber); !ok || v != 2 {
		t.Errorf("x = %v, want 2", state.GetGlobal("x"))
	}

	if err := state.DoString(context.Background(), "t", `error("boom")`); err == nil {
		t.Error("runtime error should be returned")
	}
	if err := state.DoString(context.Background(), "t", `x = `); err == nil {
		t.Error("syntax error should be returned")
	}
}

func TestStateTimeout(t *testing.T) {
	state := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer state.Close()

	err := state.DoString(context.Background(), "loop", `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("DoString() error = %v, want ErrExecutionTimeout", err)
	}

	// The state stays usable after a timeout.
	if err := state.DoString(context.Background(), "t", `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCancel(t *testing.T) {
	state := NewState(WithExecutionTimeout(0))
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := state.DoString(ctx, "loop", `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DoString() error = %v, want context.Canceled", err)
	}
}

func TestStateCallLimit(t *testing.T) {
	state := NewState(WithCallLimit(3))
	defer state.Close()

	sb := state.Sandbox()
	state.RegisterModule("m", map[string]glua.LGFunction{
		"tick": func(L *glua.LState) int {
			sb.Charge(L)
			return 0
		},
	})

	if err := state.DoString(context.Background(), "ok", `m.tick() m.tick() m.tick()`); err != nil {
		t.Fatalf("three calls should fit: %v", err)
	}
	if sb.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", sb.CallCount())
	}

	err := state.DoString(context.Background(), "over", `for i = 1, 10 do m.tick() end`)
	if !errors.Is(err, ErrCallLimit) {
		t.Errorf("DoString() error = %v, want ErrCallLimit", err)
	}
}

func TestStateClose(t *testing.T) {
	state := NewState()
	if err := state.Close(); err != nil {
		t.Fatal(err)
	}
	if err := state.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !state.IsClosed() {
		t.Error("IsClosed() should be true")
	}
	if err := state.DoString(context.Background(), "t", `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() on closed state = %v", err)
	}
	if state.GetGlobal("x") != glua.LNil {
		t.Error("GetGlobal() on closed state should be nil")
	}
	if state.RegisterModule("m", nil) != nil {
		t.Error("RegisterModule() on closed state should return nil")
	}
}
