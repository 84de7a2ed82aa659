package debugger

import (
	"bytes"
	"testing"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/value"
	"github.com/lookbusy1344/slox/vm"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()

	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.OpNil, 1)
	chunk.Emit(bytecode.OpReturn, 1)

	machine := vm.New(chunk, value.NewPool(), &bytes.Buffer{}, &bytes.Buffer{})
	return NewDebugger(machine, "nil;\n")
}

func TestCmdHistoryListsExecutedCommands(t *testing.T) {
	d := newTestDebugger(t)

	if err := d.ExecuteCommand("break 1"); err != nil {
		t.Fatalf("break 1: %v", err)
	}
	if err := d.ExecuteCommand("history"); err != nil {
		t.Fatalf("history: %v", err)
	}

	out := d.GetOutput()
	if !bytes.Contains([]byte(out), []byte("break 1")) {
		t.Errorf("history output %q does not mention the prior command", out)
	}
}

func TestCmdHistoryClearEmptiesHistory(t *testing.T) {
	d := newTestDebugger(t)

	_ = d.ExecuteCommand("break 1")
	_ = d.ExecuteCommand("history clear")
	d.GetOutput()

	if got := d.History.Size(); got != 0 {
		t.Fatalf("History.Size() after clear = %d, want 0", got)
	}

	// Running "history" itself is recorded before it lists the (now empty)
	// history, so it becomes the sole entry shown.
	if err := d.ExecuteCommand("history"); err != nil {
		t.Fatalf("history: %v", err)
	}

	out := d.GetOutput()
	if out != "    1  history\n" {
		t.Errorf("expected only the 'history' command itself, got %q", out)
	}
}
