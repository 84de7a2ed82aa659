package service

import "github.com/lookbusy1344/slox/vm"

// BreakpointInfo represents a breakpoint for UI/API display.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	Line      int    `json:"line"`
	Enabled   bool   `json:"enabled"`
	Temporary bool   `json:"temporary"`
	Condition string `json:"condition"`
	HitCount  int    `json:"hit_count"`
}

// ExecutionState represents the current state of a debug session.
type ExecutionState string

const (
	StateIdle       ExecutionState = "idle"
	StateRunning    ExecutionState = "running"
	StateHalted     ExecutionState = "halted"
	StateBreakpoint ExecutionState = "breakpoint"
	StateError      ExecutionState = "error"
)

// VMStateToExecution converts a vm.State into the session-facing
// ExecutionState string used by the debugger and the API.
func VMStateToExecution(state vm.State) ExecutionState {
	switch state {
	case vm.StateIdle:
		return StateIdle
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateError:
		return StateError
	default:
		return StateIdle
	}
}

// GlobalEntry is a single global variable binding, for UI/API display.
type GlobalEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StackEntry is a single operand-stack slot, for UI/API display.
type StackEntry struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// DisassemblyLine is a single rendered line of bytecode.Chunk.Disassemble's
// output, split out so the API can return it as structured JSON instead of
// one opaque blob of text.
type DisassemblyLine struct {
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
}
