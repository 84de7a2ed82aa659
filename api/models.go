package api

import (
	"time"

	"github.com/lookbusy1344/slox/service"
)

// RunRequest is the body of POST /api/v1/run: a Lox source string to
// compile and execute once, with no session kept afterward.
type RunRequest struct {
	Source string `json:"source"`
}

// RunResponse carries everything a one-shot run produced.
type RunResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Success    bool   `json:"success"`
}

// SessionCreateRequest represents a request to create a new debug session.
type SessionCreateRequest struct {
	Source string `json:"source"`
}

// SessionCreateResponse is returned when a debug session is created.
type SessionCreateResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStatusResponse reports a session's current execution state.
type SessionStatusResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Line      int    `json:"line"`
	Error     string `json:"error,omitempty"`
}

// BreakpointRequest sets or removes a breakpoint at a source line.
type BreakpointRequest struct {
	Line int `json:"line"`
}

// BreakpointsResponse lists configured breakpoints.
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// GlobalsResponse lists every defined global variable.
type GlobalsResponse struct {
	Globals []service.GlobalEntry `json:"globals"`
}

// StackResponse lists the operand stack, top first.
type StackResponse struct {
	Stack []service.StackEntry `json:"stack"`
}

// DisassemblyResponse lists every disassembled instruction in the loaded chunk.
type DisassemblyResponse struct {
	Lines []service.DisassemblyLine `json:"lines"`
}

// ErrorResponse is the standard error envelope for non-2xx JSON responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a minimal envelope for handlers with nothing else to report.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Event is a timestamped event envelope. The WebSocket stream does not use
// it: events go out as BroadcastEvent values (see broadcaster.go), which
// carry no timestamp.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent reports an execution-state transition for a running session.
type StateEvent struct {
	State string `json:"state"`
	Line  int    `json:"line"`
}

// OutputEvent carries a chunk of captured stdout/stderr text.
type OutputEvent struct {
	Stream  string `json:"stream"`
	Content string `json:"content"`
}

// ExecutionEvent reports a debugger-level occurrence (breakpoint hit,
// program finished, runtime error).
type ExecutionEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}
