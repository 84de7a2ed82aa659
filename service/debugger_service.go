// Package service provides a thread-safe wrapper around a compiled chunk and
// its VM, shared by the CLI debugger, the TUI, and the HTTP/WebSocket API.
// Grounded on the teacher's service/debugger_service.go: same
// mutex-guarded-facade shape over a VM, generalized from an ARM program
// (symbols, source map over instruction addresses, registers/memory) to a
// compiled Lox chunk (globals, operand stack, a line table already built
// into bytecode.Chunk).
package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/compiler"
	"github.com/lookbusy1344/slox/debugger"
	"github.com/lookbusy1344/slox/value"
	"github.com/lookbusy1344/slox/vm"
)

const (
	// maxDisassemblyCount bounds how many disassembled lines GetDisassembly
	// returns in one call.
	maxDisassemblyCount = 10000
	// maxStackCount bounds how many stack entries GetStack returns.
	maxStackCount = 10000
)

var serviceLog *logrus.Logger

func init() {
	serviceLog = logrus.New()
	if os.Getenv("SLOX_DEBUG") == "" {
		serviceLog.SetOutput(os.Stderr)
		serviceLog.SetLevel(logrus.WarnLevel)
	} else {
		serviceLog.SetLevel(logrus.DebugLevel)
	}
}

// DebuggerService provides a thread-safe facade over a single compiled
// chunk and its VM, shared by every debug-capable host (CLI debugger, TUI,
// API session).
type DebuggerService struct {
	mu       sync.RWMutex
	vm       *vm.VM
	debugger *debugger.Debugger
	source   string
}

// NewDebuggerService compiles source and wraps the resulting chunk in a VM
// and a line-oriented debugger, writing program output/diagnostics to out/errW.
func NewDebuggerService(source string, out, errW io.Writer) (*DebuggerService, error) {
	res, err := compiler.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	machine := vm.New(res.Chunk, res.Pool, out, errW)
	machine.Log = serviceLog

	dbg := debugger.NewDebugger(machine, source)

	return &DebuggerService{
		vm:       machine,
		debugger: dbg,
		source:   source,
	}, nil
}

// Chunk returns the compiled chunk backing this session, for disassembly.
func (s *DebuggerService) Chunk() *bytecode.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Chunk
}

// GetExecutionState returns the current execution state.
func (s *DebuggerService) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VMStateToExecution(s.vm.State)
}

// Step executes exactly one bytecode instruction.
func (s *DebuggerService) Step() (halted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vm.Step()
}

// Continue marks the session running so the caller's step loop proceeds
// until a breakpoint or halt.
func (s *DebuggerService) Continue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.State = vm.StateRunning
	s.debugger.Running = true
	s.debugger.StepMode = debugger.StepNone
}

// ShouldBreak reports whether the session should pause at the VM's current
// instruction.
func (s *DebuggerService) ShouldBreak() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.ShouldBreak()
}

// Run drives the VM to completion (or a runtime error), checking
// breakpoints between instructions; it returns once the program halts, a
// breakpoint stops it, or a runtime error occurs.
func (s *DebuggerService) Run() error {
	s.mu.Lock()
	s.vm.State = vm.StateRunning
	s.mu.Unlock()

	for {
		if stop, _ := s.ShouldBreak(); stop {
			s.mu.Lock()
			s.vm.State = vm.StateHalted
			s.mu.Unlock()
			return nil
		}

		halted, err := s.Step()
		if err != nil {
			return err
		}
		if halted {
			s.mu.Lock()
			s.vm.State = vm.StateHalted
			s.mu.Unlock()
			return nil
		}
	}
}

// AddBreakpoint sets a breakpoint at a source line.
func (s *DebuggerService) AddBreakpoint(line int) BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp := s.debugger.Breakpoints.AddBreakpoint(line, false, "")
	return toBreakpointInfo(bp)
}

// RemoveBreakpoint removes the breakpoint at a source line.
func (s *DebuggerService) RemoveBreakpoint(line int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugger.Breakpoints.DeleteBreakpointAt(line)
}

// GetBreakpoints returns all configured breakpoints.
func (s *DebuggerService) GetBreakpoints() []BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bps := s.debugger.Breakpoints.GetAllBreakpoints()
	result := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		result[i] = toBreakpointInfo(bp)
	}
	return result
}

// ClearAllBreakpoints removes every breakpoint.
func (s *DebuggerService) ClearAllBreakpoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugger.Breakpoints.Clear()
}

func toBreakpointInfo(bp *debugger.Breakpoint) BreakpointInfo {
	return BreakpointInfo{
		ID:        bp.ID,
		Line:      bp.Line,
		Enabled:   bp.Enabled,
		Temporary: bp.Temporary,
		Condition: bp.Condition,
		HitCount:  bp.HitCount,
	}
}

// GetGlobals returns every defined global variable and its current value.
func (s *DebuggerService) GetGlobals() []GlobalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]GlobalEntry, 0, len(s.vm.Globals))
	for handle, v := range s.vm.Globals {
		result = append(result, GlobalEntry{Name: handle.String(), Value: value.Display(v)})
	}
	return result
}

// GetStack returns up to maxStackCount operand-stack entries, top first.
func (s *DebuggerService) GetStack() []StackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.vm.StackSnapshot()
	count := len(snapshot)
	if count > maxStackCount {
		count = maxStackCount
	}

	result := make([]StackEntry, 0, count)
	for i := 0; i < count; i++ {
		idx := len(snapshot) - 1 - i
		result = append(result, StackEntry{Index: idx, Value: value.Display(snapshot[idx])})
	}
	return result
}

// GetDisassembly returns up to maxDisassemblyCount disassembled lines.
func (s *DebuggerService) GetDisassembly() ([]DisassemblyLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.vm.Chunk.InstructionCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count instructions: %w", err)
	}
	if count > maxDisassemblyCount {
		count = maxDisassemblyCount
	}

	result := make([]DisassemblyLine, 0, count)
	lastLine := -1
	for i := 0; i < count; i++ {
		instrOffset, err := s.vm.Chunk.InstructionOffset(i)
		if err != nil {
			break
		}
		line := s.vm.Chunk.LineOf(instrOffset)
		text, _, err := s.vm.Chunk.DisassembleInstruction(instrOffset, line, lastLine)
		if err != nil {
			break
		}
		result = append(result, DisassemblyLine{Offset: instrOffset, Line: line, Text: text})
		lastLine = line
	}

	return result, nil
}

// CurrentLine returns the source line the VM is currently positioned at.
func (s *DebuggerService) CurrentLine() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Chunk.LineOf(s.vm.IP())
}
