// Package debugger implements a line-oriented interactive debugger for
// compiled Lox chunks, plus an optional tcell/tview TUI front-end. It is
// grounded on the teacher's debugger package: the same command-dispatch
// shape, breakpoint manager, and command-history buffer, adapted from an
// instruction-address/register domain to a bytecode-offset/stack-slot one.
// Breakpoints are keyed by source line rather than address, since a Lox
// bytecode offset is not something a human can usefully type.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/slox/vm"
)

// Debugger holds the state of an interactive bytecode-debugging session
// around a single VM.
type Debugger struct {
	VM     *vm.VM
	Source string // original script text, for the list command

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running  bool
	StepMode StepMode

	// lastLine is the source line the VM was at when it last stopped,
	// used by StepLine to detect when execution has moved to a new line.
	lastLine int

	LastCommand string

	Output strings.Builder
}

// StepMode controls how ShouldBreak decides to pause execution.
type StepMode int

const (
	StepNone   StepMode = iota // run until a breakpoint or halt
	StepSingle                 // pause after exactly one bytecode instruction
	StepLine                   // pause once the source line changes
)

// NewDebugger creates a debugger wrapping machine, with source retained for
// the list command.
func NewDebugger(machine *vm.VM, source string) *Debugger {
	return &Debugger{
		VM:          machine,
		Source:      source,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		Running:     false,
		StepMode:    StepNone,
		lastLine:    -1,
	}
}

// ResolveLine parses a breakpoint target as a source line number.
func (d *Debugger) ResolveLine(lineStr string) (int, error) {
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return 0, fmt.Errorf("invalid line number: %s", lineStr)
	}
	return line, nil
}

// ExecuteCommand parses and dispatches a single command line. An empty line
// repeats the last command, matching the teacher's REPL convention for
// step/next/continue.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

// handleCommand dispatches commands to their handlers
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "globals", "g":
		return d.cmdGlobals(args)
	case "stack":
		return d.cmdStack(args)
	case "disassemble", "disasm":
		return d.cmdDisassemble(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)

	case "reset":
		return d.cmdReset(args)

	case "history":
		return d.cmdHistory(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks whether execution should pause at the VM's current
// instruction, returning a human-readable stop reason when it should.
func (d *Debugger) ShouldBreak() (bool, string) {
	line := d.VM.Chunk.LineOf(d.VM.IP())

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		d.lastLine = line
		return true, "single step"

	case StepLine:
		if line != d.lastLine {
			d.StepMode = StepNone
			d.lastLine = line
			return true, "next line"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(line); bp != nil {
		if !bp.Enabled || line == d.lastLine {
			return false, ""
		}

		d.lastLine = line
		d.Breakpoints.ProcessHit(line)
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	d.lastLine = line
	return false, ""
}

// GetOutput returns and clears the accumulated command output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
