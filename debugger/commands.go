package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/slox/value"
	"github.com/lookbusy1344/slox/vm"
)

// Command handler implementations

// cmdRun starts program execution from the beginning.
func (d *Debugger) cmdRun(args []string) error {
	if d.VM.State != vm.StateIdle {
		return fmt.Errorf("program already started; use 'continue' or start a new session")
	}

	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue resumes execution from the current point.
func (d *Debugger) cmdContinue(args []string) error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program is not running")
	}

	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes exactly one bytecode instruction.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext executes instructions until the current source line changes.
func (d *Debugger) cmdNext(args []string) error {
	d.StepMode = StepLine
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint at a source line.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line> [if <condition>]")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(line, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at line %d (condition: %s)\n", bp.ID, line, condition)
	} else {
		d.Printf("Breakpoint %d at line %d\n", bp.ID, line)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit).
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <line>")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(line, true, "")
	d.Printf("Temporary breakpoint %d at line %d\n", bp.ID, line)

	return nil
}

// cmdDelete deletes breakpoint(s).
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdPrint prints the value of a global variable. Lox's debug surface has
// no expression language (see DESIGN.md); a global's name is the only
// thing print can look up.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <global-name>")
	}

	name := args[0]
	for handle, v := range d.VM.Globals {
		if handle.String() == name {
			d.Printf("%s = %s\n", name, value.Display(v))
			return nil
		}
	}

	return fmt.Errorf("undefined global variable '%s'", name)
}

// cmdGlobals lists every defined global variable and its current value.
func (d *Debugger) cmdGlobals(args []string) error {
	if len(d.VM.Globals) == 0 {
		d.Println("No globals defined")
		return nil
	}

	d.Println("Globals:")
	for handle, v := range d.VM.Globals {
		d.Printf("  %s = %s\n", handle.String(), value.Display(v))
	}
	return nil
}

// cmdStack prints the current operand stack, top first.
func (d *Debugger) cmdStack(args []string) error {
	snapshot := d.VM.StackSnapshot()
	if len(snapshot) == 0 {
		d.Println("Stack is empty")
		return nil
	}

	d.Println("Stack (top first):")
	for i := len(snapshot) - 1; i >= 0; i-- {
		d.Printf("  [%d] %s\n", i, value.Display(snapshot[i]))
	}
	return nil
}

// cmdDisassemble prints a full disassembly of the loaded chunk, or the
// single instruction at the current IP when called with "here".
func (d *Debugger) cmdDisassemble(args []string) error {
	if len(args) > 0 && args[0] == "here" {
		ip := d.VM.IP()
		line := d.VM.Chunk.LineOf(ip)
		text, _, err := d.VM.Chunk.DisassembleInstruction(ip, line, -1)
		if err != nil {
			return err
		}
		d.Println(text)
		return nil
	}

	d.Output.WriteString(d.VM.Chunk.Disassemble("script"))
	return nil
}

// cmdInfo shows breakpoint bookkeeping.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 || strings.ToLower(args[0]) != "breakpoints" {
		return fmt.Errorf("usage: info breakpoints")
	}
	return d.showBreakpoints()
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		d.Printf("  %d: line %d %s%s%s (hit %d times)\n",
			bp.ID, bp.Line, status, temp, condition, bp.HitCount)
	}

	return nil
}

// cmdList shows source code around the current line.
func (d *Debugger) cmdList(args []string) error {
	lines := strings.Split(d.Source, "\n")
	current := d.VM.Chunk.LineOf(d.VM.IP())

	start := current - 5
	if start < 1 {
		start = 1
	}
	end := current + 5
	if end > len(lines) {
		end = len(lines)
	}

	for ln := start; ln <= end; ln++ {
		marker := "  "
		if ln == current {
			marker = "=>"
		}
		if ln-1 < len(lines) {
			d.Printf("%s %4d  %s\n", marker, ln, lines[ln-1])
		}
	}

	return nil
}

// cmdReset reports that Lox debug sessions are single-shot.
func (d *Debugger) cmdReset(args []string) error {
	return fmt.Errorf("reset is not supported; start a new debug session to rerun the script")
}

// cmdHistory lists previously executed commands, or clears them with
// "history clear".
func (d *Debugger) cmdHistory(args []string) error {
	if len(args) > 0 && strings.ToLower(args[0]) == "clear" {
		d.History.Clear()
		d.Println("Command history cleared")
		return nil
	}

	all := d.History.GetAll()
	if len(all) == 0 {
		d.Println("No command history")
		return nil
	}

	for i, cmd := range all {
		d.Printf("  %3d  %s\n", i+1, cmd)
	}
	return nil
}

// cmdHelp displays help information.
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Bytecode Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)             - Start program execution")
	d.Println("  continue (c)        - Continue execution")
	d.Println("  step (s)            - Execute single bytecode instruction")
	d.Println("  next (n)            - Execute until the source line changes")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line>    - Set breakpoint at source line")
	d.Println("  tbreak (tb) <line>  - Set temporary breakpoint")
	d.Println("  delete (d) [id]     - Delete breakpoint(s)")
	d.Println("  enable <id>         - Enable breakpoint")
	d.Println("  disable <id>        - Disable breakpoint")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <name>     - Print a global variable's value")
	d.Println("  globals (g)          - List all global variables")
	d.Println("  stack                - Show the operand stack")
	d.Println("  disassemble [here]   - Disassemble the chunk, or just the current instruction")
	d.Println("  info (i) breakpoints - Show breakpoint bookkeeping")
	d.Println("  list (l)             - List source code around the current line")
	d.Println("  history [clear]      - Show or clear the command history")
	d.Println()
	d.Println("Control:")
	d.Println("  help (h, ?)          - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break":   "break <line> [if <condition>]\n  Set a breakpoint at the given source line.",
		"step":    "step\n  Execute a single bytecode instruction.",
		"next":    "next\n  Execute instructions until the source line changes.",
		"print":   "print <name>\n  Print the value of a global variable.",
		"info":    "info breakpoints\n  Display configured breakpoints.",
		"history": "history [clear]\n  List commands entered this session, or clear the list.",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
