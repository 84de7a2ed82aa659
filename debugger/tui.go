package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/slox/value"
)

// TUI is the full-screen text interface for the bytecode debugger, built on
// the teacher's tview/tcell layout: a source panel, a disassembly panel, a
// stack/globals sidebar, scrolling output, and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	DisassemblyView *tview.TextView
	StackView       *tview.TextView
	GlobalsView     *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface around dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.GlobalsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.GlobalsView.SetBorder(true).SetTitle(" Globals ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.DisassemblyView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.StackView, 0, 1, false).
		AddItem(t.GlobalsView, GlobalsDisplayRows, 0, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[yellow]Stopped: %s[white]\n", reason))
				break
			}
			halted, stepErr := t.Debugger.VM.Step()
			if stepErr != nil {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[red]Runtime error:[white] %v\n", stepErr))
				break
			}
			if halted {
				t.Debugger.Running = false
				t.WriteOutput("[green]Program finished[white]\n")
				break
			}
		}
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text)) // Ignore write errors in TUI
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateDisassemblyView()
	t.UpdateStackView()
	t.UpdateGlobalsView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView updates the source code view, centered on the current line.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	if t.Debugger.Source == "" {
		t.SourceView.SetText("[yellow]No source loaded[white]")
		return
	}

	lines := strings.Split(t.Debugger.Source, "\n")
	current := t.Debugger.VM.Chunk.LineOf(t.Debugger.VM.IP())

	start := current - SourceContextLines
	if start < 1 {
		start = 1
	}
	end := current + SourceContextLines
	if end > len(lines) {
		end = len(lines)
	}

	var out []string
	for ln := start; ln <= end; ln++ {
		marker := "  "
		color := "white"
		if ln == current {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(ln) != nil {
			marker = "* "
		}
		if ln-1 < len(lines) {
			out = append(out, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, ln, lines[ln-1]))
		}
	}

	t.SourceView.SetText(strings.Join(out, "\n"))
}

// UpdateDisassemblyView fills the disassembly view with the whole chunk's
// disassembly; the current IP is not marked.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()
	t.DisassemblyView.SetText(t.Debugger.VM.Chunk.Disassemble("script"))
}

// UpdateStackView updates the operand stack view.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	snapshot := t.Debugger.VM.StackSnapshot()
	var lines []string
	depth := len(snapshot)
	if depth > StackDisplayDepth {
		depth = StackDisplayDepth
	}
	for i := 0; i < depth; i++ {
		idx := len(snapshot) - 1 - i
		lines = append(lines, fmt.Sprintf("[%d] %s", idx, value.Display(snapshot[idx])))
	}
	if len(lines) == 0 {
		lines = append(lines, "[yellow]<empty>[white]")
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateGlobalsView updates the global-variable view.
func (t *TUI) UpdateGlobalsView() {
	t.GlobalsView.Clear()

	var lines []string
	for handle, v := range t.Debugger.VM.Globals {
		lines = append(lines, fmt.Sprintf("%s = %s", handle.String(), value.Display(v)))
	}
	if len(lines) == 0 {
		lines = append(lines, "[yellow]<none>[white]")
	}

	t.GlobalsView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints view.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string
	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) == 0 {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}
	for _, bp := range bps {
		status, color := "enabled", "green"
		if !bp.Enabled {
			status, color = "disabled", "red"
		}
		line := fmt.Sprintf("  %d: [%s]%s[white] line %d", bp.ID, color, status, bp.Line)
		if bp.Condition != "" {
			line += fmt.Sprintf(" if %s", bp.Condition)
		}
		line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
		lines = append(lines, line)
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]slox bytecode debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 for next, F11 to step\n")
	t.WriteOutput("Type 'help' for the command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
