package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency is an instruction interval for TUI redraws during continuous
	// execution. The TUI does not read it: it redraws once, after a run stops.
	DisplayUpdateFrequency = 100
)

// Source/disassembly context constants, mirroring config.Display's defaults.
const (
	// SourceContextLines is the number of source lines shown before and
	// after the current line in the list command and the TUI source panel.
	SourceContextLines = 5

	// StackDisplayDepth is the number of operand stack slots shown in the
	// TUI stack panel (top-most first).
	StackDisplayDepth = 16

	// GlobalsDisplayRows is the fixed height of the TUI globals panel.
	GlobalsDisplayRows = 10
)
