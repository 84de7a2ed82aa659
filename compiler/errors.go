package compiler

import "fmt"

// CompileError reports one diagnostic detected during compilation, in the
// `[line L] Error at <start>: <message>` format spec.md §7 specifies.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, e.Where, e.Message)
}
