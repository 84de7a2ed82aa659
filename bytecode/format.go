package bytecode

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/slox/value"
)

// Disassemble renders every instruction in c as a human-readable listing,
// one line per instruction, matching rustlox's chunk/debug.rs layout:
// offset, line (or "|" when unchanged from the previous instruction),
// mnemonic, and any resolved operand.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	lastLine := -1
	for offset < len(c.Code) {
		line := c.LineOf(offset)
		text, size, err := c.DisassembleInstruction(offset, line, lastLine)
		if err != nil {
			fmt.Fprintf(&sb, "%04d  ERROR: %v\n", offset, err)
			break
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		lastLine = line
		offset += size
	}
	return sb.String()
}

// DisassembleInstruction renders the single instruction at offset, returning
// its text and encoded size.
func (c *Chunk) DisassembleInstruction(offset, line, lastLine int) (string, int, error) {
	op, size, err := c.Decode(offset)
	if err != nil {
		return "", 0, err
	}

	var lineCol string
	if offset > 0 && line == lastLine {
		lineCol = "   |"
	} else {
		lineCol = fmt.Sprintf("%4d", line)
	}

	prefix := fmt.Sprintf("%04d %s %s", offset, lineCol, op)

	switch op {
	case OpConstant:
		idx := int(c.Code[offset+1])
		return fmt.Sprintf("%-28s %4d '%s'", prefix, idx, c.constantString(idx)), size, nil
	case OpConstantLong, OpDefineGlobalLong, OpGetGlobalLong, OpSetGlobalLong:
		idx := int(c.ReadU16(offset + 1))
		return fmt.Sprintf("%-28s %4d '%s'", prefix, idx, c.constantString(idx)), size, nil
	case OpDefineGlobal, OpGetGlobal, OpSetGlobal:
		idx := int(c.Code[offset+1])
		return fmt.Sprintf("%-28s %4d '%s'", prefix, idx, c.constantString(idx)), size, nil
	case OpGetLocal, OpSetLocal:
		slot := int(c.Code[offset+1])
		return fmt.Sprintf("%-28s %4d", prefix, slot), size, nil
	case OpJump, OpJumpIfFalse:
		jumpOffset := int(c.ReadU16(offset + 1))
		target := offset + 3 + jumpOffset
		return fmt.Sprintf("%-28s %4d -> %d", prefix, offset, target), size, nil
	case OpLoop:
		jumpOffset := int(c.ReadU16(offset + 1))
		target := offset + 3 - jumpOffset
		return fmt.Sprintf("%-28s %4d -> %d", prefix, offset, target), size, nil
	default:
		return prefix, size, nil
	}
}

func (c *Chunk) constantString(idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	return value.Display(c.Constants[idx])
}
