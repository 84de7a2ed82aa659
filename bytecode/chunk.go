// Package bytecode implements the compact instruction stream a Chunk holds:
// opcodes and inline operands, a constant pool, and a run-length-encoded
// line table, plus a disassembler for debugging and tracing.
package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/lookbusy1344/slox/value"
)

// MaxConstants is the largest constant-pool index the long operand form can
// address. Exceeding it is a compile error.
const MaxConstants = 1<<16 - 1

// lineRun is one run of the RLE line table: `count` consecutive instructions
// all attributed to `line`.
type lineRun struct {
	line  int
	count int
}

// Chunk is a compiled compilation unit: byte-encoded instructions, a
// constant pool, and a line table, produced once per interpret call.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	lines     []lineRun
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// writeRaw appends a single raw byte to the instruction stream without
// touching the line table; only the opcode byte of each instruction records
// a line, so the RLE run count equals the instruction count (spec invariant).
func (c *Chunk) writeRaw(b byte) {
	c.Code = append(c.Code, b)
}

// Emit appends an opcode with no operand.
func (c *Chunk) Emit(op OpCode, line int) {
	c.writeRaw(byte(op))
	c.recordLine(line)
}

// EmitByteOperand appends an opcode followed by a single-byte operand.
func (c *Chunk) EmitByteOperand(op OpCode, operand byte, line int) {
	c.writeRaw(byte(op))
	c.recordLine(line)
	c.writeRaw(operand)
}

// EmitU16Operand appends an opcode followed by a little-endian 16-bit
// operand.
func (c *Chunk) EmitU16Operand(op OpCode, operand uint16, line int) {
	c.writeRaw(byte(op))
	c.recordLine(line)
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], operand)
	c.writeRaw(buf[0])
	c.writeRaw(buf[1])
}

// EmitJump appends a jump/loop opcode with a placeholder u16 operand and
// returns the offset of the operand's first byte, for later PatchJump.
func (c *Chunk) EmitJump(op OpCode, line int) int {
	c.writeRaw(byte(op))
	c.recordLine(line)
	c.writeRaw(0xff)
	c.writeRaw(0xff)
	return len(c.Code) - 2
}

// PatchU16 overwrites the little-endian 16-bit operand at offset.
func (c *Chunk) PatchU16(offset int, value uint16) {
	binary.LittleEndian.PutUint16(c.Code[offset:offset+2], value)
}

// ReadU16 reads the little-endian 16-bit operand at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return binary.LittleEndian.Uint16(c.Code[offset : offset+2])
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) recordLine(line int) {
	if len(c.lines) > 0 && c.lines[len(c.lines)-1].line == line {
		c.lines[len(c.lines)-1].count++
		return
	}
	c.lines = append(c.lines, lineRun{line: line, count: 1})
}

// LineAtInstruction walks the RLE runs to find the source line of the
// instrIndex'th instruction (0-based), per spec.md §4.2's line_of(op_index).
func (c *Chunk) LineAtInstruction(instrIndex int) int {
	idx := 0
	for _, run := range c.lines {
		if instrIndex < idx+run.count {
			return run.line
		}
		idx += run.count
	}
	if len(c.lines) > 0 {
		return c.lines[len(c.lines)-1].line
	}
	return 0
}

// Decode reads one instruction at byte offset pc, returning the opcode and
// its total encoded size.
func (c *Chunk) Decode(pc int) (OpCode, int, error) {
	if pc < 0 || pc >= len(c.Code) {
		return 0, 0, fmt.Errorf("pc %d out of range (code length %d)", pc, len(c.Code))
	}
	op := OpCode(c.Code[pc])
	if _, ok := instructionSizes[op]; !ok {
		return 0, 0, fmt.Errorf("invalid opcode 0x%02x at offset %d", c.Code[pc], pc)
	}
	return op, op.Size(), nil
}

// LineOf returns the source line of the instruction starting at byte offset
// pc, by walking instructions from the start of Code and counting how many
// precede pc. pc must be the start of an instruction (a valid decode walk
// stop); used for runtime-error line reporting and disassembly, both of
// which already walk Code sequentially, so this stays linear in practice.
func (c *Chunk) LineOf(pc int) int {
	instrIndex := 0
	offset := 0
	for offset < pc && offset < len(c.Code) {
		op, size, err := c.Decode(offset)
		if err != nil {
			break
		}
		_ = op
		offset += size
		instrIndex++
	}
	return c.LineAtInstruction(instrIndex)
}

// FirstLineAt returns the byte offset of the first instruction whose source
// line is >= targetLine, or -1 if none. The debugger does not call it: its
// breakpoints match against LineOf at each instruction instead.
func (c *Chunk) FirstLineAt(targetLine int) int {
	instrIndex := 0
	for _, run := range c.lines {
		if run.line >= targetLine {
			offset, err := c.InstructionOffset(instrIndex)
			if err != nil {
				return -1
			}
			return offset
		}
		instrIndex += run.count
	}
	return -1
}

// InstructionOffset returns the byte offset of the instrIndex'th instruction.
func (c *Chunk) InstructionOffset(instrIndex int) (int, error) {
	offset := 0
	for i := 0; i < instrIndex; i++ {
		_, size, err := c.Decode(offset)
		if err != nil {
			return 0, err
		}
		offset += size
	}
	if offset > len(c.Code) {
		return 0, fmt.Errorf("instruction index %d out of range", instrIndex)
	}
	return offset, nil
}

// InstructionCount returns the number of instructions reachable by a decode
// walk of Code — the instruction side of the RLE line table invariant
// (Σ counts == number of instructions).
func (c *Chunk) InstructionCount() (int, error) {
	n := 0
	pc := 0
	for pc < len(c.Code) {
		_, size, err := c.Decode(pc)
		if err != nil {
			return 0, err
		}
		pc += size
		n++
	}
	return n, nil
}
