package bytecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/value"
)

func TestDisassembleIncludesHeaderAndEachInstruction(t *testing.T) {
	c := bytecode.NewChunk()
	idx := c.AddConstant(value.Number(1))
	c.EmitByteOperand(bytecode.OpConstant, byte(idx), 1)
	c.Emit(bytecode.OpReturn, 1)

	out := c.Disassemble("test chunk")

	assert.True(t, strings.HasPrefix(out, "== test chunk ==\n"))
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_RETURN")
	assert.Contains(t, out, "'1'")
}

func TestDisassembleInstructionCollapsesRepeatedLineToPipe(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 5)
	c.Emit(bytecode.OpTrue, 5)

	_, size, err := c.DisassembleInstruction(0, 5, -1)
	require.NoError(t, err)

	text, _, err := c.DisassembleInstruction(size, 5, 5)
	require.NoError(t, err)
	assert.Contains(t, text, "   |")
}

func TestDisassembleInstructionResolvesJumpTarget(t *testing.T) {
	c := bytecode.NewChunk()
	operandOffset := c.EmitJump(bytecode.OpJump, 1)
	c.PatchU16(operandOffset, 0)

	instrOffset := operandOffset - 1
	text, _, err := c.DisassembleInstruction(instrOffset, 1, -1)
	require.NoError(t, err)
	assert.Contains(t, text, "->")
}
