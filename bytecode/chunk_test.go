package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/value"
)

func TestEmitAndDecodeReturn(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpReturn, 1)

	op, size, err := c.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, bytecode.OpReturn, op)
	assert.Equal(t, 1, size)
}

func TestEmitByteOperandRoundTrips(t *testing.T) {
	c := bytecode.NewChunk()
	c.EmitByteOperand(bytecode.OpGetLocal, 7, 1)

	assert.Equal(t, byte(7), c.Code[1])
}

func TestEmitU16OperandRoundTrips(t *testing.T) {
	c := bytecode.NewChunk()
	c.EmitU16Operand(bytecode.OpGetGlobalLong, 300, 1)

	assert.Equal(t, uint16(300), c.ReadU16(1))
}

func TestEmitJumpAndPatchU16(t *testing.T) {
	c := bytecode.NewChunk()
	offset := c.EmitJump(bytecode.OpJumpIfFalse, 1)
	c.Emit(bytecode.OpPop, 1)
	c.PatchU16(offset, uint16(len(c.Code)))

	assert.Equal(t, uint16(len(c.Code)), c.ReadU16(offset))
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := bytecode.NewChunk()
	idx1 := c.AddConstant(value.Number(1))
	idx2 := c.AddConstant(value.Number(2))

	assert.Equal(t, 0, idx1)
	assert.Equal(t, 1, idx2)
}

func TestLineTableRLECollapsesRepeatedLines(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)
	c.Emit(bytecode.OpTrue, 1)
	c.Emit(bytecode.OpFalse, 2)

	assert.Equal(t, 1, c.LineAtInstruction(0))
	assert.Equal(t, 1, c.LineAtInstruction(1))
	assert.Equal(t, 2, c.LineAtInstruction(2))
}

func TestLineOfResolvesByteOffsetToSourceLine(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)                       // offset 0, size 1
	c.EmitByteOperand(bytecode.OpGetLocal, 0, 2)     // offset 1, size 2
	c.Emit(bytecode.OpPop, 3)                        // offset 3, size 1

	assert.Equal(t, 1, c.LineOf(0))
	assert.Equal(t, 2, c.LineOf(1))
	assert.Equal(t, 3, c.LineOf(3))
}

func TestFirstLineAtFindsEarliestMatchingInstruction(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)
	c.Emit(bytecode.OpTrue, 3)
	c.Emit(bytecode.OpFalse, 5)

	offset := c.FirstLineAt(3)
	assert.Equal(t, 1, offset)
}

func TestFirstLineAtReturnsMinusOneWhenLineBeyondEnd(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)

	assert.Equal(t, -1, c.FirstLineAt(100))
}

func TestInstructionCountMatchesNumberOfEmittedInstructions(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)
	c.EmitByteOperand(bytecode.OpGetLocal, 0, 1)
	c.EmitU16Operand(bytecode.OpGetGlobalLong, 0, 1)

	count, err := c.InstructionCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDecodeRejectsOutOfRangeOffset(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpReturn, 1)

	_, _, err := c.Decode(100)
	assert.Error(t, err)
}

func TestInstructionOffsetWalksSizes(t *testing.T) {
	c := bytecode.NewChunk()
	c.Emit(bytecode.OpNil, 1)
	c.EmitByteOperand(bytecode.OpGetLocal, 0, 1)

	offset, err := c.InstructionOffset(1)
	require.NoError(t, err)
	assert.Equal(t, 1, offset)
}
