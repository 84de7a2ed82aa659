package compiler

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/slox/bytecode"
)

func compileOK(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile(src)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestCompileArithmeticExpressionStatement(t *testing.T) {
	res := compileOK(t, "1 + 2 * 3;")
	count, err := res.Chunk.InstructionCount()
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpMultiply)
	assert.Contains(t, ops, bytecode.OpAdd)
	assert.Contains(t, ops, bytecode.OpPop)
	assert.Equal(t, bytecode.OpReturn, ops[len(ops)-1])
}

func TestCompileVarDeclarationAndPrint(t *testing.T) {
	res := compileOK(t, `var greeting = "hi"; print greeting;`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpDefineGlobal)
	assert.Contains(t, ops, bytecode.OpGetGlobal)
	assert.Contains(t, ops, bytecode.OpPrint)
}

func TestCompileBlockScopesUseLocalsNotGlobals(t *testing.T) {
	res := compileOK(t, `{ var a = 1; var b = 2; print a + b; }`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.NotContains(t, ops, bytecode.OpDefineGlobal)
	assert.Contains(t, ops, bytecode.OpGetLocal)
	// each local popped at scope end
	assert.Contains(t, ops, bytecode.OpPop)
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	res := compileOK(t, `if (1 < 2) { print "yes"; } else { print "no"; }`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
	assert.Contains(t, ops, bytecode.OpJump)
}

func TestCompileWhileEmitsLoop(t *testing.T) {
	res := compileOK(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpLoop)
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
}

func TestCompileForEmitsLoop(t *testing.T) {
	res := compileOK(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpLoop)
}

func TestCompileAndOrShortCircuitJumps(t *testing.T) {
	res := compileOK(t, `print true and false or true;`)
	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
	assert.Contains(t, ops, bytecode.OpJump)
}

func TestCompileMissingSemicolonIsError(t *testing.T) {
	_, err := Compile(`print "oops"`)
	require.Error(t, err)
	assert.Equal(t, `[line 1] Error at end: Expect ';' after value.`, err.Error())
}

func TestCompileAccumulatesMultipleErrors(t *testing.T) {
	_, err := Compile("print 1 print 2 print 3;")
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected a *multierror.Error")
	assert.GreaterOrEqual(t, len(merr.Errors), 2)

	// Each diagnostic renders in its own `[line L] Error at X: message` form,
	// one per line, with none of go-multierror's default "N errors occurred"
	// preamble or bullet formatting.
	assert.NotContains(t, err.Error(), "errors occurred")
	for _, single := range merr.Errors {
		assert.Contains(t, err.Error(), single.Error())
	}
}

func TestCompileReadingLocalInOwnInitializerIsError(t *testing.T) {
	_, err := Compile(`{ var a = a; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own initializer")
}

func TestCompileShadowingSameScopeIsError(t *testing.T) {
	_, err := Compile(`{ var a = 1; var a = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable")
}

func TestCompileInvalidAssignmentTargetIsError(t *testing.T) {
	_, err := Compile(`1 + 2 = 3;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target")
}

func TestCompileEmitsLongConstantFormPastByteRange(t *testing.T) {
	var src string
	for i := 0; i < 300; i++ {
		src += "print 1;\n"
	}
	res := compileOK(t, src)
	assert.Greater(t, len(res.Chunk.Constants), 0xff)

	var ops []bytecode.OpCode
	pc := 0
	for pc < len(res.Chunk.Code) {
		op, size, err := res.Chunk.Decode(pc)
		require.NoError(t, err)
		ops = append(ops, op)
		pc += size
	}
	assert.Contains(t, ops, bytecode.OpConstantLong)
}
