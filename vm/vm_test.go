package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/slox/compiler"
	"github.com/lookbusy1344/slox/vm"
)

func run(t *testing.T, src string) (stdout, stderr string, err error) {
	t.Helper()
	res, cerr := compiler.Compile(src)
	require.NoError(t, cerr, "unexpected compile error for %q", src)

	var out, errBuf bytes.Buffer
	err = vm.Interpret(res.Chunk, res.Pool, &out, &errBuf)
	return out.String(), errBuf.String(), err
}

func TestEndToEndAddition(t *testing.T) {
	out, errOut, err := run(t, "print 1 + 1;")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
	assert.Empty(t, errOut)
}

func TestEndToEndDivisionPrintsRoundTripDecimal(t *testing.T) {
	out, _, err := run(t, "print 2/3;")
	require.NoError(t, err)
	assert.Equal(t, "0.6666666666666666\n", out)
}

func TestEndToEndNotOnTrue(t *testing.T) {
	out, _, err := run(t, "print !true;")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestEndToEndStringConcatAndEquality(t *testing.T) {
	out, _, err := run(t, `print "a" + "b" == "ab";`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestEndToEndGlobalDefineAndPrint(t *testing.T) {
	out, _, err := run(t, "var GLOB = 1; print GLOB;")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestEndToEndUndefinedGlobalIsRuntimeError(t *testing.T) {
	out, errOut, err := run(t, "print UNINIT;")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "Undefined variable 'UNINIT'.\n[line 1] in script\n", errOut)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Line)
}

func TestEndToEndGlobalReassignment(t *testing.T) {
	out, _, err := run(t, "var A = 3; var B = 5; A = A + B; print A;")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)
}

func TestEndToEndBlockScopeShadowsOuterGlobal(t *testing.T) {
	out, _, err := run(t, "var a = 10; { var a = 3; print a; }")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestEndToEndReadingLocalInOwnInitializerIsCompileError(t *testing.T) {
	_, cerr := compiler.Compile("var a = 10; { var a = a + 3; }")
	require.Error(t, cerr)
}

func TestEndToEndIfWithoutElse(t *testing.T) {
	out, _, err := run(t, "if (true) print 1; if (false) print 2; print 3;")
	require.NoError(t, err)
	assert.Equal(t, "1\n3\n", out)
}

func TestEndToEndIfElse(t *testing.T) {
	out, _, err := run(t, "if (false) print 1; else print 2; print 3;")
	require.NoError(t, err)
	assert.Equal(t, "2\n3\n", out)
}

func TestEndToEndAndOrShortCircuit(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1 and 2;", "2\n"},
		{"print false and 1;", "false\n"},
		{"print 1 or 2;", "1\n"},
		{"print false or 2;", "2\n"},
	}
	for _, tc := range cases {
		out, _, err := run(t, tc.src)
		require.NoError(t, err)
		assert.Equal(t, tc.want, out, tc.src)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	out, _, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestForLoopPrintsEachIteration(t *testing.T) {
	out, _, err := run(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestMixingStringAndNumberOnAddIsRuntimeError(t *testing.T) {
	out, errOut, err := run(t, `print "a" + 1;`)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Operands must be numbers.")
}

func TestNegatingNonNumberIsRuntimeError(t *testing.T) {
	_, errOut, err := run(t, `print -"a";`)
	require.Error(t, err)
	assert.Contains(t, errOut, "Operand must be a number.")
}

func TestDeterministicOutputAcrossRuns(t *testing.T) {
	src := `var a = 1; var b = 2; print a + b; print a * b;`
	out1, err1, e1 := run(t, src)
	out2, err2, e2 := run(t, src)
	require.NoError(t, e1)
	require.NoError(t, e2)
	assert.Equal(t, out1, out2)
	assert.Equal(t, err1, err2)
}

func TestLineTableInstructionCountInvariant(t *testing.T) {
	res, cerr := compiler.Compile(`
		var a = 1;
		if (a < 2) {
			print a;
		} else {
			print "no";
		}
		while (a < 3) { a = a + 1; }
	`)
	require.NoError(t, cerr)
	n, err := res.Chunk.InstructionCount()
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}
