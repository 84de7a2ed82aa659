package service_test

import (
	"bytes"
	"testing"

	"github.com/lookbusy1344/slox/service"
)

func newService(t *testing.T, source string) *service.DebuggerService {
	t.Helper()
	var out, errBuf bytes.Buffer
	svc, err := service.NewDebuggerService(source, &out, &errBuf)
	if err != nil {
		t.Fatalf("NewDebuggerService returned error: %v", err)
	}
	return svc
}

func TestRunHaltsOnReturn(t *testing.T) {
	svc := newService(t, `var a = 1; print a;`)

	if err := svc.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state := svc.GetExecutionState(); state != service.StateHalted {
		t.Errorf("state = %s, want %s", state, service.StateHalted)
	}
}

func TestBreakpointStopsExecution(t *testing.T) {
	svc := newService(t, "var a = 1;\nvar b = 2;\nprint a + b;\n")

	svc.AddBreakpoint(2)

	if err := svc.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if svc.CurrentLine() != 2 {
		t.Errorf("CurrentLine() = %d, want 2", svc.CurrentLine())
	}
	if state := svc.GetExecutionState(); state != service.StateHalted {
		t.Errorf("state = %s, want %s after stopping at breakpoint", state, service.StateHalted)
	}
}

func TestGetGlobalsReflectsDefinedVariables(t *testing.T) {
	svc := newService(t, `var x = 10; var y = 20;`)

	if err := svc.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	globals := svc.GetGlobals()
	if len(globals) != 2 {
		t.Fatalf("len(globals) = %d, want 2", len(globals))
	}
}

func TestGetDisassemblyReturnsNonEmptyListing(t *testing.T) {
	svc := newService(t, `print 1 + 2;`)

	lines, err := svc.GetDisassembly()
	if err != nil {
		t.Fatalf("GetDisassembly returned error: %v", err)
	}
	if len(lines) == 0 {
		t.Error("expected at least one disassembled instruction")
	}
}

func TestCompileErrorIsReported(t *testing.T) {
	_, err := service.NewDebuggerService("var a = ;", &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected compile error for invalid source")
	}
}

func TestClearAllBreakpoints(t *testing.T) {
	svc := newService(t, `print 1;`)

	svc.AddBreakpoint(1)
	svc.ClearAllBreakpoints()

	if len(svc.GetBreakpoints()) != 0 {
		t.Error("expected no breakpoints after ClearAllBreakpoints")
	}
}
