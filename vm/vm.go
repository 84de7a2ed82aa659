// Package vm implements the stack-based interpreter that decodes and
// executes a compiled bytecode.Chunk. Grounded on the teacher's
// vm/executor.go fetch/decode/execute loop shape (Step/Run, State enum,
// cycle limiting) generalized from ARM words to Lox opcodes.
package vm

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/value"
)

// State is the current execution state of a VM.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateHalted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultMaxSteps bounds runaway execution (e.g. a malformed or adversarial
// loop); it is not part of the Lox language surface, only a host safety net.
const DefaultMaxSteps = 10_000_000

// DefaultStackCapacity is the initial operand-stack allocation; the stack
// grows as needed but starts sized for typical scripts.
const DefaultStackCapacity = 256

// RuntimeError is returned when execution fails after a Chunk was produced
// successfully; it carries the fully formatted, already-`\n`-terminated
// diagnostic text appended to Err by Interpret.
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script\n", e.Message, e.Line)
}

// VM executes one compiled Chunk against an operand stack and a globals
// table, writing program output and diagnostics to the given sinks.
type VM struct {
	Chunk *bytecode.Chunk
	Pool  *value.Pool

	ip    int
	stack []value.Value

	Globals map[*value.StringHandle]value.Value

	Out io.Writer
	Err io.Writer

	State    State
	MaxSteps int
	steps    int

	Log *logrus.Logger
	// Trace, when true, logs one debug-level entry per executed instruction.
	Trace bool
}

// New creates a VM ready to execute chunk, interning/globals scoped to pool.
func New(chunk *bytecode.Chunk, pool *value.Pool, out, err io.Writer) *VM {
	return &VM{
		Chunk:    chunk,
		Pool:     pool,
		stack:    make([]value.Value, 0, DefaultStackCapacity),
		Globals:  make(map[*value.StringHandle]value.Value),
		Out:      out,
		Err:      err,
		State:    StateIdle,
		MaxSteps: DefaultMaxSteps,
		Log:      logrus.New(),
	}
}

// IP returns the current program counter, exposed read-only for the debugger.
func (vm *VM) IP() int { return vm.ip }

// StackSnapshot returns a copy of the operand stack, for debugger inspection.
func (vm *VM) StackSnapshot() []value.Value {
	out := make([]value.Value, len(vm.stack))
	copy(out, vm.stack)
	return out
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() value.Value {
	n := len(vm.stack)
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

// Run executes the chunk from pc 0 until Return, a runtime error, or the
// step limit is exceeded.
func (vm *VM) Run() error {
	vm.State = StateRunning
	vm.ip = 0

	for {
		if vm.steps >= vm.MaxSteps {
			vm.State = StateError
			return vm.runtimeErrorAt(vm.ip, "Step limit exceeded.")
		}

		halted, err := vm.Step()
		if err != nil {
			vm.State = StateError
			return err
		}
		if halted {
			vm.State = StateHalted
			return nil
		}
	}
}

// Step decodes and executes exactly one instruction, returning halted=true
// once Return has executed.
func (vm *VM) Step() (halted bool, err error) {
	op, size, derr := vm.Chunk.Decode(vm.ip)
	if derr != nil {
		panic(fmt.Sprintf("vm: %v", derr))
	}
	opIP := vm.ip
	vm.steps++

	if vm.Trace {
		vm.Log.WithFields(logrus.Fields{"ip": opIP, "op": op.String()}).Debug("step")
	}

	jumpTarget := -1

	switch op {
	case bytecode.OpReturn:
		vm.ip += size
		return true, nil

	case bytecode.OpConstant:
		idx := int(vm.Chunk.Code[opIP+1])
		vm.push(vm.Chunk.Constants[idx])

	case bytecode.OpConstantLong:
		idx := int(vm.Chunk.ReadU16(opIP + 1))
		vm.push(vm.Chunk.Constants[idx])

	case bytecode.OpNil:
		vm.push(value.Nil)

	case bytecode.OpTrue:
		vm.push(value.Bool(true))

	case bytecode.OpFalse:
		vm.push(value.Bool(false))

	case bytecode.OpPop:
		vm.pop()

	case bytecode.OpNegate:
		if !vm.peek(0).IsNumber() {
			return false, vm.runtimeErrorAt(opIP, "Operand must be a number.")
		}
		v := vm.pop()
		vm.push(value.Number(-v.AsNumber()))

	case bytecode.OpNot:
		v := vm.pop()
		vm.push(value.Bool(v.Falsey()))

	case bytecode.OpAdd:
		if vm.peek(0).IsString() && vm.peek(1).IsString() {
			b := vm.pop()
			a := vm.pop()
			concat := a.AsString().String() + b.AsString().String()
			handle := vm.Pool.Intern(concat)
			vm.push(value.Obj(value.String{Handle: handle}))
		} else if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		} else {
			return false, vm.runtimeErrorAt(opIP, "Operands must be numbers.")
		}

	case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
		if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
			return false, vm.runtimeErrorAt(opIP, "Operands must be numbers.")
		}
		b := vm.pop()
		a := vm.pop()
		switch op {
		case bytecode.OpSubtract:
			vm.push(value.Number(a.AsNumber() - b.AsNumber()))
		case bytecode.OpMultiply:
			vm.push(value.Number(a.AsNumber() * b.AsNumber()))
		case bytecode.OpDivide:
			vm.push(value.Number(a.AsNumber() / b.AsNumber()))
		}

	case bytecode.OpEqual:
		b := vm.pop()
		a := vm.pop()
		vm.push(value.Bool(value.Equal(a, b)))

	case bytecode.OpGreater, bytecode.OpLess:
		if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
			return false, vm.runtimeErrorAt(opIP, "Operands must be numbers.")
		}
		b := vm.pop()
		a := vm.pop()
		if op == bytecode.OpGreater {
			vm.push(value.Bool(a.AsNumber() > b.AsNumber()))
		} else {
			vm.push(value.Bool(a.AsNumber() < b.AsNumber()))
		}

	case bytecode.OpPrint:
		v := vm.pop()
		fmt.Fprintln(vm.Out, value.Display(v))

	case bytecode.OpDefineGlobal:
		idx := int(vm.Chunk.Code[opIP+1])
		handle := vm.Chunk.Constants[idx].AsString()
		vm.Globals[handle] = vm.pop()

	case bytecode.OpDefineGlobalLong:
		idx := int(vm.Chunk.ReadU16(opIP + 1))
		handle := vm.Chunk.Constants[idx].AsString()
		vm.Globals[handle] = vm.pop()

	case bytecode.OpGetGlobal, bytecode.OpGetGlobalLong:
		handle := vm.globalHandle(op, opIP)
		v, ok := vm.Globals[handle]
		if !ok {
			return false, vm.runtimeErrorAt(opIP, fmt.Sprintf("Undefined variable '%s'.", handle.String()))
		}
		vm.push(v)

	case bytecode.OpSetGlobal, bytecode.OpSetGlobalLong:
		handle := vm.globalHandle(op, opIP)
		if _, ok := vm.Globals[handle]; !ok {
			return false, vm.runtimeErrorAt(opIP, fmt.Sprintf("Undefined variable '%s'.", handle.String()))
		}
		vm.Globals[handle] = vm.peek(0)

	case bytecode.OpGetLocal:
		slot := int(vm.Chunk.Code[opIP+1])
		vm.push(vm.stack[slot])

	case bytecode.OpSetLocal:
		slot := int(vm.Chunk.Code[opIP+1])
		vm.stack[slot] = vm.peek(0)

	case bytecode.OpJumpIfFalse:
		offset := int(vm.Chunk.ReadU16(opIP + 1))
		if vm.peek(0).Falsey() {
			jumpTarget = opIP + size + offset
		}

	case bytecode.OpJump:
		offset := int(vm.Chunk.ReadU16(opIP + 1))
		jumpTarget = opIP + size + offset

	case bytecode.OpLoop:
		offset := int(vm.Chunk.ReadU16(opIP + 1))
		jumpTarget = opIP + size - offset

	default:
		panic(fmt.Sprintf("vm: unhandled opcode %s at %d", op, opIP))
	}

	if jumpTarget != -1 {
		vm.ip = jumpTarget
	} else {
		vm.ip += size
	}
	return false, nil
}

func (vm *VM) globalHandle(op bytecode.OpCode, opIP int) *value.StringHandle {
	var idx int
	if op == bytecode.OpGetGlobal || op == bytecode.OpSetGlobal {
		idx = int(vm.Chunk.Code[opIP+1])
	} else {
		idx = int(vm.Chunk.ReadU16(opIP + 1))
	}
	return vm.Chunk.Constants[idx].AsString()
}

// runtimeErrorAt formats and writes a runtime error to Err, clears the
// stack (spec's error-clears-stack rule), and returns it as a *RuntimeError.
func (vm *VM) runtimeErrorAt(pc int, message string) error {
	line := vm.Chunk.LineOf(pc)
	rerr := &RuntimeError{Message: message, Line: line}
	fmt.Fprint(vm.Err, rerr.Error())
	vm.stack = vm.stack[:0]
	return rerr
}

// Interpret is the package's single entry point: compile is assumed done by
// the caller (see the compiler package); Interpret just runs a chunk that
// has already been produced, matching spec's VM-executes-a-Chunk framing.
func Interpret(chunk *bytecode.Chunk, pool *value.Pool, out, err io.Writer) error {
	return New(chunk, pool, out, err).Run()
}
