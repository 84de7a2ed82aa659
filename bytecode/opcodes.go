package bytecode

// OpCode identifies a single instruction. Operand widths are fixed per op;
// see instructionSizes.
type OpCode byte

const (
	OpReturn OpCode = iota
	OpConstant
	OpConstantLong
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpNegate
	OpNot
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpGreater
	OpLess
	OpPrint
	OpDefineGlobal
	OpDefineGlobalLong
	OpGetGlobal
	OpGetGlobalLong
	OpSetGlobal
	OpSetGlobalLong
	OpGetLocal
	OpSetLocal
	OpJumpIfFalse
	OpJump
	OpLoop
)

var opNames = map[OpCode]string{
	OpReturn:           "OP_RETURN",
	OpConstant:         "OP_CONSTANT",
	OpConstantLong:     "OP_CONSTANT_LONG",
	OpNil:              "OP_NIL",
	OpTrue:             "OP_TRUE",
	OpFalse:            "OP_FALSE",
	OpPop:              "OP_POP",
	OpNegate:           "OP_NEGATE",
	OpNot:              "OP_NOT",
	OpAdd:              "OP_ADD",
	OpSubtract:         "OP_SUBTRACT",
	OpMultiply:         "OP_MULTIPLY",
	OpDivide:           "OP_DIVIDE",
	OpEqual:            "OP_EQUAL",
	OpGreater:          "OP_GREATER",
	OpLess:             "OP_LESS",
	OpPrint:            "OP_PRINT",
	OpDefineGlobal:     "OP_DEFINE_GLOBAL",
	OpDefineGlobalLong: "OP_DEFINE_GLOBAL_LONG",
	OpGetGlobal:        "OP_GET_GLOBAL",
	OpGetGlobalLong:    "OP_GET_GLOBAL_LONG",
	OpSetGlobal:        "OP_SET_GLOBAL",
	OpSetGlobalLong:    "OP_SET_GLOBAL_LONG",
	OpGetLocal:         "OP_GET_LOCAL",
	OpSetLocal:         "OP_SET_LOCAL",
	OpJumpIfFalse:      "OP_JUMP_IF_FALSE",
	OpJump:             "OP_JUMP",
	OpLoop:             "OP_LOOP",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// instructionSizes gives the total encoded length (opcode byte + operand
// bytes) for every opcode.
var instructionSizes = map[OpCode]int{
	OpReturn:           1,
	OpConstant:         2,
	OpConstantLong:     3,
	OpNil:              1,
	OpTrue:             1,
	OpFalse:            1,
	OpPop:              1,
	OpNegate:           1,
	OpNot:              1,
	OpAdd:              1,
	OpSubtract:         1,
	OpMultiply:         1,
	OpDivide:           1,
	OpEqual:            1,
	OpGreater:          1,
	OpLess:             1,
	OpPrint:            1,
	OpDefineGlobal:     2,
	OpDefineGlobalLong: 3,
	OpGetGlobal:        2,
	OpGetGlobalLong:    3,
	OpSetGlobal:        2,
	OpSetGlobalLong:    3,
	OpGetLocal:         2,
	OpSetLocal:         2,
	OpJumpIfFalse:      3,
	OpJump:             3,
	OpLoop:             3,
}

// Size returns the byte length of op's encoding, including its operand.
func (op OpCode) Size() int {
	if n, ok := instructionSizes[op]; ok {
		return n
	}
	return 1
}
