// Package compiler implements the single-pass Pratt-parser compiler that
// turns Lox source into a bytecode.Chunk: expression parsing with per-token
// precedence, lexical scope tracking for locals, and jump patching for
// control flow. Grounded on the teacher's parser/parser.go recursive-descent
// shape (error accumulation, synchronize-style recovery) and on rami3l/golox's
// vm/compiler.go for the Pratt-specific mechanics the teacher's assembler has
// no equivalent of.
package compiler

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/lookbusy1344/slox/bytecode"
	"github.com/lookbusy1344/slox/lexer"
	"github.com/lookbusy1344/slox/value"
)

// MaxLocals is the locals-table capacity (spec.md §3).
const MaxLocals = 256

const uninitializedDepth = -1

// local is one entry in the compiler-only locals table.
type local struct {
	name  string
	depth int // uninitializedDepth means declared-but-not-initialized
}

// Compiler drives one single-pass compilation of a Lox source string into a
// Chunk, interning constants into the given pool as it goes.
type Compiler struct {
	scanner *lexer.Scanner
	chunk   *bytecode.Chunk
	pool    *value.Pool
	log     *logrus.Logger

	prev, curr lexer.Token

	locals     []local
	scopeDepth int

	hadError  bool
	panicMode bool
	errs      *multierror.Error
}

// Result is what a successful Compile call returns.
type Result struct {
	Chunk *bytecode.Chunk
	Pool  *value.Pool
}

// Compile compiles source into a Chunk. On any compile error it returns a
// non-nil error (a *multierror.Error aggregating every diagnostic detected,
// via synchronize-based recovery) and a nil Result.
func Compile(source string) (*Result, error) {
	return CompileWithLogger(source, logrus.New())
}

// CompileWithLogger is Compile with an explicit logger for recovery-path
// diagnostics (never language output — see SPEC_FULL.md's ambient logging
// section).
func CompileWithLogger(source string, log *logrus.Logger) (*Result, error) {
	c := &Compiler{
		scanner: lexer.New(source),
		chunk:   bytecode.NewChunk(),
		pool:    value.NewPool(),
		log:     log,
	}

	c.advance()
	for !c.check(lexer.Eof) {
		c.declaration()
	}
	c.consume(lexer.Eof, "Expect end of expression.")
	c.emitReturn()

	if c.hadError {
		return nil, c.errs.ErrorOrNil()
	}
	return &Result{Chunk: c.chunk, Pool: c.pool}, nil
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.prev = c.curr
	for {
		c.curr = c.scanner.Next()
		if c.curr.Kind != lexer.TError {
			break
		}
		c.errorAtCurrent(errorTokenMessage(c.curr))
	}
}

func errorTokenMessage(tok lexer.Token) string {
	switch tok.ErrorKind {
	case lexer.UnterminatedString:
		return "Unterminated string."
	default:
		return "Unexpected character."
	}
}

func (c *Compiler) check(kind lexer.TokenKind) bool {
	return c.curr.Kind == kind
}

func (c *Compiler) match(kind lexer.TokenKind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind lexer.TokenKind, message string) {
	if c.curr.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// ---- error reporting & recovery ----

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.curr, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.prev, message) }

func (c *Compiler) errorAt(tok lexer.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := tok.Lexeme
	if tok.Kind == lexer.Eof {
		where = "end"
	}
	err := &CompileError{Line: tok.Line, Where: where, Message: message}
	c.errs = multierror.Append(c.errs, err)
	c.errs.ErrorFormat = formatCompileErrors
	c.log.WithFields(logrus.Fields{"line": tok.Line, "where": where}).Debug(message)
}

// formatCompileErrors renders accumulated CompileErrors one per line, each in
// its own `[line L] Error at <start>: <message>` form (spec.md §7), instead of
// go-multierror's default "N errors occurred" preamble.
func formatCompileErrors(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// synchronize skips tokens until a likely statement boundary, so compilation
// can keep detecting further errors after one (spec.md §4.4 error recovery).
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.curr.Kind != lexer.Eof {
		if c.prev.Kind == lexer.Semicolon {
			return
		}
		switch c.curr.Kind {
		case lexer.Class, lexer.Fun, lexer.Var, lexer.For, lexer.If, lexer.While, lexer.Print, lexer.Return:
			return
		}
		c.advance()
	}
}

// ---- bytecode emission helpers ----

func (c *Compiler) emitReturn() {
	c.chunk.Emit(bytecode.OpReturn, c.prev.Line)
}

func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.chunk.AddConstant(v)
	if idx > bytecode.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

// emitConstant emits a Constant/ConstantLong load of v, choosing the operand
// width by the resulting constant-pool index (spec.md §4.2).
func (c *Compiler) emitConstant(v value.Value) {
	idx := c.makeConstant(v)
	c.emitConstantIndex(idx, bytecode.OpConstant, bytecode.OpConstantLong)
}

func (c *Compiler) emitConstantIndex(idx int, short, long bytecode.OpCode) {
	line := c.prev.Line
	if idx <= 0xff {
		c.chunk.EmitByteOperand(short, byte(idx), line)
	} else if idx <= bytecode.MaxConstants {
		c.chunk.EmitU16Operand(long, uint16(idx), line)
	} else {
		c.error("Too many constants.")
	}
}

const maxJumpOperand = 0xffff

func (c *Compiler) emitJump(op bytecode.OpCode) int {
	return c.chunk.EmitJump(op, c.prev.Line)
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > maxJumpOperand {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk.PatchU16(offset, uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	line := c.prev.Line
	offset := c.chunk.EmitJump(bytecode.OpLoop, line)
	back := offset + 2 - loopStart
	if back > maxJumpOperand {
		c.error("Loop body too large.")
		return
	}
	c.chunk.PatchU16(offset, uint16(back))
}

// ---- Pratt parsing core ----

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := ruleFor(c.prev.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= ruleFor(c.curr.Kind).precedence {
		c.advance()
		infix := ruleFor(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(lexer.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// ---- prefix/infix actions ----

func (c *Compiler) number(_ bool) {
	f, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(f))
}

func (c *Compiler) stringLiteral(_ bool) {
	lexeme := c.prev.Lexeme
	unquoted := lexeme[1 : len(lexeme)-1]
	handle := c.pool.Intern(unquoted)
	c.emitConstant(value.Obj(value.String{Handle: handle}))
}

func (c *Compiler) literal(_ bool) {
	line := c.prev.Line
	switch c.prev.Kind {
	case lexer.False:
		c.chunk.Emit(bytecode.OpFalse, line)
	case lexer.Nil:
		c.chunk.Emit(bytecode.OpNil, line)
	case lexer.True:
		c.chunk.Emit(bytecode.OpTrue, line)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(lexer.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opKind := c.prev.Kind
	line := c.prev.Line
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case lexer.Minus:
		c.chunk.Emit(bytecode.OpNegate, line)
	case lexer.Bang:
		c.chunk.Emit(bytecode.OpNot, line)
	}
}

func (c *Compiler) binary(_ bool) {
	opKind := c.prev.Kind
	line := c.prev.Line
	r := ruleFor(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case lexer.Plus:
		c.chunk.Emit(bytecode.OpAdd, line)
	case lexer.Minus:
		c.chunk.Emit(bytecode.OpSubtract, line)
	case lexer.Star:
		c.chunk.Emit(bytecode.OpMultiply, line)
	case lexer.Slash:
		c.chunk.Emit(bytecode.OpDivide, line)
	case lexer.BangEqual:
		c.chunk.Emit(bytecode.OpEqual, line)
		c.chunk.Emit(bytecode.OpNot, line)
	case lexer.EqualEqual:
		c.chunk.Emit(bytecode.OpEqual, line)
	case lexer.Greater:
		c.chunk.Emit(bytecode.OpGreater, line)
	case lexer.GreaterEqual:
		c.chunk.Emit(bytecode.OpLess, line)
		c.chunk.Emit(bytecode.OpNot, line)
	case lexer.Less:
		c.chunk.Emit(bytecode.OpLess, line)
	case lexer.LessEqual:
		c.chunk.Emit(bytecode.OpGreater, line)
		c.chunk.Emit(bytecode.OpNot, line)
	}
}

func (c *Compiler) and(_ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(_ bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

func (c *Compiler) namedVariable(name lexer.Token, canAssign bool) {
	slot, err := c.resolveLocal(name)
	var getOp, setOp bytecode.OpCode
	var arg int

	if err != nil {
		c.error(err.Error())
		return
	}

	if slot != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
		arg = slot
	} else {
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
		arg = c.identifierConstant(name)
	}

	line := name.Line
	if canAssign && c.match(lexer.Equal) {
		c.expression()
		if slot != -1 {
			c.chunk.EmitByteOperand(setOp, byte(arg), line)
		} else {
			c.emitConstantIndex(arg, setOp, bytecode.OpSetGlobalLong)
		}
		return
	}

	if slot != -1 {
		c.chunk.EmitByteOperand(getOp, byte(arg), line)
	} else {
		c.emitConstantIndex(arg, getOp, bytecode.OpGetGlobalLong)
	}
}

func (c *Compiler) identifierConstant(name lexer.Token) int {
	handle := c.pool.Intern(name.Lexeme)
	return c.makeConstant(value.Obj(value.String{Handle: handle}))
}

// ---- locals / scopes ----

type localResolveError struct{ msg string }

func (e *localResolveError) Error() string { return e.msg }

// resolveLocal scans the locals table back-to-front for name, returning its
// slot, or -1 if name is not a local (treat as global).
func (c *Compiler) resolveLocal(name lexer.Token) (int, error) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name == name.Lexeme {
			if l.depth == uninitializedDepth {
				return 0, &localResolveError{"Can't read local variable in its own initializer."}
			}
			return i, nil
		}
	}
	return -1, nil
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.chunk.Emit(bytecode.OpPop, c.prev.Line)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareVariable(name lexer.Token) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitializedDepth && l.depth < c.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
			return
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name lexer.Token) {
	if len(c.locals) >= MaxLocals {
		c.error("Too many local variables in scope.")
		return
	}
	c.locals = append(c.locals, local{name: name.Lexeme, depth: uninitializedDepth})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// parseVariable consumes an identifier, declares it, and returns the
// constant-pool index to use for a subsequent DefineGlobal (0 for locals,
// where the index is unused).
func (c *Compiler) parseVariable(message string) int {
	c.consume(lexer.Identifier, message)
	name := c.prev
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitConstantIndex(global, bytecode.OpDefineGlobal, bytecode.OpDefineGlobalLong)
}

// ---- declarations & statements ----

func (c *Compiler) declaration() {
	if c.match(lexer.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(lexer.Equal) {
		c.expression()
	} else {
		c.chunk.Emit(bytecode.OpNil, c.prev.Line)
	}
	c.consume(lexer.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.Print):
		c.printStatement()
	case c.match(lexer.If):
		c.ifStatement()
	case c.match(lexer.While):
		c.whileStatement()
	case c.match(lexer.For):
		c.forStatement()
	case c.match(lexer.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(lexer.RightBrace) && !c.check(lexer.Eof) {
		c.declaration()
	}
	c.consume(lexer.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(lexer.Semicolon, "Expect ';' after value.")
	c.chunk.Emit(bytecode.OpPrint, c.prev.Line)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(lexer.Semicolon, "Expect ';' after expression.")
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
}

func (c *Compiler) ifStatement() {
	c.consume(lexer.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(lexer.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)

	if c.match(lexer.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(lexer.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(lexer.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.chunk.Emit(bytecode.OpPop, c.prev.Line)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(lexer.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(lexer.Semicolon):
		// no initializer
	case c.match(lexer.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(lexer.Semicolon) {
		c.expression()
		c.consume(lexer.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	}

	if !c.match(lexer.RightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := len(c.chunk.Code)
		c.expression()
		c.chunk.Emit(bytecode.OpPop, c.prev.Line)
		c.consume(lexer.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.chunk.Emit(bytecode.OpPop, c.prev.Line)
	}

	c.endScope()
}
