package compiler

import "github.com/lookbusy1344/slox/lexer"

// Precedence is the Pratt-parser precedence ladder, lowest to highest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// rule is one dispatch-table entry: the prefix action, infix action, and
// binding precedence for a token kind.
type rule struct {
	prefix     func(c *Compiler, canAssign bool)
	infix      func(c *Compiler, canAssign bool)
	precedence Precedence
}

var rules map[lexer.TokenKind]rule

func init() {
	rules = map[lexer.TokenKind]rule{
		lexer.LeftParen:    {prefix: (*Compiler).grouping},
		lexer.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		lexer.Plus:         {infix: (*Compiler).binary, precedence: PrecTerm},
		lexer.Slash:        {infix: (*Compiler).binary, precedence: PrecFactor},
		lexer.Star:         {infix: (*Compiler).binary, precedence: PrecFactor},
		lexer.Bang:         {prefix: (*Compiler).unary},
		lexer.BangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
		lexer.EqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
		lexer.Greater:      {infix: (*Compiler).binary, precedence: PrecComparison},
		lexer.GreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
		lexer.Less:         {infix: (*Compiler).binary, precedence: PrecComparison},
		lexer.LessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
		lexer.Number:       {prefix: (*Compiler).number},
		lexer.String:       {prefix: (*Compiler).stringLiteral},
		lexer.True:         {prefix: (*Compiler).literal},
		lexer.False:        {prefix: (*Compiler).literal},
		lexer.Nil:          {prefix: (*Compiler).literal},
		lexer.Identifier:   {prefix: (*Compiler).variable},
		lexer.And:          {infix: (*Compiler).and, precedence: PrecAnd},
		lexer.Or:           {infix: (*Compiler).or, precedence: PrecOr},
	}
}

func ruleFor(kind lexer.TokenKind) rule {
	if r, ok := rules[kind]; ok {
		return r
	}
	return rule{}
}
