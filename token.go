package pascal

import (
	"fmt"
	"strings"
)

// TokenKind is the closed set of token families. The string value is what the
// lexical report prints in its kind column.
type TokenKind string

const (
	TokenEOF        TokenKind = "EOF"
	TokenIdentifier TokenKind = "Identifier"
	TokenInteger    TokenKind = "Integer"
	TokenReal       TokenKind = "Real"
	TokenString     TokenKind = "String"
	TokenOperator   TokenKind = "Operator"
	TokenSeparator  TokenKind = "Separator"
	TokenReserved   TokenKind = "Reserved"
)

// Token is one lexeme. Tokens are values and are never modified after the
// lexer produces them.
type Token struct {
	Kind   TokenKind
	Line   int
	Column int
	Lexeme string // raw source text
	Value  string // normalized display value

	Int  int64   // TokenInteger
	Real float64 // TokenReal
}

// Is reports whether t is an operator, separator or reserved word spelled v.
func (t Token) Is(v string) bool {
	switch t.Kind {
	case TokenOperator, TokenSeparator, TokenReserved:
		return t.Value == v
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("%d,%d\t%s\t%s\t%s", t.Line, t.Column, t.Kind, t.Value, t.Lexeme)
}

// reservedWords is matched case-insensitively against every identifier-shaped
// lexeme.
var reservedWords = map[string]bool{
	"and":       true,
	"array":     true,
	"begin":     true,
	"break":     true,
	"case":      true,
	"const":     true,
	"continue":  true,
	"div":       true,
	"do":        true,
	"downto":    true,
	"else":      true,
	"end":       true,
	"file":      true,
	"for":       true,
	"function":  true,
	"goto":      true,
	"if":        true,
	"in":        true,
	"label":     true,
	"mod":       true,
	"nil":       true,
	"not":       true,
	"of":        true,
	"or":        true,
	"packed":    true,
	"procedure": true,
	"program":   true,
	"record":    true,
	"repeat":    true,
	"set":       true,
	"shl":       true,
	"shr":       true,
	"then":      true,
	"to":        true,
	"type":      true,
	"until":     true,
	"var":       true,
	"while":     true,
	"with":      true,
	"xor":       true,
}

// IsReserved reports whether word is a reserved word in any letter case.
func IsReserved(word string) bool {
	return reservedWords[strings.ToLower(word)]
}
