package pascal

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind names one diagnostic in the taxonomy. The name is the first word
// of every rendered diagnostic.
type ErrorKind string

// Lexical errors
const (
	ErrUnknownLexeme     ErrorKind = "UnknownLexeme"
	ErrUnclosedComment   ErrorKind = "UnclosedComment"
	ErrStringExceedsLine ErrorKind = "StringExceedsLine"
	ErrStringMalformed   ErrorKind = "StringMalformed"
	ErrIntegerOverflow   ErrorKind = "IntegerOverflow"
	ErrRealOverflow      ErrorKind = "RealOverflow"
)

// Parse errors
const (
	ErrIllegalExpression ErrorKind = "IllegalExpression"
)

// Semantic errors
const (
	ErrNotAllowed             ErrorKind = "NotAllowed"
	ErrTypeNotFound           ErrorKind = "TypeNotFound"
	ErrDuplicateIdentifier    ErrorKind = "DuplicateIdentifier"
	ErrIdentifierNotDefined   ErrorKind = "IdentifierNotDefined"
	ErrMemberNotFound         ErrorKind = "MemberNotFound"
	ErrIncompatibleTypes      ErrorKind = "IncompatibleTypes"
	ErrOperatorNotOverloaded  ErrorKind = "OperatorNotOverloaded"
	ErrNotLvalue              ErrorKind = "NotLvalue"
	ErrConstExprEvalFailure   ErrorKind = "ConstExprEvalFailure"
	ErrRangeBoundsInverted    ErrorKind = "RangeBoundsInverted"
	ErrArrayExpected          ErrorKind = "ArrayExpected"
	ErrRecordExpected         ErrorKind = "RecordExpected"
	ErrRangeCheckError        ErrorKind = "RangeCheckError"
	ErrWrongArgumentsNumber   ErrorKind = "WrongArgumentsNumber"
	ErrFunctionExpected       ErrorKind = "FunctionExpected"
	ErrWritelnUnsupportedType ErrorKind = "WritelnUnsupportedType"
)

// Diagnostic is implemented by every user-facing error of the front end.
type Diagnostic interface {
	error
	Kind() ErrorKind
	Pos() (line, column int)
}

func render(kind ErrorKind, detail string, line, column int) string {
	if detail == "" {
		return fmt.Sprintf("%s at %d,%d.", kind, line, column)
	}
	return fmt.Sprintf("%s %s at %d,%d.", kind, detail, line, column)
}

// LexicalError is raised by the lexer for the first malformed lexeme.
type LexicalError struct {
	Type   ErrorKind
	Lexeme string
	Line   int
	Column int
}

func (e *LexicalError) Error() string {
	return render(e.Type, strconv.Quote(e.Lexeme), e.Line, e.Column)
}

func (e *LexicalError) Kind() ErrorKind { return e.Type }
func (e *LexicalError) Pos() (int, int) { return e.Line, e.Column }

// ParseError is raised by the parser on the first token that fits no grammar
// alternative.
type ParseError struct {
	Token Token
}

func (e *ParseError) Error() string {
	text := e.Token.Lexeme
	if e.Token.Kind == TokenEOF {
		text = "end of file"
	}
	return render(ErrIllegalExpression, strconv.Quote(text), e.Token.Line, e.Token.Column)
}

func (e *ParseError) Kind() ErrorKind { return ErrIllegalExpression }
func (e *ParseError) Pos() (int, int) { return e.Token.Line, e.Token.Column }

// SemanticError is raised by the symbol table, the type checker and the
// semantic pass. Only the payload fields relevant to Type are set.
type SemanticError struct {
	Type  ErrorKind
	Token Token

	Name        string  // identifier, member or type name
	Left, Right *Symbol // both sides of a type mismatch
	Op          string  // operator for OperatorNotOverloaded
	Value       int64   // RangeCheckError / RangeBoundsInverted
	Min, Max    int64
	Expected    int // WrongArgumentsNumber
	Got         int
}

func (e *SemanticError) Kind() ErrorKind { return e.Type }
func (e *SemanticError) Pos() (int, int) { return e.Token.Line, e.Token.Column }

func (e *SemanticError) Error() string {
	var detail string
	switch e.Type {
	case ErrIncompatibleTypes:
		detail = fmt.Sprintf("%q and %q", typeName(e.Left), typeName(e.Right))
	case ErrOperatorNotOverloaded:
		if e.Right == nil {
			detail = fmt.Sprintf("%q for %q", e.Op, typeName(e.Left))
		} else {
			detail = fmt.Sprintf("%q for %q and %q", e.Op, typeName(e.Left), typeName(e.Right))
		}
	case ErrRangeCheckError:
		detail = fmt.Sprintf("%d not in [%d..%d]", e.Value, e.Min, e.Max)
	case ErrRangeBoundsInverted:
		detail = fmt.Sprintf("[%d..%d]", e.Min, e.Max)
	case ErrWrongArgumentsNumber:
		detail = fmt.Sprintf("%q expected %d, got %d", e.Name, e.Expected, e.Got)
	case ErrWritelnUnsupportedType, ErrArrayExpected, ErrRecordExpected:
		detail = strconv.Quote(typeName(e.Left))
	default:
		detail = strconv.Quote(e.Name)
	}
	return render(e.Type, detail, e.Token.Line, e.Token.Column)
}

func typeName(s *Symbol) string {
	if s == nil {
		return "<none>"
	}
	return s.String()
}

// InternalError is the panic value for states the front end can never reach
// on any input. It is never returned as a Diagnostic.
type InternalError struct {
	Msg string
}

func (e InternalError) Error() string { return "internal error: " + e.Msg }

func unreachable(format string, args ...any) InternalError {
	return InternalError{Msg: fmt.Sprintf(format, args...)}
}

// IsIncomplete reports whether err only says that input ended too early, so
// that more input could still make it valid.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Token.Kind == TokenEOF
	}
	var lexErr *LexicalError
	if errors.As(err, &lexErr) {
		return lexErr.Type == ErrUnclosedComment
	}
	return false
}
