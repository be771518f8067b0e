package pascal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Lexer turns a Buffer into Tokens. It keeps the last token so that the parser
// can push exactly one token back.
type Lexer struct {
	buf *Buffer

	last      Token
	hasLast   bool
	retracted bool
	err       error // first lexical error; sticky
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{buf: NewBuffer(input)}
}

// NextToken returns the next token, or the pushed-back one after Retract.
// After the first error every call returns that error again.
func (l *Lexer) NextToken() (Token, error) {
	if l.retracted {
		l.retracted = false
		return l.last, nil
	}
	if l.err != nil {
		return Token{}, l.err
	}
	t, err := l.scan()
	if err != nil {
		l.err = err
		return Token{}, err
	}
	l.last, l.hasLast = t, true
	return t, nil
}

// Retract pushes the last token back. Retracting twice without an intervening
// NextToken is a bug in the caller.
func (l *Lexer) Retract() {
	if l.retracted || !l.hasLast {
		panic(unreachable("lexer retracted twice without an intervening read"))
	}
	l.retracted = true
}

// Tokens scans the whole input. The EOF token is not included.
func (l *Lexer) Tokens() ([]Token, error) {
	var tokens []Token
	for {
		t, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		if t.Kind == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, t)
	}
}

// WriteLexicalReport writes one line per token of input:
//
//	line,column<TAB>kind<TAB>normalizedValue<TAB>rawLexeme
//
// Tokens scanned before a lexical error are written before the error is
// returned.
func WriteLexicalReport(w io.Writer, input []byte) error {
	tokens, lexErr := NewLexer(input).Tokens()
	for _, t := range tokens {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return lexErr
}

func (l *Lexer) scan() (Token, error) {
	for {
		l.buf.StartLexeme()
		c := l.buf.Read()

		switch {
		case c == eof:
			line, column := l.buf.Position()
			return Token{Kind: TokenEOF, Line: line, Column: column}, nil

		case c == '{':
			if err := l.skipBraceComment(); err != nil {
				return Token{}, err
			}

		case c == '(' && l.buf.Peek() == '*':
			l.buf.ReadRaw()
			if err := l.skipParenComment(); err != nil {
				return Token{}, err
			}

		case c == '/' && l.buf.Peek() == '/':
			l.skipLineComment()

		case isLetter(c):
			return l.scanIdentifier(), nil

		case isDigit(c):
			return l.scanNumber()

		case c == '$':
			return l.scanRadix(16)

		case c == '&':
			return l.scanRadix(8)

		case c == '%':
			return l.scanRadix(2)

		case c == '\'' || c == '#':
			return l.scanString(c)

		default:
			return l.scanOperator(c)
		}
	}
}

func (l *Lexer) emit(kind TokenKind, value string) Token {
	line, column := l.buf.LexemeStart()
	return Token{
		Kind:   kind,
		Line:   line,
		Column: column,
		Lexeme: l.buf.Lexeme(),
		Value:  value,
	}
}

func (l *Lexer) fail(kind ErrorKind, lexeme string) error {
	line, column := l.buf.LexemeStart()
	return &LexicalError{Type: kind, Lexeme: lexeme, Line: line, Column: column}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return 99
}

func isRadixDigit(c byte, base int) bool {
	return digitValue(c) < base
}

// Comments

func (l *Lexer) skipBraceComment() error {
	for {
		switch l.buf.ReadRaw() {
		case eof:
			return l.fail(ErrUnclosedComment, "{")
		case '}':
			return nil
		}
	}
}

func (l *Lexer) skipParenComment() error {
	for {
		switch l.buf.ReadRaw() {
		case eof:
			return l.fail(ErrUnclosedComment, "(*")
		case '*':
			if l.buf.Peek() == ')' {
				l.buf.ReadRaw()
				return nil
			}
		}
	}
}

func (l *Lexer) skipLineComment() {
	for {
		c := l.buf.ReadRaw()
		if c == '\n' || c == eof {
			return
		}
	}
}

// Identifiers and reserved words

func (l *Lexer) scanIdentifier() Token {
	for c := l.buf.Peek(); isLetter(c) || isDigit(c); c = l.buf.Peek() {
		l.buf.ReadRaw()
	}
	word := strings.ToLower(l.buf.Lexeme())
	if reservedWords[word] {
		return l.emit(TokenReserved, word)
	}
	return l.emit(TokenIdentifier, word)
}

// Numbers

func (l *Lexer) readDigits(base int) string {
	var digits []byte
	for c := l.buf.Peek(); isRadixDigit(c, base); c = l.buf.Peek() {
		digits = append(digits, l.buf.ReadRaw())
	}
	return string(digits)
}

// scanNumber scans a decimal literal. A '.' only starts a fraction when a digit
// follows it, so "1..5" lexes as Integer, Separator, Integer.
func (l *Lexer) scanNumber() (Token, error) {
	l.readDigits(10)
	isReal := false

	if l.buf.ReadRaw() == '.' {
		if isDigit(l.buf.Peek()) {
			isReal = true
			l.readDigits(10)
		} else {
			l.buf.Retract()
		}
	} else {
		l.buf.Retract()
	}

	if c := l.buf.ReadRaw(); c == 'e' || c == 'E' {
		switch sign := l.buf.Peek(); {
		case sign == '+' || sign == '-':
			l.buf.ReadRaw()
			if !isDigit(l.buf.Peek()) {
				return Token{}, l.fail(ErrUnknownLexeme, l.buf.Lexeme())
			}
		case !isDigit(sign):
			l.buf.Retract()
			return l.decimal(isReal)
		}
		isReal = true
		l.readDigits(10)
	} else {
		l.buf.Retract()
	}
	return l.decimal(isReal)
}

func (l *Lexer) decimal(isReal bool) (Token, error) {
	text := l.buf.Lexeme()
	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, l.fail(ErrRealOverflow, text)
		}
		t := l.emit(TokenReal, strconv.FormatFloat(v, 'g', -1, 64))
		t.Real = v
		return t, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, l.fail(ErrIntegerOverflow, text)
	}
	t := l.emit(TokenInteger, strconv.FormatInt(v, 10))
	t.Int = v
	return t, nil
}

// scanRadix scans the digits after a '$', '&' or '%' prefix.
func (l *Lexer) scanRadix(base int) (Token, error) {
	digits := l.readDigits(base)
	if digits == "" {
		return Token{}, l.fail(ErrUnknownLexeme, l.buf.Lexeme())
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return Token{}, l.fail(ErrIntegerOverflow, l.buf.Lexeme())
	}
	t := l.emit(TokenInteger, strconv.FormatInt(v, 10))
	t.Int = v
	return t, nil
}

// Strings

// scanString decodes a run of quoted segments and #N control characters, for
// example 'it''s'#13#10'done'.
func (l *Lexer) scanString(first byte) (Token, error) {
	var text []byte
	c := first
	for {
		if c == '\'' {
			segment, err := l.quotedSegment()
			if err != nil {
				return Token{}, err
			}
			text = append(text, segment...)
		} else {
			b, err := l.controlChar()
			if err != nil {
				return Token{}, err
			}
			text = append(text, b)
		}

		if next := l.buf.Peek(); next != '\'' && next != '#' {
			break
		}
		c = l.buf.ReadRaw()
	}
	return l.emit(TokenString, string(text)), nil
}

// quotedSegment reads up to the closing quote. The opening quote is consumed.
func (l *Lexer) quotedSegment() ([]byte, error) {
	var text []byte
	for {
		c := l.buf.ReadRaw()
		switch c {
		case eof, '\n', '\r':
			return nil, l.fail(ErrStringExceedsLine, strings.TrimRight(l.buf.Lexeme(), "\r\n"))
		case '\'':
			if l.buf.Peek() != '\'' {
				return text, nil
			}
			l.buf.ReadRaw()
		}
		text = append(text, c)
	}
}

// controlChar reads #N, #$H, #&O or #%B. The '#' is consumed.
func (l *Lexer) controlChar() (byte, error) {
	base := 10
	switch l.buf.Peek() {
	case '$':
		base = 16
	case '&':
		base = 8
	case '%':
		base = 2
	}
	if base != 10 {
		l.buf.ReadRaw()
	}
	digits := l.readDigits(base)
	if digits == "" {
		return 0, l.fail(ErrStringMalformed, l.buf.Lexeme())
	}
	v, err := strconv.ParseUint(digits, base, 8)
	if err != nil {
		return 0, l.fail(ErrStringMalformed, l.buf.Lexeme())
	}
	return byte(v), nil
}

// Operators and separators

const singleCharOperators = "+-*/=<>:.^@,;()[]"

// twoCharOperators maps every legal two-character spelling to its normalized
// value. "(." and ".)" are digraphs for the brackets.
var twoCharOperators = map[string]string{
	"<=": "<=",
	"<>": "<>",
	"<<": "<<",
	">=": ">=",
	"><": "><",
	">>": ">>",
	":=": ":=",
	"+=": "+=",
	"-=": "-=",
	"*=": "*=",
	"**": "**",
	"/=": "/=",
	"..": "..",
	"(.": "[",
	".)": "]",
}

var separators = map[string]bool{
	",":  true,
	";":  true,
	":":  true,
	"(":  true,
	")":  true,
	"[":  true,
	"]":  true,
	"..": true,
}

// scanOperator resolves multi-character operators with one character of
// lookahead, pushing it back when the pair is not an operator.
func (l *Lexer) scanOperator(c byte) (Token, error) {
	if strings.IndexByte(singleCharOperators, c) < 0 {
		return Token{}, l.fail(ErrUnknownLexeme, l.buf.Lexeme())
	}
	value := string(c)
	next := l.buf.ReadRaw()
	if pair, ok := twoCharOperators[string([]byte{c, next})]; ok && next != eof {
		value = pair
	} else {
		l.buf.Retract()
	}
	if separators[value] {
		return l.emit(TokenSeparator, value), nil
	}
	return l.emit(TokenOperator, value), nil
}
