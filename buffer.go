package pascal

// eof is returned by Buffer reads once the input is exhausted.
const eof = 0

// Buffer is the character source of the lexer. It tracks the position of every
// character it hands out and captures the text of the lexeme being scanned.
//
// Only one character may be retracted between two reads.
type Buffer struct {
	input  []byte
	pos    int // index of the next byte to read
	line   int // position of input[pos]
	column int

	lexeme    []byte
	startLine int
	startCol  int

	prev       mark // state before the last read
	canRetract bool
}

type mark struct {
	pos, line, column int
	captured          int
}

func NewBuffer(input []byte) *Buffer {
	return &Buffer{input: input, line: 1, column: 1}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// Read returns the next significant character, skipping blanks.
func (b *Buffer) Read() byte {
	for b.pos < len(b.input) && isBlank(b.input[b.pos]) {
		b.advance()
	}
	return b.ReadRaw()
}

// ReadRaw returns the next character, blanks included.
func (b *Buffer) ReadRaw() byte {
	b.prev = mark{pos: b.pos, line: b.line, column: b.column, captured: len(b.lexeme)}
	b.canRetract = true
	if b.pos >= len(b.input) {
		return eof
	}
	if len(b.lexeme) == 0 {
		b.startLine, b.startCol = b.line, b.column
	}
	c := b.input[b.pos]
	b.lexeme = append(b.lexeme, c)
	b.advance()
	return c
}

func (b *Buffer) advance() {
	if b.input[b.pos] == '\n' {
		b.line++
		b.column = 1
	} else {
		b.column++
	}
	b.pos++
}

// Peek returns the next character without consuming it. Blanks are not skipped.
func (b *Buffer) Peek() byte {
	if b.pos >= len(b.input) {
		return eof
	}
	return b.input[b.pos]
}

// Retract pushes back the character returned by the last read.
func (b *Buffer) Retract() {
	if !b.canRetract {
		panic(unreachable("buffer retracted twice without an intervening read"))
	}
	b.canRetract = false
	b.pos, b.line, b.column = b.prev.pos, b.prev.line, b.prev.column
	if b.prev.captured < len(b.lexeme) {
		b.lexeme = b.lexeme[:b.prev.captured]
	}
}

// StartLexeme opens a new capture window at the current position.
func (b *Buffer) StartLexeme() {
	b.lexeme = b.lexeme[:0]
	b.startLine, b.startCol = b.line, b.column
}

// Lexeme returns the characters read since StartLexeme, without skipped blanks.
func (b *Buffer) Lexeme() string {
	return string(b.lexeme)
}

// LexemeStart returns the position of the first character of the lexeme.
func (b *Buffer) LexemeStart() (line, column int) {
	return b.startLine, b.startCol
}

// Position returns the position of the next character to be read.
func (b *Buffer) Position() (line, column int) {
	return b.line, b.column
}
