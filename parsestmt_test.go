package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseProgram(t *testing.T, input string) string {
	t.Helper()
	root, err := Parse([]byte(input))
	be.Err(t, err, nil)
	return ToSExpr(root)
}

func parseProgramError(t *testing.T, input string) string {
	t.Helper()
	_, err := Parse([]byte(input))
	be.True(t, err != nil)
	return err.Error()
}

func TestParseEmptyProgram(t *testing.T) {
	be.Equal(t, parseProgram(t, "begin end."), "(block (empty))")
	be.Equal(t, parseProgram(t, "program demo; begin end."), "(block (empty))")
	be.Equal(t, parseProgram(t, "begin ; end."), "(block (empty) (empty))")
}

func TestParseAssignments(t *testing.T) {
	be.Equal(t,
		parseProgram(t, "begin x := 1; y += 2; z -= 3; w *= 4; v /= 5 end."),
		`(block (assign ":=" (ident "x") (integer 1)) (assign "+=" (ident "y") (integer 2)) `+
			`(assign "-=" (ident "z") (integer 3)) (assign "*=" (ident "w") (integer 4)) `+
			`(assign "/=" (ident "v") (integer 5)))`)
	be.Equal(t,
		parseProgram(t, "begin a[1].x := 2 end."),
		`(block (assign ":=" (field (idx (ident "a") (integer 1)) "x") (integer 2)))`)
}

func TestParseProcedureCalls(t *testing.T) {
	be.Equal(t,
		parseProgram(t, "begin writeln(1, 'ab'); p end."),
		`(block (call (ident "writeln") (integer 1) (string "ab")) (ident "p"))`)
}

func TestParseIf(t *testing.T) {
	be.Equal(t,
		parseProgram(t, "begin if a then b := 1 else b := 2 end."),
		`(block (if (ident "a") (assign ":=" (ident "b") (integer 1)) (assign ":=" (ident "b") (integer 2))))`)
	be.Equal(t,
		parseProgram(t, "begin if a then if b then x := 1 else x := 2 end."),
		`(block (if (ident "a") (if (ident "b") (assign ":=" (ident "x") (integer 1)) (assign ":=" (ident "x") (integer 2)))))`)
	be.Equal(t,
		parseProgram(t, "begin if a then x := 1 else end."),
		`(block (if (ident "a") (assign ":=" (ident "x") (integer 1)) (empty)))`)
}

func TestParseLoops(t *testing.T) {
	be.Equal(t,
		parseProgram(t, "begin while true do begin if x > 0 then break else continue end end."),
		`(block (while (ident "true") (block (if (binary ">" (ident "x") (integer 0)) (break) (continue)))))`)
	be.Equal(t,
		parseProgram(t, "begin for i := 10 downto 1 do writeln(i) end."),
		`(block (for "downto" (assign ":=" (ident "i") (integer 10)) (integer 1) (call (ident "writeln") (ident "i"))))`)
	be.Equal(t,
		parseProgram(t, "begin for i := 1 to n do s += i end."),
		`(block (for "to" (assign ":=" (ident "i") (integer 1)) (ident "n") (assign "+=" (ident "s") (ident "i"))))`)
}

func TestParseVarAndConstSections(t *testing.T) {
	be.Equal(t,
		parseProgram(t, "var a, b: integer; c: double = 1.5;\nconst n = 5; m: integer = 6;\nbegin end."),
		`(block (var "a" "b" (typename "integer")) (var "c" (typename "double") (real "1.5")) `+
			`(const "n" (integer 5)) (const "m" (integer 6) (typename "integer")) (empty))`)
}

func TestParseTypeSection(t *testing.T) {
	input := `type
  arr = array[1..5] of integer;
  open = array of double;
  t = type integer;
  pt = record x, y: integer; name: string end;
  grid = array[0..1] of array[0..1] of char;
begin end.`
	be.Equal(t, parseProgram(t, input),
		`(block (type "arr" (array (integer 1) (integer 5) (typename "integer"))) `+
			`(type "open" (array (typename "double"))) `+
			`(alias "t" (typename "integer")) `+
			`(type "pt" (record (fields "x" "y" (typename "integer")) (fields "name" (typename "string")))) `+
			`(type "grid" (array (integer 0) (integer 1) (array (integer 0) (integer 1) (typename "char")))) `+
			`(empty))`)
}

func TestParseRoutines(t *testing.T) {
	input := `function f(a: integer; var b: double; const c: char): integer;
begin
  result := a
end;
procedure p;
var i: integer;
begin
  i := 0
end;
begin p end.`
	be.Equal(t, parseProgram(t, input),
		`(block (function "f" (params (param "a" (typename "integer")) (param "var" "b" (typename "double")) `+
			`(param "const" "c" (typename "char"))) (typename "integer") (block (assign ":=" (ident "result") (ident "a")))) `+
			`(procedure "p" (params) (block (var "i" (typename "integer")) (assign ":=" (ident "i") (integer 0)))) `+
			`(ident "p"))`)
}

func TestParseDeclarations(t *testing.T) {
	p := NewParser(NewLexer([]byte("var x: integer; const c = 1;")))
	block, err := p.ParseDeclarations()
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(block), `(block (var "x" (typename "integer")) (const "c" (integer 1)))`)
}

func TestParseStatement(t *testing.T) {
	p := NewParser(NewLexer([]byte("x := y + 1")))
	stmt, err := p.ParseStatement()
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(stmt), `(assign ":=" (ident "x") (binary "+" (ident "y") (integer 1)))`)
}

func TestParseProgramErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"begin x = 1 end.", `IllegalExpression "=" at 1,9.`},
		{"begin 1 end.", `IllegalExpression "1" at 1,7.`},
		{"begin end", `IllegalExpression "end of file" at 1,10.`},
		{"begin end. x", `IllegalExpression "x" at 1,12.`},
		{"var begin end.", `IllegalExpression "begin" at 1,5.`},
		{"begin x := end.", `IllegalExpression "end" at 1,12.`},
		{"begin x := 1 y := 2 end.", `IllegalExpression "y" at 1,14.`},
		{"begin for 1 := 2 to 3 do end.", `IllegalExpression "1" at 1,11.`},
		{"begin for i := 1 upto 3 do end.", `IllegalExpression "upto" at 1,18.`},
		{"var x: 5; begin end.", `IllegalExpression "5" at 1,8.`},
		{"type r = record x: integer y: integer end; begin end.", `IllegalExpression "y" at 1,28.`},
		{"function f; begin end; begin end.", `IllegalExpression ";" at 1,11.`},
		{"begin x := ? end.", `UnknownLexeme "?" at 1,12.`},
	}
	for _, test := range tests {
		be.Equal(t, parseProgramError(t, test.input), test.err)
	}
}
