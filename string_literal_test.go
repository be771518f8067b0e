package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestSingleCharacterLiteralIsChar(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'x'", `(char ^{type: "char"} "x")`},
		{"#65", `(char ^{type: "char"} "A")`},
		{"''''", `(char ^{type: "char"} "'")`},
		{"'xy'", `(string ^{type: "string"} "xy")`},
		{"''", `(string ^{type: "string"} "")`},
		{"'a'#66", `(string ^{type: "string"} "aB")`},
		{`'say "hi"'`, `(string ^{type: "string"} "say \"hi\"")`},
	}
	scopes := NewScopeStack()
	for _, test := range tests {
		expr, err := CompileExpression([]byte(test.input), scopes)
		be.Err(t, err, nil)
		be.Equal(t, ToTypedSExpr(expr), test.want)
	}
}

func TestCharAndStringDoNotMix(t *testing.T) {
	const decl = "var c: char; s: string;\nbegin\n"
	compile(t, decl+"c := 'x';\ns := 'xy'\nend.")
	be.Equal(t, compileError(t, decl+"s := 'x'\nend."), `IncompatibleTypes "char" and "string" at 3,3.`)
	be.Equal(t, compileError(t, decl+"c := 'xy'\nend."), `IncompatibleTypes "string" and "char" at 3,3.`)
}

func TestStringOperators(t *testing.T) {
	root, _ := compile(t, "var s: string; b: boolean;\nbegin\ns := 'ab' + 'cd';\nb := 'ab' < s\nend.")
	be.Equal(t, ToTypedSExpr(root.Children[1].Children[1]),
		`(binary ^{type: "boolean"} "<" (string ^{type: "string"} "ab") (ident ^{type: "string"} "s"))`)
}

func TestCharComparisonIsNotOverloaded(t *testing.T) {
	be.Equal(t, compileError(t, "var b: boolean;\nbegin\nb := 'a' = 'b'\nend."),
		`OperatorNotOverloaded "=" for "char" and "char" at 3,10.`)
}

func TestWriteArguments(t *testing.T) {
	compile(t, "type name = string;\nvar n: name;\nbegin\nwriteln('a', 'bc', #10, 1, 2.5, true, n);\nwrite;\nwriteln\nend.")
}

func TestCharCasts(t *testing.T) {
	root, _ := compile(t, "var i: integer; c: char;\nbegin\ni := integer('A');\nc := char(i + 1)\nend.")
	be.Equal(t, ToTypedSExpr(root.Children[0].Children[1]),
		`(cast ^{type: "integer"} "integer" (char ^{type: "char"} "A"))`)
	be.Equal(t, compileError(t, "var s: string;\nbegin\ns := string('A')\nend."),
		`IncompatibleTypes "char" and "string" at 3,6.`)
}
