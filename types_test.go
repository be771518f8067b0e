package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTypeAliasWidens(t *testing.T) {
	root, _ := compile(t, "type myint = integer;\nvar i: myint; d: double;\nbegin\nd := i\nend.")
	be.Equal(t, ToTypedSExpr(root.Children[0]),
		`(assign ":=" (ident ^{type: "double"} "d") (cast ^{type: "double"} "double" (ident ^{type: "myint"} "i")))`)
}

func TestNominalAliasResolvesOnUse(t *testing.T) {
	_, scopes := compile(t, "type t = type integer;\nvar a: t; b: integer;\nbegin\na := b;\nb := a + 1\nend.")
	be.Equal(t, scopes.Find("t").Kind, SymAlias)
	be.True(t, scopes.Find("a").Type.Resolve() == scopes.Int)
}

func TestRealIsDouble(t *testing.T) {
	_, scopes := compile(t, "var r: real;\nbegin\nr := 1.5\nend.")
	r := scopes.Find("r")
	be.Equal(t, r.Type.Name, "real")
	be.True(t, r.Type.Resolve() == scopes.Float)
}

func TestBooleanAndIntegerOperators(t *testing.T) {
	compile(t, `var b: boolean; i: integer;
begin
  b := (i > 0) and not (i = 5) or false;
  i := i div 2 mod 3 shl 1 xor 4;
  i := not i and $FF
end.`)
}

func TestScalarOperatorErrors(t *testing.T) {
	be.Equal(t, compileError(t, "var c: char;\nbegin\nc := c + c\nend."),
		`OperatorNotOverloaded "+" for "char" and "char" at 3,8.`)
	be.Equal(t, compileError(t, "var b: boolean;\nbegin\nb := b * b\nend."),
		`OperatorNotOverloaded "*" for "boolean" and "boolean" at 3,8.`)
	be.Equal(t, compileError(t, "var b: boolean;\nbegin\nb := -b\nend."),
		`OperatorNotOverloaded "-" for "boolean" at 3,6.`)
	be.Equal(t, compileError(t, "var i: integer;\nbegin\ni := i mod 2.0\nend."),
		`OperatorNotOverloaded "mod" for "integer" and "double" at 3,8.`)
}

func TestNoImplicitNarrowing(t *testing.T) {
	be.Equal(t, compileError(t, "var i: integer;\nbegin\ni := 1.0\nend."),
		`IncompatibleTypes "double" and "integer" at 3,3.`)
	be.Equal(t, compileError(t, "var i: integer; c: char;\nbegin\ni := c\nend."),
		`IncompatibleTypes "char" and "integer" at 3,3.`)
	be.Equal(t, compileError(t, "var i: integer; b: boolean;\nbegin\ni := b\nend."),
		`IncompatibleTypes "boolean" and "integer" at 3,3.`)
}

func TestSymbolStrings(t *testing.T) {
	s := NewScopeStack()
	inner, _ := s.AddArray(ident("array"), 0, 1, s.Char)
	outer, _ := s.AddArray(ident("array"), 1, 2, inner)
	be.Equal(t, outer.String(), "array[1..2] of array[0..1] of char")
	open, _ := s.AddOpenArray(ident("array"), outer)
	be.Equal(t, open.String(), "array of array[1..2] of array[0..1] of char")
	be.Equal(t, s.Find("real").String(), "real")
}
