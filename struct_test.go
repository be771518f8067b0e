package pascal

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestRecordFieldAccess(t *testing.T) {
	root, scopes := compile(t, "type point = record x, y: double end;\nvar p: point;\nbegin\np.x := 1;\np.y := p.x * 2\nend.")
	be.Equal(t, ToTypedSExpr(root.Children[0]),
		`(assign ":=" (field ^{type: "double"} (ident ^{type: "point"} "p") "x") `+
			`(cast ^{type: "double"} "double" (integer ^{type: "integer"} 1)))`)

	point := scopes.Find("point")
	be.Equal(t, point.Kind, SymRecord)
	be.Equal(t, point.Fields.Len(), 2)
	be.Equal(t, point.Size(), int64(16))
}

func TestNestedRecords(t *testing.T) {
	root, _ := compile(t, `type inner = record v: integer end;
outer = record i: inner; a: array[1..2] of inner end;
var o: outer;
begin
  o.a[2].v := o.i.v
end.`)
	be.Equal(t, ToSExpr(root.Children[0]),
		`(assign ":=" (field (idx (field (ident "o") "a") (integer 2)) "v") (field (field (ident "o") "i") "v"))`)
}

func TestAnonymousRecordVariable(t *testing.T) {
	_, scopes := compile(t, "var r: record a: integer; b: char end;\nbegin\nr.b := 'x'\nend.")
	r := scopes.Find("r")
	be.Equal(t, r.Type.String(), "record")
	be.True(t, r.Type.Fields.Lookup("b").Type == scopes.Char)
}

func TestRecordsAreNominal(t *testing.T) {
	const decl = "type a = record x: integer end;\nb = record x: integer end;\nvar va, va2: a; vb: b;\nbegin\n"
	compile(t, decl+"va := va2\nend.")
	be.Equal(t, compileError(t, decl+"va := vb\nend."), `IncompatibleTypes "b" and "a" at 5,4.`)
}

func TestFieldOfFunctionResult(t *testing.T) {
	compile(t, `type pair = record l, r: integer end;
function mk: pair;
begin
  result.l := 1;
  result.r := 2
end;
var n: integer;
begin
  n := mk.l + mk().r
end.`)
}

func TestRecordTypeAlias(t *testing.T) {
	_, scopes := compile(t, "type p = record x: integer end;\nq = p;\nvar v: q;\nbegin\nv.x := 3\nend.")
	be.True(t, scopes.Find("q").Type == scopes.Find("p"))
}

func TestRecordCannotContainItself(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"type r = record a: r; end;\nbegin end.", `TypeNotFound "r" at 1,20.`},
		{"type r = record a: array[1..2] of r; end;\nbegin end.", `TypeNotFound "r" at 1,20.`},
		{"type r = record a: array[1..2] of array[0..1] of r; end;\nbegin end.", `TypeNotFound "r" at 1,20.`},
		{"type r = record n: record a: r end; end;\nbegin end.", `TypeNotFound "r" at 1,20.`},
	}
	for _, test := range tests {
		be.Equal(t, compileError(t, test.input), test.err)
	}
}

func TestRecordOfArrayOfRecordLayout(t *testing.T) {
	_, scopes := compile(t, "type p = record x: integer end;\nr = record a: array[1..2] of p; b: char end;\nvar v: r;\nbegin end.")
	var sb strings.Builder
	be.Err(t, scopes.WriteLayout(&sb), nil)
	be.Equal(t, sb.String(), "<global>\tv\tglobal\tr\t17\t0\n")
}
