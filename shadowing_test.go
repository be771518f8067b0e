package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestLocalShadowsGlobal(t *testing.T) {
	root, scopes := compile(t, `var x: integer;
procedure p;
var x: double;
begin
  x := 1.5
end;
begin
  x := 2
end.`)
	global := scopes.Find("x")
	be.True(t, global.Type == scopes.Int)

	p := scopes.Find("p")
	local := p.Locals.Lookup("x")
	be.True(t, local.Type == scopes.Float)
	be.Equal(t, local.Storage, StorageLocal)

	inner := p.Body.Children[0].Children[0]
	be.True(t, inner.Symbol == local)
	outer := root.Children[0].Children[0]
	be.True(t, outer.Symbol == global)
}

func TestParamShadowsGlobal(t *testing.T) {
	_, scopes := compile(t, `var n: double;
function twice(n: integer): integer;
begin
  result := n * 2
end;
begin
  n := twice(3)
end.`)
	fn := scopes.Find("twice")
	be.Equal(t, fn.Locals.Lookup("n").Storage, StorageParam)
	be.True(t, fn.Locals.Lookup("n").Type == scopes.Int)
}

func TestLocalsDoNotLeak(t *testing.T) {
	be.Equal(t, compileError(t, "procedure p;\nvar y: integer;\nbegin y := 1 end;\nbegin\ny := 2\nend."),
		`IdentifierNotDefined "y" at 5,1.`)
}

func TestLocalDuplicatesParam(t *testing.T) {
	be.Equal(t, compileError(t, "procedure p(a: integer);\nvar a: double;\nbegin end;\nbegin end."),
		`DuplicateIdentifier "a" at 2,5.`)
}

func TestBuiltinShadowedInFunction(t *testing.T) {
	_, scopes := compile(t, `procedure p;
var writeln: integer;
begin
  writeln := 1
end;
begin
  writeln(2)
end.`)
	be.True(t, scopes.Find("writeln") == scopes.Writeln)
}

func TestShadowedTypeName(t *testing.T) {
	be.Equal(t, compileError(t, "procedure p;\nvar integer: char;\nx: integer;\nbegin end;\nbegin end."),
		`TypeNotFound "integer" at 3,4.`)
}
