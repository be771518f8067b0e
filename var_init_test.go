package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestVarInitializerIsFolded(t *testing.T) {
	root, scopes := compile(t, "var x: integer = 1 + 2;\nd: double = 1;\ns: string = 'ab' + 'cd';\nbegin end.")
	be.Equal(t, scopes.Find("x").Init.Integer, int64(3))
	be.Equal(t, scopes.Find("d").Init.Kind, NodeReal)
	be.Equal(t, scopes.Find("d").Init.Real, 1.0)
	be.Equal(t, scopes.Find("s").Init.String, "abcd")
	be.Equal(t, ToSExpr(root.Decls[1]), `(var "d" (typename "double") (real "1"))`)
}

func TestVarInitializerSharedByNames(t *testing.T) {
	_, scopes := compile(t, "var a, b: integer = 5;\nbegin end.")
	be.Equal(t, scopes.Find("a").Init.Integer, int64(5))
	be.True(t, scopes.Find("a").Init == scopes.Find("b").Init)
}

func TestVarInitializerFromConstant(t *testing.T) {
	_, scopes := compile(t, "const c = 5;\nvar x: integer = c + 1;\nbegin end.")
	be.Equal(t, scopes.Find("x").Init.Integer, int64(6))
}

func TestLocalVarInitializer(t *testing.T) {
	_, scopes := compile(t, "procedure p;\nvar i: integer = 3;\nbegin end;\nbegin end.")
	i := scopes.Find("p").Locals.Lookup("i")
	be.Equal(t, i.Storage, StorageLocal)
	be.Equal(t, i.Init.Integer, int64(3))
}

func TestVarWithoutInitializer(t *testing.T) {
	_, scopes := compile(t, "var x: integer;\nbegin end.")
	be.True(t, scopes.Find("x").Init == nil)
}

func TestVarInitializerErrors(t *testing.T) {
	be.Equal(t, compileError(t, "var x: integer = 1.5; begin end."),
		`IncompatibleTypes "double" and "integer" at 1,5.`)
	be.Equal(t, compileError(t, "var x: integer = 2 * 3; begin end."),
		`ConstExprEvalFailure "x" at 1,20.`)
	be.Equal(t, compileError(t, "var x: integer = y; begin end."),
		`IdentifierNotDefined "y" at 1,18.`)
}

func TestTypedConstant(t *testing.T) {
	_, scopes := compile(t, "const d: double = 2;\nbegin end.")
	d := scopes.Find("d")
	be.True(t, d.Type == scopes.Float)
	be.Equal(t, d.Value.Kind, NodeReal)
	be.Equal(t, compileError(t, "const i: integer = 'a';\nbegin end."),
		`IncompatibleTypes "char" and "integer" at 1,7.`)
}
