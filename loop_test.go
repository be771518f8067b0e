package pascal

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestForLoopTyping(t *testing.T) {
	root, _ := compile(t, "var i: integer; d: double;\nbegin\nfor i := 1 to 3 do d += i\nend.")
	be.Equal(t, ToTypedSExpr(root.Children[0]),
		`(for "to" (assign ":=" (ident ^{type: "integer"} "i") (integer ^{type: "integer"} 1)) (integer ^{type: "integer"} 3) `+
			`(assign "+=" (ident ^{type: "double"} "d") (cast ^{type: "double"} "double" (ident ^{type: "integer"} "i"))))`)
}

func TestBreakAndContinueInsideLoops(t *testing.T) {
	compile(t, `var i, s: integer;
begin
  for i := 10 downto 1 do
  begin
    if i > 5 then continue;
    s += i;
    while s > 100 do
    begin
      s -= 1;
      if s = 50 then break
    end;
    if s < 0 then break
  end
end.`)
}

func TestBreakAfterLoop(t *testing.T) {
	be.Equal(t, compileError(t, "var i: integer;\nbegin\nwhile i < 3 do i += 1;\nbreak\nend."),
		`NotAllowed "break" at 4,1.`)
	be.Equal(t, compileError(t, "var i: integer;\nbegin\nif i < 3 then continue\nend."),
		`NotAllowed "continue" at 3,15.`)
}

func TestLoopDepthDoesNotCrossRoutines(t *testing.T) {
	be.Equal(t, compileError(t, "procedure p;\nbegin\nbreak\nend;\nbegin\nwhile true do p\nend."),
		`NotAllowed "break" at 3,1.`)
}

func TestLoopConditions(t *testing.T) {
	be.Equal(t, compileError(t, "var i: integer;\nbegin\nwhile i do i -= 1\nend."),
		`IncompatibleTypes "integer" and "boolean" at 3,7.`)
	be.Equal(t, compileError(t, "var c: char;\nbegin\nfor c := 'a' to 'z' do\nend."),
		`IncompatibleTypes "char" and "integer" at 3,5.`)
	be.Equal(t, compileError(t, "begin\nfor k := 1 to 2 do\nend."),
		`IdentifierNotDefined "k" at 2,5.`)
}
