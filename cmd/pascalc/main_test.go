package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.pas")
	be.Err(t, os.WriteFile(path, []byte(src), 0o644), nil)
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLexCommand(t *testing.T) {
	path := writeSource(t, "x := $7B")
	stdout, _, err := run(t, "lex", path)
	be.Err(t, err, nil)
	be.Equal(t, stdout, "1,1\tIdentifier\tx\tx\n1,3\tOperator\t:=\t:=\n1,6\tInteger\t123\t$7B\n")
}

func TestParseCommand(t *testing.T) {
	path := writeSource(t, "begin x := 1 end.")
	stdout, _, err := run(t, "parse", path)
	be.Err(t, err, nil)
	be.Equal(t, stdout, `(block (assign ":=" (ident "x") (integer 1)))`+"\n")
}

func TestCheckCommand(t *testing.T) {
	path := writeSource(t, "var x: integer;\nbegin x := 1 + 2 end.")
	stdout, _, err := run(t, "check", path)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, `(binary ^{type: "integer"} "+"`))
}

func TestCheckCommandLayout(t *testing.T) {
	path := writeSource(t, "var x: integer; c: char;\nbegin end.")
	stdout, _, err := run(t, "check", "--layout", path)
	be.Err(t, err, nil)
	be.True(t, strings.HasSuffix(stdout, "<global>\tx\tglobal\tinteger\t8\t0\n<global>\tc\tglobal\tchar\t1\t8\n"))
}

func TestCheckCommandDiagnostic(t *testing.T) {
	path := writeSource(t, "begin y := 1 end.")
	_, stderr, err := run(t, "check", path)
	be.Equal(t, err.Error(), `IdentifierNotDefined "y" at 1,7.`)
	be.True(t, strings.Contains(stderr, `IdentifierNotDefined "y" at 1,7.`))
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := writeSource(t, "begin end.")
	stdout, stderr, err := run(t, "-v", "parse", path)
	be.Err(t, err, nil)
	be.Equal(t, stdout, "(block (empty))\n")
	be.True(t, strings.Contains(stderr, "Reading "+path))
}

func TestMissingFile(t *testing.T) {
	_, _, err := run(t, "lex", filepath.Join(t.TempDir(), "missing.pas"))
	be.True(t, err != nil)
	be.True(t, strings.HasPrefix(err.Error(), "error reading file"))
}

func TestSessionDeclarationsPersist(t *testing.T) {
	s := newSession()

	out, err := s.eval("var x: integer; const n = 2;")
	be.Err(t, err, nil)
	be.Equal(t, out, "var x: integer\nconst n: integer = (integer 2)")

	out, err = s.eval("x / n")
	be.Err(t, err, nil)
	be.Equal(t, out, `(binary ^{type: "double"} "/" (cast ^{type: "double"} "double" (ident ^{type: "integer"} "x")) (cast ^{type: "double"} "double" (ident ^{type: "integer"} "n")))`)
}

func TestSessionFoldsConstants(t *testing.T) {
	s := newSession()
	out, err := s.eval("1 + 2")
	be.Err(t, err, nil)
	be.Equal(t, out, `(binary ^{type: "integer"} "+" (integer ^{type: "integer"} 1) (integer ^{type: "integer"} 2))`+"\n= (integer 3)")
}

func TestSessionErrorsKeepState(t *testing.T) {
	s := newSession()
	_, err := s.eval("var x: integer;")
	be.Err(t, err, nil)

	_, err = s.eval("var x: double;")
	be.Equal(t, err.Error(), `DuplicateIdentifier "x" at 1,5.`)

	out, err := s.eval("x")
	be.Err(t, err, nil)
	be.Equal(t, out, `(ident ^{type: "integer"} "x")`)
}

func TestSessionFailedDeclarationsAreDropped(t *testing.T) {
	s := newSession()
	_, err := s.eval("var a: integer; b: nosuch;")
	be.Equal(t, err.Error(), `TypeNotFound "nosuch" at 1,20.`)

	_, err = s.eval("a")
	be.Equal(t, err.Error(), `IdentifierNotDefined "a" at 1,1.`)

	out, err := s.eval("var a: integer; b: char;")
	be.Err(t, err, nil)
	be.Equal(t, out, "var a: integer\nvar b: char")
}

func TestSessionRoutines(t *testing.T) {
	s := newSession()
	out, err := s.eval("function twice(a: integer): integer; begin result := a * 2 end;")
	be.Err(t, err, nil)
	be.Equal(t, out, "function twice: integer")

	out, err = s.eval("twice(3)")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, `(call ^{type: "integer"} (ident "twice")`))
}

func TestParseInputIncomplete(t *testing.T) {
	_, _, err := parseInput("var x: integer")
	be.True(t, err != nil)
	_, decls, err := parseInput("var x: integer;")
	be.Err(t, err, nil)
	be.True(t, decls)
	_, decls, err = parseInput("(1 + 2")
	be.True(t, err != nil)
	be.True(t, !decls)
}
