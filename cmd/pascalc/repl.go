package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pascal "github.com/ZeroICQ/pascal-compiler-sub000"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".pascalc_history"
	promptMain  = "pascal> "
	promptCont  = "   ...> "
)

func newReplCmd() *cobra.Command {
	var history string
	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Check declarations and expressions interactively",
		Long: `repl reads declaration sections (var, const, type, procedure,
function) and expressions. Declarations stay visible to later input;
expressions are printed with their types, and folded when constant.
Type :quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if history == "" {
				home, _ := os.UserHomeDir()
				history = filepath.Join(home, historyFile)
			}
			return runRepl(cmd, history)
		},
	}
	replCmd.Flags().StringVar(&history, "history", "", "history file (default ~/"+historyFile+")")
	return replCmd
}

func runRepl(cmd *cobra.Command, histPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	s := newSession()
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		src = strings.TrimSpace(src)
		switch {
		case src == "":
			continue
		case src == ":quit":
			return nil
		case strings.HasPrefix(src, ":"):
			fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		result, err := s.eval(src)
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		fmt.Fprintln(out, result)
	}
}

// readInput reads lines until they form a complete input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, _, err := parseInput(src); !pascal.IsIncomplete(err) || strings.TrimSpace(src) == "" {
			return src, true
		}
	}
}

// session keeps the scopes of one interactive run.
type session struct {
	scopes   *pascal.ScopeStack
	analyzer *pascal.Analyzer
}

func newSession() *session {
	scopes := pascal.NewScopeStack()
	return &session{scopes: scopes, analyzer: pascal.NewAnalyzer(scopes)}
}

func isDeclKeyword(t pascal.Token) bool {
	for _, kw := range []string{"var", "const", "type", "procedure", "function"} {
		if t.Is(kw) {
			return true
		}
	}
	return false
}

// parseInput parses src as declaration sections or as one expression,
// depending on its first token.
func parseInput(src string) (*pascal.ASTNode, bool, error) {
	first, err := pascal.NewLexer([]byte(src)).NextToken()
	if err != nil {
		return nil, false, err
	}
	if isDeclKeyword(first) {
		block, err := pascal.NewParser(pascal.NewLexer([]byte(src))).ParseDeclarations()
		return block, true, err
	}
	expr, err := pascal.ParseExpression([]byte(src))
	return expr, false, err
}

// eval checks one input and describes the result.
func (s *session) eval(src string) (string, error) {
	node, decls, err := parseInput(src)
	if err != nil {
		return "", err
	}

	if decls {
		// A failing input declares nothing.
		before := s.scopes.Current().Len()
		if _, err := s.analyzer.Visit(node); err != nil {
			s.scopes.Current().Truncate(before)
			return "", err
		}
		var lines []string
		for _, sym := range s.scopes.Current().Symbols()[before:] {
			lines = append(lines, describe(sym))
		}
		return strings.Join(lines, "\n"), nil
	}

	expr, err := s.analyzer.Visit(node)
	if err != nil {
		return "", err
	}
	result := pascal.ToTypedSExpr(expr)
	if lit, ok := pascal.Fold(expr); ok {
		result += "\n= " + pascal.ToSExpr(lit)
	}
	return result, nil
}

func describe(sym *pascal.Symbol) string {
	switch sym.Kind {
	case pascal.SymVariable:
		return fmt.Sprintf("var %s: %s", sym.Name, sym.Type)
	case pascal.SymConst:
		return fmt.Sprintf("const %s: %s = %s", sym.Name, sym.Type, pascal.ToSExpr(sym.Value))
	case pascal.SymFunction:
		if sym.Return.Kind == pascal.SymVoid {
			return fmt.Sprintf("procedure %s", sym.Name)
		}
		return fmt.Sprintf("function %s: %s", sym.Name, sym.Return)
	case pascal.SymAlias, pascal.SymTypeAlias:
		return fmt.Sprintf("type %s = %s", sym.Name, sym.Type)
	}
	return fmt.Sprintf("type %s", sym)
}
