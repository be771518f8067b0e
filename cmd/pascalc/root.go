package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pascalc",
		Short: "pascalc - Pascal front end: lexer, parser and semantic checker",
		Long: `pascalc runs the front end of a Pascal compiler over a source file.

Commands:
  lex    Print the lexical report, one token per line
  parse  Print the syntax tree as an S-expression
  check  Analyse a program and print the typed tree
  repl   Check declarations and expressions interactively
`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show progress on stderr")
	rootCmd.AddCommand(newLexCmd(), newParseCmd(), newCheckCmd(), newReplCmd())
	return rootCmd
}

// logf prints progress to stderr when --verbose is set.
func logf(cmd *cobra.Command, format string, args ...any) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	logf(cmd, "Reading %s...", path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return src, nil
}
