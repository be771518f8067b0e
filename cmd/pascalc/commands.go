package main

import (
	"fmt"

	pascal "github.com/ZeroICQ/pascal-compiler-sub000"
	"github.com/spf13/cobra"
)

func newLexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the lexical report of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			return pascal.WriteLexicalReport(cmd.OutOrStdout(), src)
		},
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the syntax tree of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			root, err := pascal.Parse(src)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pascal.ToSExpr(root))
			return err
		},
	}
}

func newCheckCmd() *cobra.Command {
	var layout bool
	checkCmd := &cobra.Command{
		Use:   "check [--layout] <file>",
		Short: "Analyse a program and print its typed tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			logf(cmd, "Checking %s...", args[0])
			root, scopes, err := pascal.Compile(src)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, pascal.ToTypedSExpr(root)); err != nil {
				return err
			}
			if layout {
				logf(cmd, "Storage layout:")
				return scopes.WriteLayout(out)
			}
			logf(cmd, "%s: no errors found", args[0])
			return nil
		},
	}
	checkCmd.Flags().BoolVar(&layout, "layout", false, "also print the storage layout of every scope")
	return checkCmd
}
