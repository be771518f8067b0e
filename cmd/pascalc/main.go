// Command pascalc drives the Pascal front end: it prints lexical reports,
// syntax trees and typed trees, and offers an interactive checker.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
