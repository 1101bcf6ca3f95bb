// Graf plots expressions in x, finds where they cross, and evaluates inline
// definite integrals. It runs as a line-oriented REPL, a batch calculator, or
// a language server for editors.
package main

import (
	"os"

	"src.graf.sh/pkg/buildinfo"
	"src.graf.sh/pkg/lsp"
	"src.graf.sh/pkg/prog"
	"src.graf.sh/pkg/repl"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program{}, lsp.Program{}, repl.Program{})))
}
