// Command pegrun is the CLI front-end for the pegrun package (spec.md §6
// "CLI surface"), built on github.com/teris-io/cli the same way the
// teacher's nand2tetris toolchain builds its cmd/*/main.go binaries: one
// package-level `cli.New(...)` tree wired straight to os.Exit.
package main

import (
	"os"

	"github.com/teris-io/cli"
)

var app = cli.New("pegrun compiles and runs PEG grammars with bounded left recursion").
	WithCommand(runCommand).
	WithCommand(compileCommand)

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
