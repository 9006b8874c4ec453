package main

import (
	"fmt"
	"os"

	"github.com/teris-io/cli"
)

// compileCommand mirrors the teacher's `-asm-only` debugging flag,
// generalized into its own subcommand (SPEC_FULL.md §A.5) since
// teris-io/cli is subcommand-shaped rather than flag-shaped.
var compileCommand = cli.NewCommand("compile", "Compile a grammar and print its assembly listing").
	WithOption(cli.NewOption("grammar-file", "Path to the grammar source file").WithType(cli.TypeString)).
	WithOption(cli.NewOption("start-rule", "Production to use as the entry point").WithType(cli.TypeString)).
	WithOption(cli.NewOption("config-file", "Optional TOML settings file").WithType(cli.TypeString)).
	WithAction(compileAction)

func compileAction(args []string, options map[string]string) int {
	grammarFile, ok := options["grammar-file"]
	if !ok {
		fmt.Fprintln(os.Stderr, "error: --grammar-file is required")
		return 1
	}

	cfg := loadConfig(options["config-file"])
	prog, err := loadProgram(grammarFile, options["start-rule"], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Print(prog.String())
	return 0
}
