package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/teris-io/cli"

	"github.com/arcvalley/pegrun"
	"github.com/arcvalley/pegrun/internal/format"
)

var runCommand = cli.NewCommand("run", "Compile a grammar and match it against an input").
	WithOption(cli.NewOption("grammar-file", "Path to the grammar source file").WithType(cli.TypeString)).
	WithOption(cli.NewOption("start-rule", "Production to use as the entry point").WithType(cli.TypeString)).
	WithOption(cli.NewOption("input-file", "Path to the input to match; omit for an interactive prompt").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output-format", "One of raw, compact, indented, html, nil").WithType(cli.TypeString)).
	WithOption(cli.NewOption("config-file", "Optional TOML settings file").WithType(cli.TypeString)).
	WithOption(cli.NewOption("verbose", "Emit debug-level structured logs").WithType(cli.TypeBool)).
	WithAction(runAction)

func runAction(args []string, options map[string]string) int {
	if _, verbose := options["verbose"]; verbose {
		pegrun.SetDebug(true)
	}

	grammarFile, ok := options["grammar-file"]
	if !ok {
		fmt.Fprintln(os.Stderr, "error: --grammar-file is required")
		return 1
	}

	outFmt, err := format.Parse(firstNonEmpty(options["output-format"], "compact"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cfg := loadConfig(options["config-file"])
	prog, err := loadProgram(grammarFile, options["start-rule"], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if inputFile, ok := options["input-file"]; ok {
		return runOnFile(prog, cfg, inputFile, outFmt)
	}
	return runInteractive(prog, cfg, outFmt)
}

func runOnFile(prog *pegrun.Program, cfg *pegrun.Config, inputFile string, outFmt format.Kind) int {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading input file: %v\n", err)
		return 1
	}
	value, err := pegrun.Execute(prog, string(data), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(format.Render(outFmt, value))
	return 0
}

// runInteractive drops into a line-editing prompt (spec.md §6: "Missing
// input-file drops the caller into an interactive prompt that reads one
// line per parse"), using readline for history and Ctrl-D-to-exit instead
// of a raw bufio.Scanner loop.
func runInteractive(prog *pegrun.Program, cfg *pegrun.Config, outFmt format.Kind) int {
	rl, err := readline.New("pegrun> ")
	if err != nil {
		// Fall back to a plain scanner if the terminal doesn't support
		// line editing (e.g. piped stdin in a test harness).
		return runPlainScanner(prog, cfg, outFmt)
	}
	defer rl.Close()

	exitCode := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			exitCode = 1
			break
		}
		value, err := pegrun.Execute(prog, line, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			exitCode = 1
			continue
		}
		fmt.Println(format.Render(outFmt, value))
	}
	return exitCode
}

func runPlainScanner(prog *pegrun.Program, cfg *pegrun.Config, outFmt format.Kind) int {
	scanner := bufio.NewScanner(os.Stdin)
	exitCode := 0
	for scanner.Scan() {
		value, err := pegrun.Execute(prog, scanner.Text(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			exitCode = 1
			continue
		}
		fmt.Println(format.Render(outFmt, value))
	}
	return exitCode
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
