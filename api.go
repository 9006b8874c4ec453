package pegrun

import "fmt"

// Compile turns a parsed Grammar into a Program (spec.md §6 "Programmatic
// API: Compile: (grammar-ast, optional start-rule) -> Program | CompileError").
// The Grammar itself comes from an external surface parser (spec.md §1);
// this package only ever consumes the AST, never produces it, to keep
// internal/surface free to import pegrun without an import cycle.
func Compile(g *Grammar, cfg *Config) (*Program, error) {
	Log.Debug().Int("definitions", len(g.Definitions)).Msg("compiling grammar")
	prog, err := compileGrammar(g, cfg)
	if err != nil {
		Log.Debug().Err(err).Msg("compile failed")
		return nil, err
	}
	Log.Debug().Str("build_id", prog.BuildID().String()).Str("entry", prog.EntryName).Msg("compiled")
	return prog, nil
}

// Execute runs prog against a plain-text input string
// (spec.md §6 "Execute: (Program, input) -> Option<Value> | RuntimeError,
// where input is either a character string or a pre-built sequence of
// values").
func Execute(prog *Program, input string, cfg *Config) (Value, error) {
	vm := NewVM(prog, streamFromString(input), cfg)
	return vm.Run()
}

// ExecuteValues runs prog against a caller-supplied, already-structured
// value sequence — the other half of spec.md §6's "input is either a
// character string or a pre-built sequence of values".
func ExecuteValues(prog *Program, values []StreamValue, cfg *Config) (Value, error) {
	vm := NewVM(prog, values, cfg)
	return vm.Run()
}

// MatchResult is the convenience return type cmd/pegrun and tests use when
// they want both the value tree and a formatted description of failure.
type MatchResult struct {
	Value Value
	Err   error
}

// Describe renders either the captured value (compact form) or the error
// message, for quick CLI/log output.
func (r MatchResult) Describe() string {
	if r.Err != nil {
		return fmt.Sprintf("error: %v", r.Err)
	}
	if r.Value == nil {
		return "(no captures)"
	}
	return Compact(r.Value)
}
