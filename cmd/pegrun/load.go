package main

import (
	"fmt"
	"os"

	"github.com/arcvalley/pegrun"
	"github.com/arcvalley/pegrun/internal/importresolver"
	"github.com/arcvalley/pegrun/internal/surface"
)

// loadProgram reads grammarFile, parses its surface syntax, resolves its
// imports, and compiles it, applying startRule and cfg overrides — the
// sequence every subcommand needs before it can touch a Program.
func loadProgram(grammarFile, startRule string, cfg *pegrun.Config) (*pegrun.Program, error) {
	data, err := os.ReadFile(grammarFile)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file: %w", err)
	}

	g, err := surface.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing grammar: %w", err)
	}

	if err := importresolver.New().Resolve(g, grammarFile); err != nil {
		return nil, fmt.Errorf("resolving imports: %w", err)
	}

	if startRule != "" {
		g.StartRule = startRule
	}

	prog, err := pegrun.Compile(g, cfg)
	if err != nil {
		return nil, fmt.Errorf("compiling grammar: %w", err)
	}
	return prog, nil
}

func loadConfig(configFile string) *pegrun.Config {
	if configFile == "" {
		return pegrun.NewConfig()
	}
	cfg, err := pegrun.LoadConfigFile(configFile)
	if err != nil {
		pegrun.Log.Warn().Err(err).Str("config_file", configFile).Msg("falling back to default config")
		return pegrun.NewConfig()
	}
	return cfg
}
