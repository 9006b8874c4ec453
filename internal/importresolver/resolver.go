// Package importresolver implements `@import` resolution (spec.md §1's
// external "file-system walk + textual splicing of imported productions"):
// each declaration names a relative grammar file and the productions to
// pull from it. Concurrency across independent file reads comes from
// golang.org/x/sync/errgroup (SPEC_FULL.md §B), bounded so a grammar with
// many imports doesn't open unbounded file descriptors at once.
package importresolver

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/arcvalley/pegrun"
	"github.com/arcvalley/pegrun/internal/surface"
)

// maxConcurrentImports bounds errgroup.Group.SetLimit so a grammar with
// hundreds of imports doesn't try to open that many files at once.
const maxConcurrentImports = 8

// Resolver resolves every `@import` in a Grammar, splicing the named
// productions from each referenced file into the importing Grammar.
type Resolver struct{}

func New() *Resolver { return &Resolver{} }

// Resolve mutates g, adding one Definition per imported name. sourcePath is
// the importing grammar's own file path; @import paths are resolved
// relative to its directory.
func (r *Resolver) Resolve(g *pegrun.Grammar, sourcePath string) error {
	if len(g.Imports) == 0 {
		return nil
	}
	sourceDir := filepath.Dir(sourcePath)

	type fetched struct {
		imp  pegrun.Import
		defs map[string]pegrun.Pattern
	}
	results := make([]fetched, len(g.Imports))

	eg := &errgroup.Group{}
	eg.SetLimit(maxConcurrentImports)
	for i, imp := range g.Imports {
		i, imp := i, imp
		eg.Go(func() error {
			defs, err := r.fetchOne(sourceDir, imp)
			if err != nil {
				return err
			}
			results[i] = fetched{imp: imp, defs: defs}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		for _, name := range res.imp.Names {
			g.Define(name, res.defs[name])
		}
	}
	return nil
}

// fetchOne reads, parses, and validates a single `@import ... from "path"`
// declaration, returning the subset of productions it names.
func (r *Resolver) fetchOne(sourceDir string, imp pegrun.Import) (map[string]pegrun.Pattern, error) {
	if !strings.HasPrefix(imp.From, "./") {
		return nil, &pegrun.ImportError{
			Kind: pegrun.ErrImportInvalidPath, Path: imp.From,
			Detail: "import path must be relative and start with ./",
		}
	}
	fullPath := filepath.Join(sourceDir, imp.From)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, &pegrun.ImportError{Kind: pegrun.ErrImportNotFound, Path: imp.From, Detail: err.Error()}
		case os.IsPermission(err):
			return nil, &pegrun.ImportError{Kind: pegrun.ErrImportPermission, Path: imp.From, Detail: err.Error()}
		default:
			return nil, &pegrun.ImportError{Kind: pegrun.ErrImportIO, Path: imp.From, Detail: err.Error()}
		}
	}

	upstream, err := surface.Parse(data)
	if err != nil {
		return nil, &pegrun.ImportError{Kind: pegrun.ErrImportUpstreamParse, Path: imp.From, Detail: err.Error()}
	}

	defs := make(map[string]pegrun.Pattern, len(imp.Names))
	for _, name := range imp.Names {
		pat, ok := upstream.Lookup(name)
		if !ok {
			return nil, &pegrun.ImportError{
				Kind: pegrun.ErrImportNameNotExported, Path: imp.From,
				Detail: "production " + name + " is not defined in " + imp.From,
			}
		}
		defs[name] = pat
	}
	return defs, nil
}
