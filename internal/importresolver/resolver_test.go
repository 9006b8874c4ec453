package importresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvalley/pegrun"
	"github.com/arcvalley/pegrun/internal/surface"
)

func writeGrammarFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveSplicesImportedProductions(t *testing.T) {
	dir := t.TempDir()
	writeGrammarFile(t, dir, "shared.peg", "Digit <- [0-9]\nLetter <- [a-z]\n")
	mainPath := writeGrammarFile(t, dir, "main.peg", `
@import Digit, Letter from "./shared.peg"
Token <- Digit / Letter
`)

	g, err := surface.Parse([]byte(mustRead(t, mainPath)))
	require.NoError(t, err)

	require.NoError(t, New().Resolve(g, mainPath))

	_, ok := g.Lookup("Digit")
	require.True(t, ok)
	_, ok = g.Lookup("Letter")
	require.True(t, ok)
}

func TestResolveRejectsNonRelativePath(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeGrammarFile(t, dir, "main.peg", `
@import Digit from "/etc/shared.peg"
Token <- Digit
`)
	g, err := surface.Parse([]byte(mustRead(t, mainPath)))
	require.NoError(t, err)

	err = New().Resolve(g, mainPath)
	require.Error(t, err)
	ierr, ok := err.(*pegrun.ImportError)
	require.True(t, ok)
	assert.Equal(t, pegrun.ErrImportInvalidPath, ierr.Kind)
}

func TestResolveReportsMissingFile(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeGrammarFile(t, dir, "main.peg", `
@import Digit from "./does-not-exist.peg"
Token <- Digit
`)
	g, err := surface.Parse([]byte(mustRead(t, mainPath)))
	require.NoError(t, err)

	err = New().Resolve(g, mainPath)
	require.Error(t, err)
	ierr, ok := err.(*pegrun.ImportError)
	require.True(t, ok)
	assert.Equal(t, pegrun.ErrImportNotFound, ierr.Kind)
}

func TestResolveReportsNameNotExported(t *testing.T) {
	dir := t.TempDir()
	writeGrammarFile(t, dir, "shared.peg", "Digit <- [0-9]\n")
	mainPath := writeGrammarFile(t, dir, "main.peg", `
@import Missing from "./shared.peg"
Token <- Missing
`)
	g, err := surface.Parse([]byte(mustRead(t, mainPath)))
	require.NoError(t, err)

	err = New().Resolve(g, mainPath)
	require.Error(t, err)
	ierr, ok := err.(*pegrun.ImportError)
	require.True(t, ok)
	assert.Equal(t, pegrun.ErrImportNameNotExported, ierr.Kind)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
