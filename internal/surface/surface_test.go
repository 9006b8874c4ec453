package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcvalley/pegrun"
)

func TestParseDefinitionShapes(t *testing.T) {
	for _, test := range []struct {
		Name           string
		Grammar        string
		ExpectedOutput string
	}{
		{
			Name:           "any",
			Grammar:        "A <- .",
			ExpectedOutput: ".",
		},
		{
			Name:           "choice of literals",
			Grammar:        "A <- 'a' / 'b'",
			ExpectedOutput: "'a' / 'b'",
		},
		{
			Name:           "sequence",
			Grammar:        "A <- 'a' 'b' 'c'",
			ExpectedOutput: "'a' 'b' 'c'",
		},
		{
			Name:           "comment trailing a definition",
			Grammar:        "A <- . // something something",
			ExpectedOutput: ".",
		},
		{
			Name:           "optional",
			Grammar:        "A <- 'a'?",
			ExpectedOutput: "'a'?",
		},
		{
			Name:           "star and plus",
			Grammar:        "A <- 'a'* 'b'+",
			ExpectedOutput: "'a'* 'b'+",
		},
		{
			Name:           "and/not predicates",
			Grammar:        "A <- &'a' !'b' 'c'",
			ExpectedOutput: "&'a' !'b' 'c'",
		},
		{
			Name:           "precedence reference",
			Grammar:        "E <- E¹ '+' E²",
			ExpectedOutput: "E¹ '+' E²",
		},
		{
			Name:           "character class with range",
			Grammar:        "A <- [0-9a]",
			ExpectedOutput: "[0-9] / 'a'",
		},
		{
			Name:           "labelled failure",
			Grammar:        `A <- 'a'^missing`,
			ExpectedOutput: "'a'^missing",
		},
		{
			Name:           "lexification marker",
			Grammar:        "A <- #('a' 'b')",
			ExpectedOutput: "#('a' 'b')",
		},
		{
			Name:           "named node",
			Grammar:        "A <- {Foo: 'a'}",
			ExpectedOutput: "{Foo: 'a'}",
		},
		{
			Name:           "anonymous list",
			Grammar:        "A <- {'a' 'b'}",
			ExpectedOutput: "{'a' 'b'}",
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			g, err := Parse([]byte(test.Grammar))
			require.NoError(t, err)
			expr, ok := g.Lookup("A")
			if !ok {
				expr, ok = g.Lookup("E")
			}
			require.True(t, ok)
			assert.Equal(t, test.ExpectedOutput, pegrun.PatternString(expr))
		})
	}
}

func TestParseEscapes(t *testing.T) {
	g, err := Parse([]byte(`A <- '\n' '\'' '\\'`))
	require.NoError(t, err)
	expr, ok := g.Lookup("A")
	require.True(t, ok)
	seq, ok := expr.(*pegrun.SequencePattern)
	require.True(t, ok)
	require.Len(t, seq.Items, 3)

	c0 := seq.Items[0].(*pegrun.CharLit)
	assert.Equal(t, '\n', c0.C)
	c1 := seq.Items[1].(*pegrun.CharLit)
	assert.Equal(t, '\'', c1.C)
	c2 := seq.Items[2].(*pegrun.CharLit)
	assert.Equal(t, '\\', c2.C)
}

func TestParseImportDeclaration(t *testing.T) {
	g, err := Parse([]byte(`
@import Foo, Bar from "./other.peg"
A <- Foo
`))
	require.NoError(t, err)
	require.Len(t, g.Imports, 1)
	assert.Equal(t, []string{"Foo", "Bar"}, g.Imports[0].Names)
	assert.Equal(t, "./other.peg", g.Imports[0].From)
}

func TestParseLabelDeclaration(t *testing.T) {
	g, err := Parse([]byte(`
label missing = "expected a value"
A <- 'a'^missing
`))
	require.NoError(t, err)
	assert.Equal(t, "expected a value", g.Labels["missing"])
}

func TestParseWhitespaceConvention(t *testing.T) {
	g, err := Parse([]byte(`
Spacing <- ' '*
A <- 'a' 'b'
`))
	require.NoError(t, err)
	assert.Equal(t, "Spacing", g.Whitespace)
}

func TestParseUnwrappedAtRoot(t *testing.T) {
	g, err := Parse([]byte(`A <- unwrapped('a' 'b')`))
	require.NoError(t, err)
	assert.True(t, g.IsMarkedUnwrapped("A"))
	expr, ok := g.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "'a' 'b'", pegrun.PatternString(expr))
}

func TestParseUnwrappedOutsideRootIsCompileError(t *testing.T) {
	_, err := Parse([]byte(`A <- 'x' unwrapped('a')`))
	require.Error(t, err)
	perr, ok := err.(*pegrun.CompileError)
	require.True(t, ok)
	assert.Contains(t, perr.Detail, "unwrapped()")
}

func TestParsePrecedenceSuffixOnNonIdentifierIsCompileError(t *testing.T) {
	_, err := Parse([]byte(`A <- 'a'¹`))
	require.Error(t, err)
	perr, ok := err.(*pegrun.CompileError)
	require.True(t, ok)
	assert.Contains(t, perr.Detail, "precedence suffix")
}

func TestParseRejectsEmptyGrammar(t *testing.T) {
	_, err := Parse([]byte(`  // just a comment`))
	require.Error(t, err)
}

func TestParseDistinguishesNextDefinitionFromSequenceItem(t *testing.T) {
	g, err := Parse([]byte(`
A <- 'a' B
B <- 'b'
`))
	require.NoError(t, err)
	exprA, ok := g.Lookup("A")
	require.True(t, ok)
	seq, ok := exprA.(*pegrun.SequencePattern)
	require.True(t, ok)
	require.Len(t, seq.Items, 2)
	ref, ok := seq.Items[1].(*pegrun.Reference)
	require.True(t, ok)
	assert.Equal(t, "B", ref.Name)
}
