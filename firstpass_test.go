package pegrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeLeftRecursion(t *testing.T) {
	t.Run("direct left recursion", func(t *testing.T) {
		g := NewGrammar()
		g.Define("E", NewChoice([]Pattern{
			NewSequence([]Pattern{NewReference("E", 0, NewRange(0, 0)), NewStringLit("+n", NewRange(0, 0))}, NewRange(0, 0)),
			NewStringLit("n", NewRange(0, 0)),
		}, NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.True(t, lr["E"])
	})

	t.Run("indirect mutual left recursion", func(t *testing.T) {
		g := NewGrammar()
		g.Define("L", NewChoice([]Pattern{
			NewSequence([]Pattern{NewReference("P", 0, NewRange(0, 0)), NewStringLit(".x", NewRange(0, 0))}, NewRange(0, 0)),
			NewStringLit("x", NewRange(0, 0)),
		}, NewRange(0, 0)))
		g.Define("P", NewChoice([]Pattern{
			NewSequence([]Pattern{NewReference("P", 0, NewRange(0, 0)), NewStringLit("(n)", NewRange(0, 0))}, NewRange(0, 0)),
			NewReference("L", 0, NewRange(0, 0)),
		}, NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.True(t, lr["L"])
		assert.True(t, lr["P"])
	})

	t.Run("non-recursive production", func(t *testing.T) {
		g := NewGrammar()
		g.Define("Digit", NewRangeLit('0', '9', NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.False(t, lr["Digit"])
	})

	t.Run("reference under a predicate is not left-recursive", func(t *testing.T) {
		g := NewGrammar()
		g.Define("E", NewSequence([]Pattern{
			NewAnd(NewReference("E", 0, NewRange(0, 0)), NewRange(0, 0)),
			NewStringLit("n", NewRange(0, 0)),
		}, NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.False(t, lr["E"])
	})

	t.Run("nullable prefix lets recursion through to the next item", func(t *testing.T) {
		g := NewGrammar()
		g.Define("E", NewSequence([]Pattern{
			NewOptional(NewStringLit("-", NewRange(0, 0)), NewRange(0, 0)),
			NewReference("E", 0, NewRange(0, 0)),
		}, NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.True(t, lr["E"])
	})

	t.Run("non-nullable prefix blocks recursion through later items", func(t *testing.T) {
		g := NewGrammar()
		g.Define("E", NewSequence([]Pattern{
			NewStringLit("-", NewRange(0, 0)),
			NewReference("E", 0, NewRange(0, 0)),
		}, NewRange(0, 0)))

		lr, _ := analyze(g)
		assert.False(t, lr["E"])
	})
}

func TestAnalyzeUnwrapped(t *testing.T) {
	t.Run("structural bare reference", func(t *testing.T) {
		g := NewGrammar()
		g.Define("Body", NewReference("unwrapped", 0, NewRange(0, 0)))

		_, unwrapped := analyze(g)
		assert.True(t, unwrapped["Body"])
	})

	t.Run("grammar-level marker from the surface parser's desugaring", func(t *testing.T) {
		g := NewGrammar()
		g.Define("Body", NewStringLit("n", NewRange(0, 0)))
		g.MarkUnwrapped("Body")

		_, unwrapped := analyze(g)
		assert.True(t, unwrapped["Body"])
	})

	t.Run("ordinary production is not unwrapped", func(t *testing.T) {
		g := NewGrammar()
		g.Define("Body", NewStringLit("n", NewRange(0, 0)))

		_, unwrapped := analyze(g)
		assert.False(t, unwrapped["Body"])
	})
}
