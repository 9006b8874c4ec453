package pegrun

// addBuiltins fills in the handful of productions a grammar is allowed to
// reference without defining, grounded on the teacher's `AddBuiltins` step
// in `api.go`: an end-of-input marker and, when the grammar names a
// whitespace rule but never defines it, a conventional default. Builtins
// are only added when the grammar doesn't already define them, so a grammar
// author's own `EOF`/whitespace rule always wins.
func addBuiltins(g *Grammar) {
	if !g.Has("EOF") {
		// EOF <- !.
		g.Define("EOF", NewNot(NewAnyLit(Range{}), Range{}))
	}
	if g.Whitespace != "" && !g.Has(g.Whitespace) {
		// Spacing <- (' ' / '\t' / '\n' / '\r')*
		space := NewChoice([]Pattern{
			NewCharLit(' ', Range{}),
			NewCharLit('\t', Range{}),
			NewCharLit('\n', Range{}),
			NewCharLit('\r', Range{}),
		}, Range{})
		g.Define(g.Whitespace, NewZeroOrMore(space, Range{}))
	}
}
