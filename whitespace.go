package pegrun

// rewriteWhitespace implements spec.md §4.6 "Automatic Whitespace Handling":
// non-syntactic productions have calls to the grammar's designated
// whitespace rule auto-inserted between sequence items, and around
// non-syntactic top-level choices, unless suppressed by a lexification
// marker. Adapted from the teacher's `grammar_whitespace_handler.go`, which
// performs the same rewrite but only ever against langlang's own grammar
// shape; this version also walks the structural Node/List forms.
//
// It returns a new Grammar; the input Grammar is left untouched so the
// compiler can be re-run against a grammar with or without the rewrite
// applied (Config can disable it entirely).
func rewriteWhitespace(g *Grammar) *Grammar {
	if g.Whitespace == "" {
		return g
	}
	out := NewGrammar()
	out.Labels = g.Labels
	out.Imports = g.Imports
	out.Whitespace = g.Whitespace
	out.StartRule = g.StartRule

	for _, def := range g.Definitions {
		if g.IsMarkedUnwrapped(def.Name) {
			out.MarkUnwrapped(def.Name)
		}
		if def.Name == g.Whitespace || isSyntactic(g, def.Expr) {
			out.Define(def.Name, def.Expr)
			continue
		}
		out.Define(def.Name, insertWhitespace(def.Expr, g.Whitespace, 0, true))
	}
	return out
}

func wsRef(name string) Pattern {
	return NewReference(name, 0, Range{})
}

// insertWhitespace rewrites p, inserting calls to the rule named wsName.
// lexDepth > 0 means we are inside a lexification marker's subtree and must
// not insert anything. topLevel marks a position that, if it turns out to be
// a Choice, should be wrapped with a single leading whitespace call rather
// than have each alternative insert its own.
func insertWhitespace(p Pattern, wsName string, lexDepth int, topLevel bool) Pattern {
	switch n := p.(type) {
	case *Lexification:
		return NewLexification(insertWhitespace(n.Expr, wsName, lexDepth+1, topLevel), n.Range())

	case *SequencePattern:
		items := make([]Pattern, 0, len(n.Items)*2)
		for i, item := range n.Items {
			if lexDepth == 0 && i > 0 {
				items = append(items, wsRef(wsName))
			}
			items = append(items, insertWhitespace(item, wsName, lexDepth, false))
		}
		return NewSequence(items, n.Range())

	case *Choice:
		if topLevel && lexDepth == 0 {
			alts := make([]Pattern, len(n.Items))
			for i, alt := range n.Items {
				alts[i] = insertWhitespace(alt, wsName, lexDepth, false)
			}
			wrapped := NewChoice(alts, n.Range())
			return NewSequence([]Pattern{wsRef(wsName), wrapped}, n.Range())
		}
		alts := make([]Pattern, len(n.Items))
		for i, alt := range n.Items {
			alts[i] = insertWhitespace(alt, wsName, lexDepth, false)
		}
		return NewChoice(alts, n.Range())

	case *Optional:
		return NewOptional(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *ZeroOrMore:
		return NewZeroOrMore(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *OneOrMore:
		return NewOneOrMore(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *And:
		return NewAnd(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *Not:
		return NewNot(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *Labelled:
		return NewLabelled(insertWhitespace(n.Expr, wsName, lexDepth, false), n.Label, n.Range())
	case *NodePattern:
		return NewNodePattern(n.Name, insertWhitespace(n.Expr, wsName, lexDepth, false), n.Range())
	case *ListPattern:
		items := make([]Pattern, 0, len(n.Items)*2)
		for i, item := range n.Items {
			if lexDepth == 0 && i > 0 {
				items = append(items, wsRef(wsName))
			}
			items = append(items, insertWhitespace(item, wsName, lexDepth, false))
		}
		return NewListPattern(items, n.Range())

	default:
		return p
	}
}
