package pegrun

// isSyntactic reports whether a production is built entirely out of
// terminals, literals, and other syntactic forms — recursively — per
// spec.md §4.6: "A production is syntactic if it consists entirely of
// terminals, literals, or other syntactic forms." Adapted from the teacher's
// `grammar_syntactic.go`, generalized to this toolkit's Pattern variants.
//
// References are resolved against the grammar so that `Word <- Letter+` is
// syntactic whenever `Letter` itself is, without requiring the caller to
// pre-order productions by dependency.
func isSyntactic(g *Grammar, p Pattern) bool {
	return newSyntacticChecker(g).check(p)
}

type syntacticChecker struct {
	g       *Grammar
	visited map[string]bool
}

func newSyntacticChecker(g *Grammar) *syntacticChecker {
	return &syntacticChecker{g: g, visited: map[string]bool{}}
}

func (c *syntacticChecker) check(p Pattern) bool {
	switch n := p.(type) {
	case *CharLit, *RangeLit, *StringLit, *AnyLit, *EmptyLit:
		return true

	case *Reference:
		if c.visited[n.Name] {
			// A cycle among syntactic-only references is itself syntactic;
			// only a non-syntactic construct anywhere on the path disqualifies it.
			return true
		}
		target, ok := c.g.Lookup(n.Name)
		if !ok {
			return true
		}
		c.visited[n.Name] = true
		r := c.check(target)
		delete(c.visited, n.Name)
		return r

	case *Choice:
		return c.checkAll(n.Items)
	case *SequencePattern:
		return c.checkAll(n.Items)
	case *Optional:
		return c.check(n.Expr)
	case *ZeroOrMore:
		return c.check(n.Expr)
	case *OneOrMore:
		return c.check(n.Expr)
	case *And:
		return c.check(n.Expr)
	case *Not:
		return c.check(n.Expr)
	case *Labelled:
		return c.check(n.Expr)
	case *Lexification:
		// Already exempt from whitespace insertion; still counts as
		// syntactic for the purpose of an enclosing production's check.
		return c.check(n.Expr)
	case *NodePattern:
		return c.check(n.Expr)
	case *ListPattern:
		return c.checkAll(n.Items)

	default:
		return false
	}
}

func (c *syntacticChecker) checkAll(items []Pattern) bool {
	for _, item := range items {
		if !c.check(item) {
			return false
		}
	}
	return true
}
