package pegrun

// firstPass walks a Grammar's patterns once to answer two questions the
// compiler needs before it can emit a single instruction (spec.md §2 step 2,
// §4.3 "First-pass left-recursion detection"): which productions are
// left-recursive (direct, indirect, or mutual — all treated identically, as
// "called with precedence k>=1"), and which productions carry a semantic
// action (reserved for the `unwrapped()` builtin mentioned in spec.md §7;
// this toolkit recognises it as a Reference named "unwrapped" applied at the
// root of a production's expression).
type firstPass struct {
	g *Grammar

	leftRecursive map[string]bool
	unwrapped     map[string]bool

	visiting map[string]bool
	done     map[string]bool
}

func newFirstPass(g *Grammar) *firstPass {
	return &firstPass{
		g:             g,
		leftRecursive: map[string]bool{},
		unwrapped:     map[string]bool{},
		visiting:      map[string]bool{},
		done:          map[string]bool{},
	}
}

// analyze runs the first pass over every definition in the grammar, in
// source order, and returns the two maps it computes.
func analyze(g *Grammar) (leftRecursive map[string]bool, unwrapped map[string]bool) {
	fp := newFirstPass(g)
	for _, def := range g.Definitions {
		fp.classify(def.Name)
		fp.unwrapped[def.Name] = isUnwrappedRoot(def.Expr) || g.IsMarkedUnwrapped(def.Name)
	}
	return fp.leftRecursive, fp.unwrapped
}

// classify determines whether `name`'s production is left-recursive,
// memoizing the result and guarding against infinite recursion through the
// `visiting` set (spec.md §4.3: "follow it with a stack of in-progress
// names to detect mutual recursion").
func (fp *firstPass) classify(name string) bool {
	if v, ok := fp.done[name]; ok {
		return v
	}
	expr, ok := fp.g.Lookup(name)
	if !ok {
		return false
	}
	fp.visiting[name] = true
	result := fp.reachesSelf(expr, name)
	delete(fp.visiting, name)
	fp.done[name] = result
	fp.leftRecursive[name] = result
	return result
}

// reachesSelf asks whether p's leftmost, possibly-nullable-prefix-skipping
// path can reach a reference back to origin.
func (fp *firstPass) reachesSelf(p Pattern, origin string) bool {
	switch n := p.(type) {
	case *CharLit, *RangeLit, *StringLit, *AnyLit, *EmptyLit:
		return false

	case *Reference:
		if n.Name == origin {
			return true
		}
		if fp.visiting[n.Name] {
			// Reached a production already being classified further up the
			// chain: that production, not this one, is responsible for
			// deciding left recursion along this path.
			return false
		}
		target, ok := fp.g.Lookup(n.Name)
		if !ok {
			return false
		}
		fp.visiting[n.Name] = true
		r := fp.reachesSelf(target, origin)
		delete(fp.visiting, n.Name)
		return r

	case *Choice:
		for _, item := range n.Items {
			if fp.reachesSelf(item, origin) {
				return true
			}
		}
		return false

	case *SequencePattern:
		for _, item := range n.Items {
			if fp.reachesSelf(item, origin) {
				return true
			}
			if !isNullable(item) {
				return false
			}
		}
		return false

	case *Optional:
		return fp.reachesSelf(n.Expr, origin)
	case *ZeroOrMore:
		return fp.reachesSelf(n.Expr, origin)
	case *OneOrMore:
		return fp.reachesSelf(n.Expr, origin)
	case *Labelled:
		return fp.reachesSelf(n.Expr, origin)
	case *Lexification:
		return fp.reachesSelf(n.Expr, origin)

	case *And:
		// Predicates never consume input, so a reference inside one can
		// never be the left-recursive path; spec.md lists only labelled /
		// precedence / optional / star / plus wrappers as pass-through.
		return false
	case *Not:
		return false

	case *NodePattern:
		return false
	case *ListPattern:
		return false

	default:
		return false
	}
}

// isNullable reports whether p can match without consuming any input,
// per spec.md §4.3's sequence rule ("the first item that is not nullable").
func isNullable(p Pattern) bool {
	switch p.(type) {
	case *Optional, *ZeroOrMore, *And, *Not, *EmptyLit:
		return true
	default:
		return false
	}
}

// isUnwrappedRoot reports whether expr's outermost form is a call to the
// `unwrapped()` builtin, the only position spec.md §7 allows it in.
func isUnwrappedRoot(expr Pattern) bool {
	ref, ok := expr.(*Reference)
	return ok && ref.Name == "unwrapped"
}
