package pegrun

import (
	"fmt"
	"strconv"
	"strings"
)

// PatternString renders a Pattern back into the surface grammar syntax (spec.md §6).
// Used by diagnostics and by the "round-trip" law in spec.md §8.
func PatternString(p Pattern) string {
	var s strings.Builder
	pp := &patternPrinter{out: &s}
	_ = p.Accept(pp)
	return s.String()
}

type patternPrinter struct{ out *strings.Builder }

func (v *patternPrinter) write(s string) { v.out.WriteString(s) }

func (v *patternPrinter) VisitCharLit(n *CharLit) error {
	v.write("'" + escapeLitRune(n.C) + "'")
	return nil
}

func (v *patternPrinter) VisitRangeLit(n *RangeLit) error {
	v.write("[" + escapeLitRune(n.Lo) + "-" + escapeLitRune(n.Hi) + "]")
	return nil
}

func (v *patternPrinter) VisitStringLit(n *StringLit) error {
	v.write(strconv.Quote(n.Text))
	return nil
}

func (v *patternPrinter) VisitAnyLit(*AnyLit) error { v.write("."); return nil }
func (v *patternPrinter) VisitEmptyLit(*EmptyLit) error { v.write("''"); return nil }

func (v *patternPrinter) VisitReference(n *Reference) error {
	v.write(n.Name)
	if n.Precedence > 0 {
		v.write(superscriptDigit(n.Precedence))
	}
	return nil
}

func (v *patternPrinter) VisitChoice(n *Choice) error {
	for i, item := range n.Items {
		if i > 0 {
			v.write(" / ")
		}
		if err := item.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *patternPrinter) VisitSequence(n *SequencePattern) error {
	for i, item := range n.Items {
		if i > 0 {
			v.write(" ")
		}
		if err := item.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *patternPrinter) VisitOptional(n *Optional) error {
	if err := v.wrapIfComposite(n.Expr); err != nil {
		return err
	}
	v.write("?")
	return nil
}

func (v *patternPrinter) VisitZeroOrMore(n *ZeroOrMore) error {
	if err := v.wrapIfComposite(n.Expr); err != nil {
		return err
	}
	v.write("*")
	return nil
}

func (v *patternPrinter) VisitOneOrMore(n *OneOrMore) error {
	if err := v.wrapIfComposite(n.Expr); err != nil {
		return err
	}
	v.write("+")
	return nil
}

func (v *patternPrinter) VisitAnd(n *And) error {
	v.write("&")
	return v.wrapIfComposite(n.Expr)
}

func (v *patternPrinter) VisitNot(n *Not) error {
	v.write("!")
	return v.wrapIfComposite(n.Expr)
}

func (v *patternPrinter) VisitLabelled(n *Labelled) error {
	if err := n.Expr.Accept(v); err != nil {
		return err
	}
	v.write("^" + n.Label)
	return nil
}

func (v *patternPrinter) VisitNodePattern(n *NodePattern) error {
	v.write("{" + n.Name + ": ")
	if err := n.Expr.Accept(v); err != nil {
		return err
	}
	v.write("}")
	return nil
}

func (v *patternPrinter) VisitListPattern(n *ListPattern) error {
	v.write("{")
	for i, item := range n.Items {
		if i > 0 {
			v.write(" ")
		}
		if err := item.Accept(v); err != nil {
			return err
		}
	}
	v.write("}")
	return nil
}

func (v *patternPrinter) VisitLexification(n *Lexification) error {
	v.write("#")
	return v.wrapIfComposite(n.Expr)
}

func (v *patternPrinter) wrapIfComposite(p Pattern) error {
	switch p.(type) {
	case *Choice, *SequencePattern:
		v.write("(")
		if err := p.Accept(v); err != nil {
			return err
		}
		v.write(")")
		return nil
	default:
		return p.Accept(v)
	}
}

func escapeLitRune(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\'':
		return `\'`
	case '\\':
		return `\\`
	default:
		return string(r)
	}
}

var superscripts = map[int]rune{
	1: '¹', 2: '²', 3: '³', 4: '⁴', 5: '⁵', 6: '⁶', 7: '⁷', 8: '⁸', 9: '⁹',
}

func superscriptDigit(k int) string {
	if r, ok := superscripts[k]; ok {
		return string(r)
	}
	return fmt.Sprintf("^%d", k)
}

// PrettyPattern renders a Pattern as an indented tree, for grammar
// introspection tooling. cmd/pegrun does not call it.
func PrettyPattern(p Pattern) string {
	var s strings.Builder
	tp := &patternTreePrinter{out: &s}
	_ = p.Accept(tp)
	return s.String()
}

type patternTreePrinter struct {
	out *strings.Builder
	pad []string
}

func (v *patternTreePrinter) writeln(s string) {
	for _, p := range v.pad {
		v.out.WriteString(p)
	}
	v.out.WriteString(s)
	v.out.WriteString("\n")
}

func (v *patternTreePrinter) children(label string, items []Pattern) error {
	v.writeln(label)
	for i, item := range items {
		last := i == len(items)-1
		if last {
			v.pad = append(v.pad, "    ")
		} else {
			v.pad = append(v.pad, "│   ")
		}
		if err := item.Accept(v); err != nil {
			return err
		}
		v.pad = v.pad[:len(v.pad)-1]
	}
	return nil
}

func (v *patternTreePrinter) child(label string, item Pattern) error {
	return v.children(label, []Pattern{item})
}

func (v *patternTreePrinter) VisitCharLit(n *CharLit) error {
	v.writeln("Char " + escapeLitRune(n.C))
	return nil
}
func (v *patternTreePrinter) VisitRangeLit(n *RangeLit) error {
	v.writeln(fmt.Sprintf("Range %s-%s", escapeLitRune(n.Lo), escapeLitRune(n.Hi)))
	return nil
}
func (v *patternTreePrinter) VisitStringLit(n *StringLit) error {
	v.writeln("String " + strconv.Quote(n.Text))
	return nil
}
func (v *patternTreePrinter) VisitAnyLit(*AnyLit) error       { v.writeln("Any"); return nil }
func (v *patternTreePrinter) VisitEmptyLit(*EmptyLit) error   { v.writeln("Empty"); return nil }
func (v *patternTreePrinter) VisitReference(n *Reference) error {
	if n.Precedence > 0 {
		v.writeln(fmt.Sprintf("Reference %s^%d", n.Name, n.Precedence))
	} else {
		v.writeln("Reference " + n.Name)
	}
	return nil
}
func (v *patternTreePrinter) VisitChoice(n *Choice) error { return v.children("Choice", n.Items) }
func (v *patternTreePrinter) VisitSequence(n *SequencePattern) error {
	return v.children("Sequence", n.Items)
}
func (v *patternTreePrinter) VisitOptional(n *Optional) error     { return v.child("Optional", n.Expr) }
func (v *patternTreePrinter) VisitZeroOrMore(n *ZeroOrMore) error { return v.child("ZeroOrMore", n.Expr) }
func (v *patternTreePrinter) VisitOneOrMore(n *OneOrMore) error   { return v.child("OneOrMore", n.Expr) }
func (v *patternTreePrinter) VisitAnd(n *And) error               { return v.child("And", n.Expr) }
func (v *patternTreePrinter) VisitNot(n *Not) error               { return v.child("Not", n.Expr) }
func (v *patternTreePrinter) VisitLabelled(n *Labelled) error {
	return v.child("Labelled^"+n.Label, n.Expr)
}
func (v *patternTreePrinter) VisitNodePattern(n *NodePattern) error {
	return v.child("Node "+n.Name, n.Expr)
}
func (v *patternTreePrinter) VisitListPattern(n *ListPattern) error {
	return v.children("List", n.Items)
}
func (v *patternTreePrinter) VisitLexification(n *Lexification) error {
	return v.child("Lexification", n.Expr)
}
