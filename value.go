package pegrun

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a half-open [Start, End) span over the cursor space the value was
// captured in (rune index for char streams, element index for structured
// streams).
type Range struct{ Start, End int }

func NewRange(start, end int) Range { return Range{Start: start, End: end} }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Value is a node in the capture tree produced by a successful match. See
// spec.md §3 "Runtime values".
type Value interface {
	Type() string
	Range() Range
	Accept(ValueVisitor) error
}

type ValueVisitor interface {
	VisitChar(n *Char) error
	VisitString(n *String) error
	VisitSequence(n *Sequence) error
	VisitNode(n *Node) error
	VisitError(n *Error) error
}

// Char is a single captured character, used when matching terminals against
// a structured value stream (spec.md §3: "a single character").
type Char struct {
	rg Range
	R  rune
}

func NewChar(r rune, rg Range) *Char          { return &Char{R: r, rg: rg} }
func (n Char) Type() string                   { return "char" }
func (n Char) Range() Range                   { return n.rg }
func (n *Char) Accept(v ValueVisitor) error   { return v.VisitChar(n) }
func (n Char) String() string                 { return string(n.R) }

// String is a literal run of text, most commonly produced from a contiguous
// span of the character-stream input rather than built rune by rune.
type String struct {
	rg   Range
	Text string
}

func NewString(text string, rg Range) *String { return &String{Text: text, rg: rg} }
func (n String) Type() string                 { return "string" }
func (n String) Range() Range                 { return n.rg }
func (n *String) Accept(v ValueVisitor) error { return v.VisitString(n) }
func (n String) String() string               { return n.Text }

// Sequence is an ordered list of captured values — the result of a sequence
// of patterns, or of an anonymous structural list `{p q ...}`.
type Sequence struct {
	rg    Range
	Items []Value
}

func NewSequence(items []Value, rg Range) *Sequence { return &Sequence{Items: items, rg: rg} }
func (n Sequence) Type() string                     { return "sequence" }
func (n Sequence) Range() Range                     { return n.rg }
func (n *Sequence) Accept(v ValueVisitor) error     { return v.VisitSequence(n) }

func (n Sequence) String() string {
	var s strings.Builder
	s.WriteString("Sequence(")
	for i, item := range n.Items {
		s.WriteString(valueString(item))
		if i < len(n.Items)-1 {
			s.WriteString(", ")
		}
	}
	s.WriteString(")")
	return s.String()
}

// Node is a named, non-empty production result — either the wrapped output
// of a successful call (spec.md §4.2) or a structural named-node match
// `{Name: p}`.
type Node struct {
	rg   Range
	Name string
	Expr Value
}

func NewNode(name string, expr Value, rg Range) *Node { return &Node{Name: name, Expr: expr, rg: rg} }
func (n Node) Type() string                           { return "node" }
func (n Node) Range() Range                           { return n.rg }
func (n *Node) Accept(v ValueVisitor) error           { return v.VisitNode(n) }

// Error is a recovered, labeled failure captured in place of the expression
// it replaced (spec.md §4.5).
type Error struct {
	rg      Range
	Label   string
	Message string
	Expr    Value
}

func NewError(label, message string, expr Value, rg Range) *Error {
	return &Error{Label: label, Message: message, Expr: expr, rg: rg}
}
func (n Error) Type() string                 { return "error" }
func (n Error) Range() Range                 { return n.rg }
func (n *Error) Accept(v ValueVisitor) error { return v.VisitError(n) }

func (n Error) AsError() ParsingError {
	return ParsingError{Label: n.Label, Message: n.Message, Range: n.rg}
}

func valueString(v Value) string {
	switch n := v.(type) {
	case *Char:
		return n.String()
	case *String:
		return n.String()
	case *Sequence:
		return n.String()
	case *Node:
		return fmt.Sprintf("%s(%s)", n.Name, valueString(n.Expr))
	case *Error:
		return fmt.Sprintf("Error(%q)", n.Label)
	default:
		return ""
	}
}

// ---- Compact printer: Name[children] / "text" — spec.md §8 scenario outputs ----

// Compact renders a Value the way spec.md's testable-property scenarios do,
// e.g. `E[E[E[n]+n]+n]`.
func Compact(node Value) string {
	var s strings.Builder
	cp := &compactVisitor{out: &s}
	_ = node.Accept(cp)
	return s.String()
}

type compactVisitor struct{ out *strings.Builder }

func (v *compactVisitor) VisitChar(n *Char) error {
	v.out.WriteRune(n.R)
	return nil
}

func (v *compactVisitor) VisitString(n *String) error {
	v.out.WriteString(n.Text)
	return nil
}

func (v *compactVisitor) VisitSequence(n *Sequence) error {
	for _, item := range n.Items {
		if err := item.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *compactVisitor) VisitNode(n *Node) error {
	v.out.WriteString(n.Name)
	v.out.WriteString("[")
	if n.Expr != nil {
		if err := n.Expr.Accept(v); err != nil {
			return err
		}
	}
	v.out.WriteString("]")
	return nil
}

func (v *compactVisitor) VisitError(n *Error) error {
	v.out.WriteString("Error[")
	v.out.WriteString(n.Label)
	if n.Expr != nil {
		v.out.WriteString(": ")
		if err := n.Expr.Accept(v); err != nil {
			return err
		}
	}
	v.out.WriteString("]")
	return nil
}

// ---- Indented tree printer ----

// PrettyString renders a Value as an indented tree, in the teacher's
// `├── / └──` box-drawing style.
func PrettyString(node Value) string {
	tp := &treePrinter{out: &strings.Builder{}}
	_ = node.Accept(tp)
	return tp.out.String()
}

type treePrinter struct {
	out    *strings.Builder
	pad    []string
	indent string
}

func (v *treePrinter) write(s string)  { v.out.WriteString(s) }
func (v *treePrinter) writel(s string) { v.write(s); v.out.WriteRune('\n') }

func (v *treePrinter) pwrite(s string) {
	for _, p := range v.pad {
		v.write(p)
	}
	v.write(s)
}

func (v *treePrinter) pushIndent(s string) { v.pad = append(v.pad, s) }
func (v *treePrinter) popIndent()          { v.pad = v.pad[:len(v.pad)-1] }

func (v *treePrinter) VisitChar(n *Char) error {
	v.write(strconv.QuoteRune(n.R))
	return nil
}

func (v *treePrinter) VisitString(n *String) error {
	v.write(strconv.Quote(n.Text))
	return nil
}

func (v *treePrinter) VisitSequence(n *Sequence) error {
	v.writel(fmt.Sprintf("Sequence<%d>", len(n.Items)))
	for i, item := range n.Items {
		last := i == len(n.Items)-1
		if last {
			v.pwrite("└── ")
			v.pushIndent("    ")
		} else {
			v.pwrite("├── ")
			v.pushIndent("│   ")
		}
		if err := item.Accept(v); err != nil {
			return err
		}
		v.popIndent()
		if !last {
			v.write("\n")
		}
	}
	return nil
}

func (v *treePrinter) VisitNode(n *Node) error {
	v.writel(n.Name)
	if n.Expr == nil {
		return nil
	}
	v.pwrite("└── ")
	v.pushIndent("    ")
	defer v.popIndent()
	return n.Expr.Accept(v)
}

func (v *treePrinter) VisitError(n *Error) error {
	v.write(fmt.Sprintf("Error<%s>", n.Label))
	if n.Expr != nil {
		v.writel("")
		v.pwrite("└── ")
		v.pushIndent("    ")
		defer v.popIndent()
		return n.Expr.Accept(v)
	}
	v.writel("")
	return nil
}

// ---- Text printer: reproduce the matched substring ----

// Text re-renders the literal characters a Value matched.
func Text(node Value) string {
	var s strings.Builder
	tv := &textVisitor{out: &s}
	_ = node.Accept(tv)
	return s.String()
}

type textVisitor struct{ out *strings.Builder }

func (v *textVisitor) VisitChar(n *Char) error     { v.out.WriteRune(n.R); return nil }
func (v *textVisitor) VisitString(n *String) error { v.out.WriteString(n.Text); return nil }
func (v *textVisitor) VisitSequence(n *Sequence) error {
	for _, item := range n.Items {
		if err := item.Accept(v); err != nil {
			return err
		}
	}
	return nil
}
func (v *textVisitor) VisitNode(n *Node) error {
	if n.Expr == nil {
		return nil
	}
	return n.Expr.Accept(v)
}
func (v *textVisitor) VisitError(n *Error) error {
	if n.Expr == nil {
		return nil
	}
	return n.Expr.Accept(v)
}
