// Package format implements cmd/pegrun's `--output-format` flag (spec.md §6:
// one of `{raw, compact, indented, html, nil}`), each rendering a captured
// pegrun.Value a different way. compact and indented delegate straight to
// pegrun's own printers; raw and html are new, grounded on the teacher's
// `vm_value.go` String()/PrettyString() pair but extended for the two shapes
// the teacher never had to render (html-escaped text, a raw Go-syntax dump).
package format

import (
	"fmt"
	"html"
	"strings"

	"github.com/arcvalley/pegrun"
)

// Kind is one of the five output formats spec.md §6 names.
type Kind string

const (
	Raw      Kind = "raw"
	Compact  Kind = "compact"
	Indented Kind = "indented"
	HTML     Kind = "html"
	Nil      Kind = "nil"
)

// Parse validates a --output-format flag value.
func Parse(s string) (Kind, error) {
	switch Kind(s) {
	case Raw, Compact, Indented, HTML, Nil:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want raw, compact, indented, html, or nil)", s)
	}
}

// Render formats v according to k. A nil v (no captures) renders as an
// empty string in every format except raw, which prints it as `nil`.
func Render(k Kind, v pegrun.Value) string {
	switch k {
	case Nil:
		return ""
	case Compact:
		if v == nil {
			return ""
		}
		return pegrun.Compact(v)
	case Indented:
		if v == nil {
			return ""
		}
		return pegrun.PrettyString(v)
	case Raw:
		return renderRaw(v)
	case HTML:
		return renderHTML(v)
	default:
		return pegrun.Compact(v)
	}
}

// renderRaw dumps the value tree in an unambiguous, Go-syntax-flavoured
// form — useful for diffing test fixtures, unlike Compact's lossy
// concatenation of sibling text.
func renderRaw(v pegrun.Value) string {
	var sb strings.Builder
	writeRaw(&sb, v)
	return sb.String()
}

func writeRaw(sb *strings.Builder, v pegrun.Value) {
	if v == nil {
		sb.WriteString("nil")
		return
	}
	switch n := v.(type) {
	case *pegrun.Char:
		fmt.Fprintf(sb, "Char(%q)", n.R)
	case *pegrun.String:
		fmt.Fprintf(sb, "String(%q)", n.Text)
	case *pegrun.Sequence:
		sb.WriteString("Sequence[")
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRaw(sb, item)
		}
		sb.WriteString("]")
	case *pegrun.Node:
		fmt.Fprintf(sb, "Node(%s, ", n.Name)
		writeRaw(sb, n.Expr)
		sb.WriteString(")")
	case *pegrun.Error:
		fmt.Fprintf(sb, "Error(%s, %q, ", n.Label, n.Message)
		writeRaw(sb, n.Expr)
		sb.WriteString(")")
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

// renderHTML renders named nodes as nested <span class="node-Name"> elements
// around their escaped text, so a grammar's match tree can be dropped
// straight into a browser for inspection.
func renderHTML(v pegrun.Value) string {
	var sb strings.Builder
	writeHTML(&sb, v)
	return sb.String()
}

func writeHTML(sb *strings.Builder, v pegrun.Value) {
	if v == nil {
		return
	}
	switch n := v.(type) {
	case *pegrun.Char:
		sb.WriteString(html.EscapeString(string(n.R)))
	case *pegrun.String:
		sb.WriteString(html.EscapeString(n.Text))
	case *pegrun.Sequence:
		for _, item := range n.Items {
			writeHTML(sb, item)
		}
	case *pegrun.Node:
		fmt.Fprintf(sb, `<span class="node-%s">`, html.EscapeString(n.Name))
		writeHTML(sb, n.Expr)
		sb.WriteString("</span>")
	case *pegrun.Error:
		fmt.Fprintf(sb, `<span class="error" data-label="%s">%s</span>`,
			html.EscapeString(n.Label), html.EscapeString(n.Message))
	}
}
