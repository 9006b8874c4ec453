// Package surface implements the hand-written recursive-descent parser for
// the grammar language's surface syntax (spec.md §6), the "external
// collaborator" spec.md explicitly keeps out of the core pegrun package.
// It is adapted from the teacher's go/grammar_parser.go — a rune-cursor,
// farthest-failure-position recursive descent — trimmed of its tracing
// spans since this toolkit doesn't need a parse trace, only a Grammar.
package surface

import (
	"fmt"
	"strings"

	"github.com/arcvalley/pegrun"
)

const eof = -1

// Parser holds the rune cursor over one grammar source file.
type Parser struct {
	input  []rune
	cursor int
	ffp    int
	ffpMsg string

	// containsUnwrappedCall is set whenever parsePrimary consumes an
	// identifier literally named "unwrapped"; parseExpressionRoot clears it
	// when the call was the sanctioned root form and otherwise turns it
	// into a compile error (spec.md §7).
	containsUnwrappedCall bool
}

// Parse parses src's surface syntax into a Grammar
// (spec.md §6 "Grammar <- Spacing (Import | Definition | LabelDecl)+ EOF").
func Parse(src []byte) (*pegrun.Grammar, error) {
	p := &Parser{input: []rune(string(src))}
	g := pegrun.NewGrammar()

	p.spacing()
	if p.peek() == eof {
		return nil, p.errorf("grammar has no definitions")
	}
	for {
		p.spacing()
		if p.peek() == eof {
			break
		}
		switch {
		case p.lookingAt("@import"):
			if err := p.parseImport(g); err != nil {
				return nil, err
			}
		case p.lookingAt("label"):
			if err := p.parseLabelDecl(g); err != nil {
				return nil, err
			}
		default:
			if err := p.parseDefinition(g); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// ---- lexical helpers ----

func (p *Parser) peek() rune {
	if p.cursor >= len(p.input) {
		return eof
	}
	return p.input[p.cursor]
}

func (p *Parser) peekAt(off int) rune {
	i := p.cursor + off
	if i >= len(p.input) {
		return eof
	}
	return p.input[i]
}

func (p *Parser) advance() rune {
	c := p.peek()
	if c != eof {
		p.cursor++
		if p.cursor > p.ffp {
			p.ffp = p.cursor
		}
	}
	return c
}

func (p *Parser) lookingAt(lit string) bool {
	save := p.cursor
	p.spacing()
	ok := p.hasPrefix(lit) && !isIdentRune(p.peekAt(len([]rune(lit))))
	p.cursor = save
	return ok
}

func (p *Parser) hasPrefix(lit string) bool {
	rs := []rune(lit)
	if p.cursor+len(rs) > len(p.input) {
		return false
	}
	for i, r := range rs {
		if p.input[p.cursor+i] != r {
			return false
		}
	}
	return true
}

func (p *Parser) expectLiteral(lit string) error {
	p.spacing()
	if !p.hasPrefix(lit) {
		return p.errorf("expected %q", lit)
	}
	p.cursor += len([]rune(lit))
	if p.cursor > p.ffp {
		p.ffp = p.cursor
	}
	return nil
}

func (p *Parser) expectRune(r rune) error {
	if p.peek() != r {
		return p.errorf("expected %q but got %q", r, p.peek())
	}
	p.advance()
	return nil
}

// spacing consumes whitespace and `//`-to-end-of-line comments between
// tokens. This is the meta-grammar's own spacing, distinct from a target
// grammar's user-declared whitespace rule.
func (p *Parser) spacing() {
	for {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.advance()
		case '/':
			if p.peekAt(1) == '/' {
				for p.peek() != '\n' && p.peek() != eof {
					p.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (p *Parser) parseIdent() (string, error) {
	p.spacing()
	if !isIdentStart(p.peek()) {
		return "", p.errorf("expected identifier but got %q", p.peek())
	}
	var sb strings.Builder
	for isIdentRune(p.peek()) {
		sb.WriteRune(p.advance())
	}
	return sb.String(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if p.cursor >= p.ffp {
		p.ffp = p.cursor
		p.ffpMsg = msg
	}
	return &pegrun.ParsingError{FFP: p.ffp, Message: p.ffpMsg, Range: pegrun.NewRange(p.cursor, p.cursor)}
}
