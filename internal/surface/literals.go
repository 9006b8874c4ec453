package surface

import (
	"strings"

	"github.com/arcvalley/pegrun"
)

// escapeSequences maps the surface syntax's recognised escapes (spec.md §6
// "Escapes in character and string literals: \n \r \t \' \" \[ \] \\").
var escapeSequences = map[rune]rune{
	'n': '\n', 'r': '\r', 't': '\t',
	'\'': '\'', '"': '"', '[': '[', ']': ']', '\\': '\\',
}

func (p *Parser) parseEscapedRune() (rune, error) {
	if p.peek() != '\\' {
		return p.advance(), nil
	}
	p.advance()
	esc, ok := escapeSequences[p.peek()]
	if !ok {
		return 0, p.errorf("unknown escape sequence \\%c", p.peek())
	}
	p.advance()
	return esc, nil
}

// parseStringLit handles a single- or double-quoted string literal.
func (p *Parser) parseStringLit() (string, error) {
	p.spacing()
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", p.errorf("expected a string literal but got %q", quote)
	}
	p.advance()
	var sb strings.Builder
	for p.peek() != quote {
		if p.peek() == eof {
			return "", p.errorf("unterminated string literal")
		}
		r, err := p.parseEscapedRune()
		if err != nil {
			return "", err
		}
		sb.WriteRune(r)
	}
	p.advance()
	return sb.String(), nil
}

// parseCharClass handles `[...]`, a union of single characters and
// `a-z`-style ranges, compiling to a Choice of CharLit/RangeLit.
func (p *Parser) parseCharClass(start int) (pegrun.Pattern, error) {
	p.advance() // '['
	var items []pegrun.Pattern
	for p.peek() != ']' {
		if p.peek() == eof {
			return nil, p.errorf("unterminated character class")
		}
		itemStart := p.cursor
		lo, err := p.parseEscapedRune()
		if err != nil {
			return nil, err
		}
		if p.peek() == '-' && p.peekAt(1) != ']' {
			p.advance()
			hi, err := p.parseEscapedRune()
			if err != nil {
				return nil, err
			}
			items = append(items, pegrun.NewRangeLit(lo, hi, p.rangeSince(itemStart)))
			continue
		}
		items = append(items, pegrun.NewCharLit(lo, p.rangeSince(itemStart)))
	}
	p.advance() // ']'
	if len(items) == 1 {
		return items[0], nil
	}
	return pegrun.NewChoice(items, p.rangeSince(start)), nil
}

// superscripts maps the nine precedence-suffix superscript runes to 1..9
// (spec.md §6 "Superscript <- one of ¹²³⁴⁵⁶⁷⁸⁹").
var superscripts = map[rune]int{
	'¹': 1, '²': 2, '³': 3, '⁴': 4, '⁵': 5, '⁶': 6, '⁷': 7, '⁸': 8, '⁹': 9,
}

func superscriptDigit(r rune) int {
	return superscripts[r]
}
