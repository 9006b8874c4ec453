package surface

import "github.com/arcvalley/pegrun"

// parseImport handles `@import Ident ("," Ident)* "from" StringLit`
// (spec.md §6). The resolver (internal/importresolver) splices the
// referenced productions in later; here we only record the declaration.
func (p *Parser) parseImport(g *pegrun.Grammar) error {
	if err := p.expectLiteral("@import"); err != nil {
		return err
	}
	var names []string
	for {
		name, err := p.parseIdent()
		if err != nil {
			return err
		}
		names = append(names, name)
		p.spacing()
		if p.peek() != ',' {
			break
		}
		p.advance()
	}
	if err := p.expectLiteral("from"); err != nil {
		return err
	}
	from, err := p.parseStringLit()
	if err != nil {
		return err
	}
	g.Imports = append(g.Imports, pegrun.Import{Names: names, From: from})
	return nil
}

// parseLabelDecl handles `label Ident "=" StringLit` (spec.md §6).
func (p *Parser) parseLabelDecl(g *pegrun.Grammar) error {
	if err := p.expectLiteral("label"); err != nil {
		return err
	}
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	if err := p.expectLiteral("="); err != nil {
		return err
	}
	msg, err := p.parseStringLit()
	if err != nil {
		return err
	}
	g.Labels[name] = msg
	return nil
}

// parseDefinition handles `Ident "<-" Expression` (spec.md §6), including
// the grammar-level whitespace designation convention the teacher's own
// default grammars follow: the first production literally named "Spacing"
// or "whitespace" becomes g.Whitespace. There is no marker syntax for
// designating a differently named rule.
func (p *Parser) parseDefinition(g *pegrun.Grammar) error {
	name, err := p.parseIdent()
	if err != nil {
		return err
	}
	if err := p.expectLiteral("<-"); err != nil {
		return err
	}
	expr, unwrapped, err := p.parseExpressionRoot()
	if err != nil {
		return err
	}
	g.Define(name, expr)
	if unwrapped {
		g.MarkUnwrapped(name)
	}
	if (name == "Spacing" || name == "whitespace") && g.Whitespace == "" {
		g.Whitespace = name
	}
	return nil
}

// parseExpressionRoot parses one definition's full right-hand side,
// recognising the `unwrapped(Expression)` builtin only when it is the
// entire expression (spec.md §7: "called... outside the root of a
// semantic-action expression" is a compile error).
func (p *Parser) parseExpressionRoot() (pegrun.Pattern, bool, error) {
	p.spacing()
	if p.lookingAt("unwrapped") && p.peekAfterIdent() == '(' {
		save := p.cursor
		if _, err := p.parseIdent(); err != nil {
			return nil, false, err
		}
		p.spacing()
		p.advance() // '('
		inner, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		p.spacing()
		if p.peek() != ')' {
			p.cursor = save
		} else {
			p.advance()
			return inner, true, nil
		}
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, false, err
	}
	if p.containsUnwrappedCall {
		p.containsUnwrappedCall = false
		return nil, false, &pegrun.CompileError{
			Kind:   pegrun.ErrBadUnwrapped,
			Detail: "unwrapped() is only valid at the root of a definition",
			Range:  pegrun.NewRange(p.cursor, p.cursor),
		}
	}
	return expr, false, nil
}

// peekAfterIdent looks past the identifier starting at the cursor (after
// skipping spacing) to the rune immediately following it, without
// consuming anything.
func (p *Parser) peekAfterIdent() rune {
	save := p.cursor
	defer func() { p.cursor = save }()
	p.spacing()
	for isIdentRune(p.peek()) {
		p.advance()
	}
	return p.peek()
}

// Expression <- Sequence ("/" Sequence)*
func (p *Parser) parseExpression() (pegrun.Pattern, error) {
	start := p.cursor
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	items := []pegrun.Pattern{first}
	for {
		p.spacing()
		if p.peek() != '/' {
			break
		}
		p.advance()
		next, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return pegrun.NewChoice(items, p.rangeSince(start)), nil
}

// Sequence <- Prefix*
func (p *Parser) parseSequence() (pegrun.Pattern, error) {
	start := p.cursor
	var items []pegrun.Pattern
	for {
		p.spacing()
		if !p.atPrefixStart() {
			break
		}
		item, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return pegrun.NewEmptyLit(p.rangeSince(start)), nil
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return pegrun.NewSequence(items, p.rangeSince(start)), nil
}

func (p *Parser) atPrefixStart() bool {
	switch p.peek() {
	case eof, ')', '/', '}':
		return false
	}
	if p.lookingAt("label") || p.lookingAt("@import") {
		return false
	}
	// A bare identifier followed by "<-" starts the next definition, not
	// another Prefix of this one.
	save := p.cursor
	if isIdentStart(p.peek()) {
		for isIdentRune(p.peek()) {
			p.advance()
		}
		p.spacing()
		isDef := p.hasPrefix("<-")
		p.cursor = save
		return !isDef
	}
	return true
}

// Prefix <- ("#" | "&" | "!")? Labelled
func (p *Parser) parsePrefix() (pegrun.Pattern, error) {
	start := p.cursor
	switch p.peek() {
	case '#':
		p.advance()
		inner, err := p.parseLabelled()
		if err != nil {
			return nil, err
		}
		return pegrun.NewLexification(inner, p.rangeSince(start)), nil
	case '&':
		p.advance()
		inner, err := p.parseLabelled()
		if err != nil {
			return nil, err
		}
		return pegrun.NewAnd(inner, p.rangeSince(start)), nil
	case '!':
		p.advance()
		inner, err := p.parseLabelled()
		if err != nil {
			return nil, err
		}
		return pegrun.NewNot(inner, p.rangeSince(start)), nil
	default:
		return p.parseLabelled()
	}
}

// Labelled <- Suffix ("^" Ident)?
func (p *Parser) parseLabelled() (pegrun.Pattern, error) {
	start := p.cursor
	expr, err := p.parseSuffix()
	if err != nil {
		return nil, err
	}
	p.spacing()
	if p.peek() != '^' {
		return expr, nil
	}
	p.advance()
	label, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return pegrun.NewLabelled(expr, label, p.rangeSince(start)), nil
}

// Suffix <- Primary ("?"|"*"|"+"|Superscript)?
func (p *Parser) parseSuffix() (pegrun.Pattern, error) {
	start := p.cursor
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.spacing()
	switch p.peek() {
	case '?':
		p.advance()
		return pegrun.NewOptional(expr, p.rangeSince(start)), nil
	case '*':
		p.advance()
		return pegrun.NewZeroOrMore(expr, p.rangeSince(start)), nil
	case '+':
		p.advance()
		return pegrun.NewOneOrMore(expr, p.rangeSince(start)), nil
	}
	if prec := superscriptDigit(p.peek()); prec > 0 {
		p.advance()
		ref, ok := expr.(*pegrun.Reference)
		if !ok {
			return nil, &pegrun.CompileError{
				Kind:   pegrun.ErrBadPrecedenceSuffix,
				Detail: "precedence suffix applied to a non-identifier",
				Range:  p.rangeSince(start),
			}
		}
		return pegrun.NewReference(ref.Name, prec, ref.Range()), nil
	}
	return expr, nil
}

// Primary <- Ident !"<-" | "(" Expression ")"
//          | "{" Ident ":" Expression "}"
//          | "{" Expression* "}"
//          | StringLit | CharClass | "."
func (p *Parser) parsePrimary() (pegrun.Pattern, error) {
	start := p.cursor
	p.spacing()
	switch p.peek() {
	case '(':
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.spacing()
		if err := p.expectRune(')'); err != nil {
			return nil, err
		}
		return expr, nil

	case '{':
		return p.parseBraced(start)

	case '\'', '"':
		text, err := p.parseStringLit()
		if err != nil {
			return nil, err
		}
		runes := []rune(text)
		if len(runes) == 1 {
			return pegrun.NewCharLit(runes[0], p.rangeSince(start)), nil
		}
		return pegrun.NewStringLit(text, p.rangeSince(start)), nil

	case '[':
		return p.parseCharClass(start)

	case '.':
		p.advance()
		return pegrun.NewAnyLit(p.rangeSince(start)), nil
	}

	if isIdentStart(p.peek()) {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if name == "unwrapped" {
			p.containsUnwrappedCall = true
		}
		return pegrun.NewReference(name, 0, p.rangeSince(start)), nil
	}

	return nil, p.errorf("expected a primary expression but got %q", p.peek())
}

// parseBraced handles the two `{...}` structural forms: `{Ident: Expr}` for
// a named node, `{Expr*}` for an anonymous list.
func (p *Parser) parseBraced(start int) (pegrun.Pattern, error) {
	p.advance() // '{'
	p.spacing()

	save := p.cursor
	if isIdentStart(p.peek()) {
		name, err := p.parseIdent()
		if err == nil {
			p.spacing()
			if p.peek() == ':' {
				p.advance()
				expr, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				p.spacing()
				if err := p.expectRune('}'); err != nil {
					return nil, err
				}
				return pegrun.NewNodePattern(name, expr, p.rangeSince(start)), nil
			}
		}
		p.cursor = save
	}

	var items []pegrun.Pattern
	for {
		p.spacing()
		if p.peek() == '}' {
			break
		}
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.expectRune('}'); err != nil {
		return nil, err
	}
	return pegrun.NewListPattern(items, p.rangeSince(start)), nil
}

func (p *Parser) rangeSince(start int) pegrun.Range {
	return pegrun.NewRange(start, p.cursor)
}
