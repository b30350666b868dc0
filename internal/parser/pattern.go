package parser

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/token"
)

func pb(sp ast.Span) ast.PatBase { return ast.PatBase{Sp: sp} }

// parsePattern parses one pattern, entered with p.cur on its first token.
// Grounded on original_source/src/typecheck.rs's check_*_pattern family and
// spec.md §4.7.
func (p *Parser) parsePattern() ast.Pattern {
	base := p.parseSinglePattern()
	if p.peekIs(token.DotDotDot) {
		p.nextToken()
		inclusive := false
		if p.peekIs(token.Equal) {
			inclusive = true
			p.nextToken()
		}
		p.nextToken()
		end := p.parseSinglePattern()
		return &ast.RangePattern{PatBase: pb(span2(base.Span(), end.Span())), Start: base, End: end, Inclusive: inclusive}
	}
	return base
}

func (p *Parser) parseSinglePattern() ast.Pattern {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.Ident:
		name := p.cur.Text
		if name == "_" {
			return &ast.WildcardPattern{PatBase: pb(start)}
		}
		if p.peekIs(token.ColonColon) || p.isVariantStart() {
			return p.parseVariantOrStructPattern()
		}
		return &ast.IdentPattern{PatBase: pb(start), Name: name}
	case token.KwMut:
		p.nextToken()
		return &ast.IdentPattern{PatBase: pb(span2(start, p.cur.Span)), Mutable: true, Name: p.cur.Text}
	case token.Int:
		return &ast.LiteralPattern{PatBase: pb(start), Kind: ast.LitInt, Int: p.cur.Text}
	case token.Char:
		r := []rune(p.cur.Text)
		var v rune
		if len(r) > 0 {
			v = r[0]
		}
		return &ast.LiteralPattern{PatBase: pb(start), Kind: ast.LitChar, Char: v}
	case token.String:
		return &ast.LiteralPattern{PatBase: pb(start), Kind: ast.LitString, String: p.cur.Text}
	case token.KwTrue, token.KwFalse:
		return &ast.LiteralPattern{PatBase: pb(start), Kind: ast.LitBool, Bool: p.cur.Kind == token.KwTrue}
	case token.KwVoid:
		return &ast.LiteralPattern{PatBase: pb(start), Kind: ast.LitVoid}
	case token.KwNull:
		return &ast.NullPattern{PatBase: pb(start)}
	case token.DotDotDot:
		name := ""
		mutable := false
		if p.peekIs(token.KwMut) {
			mutable = true
			p.nextToken()
		}
		if p.peekIs(token.Ident) {
			p.nextToken()
			name = p.cur.Text
		}
		return &ast.RestPattern{PatBase: pb(span2(start, p.cur.Span)), Mutable: mutable, Name: name}
	case token.LParen:
		var elems []ast.Pattern
		for !p.peekIs(token.RParen) {
			p.nextToken()
			elems = append(elems, p.parsePattern())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		return &ast.TuplePattern{PatBase: pb(span2(start, p.cur.Span)), Elems: elems}
	case token.LBracket:
		var elems []ast.Pattern
		for !p.peekIs(token.RBracket) {
			p.nextToken()
			elems = append(elems, p.parsePattern())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RBracket)
		return &ast.ArrayPattern{PatBase: pb(span2(start, p.cur.Span)), Elems: elems}
	default:
		return &ast.WildcardPattern{PatBase: pb(start)}
	}
}

// isVariantStart reports whether the identifier just consumed is followed
// by a payload-introducing token — `(` (tuple variant) or `{` (struct
// variant/struct pattern) — so the caller can tell a bare binding from a
// variant/struct pattern without backtracking.
func (p *Parser) isVariantStart() bool {
	return p.peekIs(token.LParen) || p.peekIs(token.LBrace)
}

func (p *Parser) parseVariantOrStructPattern() ast.Pattern {
	start := p.cur.Span
	path := p.parseTypePathFrom()
	switch {
	case p.peekIs(token.LParen):
		p.nextToken()
		var elems []ast.Pattern
		for !p.peekIs(token.RParen) {
			p.nextToken()
			elems = append(elems, p.parsePattern())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		return &ast.VariantPattern{PatBase: pb(span2(start, p.cur.Span)), Path: path, TupleElems: elems}
	case p.peekIs(token.LBrace):
		p.nextToken()
		fields, rest := p.parseFieldPatterns()
		if len(path.Components) > 1 {
			return &ast.VariantPattern{PatBase: pb(span2(start, p.cur.Span)), Path: path, Fields: fields}
		}
		return &ast.StructPattern{PatBase: pb(span2(start, p.cur.Span)), Path: path, Fields: fields, Rest: rest}
	default:
		return &ast.IdentPattern{PatBase: pb(start), Name: path.Last().Name}
	}
}

func (p *Parser) parseFieldPatterns() ([]ast.FieldPattern, bool) {
	var fields []ast.FieldPattern
	rest := false
	for !p.peekIs(token.RBrace) {
		p.nextToken()
		if p.curIs(token.DotDotDot) {
			rest = true
			p.nextToken()
			break
		}
		mutable := false
		if p.curIs(token.KwMut) {
			mutable = true
			p.nextToken()
		}
		name := p.cur.Text
		var sub ast.Pattern
		if p.peekIs(token.Colon) {
			p.nextToken()
			p.nextToken()
			sub = p.parsePattern()
		}
		fields = append(fields, ast.FieldPattern{Name: name, Mutable: mutable, Sub: sub})
		if p.peekIs(token.Comma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RBrace)
	return fields, rest
}
