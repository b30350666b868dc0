package parser

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/token"
)

func th(sp ast.Span) ast.ThBase { return ast.ThBase{Sp: sp} }

// parseTypeHint parses a type annotation. Entered with p.cur already on the
// first token of the type (the caller has just advanced onto it), mirroring
// the rest of the expression/statement parsers in this package.
func (p *Parser) parseTypeHint() ast.TypeHint {
	start := p.cur.Span
	var inner ast.TypeHint
	switch {
	case p.curIs(token.Amp):
		mut := false
		if p.peekIs(token.KwMut) {
			mut = true
			p.nextToken()
		}
		p.nextToken()
		elem := p.parseTypeHint()
		if mut {
			inner = &ast.RefMutTypeHint{ThBase: th(span2(start, p.cur.Span)), Inner: elem}
		} else {
			inner = &ast.RefTypeHint{ThBase: th(span2(start, p.cur.Span)), Inner: elem}
		}
	case p.curIs(token.Star):
		p.nextToken()
		if p.curIs(token.KwRaw) {
			p.nextToken()
		}
		elem := p.parseTypeHint()
		inner = &ast.RawPtrTypeHint{ThBase: th(span2(start, p.cur.Span)), Inner: elem}
	case p.curIs(token.LBracket):
		p.nextToken()
		elem := p.parseTypeHint()
		if p.peekIs(token.Semicolon) {
			p.nextToken()
			p.nextToken()
			count := p.parseExpr(precAssign)
			p.expect(token.RBracket)
			inner = &ast.ArrayTypeHint{ThBase: th(span2(start, p.cur.Span)), Elem: elem, Count: count}
		} else {
			p.expect(token.RBracket)
			inner = &ast.SliceTypeHint{ThBase: th(span2(start, p.cur.Span)), Elem: elem}
		}
	case p.curIs(token.LParen):
		var elems []ast.TypeHint
		for !p.peekIs(token.RParen) {
			p.nextToken()
			elems = append(elems, p.parseTypeHint())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		inner = &ast.TupleTypeHint{ThBase: th(span2(start, p.cur.Span)), Elems: elems}
	case p.curIs(token.KwVoid):
		inner = &ast.VoidTypeHint{ThBase: th(start)}
	case p.curIs(token.KwThis):
		inner = &ast.ThisTypeHint{ThBase: th(start)}
	case p.curIs(token.KwMutThis):
		inner = &ast.MutThisTypeHint{ThBase: th(start)}
	case p.curIs(token.KwFn):
		p.expect(token.LParen)
		var params []ast.TypeHint
		for !p.peekIs(token.RParen) {
			p.nextToken()
			params = append(params, p.parseTypeHint())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		var ret ast.TypeHint
		if p.peekIs(token.Colon) {
			p.nextToken()
			p.nextToken()
			ret = p.parseTypeHint()
		}
		inner = &ast.FnPtrTypeHint{ThBase: th(span2(start, p.cur.Span)), Params: params, Ret: ret}
	case p.curIs(token.KwDyn):
		p.nextToken()
		path := p.parseTypePathFrom()
		inner = &ast.NamedTypeHint{ThBase: th(span2(start, p.cur.Span)), IsDyn: true, Path: path}
	default:
		path := p.parseTypePathFrom()
		inner = &ast.NamedTypeHint{ThBase: th(span2(start, p.cur.Span)), Path: path}
	}

	// `T?` is sugar for `option<T>` (spec.md §3 Type, lang item Option).
	for p.peekIs(token.Question) {
		p.nextToken()
		inner = &ast.OptionTypeHint{ThBase: th(span2(start, p.cur.Span)), Inner: inner}
	}
	return inner
}
