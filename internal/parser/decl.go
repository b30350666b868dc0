package parser

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/token"
)

func (p *Parser) parseAttrs() []ast.Attribute {
	var attrs []ast.Attribute
	for p.curIs(token.At) {
		p.nextToken()
		sp := p.cur.Span
		name := p.cur.Text
		var props []ast.Attribute
		if p.peekIs(token.LParen) {
			p.nextToken()
			for !p.peekIs(token.RParen) {
				p.nextToken()
				props = append(props, ast.Attribute{Name: p.cur.Text, NameSpan: p.cur.Span})
				if p.peekIs(token.Comma) {
					p.nextToken()
				} else {
					break
				}
			}
			p.expect(token.RParen)
		}
		attrs = append(attrs, ast.Attribute{Name: name, NameSpan: sp, Props: props})
		p.nextToken()
	}
	return attrs
}

func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.peekIs(token.Lt) {
		return nil
	}
	p.nextToken()
	var out []ast.TypeParam
	for !p.peekIs(token.Gt) {
		p.nextToken()
		name := p.cur.Text
		sp := p.cur.Span
		var bounds []ast.TypePath
		if p.peekIs(token.Colon) {
			p.nextToken()
			p.nextToken()
			bounds = append(bounds, p.parseTypePathFrom())
			for p.peekIs(token.Amp) {
				p.nextToken()
				p.nextToken()
				bounds = append(bounds, p.parseTypePathFrom())
			}
		}
		out = append(out, ast.TypeParam{Name: name, Sp: sp, Bounds: bounds})
		if p.peekIs(token.Comma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.Gt)
	return out
}

func (p *Parser) parseImplsAndFunctions() ([]ast.TypePath, []ast.FnStmt) {
	var impls []ast.TypePath
	if p.peekIs(token.KwImpl) {
		p.nextToken()
		if !p.peekIs(token.LBrace) {
			p.nextToken()
			impls = append(impls, p.parseTypePathFrom())
			for p.peekIs(token.Comma) {
				p.nextToken()
				p.nextToken()
				impls = append(impls, p.parseTypePathFrom())
			}
		}
	} else if !p.peekIs(token.LBrace) {
		return nil, nil
	}
	p.expect(token.LBrace)
	var fns []ast.FnStmt
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if f, ok := p.parseFnStmt().(*ast.FnStmt); ok && f != nil {
			fns = append(fns, *f)
		}
	}
	p.expect(token.RBrace)
	return impls, fns
}

// parseStructBody parses a struct's member list, followed by an optional
// `impl` clause and method list, matching funxy's split of a type's "shape"
// from its behavior (statements_types.go / statements_traits.go).
func (p *Parser) parseStructBody(public bool, attrs []ast.Attribute) ast.StructDecl {
	start := p.cur.Span
	name := p.cur.Text
	nameSp := p.cur.Span
	tp := p.parseTypeParams()
	p.expect(token.LBrace)
	var members []ast.MemberDecl
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if p.curIs(token.RBrace) {
			break
		}
		members = append(members, p.parseMemberDecl())
		if p.peekIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RBrace)
	impls, fns := p.parseImplsAndFunctions()
	return ast.StructDecl{
		Sp: span2(start, p.cur.Span), Public: public, Name: name, NameSpan: nameSp,
		Attrs: attrs, TypeParams: tp, Members: members, Impls: impls, Functions: fns,
		Packed: ast.HasAttr(attrs, "packed"),
	}
}

func (p *Parser) parseMemberDecl() ast.MemberDecl {
	public := false
	shared := false
	if p.curIs(token.KwPub) {
		public = true
		p.nextToken()
	}
	if p.curIs(token.Ident) && p.cur.Text == "shared" && p.peekIs(token.Ident) {
		shared = true
		p.nextToken()
	}
	name := p.cur.Text
	nameSp := p.cur.Span
	p.expect(token.Colon)
	p.nextToken()
	ty := p.parseTypeHint()
	var def ast.Expr
	if p.peekIs(token.Equal) {
		p.nextToken()
		p.nextToken()
		def = p.parseExpr(precAssign)
	}
	return ast.MemberDecl{Public: public, Shared: shared, Name: name, NameSpan: nameSp, Ty: ty, Default: def}
}

func (p *Parser) parseUnionDecl(unsafeUnion bool) ast.UnionDecl {
	start := p.cur.Span
	public := p.curIs(token.KwPub)
	attrs := p.parseAttrs()
	if p.curIs(token.KwPub) {
		public = true
		p.nextToken()
	}
	name := p.cur.Text
	nameSp := p.cur.Span
	tp := p.parseTypeParams()
	p.expect(token.LBrace)
	var shared []ast.MemberDecl
	var variants []ast.UnionVariant
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if p.curIs(token.RBrace) {
			break
		}
		if p.cur.Text == "shared" && p.peekIs(token.Ident) {
			p.nextToken()
			shared = append(shared, p.parseMemberDecl())
			if p.peekIs(token.Comma) {
				p.nextToken()
			}
			continue
		}
		variants = append(variants, p.parseUnionVariant())
		if p.peekIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RBrace)
	impls, fns := p.parseImplsAndFunctions()
	return ast.UnionDecl{
		Sp: span2(start, p.cur.Span), Unsafe: unsafeUnion, Shared: shared, Variants: variants,
		Base: ast.StructDecl{Name: name, NameSpan: nameSp, Public: public, Attrs: attrs, TypeParams: tp, Impls: impls, Functions: fns},
	}
}

func (p *Parser) parseUnionVariant() ast.UnionVariant {
	name := p.cur.Text
	nameSp := p.cur.Span
	v := ast.UnionVariant{Name: name, NameSpan: nameSp}
	switch {
	case p.peekIs(token.LParen):
		p.nextToken()
		for !p.peekIs(token.RParen) {
			p.nextToken()
			v.TupleTypes = append(v.TupleTypes, p.parseTypeHint())
			if p.peekIs(token.Comma) {
				p.nextToken()
			} else {
				break
			}
		}
		p.expect(token.RParen)
		v.HasPayload = true
	case p.peekIs(token.LBrace):
		p.nextToken()
		fields, _ := p.parseMemberDeclBraceBody()
		v.Fields = fields
		v.HasPayload = true
	}
	return v
}

func (p *Parser) parseMemberDeclBraceBody() ([]ast.MemberDecl, bool) {
	var out []ast.MemberDecl
	for !p.peekIs(token.RBrace) {
		p.nextToken()
		if p.curIs(token.RBrace) {
			break
		}
		out = append(out, p.parseMemberDecl())
		if p.peekIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RBrace)
	return out, false
}

func (p *Parser) parseTraitDecl(public bool) ast.TraitDecl {
	start := p.cur.Span
	name := p.cur.Text
	nameSp := p.cur.Span
	tp := p.parseTypeParams()
	var super []ast.TypePath
	if p.peekIs(token.Colon) {
		p.nextToken()
		p.nextToken()
		super = append(super, p.parseTypePathFrom())
		for p.peekIs(token.Amp) {
			p.nextToken()
			p.nextToken()
			super = append(super, p.parseTypePathFrom())
		}
	}
	p.expect(token.LBrace)
	var fns []ast.FnDecl
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if p.curIs(token.RBrace) {
			break
		}
		fnStmt := p.parseFnStmt()
		if f, ok := fnStmt.(*ast.FnStmt); ok && f != nil {
			fns = append(fns, f.Decl)
		}
	}
	p.expect(token.RBrace)
	return ast.TraitDecl{Sp: span2(start, p.cur.Span), Public: public, Name: name, NameSpan: nameSp, TypeParams: tp, SuperTraits: super, Functions: fns}
}

// parseFnStmt parses a function declaration plus its body (or none, for a
// trait method without a default implementation). Entered with p.cur on
// `fn` (or a preceding modifier keyword already consumed by the caller).
func (p *Parser) parseFnStmt() ast.Stmt {
	start := p.cur.Span
	attrs := p.parseAttrs()
	public := false
	isAsync := false
	isUnsafe := false
	linkage := ast.LinkInternal
	for {
		switch p.cur.Kind {
		case token.KwPub:
			public = true
		case token.KwAsync:
			isAsync = true
		case token.KwUnsafe:
			isUnsafe = true
		case token.KwExtern:
			linkage = ast.LinkImport
			if p.cur.Text == "export" {
				linkage = ast.LinkExport
			}
		default:
			goto done
		}
		p.nextToken()
	}
done:
	if !p.curIs(token.KwFn) {
		return nil
	}
	p.nextToken()
	name := p.cur.Text
	nameSp := p.cur.Span
	tp := p.parseTypeParams()
	p.expect(token.LParen)
	var params []ast.Param
	variadic := false
	for !p.peekIs(token.RParen) {
		p.nextToken()
		if p.curIs(token.DotDotDot) {
			variadic = true
			p.nextToken()
			break
		}
		params = append(params, p.parseParam())
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
	decl := ast.FnDecl{
		Sp: span2(start, p.cur.Span), Attrs: attrs, Public: public, Name: name, NameSpan: nameSp,
		IsAsync: isAsync, IsUnsafe: isUnsafe, Linkage: linkage, Variadic: variadic,
		TypeParams: tp, Params: params, Ret: ret,
	}
	var body []ast.Stmt
	if p.peekIs(token.LBrace) {
		p.nextToken()
		blk := p.parseBlockExprPrefix().(*ast.BlockExpr)
		body = blk.Stmts
	} else {
		p.expect(token.Semicolon)
	}
	return &ast.FnStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: decl, Body: body}
}

func (p *Parser) parseParam() ast.Param {
	start := p.cur.Span
	if p.curIs(token.KwThis) {
		return ast.Param{Sp: start, Pattern: &ast.IdentPattern{PatBase: pb(start), Name: "this"}, Ty: &ast.ThisTypeHint{ThBase: th(start)}}
	}
	if p.curIs(token.KwMutThis) {
		return ast.Param{Sp: start, Mutable: true, Pattern: &ast.IdentPattern{PatBase: pb(start), Mutable: true, Name: "this"}, Ty: &ast.MutThisTypeHint{ThBase: th(start)}}
	}
	keyword := false
	mutable := false
	if p.curIs(token.KwMut) {
		mutable = true
		p.nextToken()
	}
	name := p.cur.Text
	pat := ast.Pattern(&ast.IdentPattern{PatBase: pb(p.cur.Span), Mutable: mutable, Name: name})
	var def ast.Expr
	var ty ast.TypeHint
	if p.peekIs(token.Colon) {
		p.nextToken()
		p.nextToken()
		ty = p.parseTypeHint()
	}
	if p.peekIs(token.Equal) {
		p.nextToken()
		p.nextToken()
		def = p.parseExpr(precAssign)
		keyword = true
	}
	return ast.Param{Sp: span2(start, p.cur.Span), Mutable: mutable, Keyword: keyword, Pattern: pat, Ty: ty, Default: def}
}

func (p *Parser) parseExtensionStmt() ast.Stmt {
	start := p.cur.Span
	name := p.cur.Text
	tp := p.parseTypeParams()
	if !p.expect(token.KwFor) {
		return nil
	}
	p.nextToken()
	target := p.parseTypeHint()
	impls, fns := p.parseImplsAndFunctions()
	return &ast.ExtensionStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Name: name, TypeParams: tp, Target: target, Impls: impls, Functions: fns}
}
