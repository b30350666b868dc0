package parser

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/token"
)

// parseStmt parses one statement, entered with p.cur already positioned on
// its first token (the caller — ParseProgram/parseBlockExprPrefix — has
// already advanced past the previous statement's last token).
func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur.Span
	attrs := p.parseAttrs()
	public := false
	if p.curIs(token.KwPub) {
		public = true
		p.nextToken()
	}

	switch p.cur.Kind {
	case token.KwLet:
		return p.parseLetStmt(start)
	case token.KwFn, token.KwAsync, token.KwUnsafe, token.KwExtern:
		if p.curIs(token.KwUnsafe) && p.peekIs(token.LBrace) {
			return p.parseExprStmt(start)
		}
		if fn := p.parseFnStmtFrom(attrs, public); fn != nil {
			return fn
		}
		return p.parseExprStmt(start)
	case token.KwStruct:
		p.nextToken()
		decl := p.parseStructBody(public, attrs)
		return &ast.UserTypeStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: ast.UserTypeDecl{Sp: decl.Sp, Kind: ast.KindStruct, Struct: &decl}}
	case token.KwUnion:
		p.nextToken()
		decl := p.parseUnionDecl(false)
		decl.Base.Public = public
		return &ast.UserTypeStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: ast.UserTypeDecl{Sp: decl.Sp, Kind: ast.KindUnion, Union: &decl}}
	case token.KwUnsafeUnion:
		p.nextToken()
		decl := p.parseUnionDecl(true)
		decl.Base.Public = public
		return &ast.UserTypeStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: ast.UserTypeDecl{Sp: decl.Sp, Kind: ast.KindUnsafeUnion, Union: &decl}}
	case token.KwTrait:
		p.nextToken()
		decl := p.parseTraitDecl(public)
		return &ast.UserTypeStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: ast.UserTypeDecl{Sp: decl.Sp, Kind: ast.KindTrait, Trait: &decl}}
	case token.KwExtension:
		p.nextToken()
		return p.parseExtensionStmt()
	case token.KwStatic:
		return p.parseStaticStmt(start, public)
	case token.KwMod:
		return p.parseModuleStmt(start, public)
	case token.KwUse:
		return p.parseUseStmt(start, public)
	default:
		return p.parseExprStmt(start)
	}
}

// parseFnStmtFrom parses a function declaration the same way parseFnStmt
// does, for a statement whose attrs/pub prefix parseStmt has already
// consumed.
func (p *Parser) parseFnStmtFrom(attrs []ast.Attribute, public bool) ast.Stmt {
	start := p.cur.Span
	isAsync := false
	isUnsafe := false
	linkage := ast.LinkInternal
	for {
		switch p.cur.Kind {
		case token.KwAsync:
			isAsync = true
		case token.KwUnsafe:
			isUnsafe = true
		case token.KwExtern:
			linkage = ast.LinkImport
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
	} else if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.FnStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Decl: decl, Body: body}
}

func (p *Parser) parseLetStmt(start ast.Span) ast.Stmt {
	p.nextToken()
	pat := p.parsePattern()
	var ty ast.TypeHint
	if p.peekIs(token.Colon) {
		p.nextToken()
		p.nextToken()
		ty = p.parseTypeHint()
	}
	var val ast.Expr
	if p.peekIs(token.Equal) {
		p.nextToken()
		p.nextToken()
		val = p.parseExpr(precLowest)
	}
	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.LetStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Pattern: pat, Ty: ty, Value: val}
}

func (p *Parser) parseStaticStmt(start ast.Span, public bool) ast.Stmt {
	p.nextToken()
	name := p.cur.Text
	var ty ast.TypeHint
	if p.peekIs(token.Colon) {
		p.nextToken()
		p.nextToken()
		ty = p.parseTypeHint()
	}
	p.expect(token.Equal)
	p.nextToken()
	val := p.parseExpr(precLowest)
	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.StaticStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Public: public, Name: name, Ty: ty, Value: val}
}

func (p *Parser) parseModuleStmt(start ast.Span, public bool) ast.Stmt {
	p.nextToken()
	name := p.cur.Text
	p.expect(token.LBrace)
	var stmts []ast.Stmt
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBrace)
	return &ast.ModuleStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Public: public, Name: name, Body: stmts}
}

func (p *Parser) parseUseStmt(start ast.Span, public bool) ast.Stmt {
	p.nextToken()
	path := p.parseTypePathFrom()
	all := false
	if p.peekIs(token.ColonColon) {
		p.nextToken()
		if p.peekIs(token.Star) {
			p.nextToken()
			all = true
		}
	}
	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.UseStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Public: public, Path: path, All: all}
}

func (p *Parser) parseExprStmt(start ast.Span) ast.Stmt {
	expr := p.parseExpr(precLowest)
	if expr == nil {
		return nil
	}
	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Sp: span2(start, p.cur.Span)}, Expr: expr}
}
