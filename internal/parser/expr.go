package parser

import (
	"strings"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/token"
)

func (p *Parser) registerExprFns() {
	p.prefixFns[token.Ident] = p.parseIdentOrStructInit
	p.prefixFns[token.Int] = p.parseIntLit
	p.prefixFns[token.Float] = p.parseFloatLit
	p.prefixFns[token.String] = p.parseStringLit
	p.prefixFns[token.Char] = p.parseCharLit
	p.prefixFns[token.KwTrue] = p.parseBoolLit
	p.prefixFns[token.KwFalse] = p.parseBoolLit
	p.prefixFns[token.KwVoid] = func() ast.Expr { return &ast.VoidExpr{ExprBase: ast.ExprBase{Sp: p.cur.Span}} }
	p.prefixFns[token.KwNull] = func() ast.Expr { return &ast.NoneExpr{ExprBase: ast.ExprBase{Sp: p.cur.Span}} }
	p.prefixFns[token.KwContinue] = func() ast.Expr { return &ast.ContinueExpr{ExprBase: ast.ExprBase{Sp: p.cur.Span}} }
	p.prefixFns[token.LParen] = p.parseParenOrTuple
	p.prefixFns[token.LBracket] = p.parseArrayExpr
	p.prefixFns[token.LBrace] = p.parseBlockExprPrefix
	p.prefixFns[token.KwIf] = p.parseIfExpr
	p.prefixFns[token.KwLoop] = p.parseLoopExpr
	p.prefixFns[token.KwWhile] = p.parseWhileExpr
	p.prefixFns[token.KwFor] = p.parseForExpr
	p.prefixFns[token.KwMatch] = p.parseMatchExpr
	p.prefixFns[token.KwReturn] = p.parseReturnExpr
	p.prefixFns[token.KwYield] = p.parseYieldExpr
	p.prefixFns[token.KwBreak] = p.parseBreakExpr
	p.prefixFns[token.KwUnsafe] = p.parseUnsafeExpr
	p.prefixFns[token.KwThis] = func() ast.Expr {
		sp := p.cur.Span
		return &ast.SymbolExpr{ExprBase: ast.ExprBase{Sp: sp}, Path: ast.TypePath{Components: []ast.PathComponent{{Name: "this"}}, Sp: sp}}
	}
	p.prefixFns[token.KwSizeof] = p.parseSizeof
	p.prefixFns[token.Minus] = p.parseUnary(ast.Neg)
	p.prefixFns[token.Plus] = p.parseUnary(ast.Plus)
	p.prefixFns[token.Exclamation] = p.parseUnary(ast.Not)
	p.prefixFns[token.Star] = p.parseUnary(ast.Deref)
	p.prefixFns[token.PlusPlus] = p.parseUnary(ast.PreIncrement)
	p.prefixFns[token.MinusMinus] = p.parseUnary(ast.PreDecrement)
	p.prefixFns[token.Amp] = p.parseAddrOf

	for k := range precedences {
		switch k {
		case token.Dot, token.LParen, token.LBracket, token.Question, token.PlusPlus, token.MinusMinus:
			continue
		case token.Equal, token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual,
			token.PercentEqual, token.AmpEqual, token.PipeEqual, token.CaretEqual, token.ShlEqual,
			token.ShrEqual, token.QuestionQuestionEqual:
			p.infixFns[k] = p.parseAssign
		case token.KwAs, token.KwAsBang:
			p.infixFns[k] = p.parseAs
		case token.KwIs:
			p.infixFns[k] = p.parseIs
		case token.DotDotDot:
			p.infixFns[k] = p.parseRange
		default:
			p.infixFns[k] = p.parseBinary
		}
	}
	p.infixFns[token.Dot] = p.parseMemberOrPostfix
	p.infixFns[token.LParen] = p.parseCall
	p.infixFns[token.LBracket] = p.parseSubscript
	p.infixFns[token.Question] = p.parseUnwrap
	p.infixFns[token.PlusPlus] = p.parsePostfixIncDec(ast.PostIncrement)
	p.infixFns[token.MinusMinus] = p.parsePostfixIncDec(ast.PostDecrement)
}

func (p *Parser) parseExpr(precedence int) ast.Expr {
	prefix := p.prefixFns[p.cur.Kind]
	if prefix == nil {
		p.sink.Error(diag.NotValidHere(p.cur.Text, p.cur.Span))
		return nil
	}
	left := prefix()
	for !p.peekIs(token.Semicolon) && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Kind]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func span2(a, b ast.Span) ast.Span {
	return ast.Span{Pos: a.Pos, Len: b.Pos + b.Len - a.Pos, File: a.File}
}

func eb(sp ast.Span) ast.ExprBase { return ast.ExprBase{Sp: sp} }

func (p *Parser) parseIdentOrStructInit() ast.Expr {
	start := p.cur.Span
	path := p.parseTypePathFrom()
	// Only `Name { label: ...` opens an initializer; any other `{` after a
	// name starts the block of an enclosing if/while/for/match.
	if p.peekIs(token.LBrace) && p.pos+1 < len(p.toks) &&
		p.toks[p.pos].Kind == token.Ident && p.toks[p.pos+1].Kind == token.Colon {
		p.nextToken() // now at {
		return p.parseStructInitBody(start, path)
	}
	return &ast.SymbolExpr{ExprBase: eb(start), Path: path}
}

func (p *Parser) parseStructInitBody(start ast.Span, path ast.TypePath) ast.Expr {
	var args []ast.Arg
	for !p.peekIs(token.RBrace) {
		p.nextToken()
		if p.curIs(token.RBrace) {
			break
		}
		label := ""
		if p.curIs(token.Ident) && p.peekIs(token.Colon) {
			label = p.cur.Text
			p.nextToken()
			p.nextToken()
		}
		val := p.parseExpr(precAssign)
		args = append(args, ast.Arg{Label: label, Value: val})
		if p.peekIs(token.Comma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RBrace)
	return &ast.StructInitExpr{ExprBase: eb(span2(start, p.cur.Span)), Path: path, Args: args}
}

func (p *Parser) parseTypePathFrom() ast.TypePath {
	start := p.cur.Span
	origin := ast.OriginNormal
	superCount := 0
	if p.curIs(token.KwRoot) {
		origin = ast.OriginRoot
		if p.peekIs(token.ColonColon) {
			p.nextToken()
			p.nextToken()
		}
	}
	for p.curIs(token.KwSuper) {
		origin = ast.OriginSuper
		superCount++
		if p.peekIs(token.ColonColon) {
			p.nextToken()
			p.nextToken()
		}
	}
	var comps []ast.PathComponent
	comps = append(comps, p.parsePathComponent())
	for p.peekIs(token.ColonColon) {
		p.nextToken()
		p.nextToken()
		comps = append(comps, p.parsePathComponent())
	}
	return ast.TypePath{Origin: origin, SuperCount: superCount, Components: comps, Sp: span2(start, p.cur.Span)}
}

func (p *Parser) parsePathComponent() ast.PathComponent {
	name := p.cur.Text
	sp := p.cur.Span
	var tyArgs []ast.TypeHint
	if p.peekIs(token.Lt) && p.looksLikeTypeArgs() {
		p.nextToken()
		tyArgs = p.parseTypeArgList()
	}
	return ast.PathComponent{Name: name, NameSpan: sp, TyArgs: tyArgs}
}

// looksLikeTypeArgs disambiguates `x<y` (comparison) from `Name<T>` (type
// arguments) without backtracking, by requiring the `<` to be immediately
// followed by an identifier/type-starting token — a single-token lookahead
// heuristic in the spirit of original_source/src/parser.rs's turbofish
// handling.
func (p *Parser) looksLikeTypeArgs() bool {
	idx := p.pos
	if idx >= len(p.toks) {
		return false
	}
	switch p.toks[idx].Kind {
	case token.Ident, token.KwRaw, token.LBracket, token.Amp, token.KwDyn, token.KwThis:
		return true
	}
	return false
}

func (p *Parser) parseTypeArgList() []ast.TypeHint {
	var out []ast.TypeHint
	p.nextToken()
	out = append(out, p.parseTypeHint())
	for p.peekIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		out = append(out, p.parseTypeHint())
	}
	p.expect(token.Gt)
	return out
}

func (p *Parser) parseIntLit() ast.Expr {
	sp := p.cur.Span
	digits := p.cur.Text
	suffix := ""
	if i := strings.IndexAny(digits, "iuIU"); i > 0 {
		suffix = digits[i:]
		digits = digits[:i]
	}
	return &ast.IntLit{ExprBase: eb(sp), Digits: digits, Suffix: suffix}
}

func (p *Parser) parseFloatLit() ast.Expr {
	sp := p.cur.Span
	digits := p.cur.Text
	is32 := strings.HasSuffix(digits, "f32")
	if is32 {
		digits = strings.TrimSuffix(digits, "f32")
	} else {
		digits = strings.TrimSuffix(digits, "f64")
	}
	return &ast.FloatLit{ExprBase: eb(sp), Digits: digits, Is32: is32}
}

func (p *Parser) parseStringLit() ast.Expr {
	return &ast.StringLit{ExprBase: eb(p.cur.Span), Value: p.cur.Text}
}

func (p *Parser) parseCharLit() ast.Expr {
	r := []rune(p.cur.Text)
	var v rune
	if len(r) > 0 {
		v = r[0]
	}
	return &ast.CharLit{ExprBase: eb(p.cur.Span), Value: v}
}

func (p *Parser) parseBoolLit() ast.Expr {
	return &ast.BoolLit{ExprBase: eb(p.cur.Span), Value: p.cur.Kind == token.KwTrue}
}

func (p *Parser) parseSizeof() ast.Expr {
	start := p.cur.Span
	p.expect(token.LParen)
	p.nextToken()
	ty := p.parseTypeHint()
	p.expect(token.RParen)
	return &ast.UnaryExpr{ExprBase: eb(span2(start, p.cur.Span)), Op: ast.Sizeof, TypeOperand: ty}
}

func (p *Parser) parseUnary(op ast.UnaryOp) prefixParseFn {
	return func() ast.Expr {
		start := p.cur.Span
		p.nextToken()
		operand := p.parseExpr(precUnary)
		return &ast.UnaryExpr{ExprBase: eb(span2(start, operand.Span())), Op: op, Expr: operand}
	}
}

func (p *Parser) parseAddrOf() ast.Expr {
	start := p.cur.Span
	op := ast.Addr
	if p.peekIs(token.KwMut) {
		op = ast.AddrMut
		p.nextToken()
	} else if p.peekIs(token.KwRaw) {
		op = ast.AddrRaw
		p.nextToken()
	}
	p.nextToken()
	operand := p.parseExpr(precUnary)
	return &ast.UnaryExpr{ExprBase: eb(span2(start, operand.Span())), Op: op, Expr: operand}
}

func (p *Parser) parsePostfixIncDec(op ast.UnaryOp) infixParseFn {
	return func(left ast.Expr) ast.Expr {
		return &ast.UnaryExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Op: op, Expr: left}
	}
}

func (p *Parser) parseUnwrap(left ast.Expr) ast.Expr {
	return &ast.UnaryExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Op: ast.Unwrap, Expr: left}
}

func binOpFor(k token.Kind) ast.BinaryOp {
	switch k {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Star:
		return ast.Mul
	case token.Slash:
		return ast.Div
	case token.Percent:
		return ast.Rem
	case token.Amp:
		return ast.BitAnd
	case token.Caret:
		return ast.Xor
	case token.Pipe:
		return ast.BitOr
	case token.Shl:
		return ast.Shl
	case token.Shr:
		return ast.Shr
	case token.QuestionQuestion:
		return ast.NoneCoalesce
	case token.Gt:
		return ast.Gt
	case token.GtEqual:
		return ast.GtEqual
	case token.Lt:
		return ast.Lt
	case token.LtEqual:
		return ast.LtEqual
	case token.EqualEqual:
		return ast.Equal
	case token.BangEqual:
		return ast.NotEqual
	case token.PipePipe:
		return ast.LogicalOr
	case token.AmpAmp:
		return ast.LogicalAnd
	}
	return ast.Add
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	op := binOpFor(p.cur.Kind)
	prec := precedences[p.cur.Kind]
	p.nextToken()
	right := p.parseExpr(prec)
	return &ast.BinaryExpr{ExprBase: eb(span2(left.Span(), right.Span())), Op: op, Left: left, Right: right}
}

var assignBinOps = map[token.Kind]ast.BinaryOp{
	token.PlusEqual: ast.Add, token.MinusEqual: ast.Sub, token.StarEqual: ast.Mul,
	token.SlashEqual: ast.Div, token.PercentEqual: ast.Rem, token.AmpEqual: ast.BitAnd,
	token.PipeEqual: ast.BitOr, token.CaretEqual: ast.Xor, token.ShlEqual: ast.Shl,
	token.ShrEqual: ast.Shr, token.QuestionQuestionEqual: ast.NoneCoalesce,
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	op := p.cur.Kind
	p.nextToken()
	value := p.parseExpr(precAssign - 1)
	var binOp *ast.BinaryOp
	if b, ok := assignBinOps[op]; ok {
		binOp = &b
	}
	return &ast.AssignExpr{ExprBase: eb(span2(left.Span(), value.Span())), Target: left, Binary: binOp, Value: value}
}

func (p *Parser) parseAs(left ast.Expr) ast.Expr {
	throwing := p.cur.Kind == token.KwAsBang
	p.nextToken()
	ty := p.parseTypeHint()
	return &ast.AsExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Value: left, Target: ty, Throwing: throwing}
}

func (p *Parser) parseIs(left ast.Expr) ast.Expr {
	p.nextToken()
	pat := p.parsePattern()
	return &ast.IsExpr{ExprBase: eb(span2(left.Span(), pat.Span())), Scrutinee: left, Pattern: pat}
}

func (p *Parser) parseRange(left ast.Expr) ast.Expr {
	inclusive := false
	if p.peekIs(token.Equal) {
		inclusive = true
		p.nextToken()
	}
	var end ast.Expr
	if !p.peekIs(token.RBrace) && !p.peekIs(token.RBracket) && !p.peekIs(token.RParen) &&
		!p.peekIs(token.Comma) && !p.peekIs(token.Semicolon) {
		p.nextToken()
		end = p.parseExpr(precRange)
	}
	sp := left.Span()
	if end != nil {
		sp = span2(left.Span(), end.Span())
	}
	return &ast.RangeExpr{ExprBase: eb(sp), Start: left, End: end, Inclusive: inclusive}
}

func (p *Parser) parseMemberOrPostfix(left ast.Expr) ast.Expr {
	p.nextToken()
	name := p.cur.Text
	var tyArgs []ast.TypeHint
	if p.peekIs(token.Lt) && p.looksLikeTypeArgs() {
		p.nextToken()
		tyArgs = p.parseTypeArgList()
	}
	return &ast.MemberExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Source: left, Member: name, TyArgs: tyArgs}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	var args []ast.Arg
	for !p.peekIs(token.RParen) {
		p.nextToken()
		if p.curIs(token.RParen) {
			break
		}
		label := ""
		if p.curIs(token.Ident) && p.peekIs(token.Colon) {
			label = p.cur.Text
			p.nextToken()
			p.nextToken()
		}
		args = append(args, ast.Arg{Label: label, Value: p.parseExpr(precAssign)})
		if p.peekIs(token.Comma) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RParen)
	return &ast.CallExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Callee: left, Args: args}
}

func (p *Parser) parseSubscript(left ast.Expr) ast.Expr {
	p.nextToken()
	idx := p.parseExpr(precLowest)
	p.expect(token.RBracket)
	return &ast.SubscriptExpr{ExprBase: eb(span2(left.Span(), p.cur.Span)), Callee: left, Args: []ast.Expr{idx}}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.cur.Span
	if p.peekIs(token.RParen) {
		p.nextToken()
		return &ast.VoidExpr{ExprBase: eb(span2(start, p.cur.Span))}
	}
	p.nextToken()
	first := p.parseExpr(precLowest)
	if p.peekIs(token.Comma) {
		elems := []ast.Expr{first}
		for p.peekIs(token.Comma) {
			p.nextToken()
			if p.peekIs(token.RParen) {
				break
			}
			p.nextToken()
			elems = append(elems, p.parseExpr(precAssign))
		}
		p.expect(token.RParen)
		return &ast.TupleExpr{ExprBase: eb(span2(start, p.cur.Span)), Elems: elems}
	}
	p.expect(token.RParen)
	return first
}

func (p *Parser) parseArrayExpr() ast.Expr {
	start := p.cur.Span
	if p.peekIs(token.RBracket) {
		p.nextToken()
		return &ast.ArrayExpr{ExprBase: eb(span2(start, p.cur.Span))}
	}
	p.nextToken()
	first := p.parseExpr(precAssign)
	if p.peekIs(token.Semicolon) {
		p.nextToken()
		p.nextToken()
		count := p.parseExpr(precAssign)
		p.expect(token.RBracket)
		return &ast.ArrayWithInitExpr{ExprBase: eb(span2(start, p.cur.Span)), Init: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.peekIs(token.Comma) {
		p.nextToken()
		if p.peekIs(token.RBracket) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseExpr(precAssign))
	}
	p.expect(token.RBracket)
	return &ast.ArrayExpr{ExprBase: eb(span2(start, p.cur.Span)), Elems: elems}
}

func (p *Parser) parseBlockExprPrefix() ast.Expr {
	start := p.cur.Span
	var stmts []ast.Stmt
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBrace)
	return &ast.BlockExpr{ExprBase: eb(span2(start, p.cur.Span)), Stmts: stmts}
}

func blockStmts(e ast.Expr) []ast.Stmt {
	if b, ok := e.(*ast.BlockExpr); ok {
		return b.Stmts
	}
	return nil
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	cond := p.parseExpr(precLowest)
	p.expect(token.LBrace)
	then := p.parseBlockExprPrefix()
	var els ast.Expr
	if p.peekIs(token.KwElse) {
		p.nextToken()
		if p.peekIs(token.KwIf) {
			p.nextToken()
			els = p.parseIfExpr()
		} else {
			p.expect(token.LBrace)
			els = p.parseBlockExprPrefix()
		}
	}
	return &ast.IfExpr{ExprBase: eb(span2(start, p.cur.Span)), Cond: cond, IfBranch: then, ElseBranch: els}
}

func (p *Parser) parseLoopExpr() ast.Expr {
	start := p.cur.Span
	p.expect(token.LBrace)
	body := p.parseBlockExprPrefix()
	return &ast.LoopExpr{ExprBase: eb(span2(start, p.cur.Span)), Body: blockStmts(body)}
}

func (p *Parser) parseWhileExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	cond := p.parseExpr(precLowest)
	p.expect(token.LBrace)
	body := p.parseBlockExprPrefix()
	return &ast.LoopExpr{ExprBase: eb(span2(start, p.cur.Span)), Cond: cond, Body: blockStmts(body)}
}

func (p *Parser) parseForExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	pat := p.parsePattern()
	if !p.expect(token.KwIn) {
		return nil
	}
	p.nextToken()
	iter := p.parseExpr(precLowest)
	p.expect(token.LBrace)
	body := p.parseBlockExprPrefix()
	return &ast.ForExpr{ExprBase: eb(span2(start, p.cur.Span)), Pattern: pat, Iter: iter, Body: blockStmts(body)}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	scrutinee := p.parseExpr(precLowest)
	p.expect(token.LBrace)
	var arms []ast.MatchArm
	for !p.peekIs(token.RBrace) && !p.peekIs(token.EOF) {
		p.nextToken()
		pat := p.parsePattern()
		var guard ast.Expr
		if p.peekIs(token.KwIf) {
			p.nextToken()
			p.nextToken()
			guard = p.parseExpr(precLowest)
		}
		p.expect(token.FatArrow)
		p.nextToken()
		body := p.parseExpr(precAssign)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		if p.peekIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RBrace)
	return &ast.MatchExpr{ExprBase: eb(span2(start, p.cur.Span)), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseReturnExpr() ast.Expr {
	start := p.cur.Span
	var val ast.Expr
	if !p.peekIs(token.Semicolon) && !p.peekIs(token.RBrace) {
		p.nextToken()
		val = p.parseExpr(precLowest)
	}
	sp := start
	if val != nil {
		sp = span2(start, val.Span())
	}
	return &ast.ReturnExpr{ExprBase: eb(sp), Value: val}
}

func (p *Parser) parseYieldExpr() ast.Expr {
	start := p.cur.Span
	p.nextToken()
	val := p.parseExpr(precLowest)
	return &ast.YieldExpr{ExprBase: eb(span2(start, val.Span())), Value: val}
}

func (p *Parser) parseBreakExpr() ast.Expr {
	start := p.cur.Span
	var val ast.Expr
	if !p.peekIs(token.Semicolon) && !p.peekIs(token.RBrace) {
		p.nextToken()
		val = p.parseExpr(precLowest)
	}
	sp := start
	if val != nil {
		sp = span2(start, val.Span())
	}
	return &ast.BreakExpr{ExprBase: eb(sp), Value: val}
}

func (p *Parser) parseUnsafeExpr() ast.Expr {
	start := p.cur.Span
	p.expect(token.LBrace)
	body := p.parseBlockExprPrefix()
	return &ast.UnsafeExpr{ExprBase: eb(span2(start, p.cur.Span)), Body: body}
}
