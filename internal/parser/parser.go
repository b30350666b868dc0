// Package parser builds an AST from a token stream. External collaborator
// per spec.md §6. A Pratt (precedence-climbing) expression parser in the
// shape of the teacher's internal/parser (cur/peek token pair,
// prefix/infixParseFns keyed by token kind, a precedence table consulted by
// parseExpression), adapted from funxy's significant-newline grammar to
// ctl's brace-and-semicolon grammar (original_source/src/parser.rs).
package parser

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/token"
)

const (
	_ int = iota
	precLowest
	precAssign     // = += -= ...
	precRange      // ... ...=
	precLogicalOr  // ||
	precLogicalAnd // &&
	precEquality   // == !=
	precCompare    // < > <= >=
	precBitOr      // |
	precBitXor     // ^
	precBitAnd     // &
	precShift      // << >>
	precAdd        // + -
	precMul        // * / %
	precCoalesce   // ??
	precCast       // as as! is
	precUnary      // ! - * & &mut ++ --
	precPostfix    // . () [] ? postfix ++/--
)

var precedences = map[token.Kind]int{
	token.Equal: precAssign, token.PlusEqual: precAssign, token.MinusEqual: precAssign,
	token.StarEqual: precAssign, token.SlashEqual: precAssign, token.PercentEqual: precAssign,
	token.AmpEqual: precAssign, token.PipeEqual: precAssign, token.CaretEqual: precAssign,
	token.ShlEqual: precAssign, token.ShrEqual: precAssign, token.QuestionQuestionEqual: precAssign,

	token.DotDotDot: precRange,

	token.PipePipe: precLogicalOr,
	token.AmpAmp:   precLogicalAnd,

	token.EqualEqual: precEquality, token.BangEqual: precEquality,

	token.Lt: precCompare, token.Gt: precCompare, token.LtEqual: precCompare, token.GtEqual: precCompare,

	token.Pipe:  precBitOr,
	token.Caret:  precBitXor,
	token.Amp:    precBitAnd,
	token.Shl:    precShift, token.Shr: precShift,
	token.Plus: precAdd, token.Minus: precAdd,
	token.Star: precMul, token.Slash: precMul, token.Percent: precMul,

	token.QuestionQuestion: precCoalesce,
	token.KwAs:             precCast, token.KwAsBang: precCast, token.KwIs: precCast,

	token.Dot: precPostfix, token.LParen: precPostfix, token.LBracket: precPostfix,
	token.Question: precPostfix, token.PlusPlus: precPostfix, token.MinusMinus: precPostfix,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parser holds a read-only token slice (the lexer already materialized the
// whole stream; no I/O happens during parsing) plus the cur/peek pair the
// Pratt mechanics consult.
type Parser struct {
	toks       []token.Token
	pos        int
	cur, peek  token.Token
	file       ast.FileId
	sink       *diag.Sink
	prefixFns  map[token.Kind]prefixParseFn
	infixFns   map[token.Kind]infixParseFn
}

func New(toks []token.Token, file ast.FileId, sink *diag.Sink) *Parser {
	p := &Parser{toks: toks, file: file, sink: sink}
	p.prefixFns = make(map[token.Kind]prefixParseFn)
	p.infixFns = make(map[token.Kind]infixParseFn)
	p.registerExprFns()
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	if p.pos < len(p.toks) {
		p.peek = p.toks[p.pos]
		p.pos++
	} else {
		p.peek = token.Token{Kind: token.EOF}
	}
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) expect(k token.Kind) bool {
	if p.peekIs(k) {
		p.nextToken()
		return true
	}
	p.sink.Error(diag.NotValidHere(p.peek.Text, p.peek.Span))
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return precLowest
}

// ParseProgram parses the whole token stream into a Program — the parser's
// single external entry point (spec.md §6).
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	for !p.curIs(token.EOF) {
		if stmt := p.parseStmt(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.nextToken()
	}
	return prog
}
