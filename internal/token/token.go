// Package token defines the lexical token kinds the lexer produces and the
// parser consumes. External collaborator per spec.md §6.
package token

import "github.com/delta229/ctl/internal/ast"

type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	Char

	// Keywords
	KwFn
	KwStruct
	KwUnion
	KwUnsafeUnion
	KwTrait
	KwExtension
	KwImpl
	KwFor
	KwMod
	KwUse
	KwLet
	KwMut
	KwStatic
	KwPub
	KwIf
	KwElse
	KwLoop
	KwWhile
	KwDo
	KwMatch
	KwReturn
	KwYield
	KwBreak
	KwContinue
	KwUnsafe
	KwAsync
	KwExtern
	KwAs
	KwAsBang
	KwIs
	KwIn
	KwTrue
	KwFalse
	KwVoid
	KwNull
	KwThis
	KwMutThis
	KwRaw
	KwDyn
	KwSuper
	KwRoot
	KwSizeof

	// Punctuation / operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	ColonColon
	Semicolon
	Dot
	DotDotDot
	Arrow    // ->
	FatArrow // =>
	Question
	QuestionQuestion
	Exclamation
	Amp
	AmpAmp
	Pipe
	PipePipe
	Caret
	Plus
	Minus
	Star
	Slash
	Percent
	Shl
	Shr
	Lt
	Gt
	LtEqual
	GtEqual
	EqualEqual
	BangEqual
	Equal
	PlusEqual
	MinusEqual
	StarEqual
	SlashEqual
	PercentEqual
	AmpEqual
	PipeEqual
	CaretEqual
	ShlEqual
	ShrEqual
	QuestionQuestionEqual
	PlusPlus
	MinusMinus
	At // @attribute
)

var keywords = map[string]Kind{
	"fn": KwFn, "struct": KwStruct, "union": KwUnion, "trait": KwTrait,
	"extension": KwExtension, "impl": KwImpl, "for": KwFor, "mod": KwMod,
	"use": KwUse, "let": KwLet, "mut": KwMut, "static": KwStatic, "pub": KwPub,
	"if": KwIf, "else": KwElse, "loop": KwLoop, "while": KwWhile, "do": KwDo,
	"match": KwMatch, "return": KwReturn, "yield": KwYield, "break": KwBreak,
	"continue": KwContinue, "unsafe": KwUnsafe, "async": KwAsync,
	"extern": KwExtern, "as": KwAs, "is": KwIs, "in": KwIn,
	"true": KwTrue, "false": KwFalse, "void": KwVoid, "null": KwNull,
	"this": KwThis, "raw": KwRaw, "dyn": KwDyn, "super": KwSuper,
	"root": KwRoot, "sizeof": KwSizeof,
}

func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Token is one lexed token, located at a span and (for Ident/Int/Float/
// String/Char) carrying its literal text.
type Token struct {
	Kind Kind
	Text string
	Span ast.Span
}
