package ast

// TypeHint is the parsed, not-yet-resolved spelling of a type. C4 plants
// these verbatim inside Type::Unresolved stubs (spec.md §3); C6 resolves
// them on demand via resolve_typehint.
type TypeHint interface {
	Node
	typeHintNode()
}

type ThBase struct{ Sp Span }

func (t ThBase) Span() Span     { return t.Sp }
func (ThBase) typeHintNode() {}

// NamedTypeHint is `path<ty_args>`, optionally `dyn`-qualified for trait
// objects reached through a pointer.
type NamedTypeHint struct {
	ThBase
	IsDyn bool
	Path  TypePath
}

type ArrayTypeHint struct {
	ThBase
	Elem  TypeHint
	Count Expr // const-eval'd length, nil if elided (`[T; _]` contexts)
}

type SliceTypeHint struct {
	ThBase
	Elem TypeHint
}

type TupleTypeHint struct {
	ThBase
	Elems []TypeHint
}

type MapTypeHint struct {
	ThBase
	Key, Value TypeHint
}

type OptionTypeHint struct {
	ThBase
	Inner TypeHint
}

// AnonTypeHint is an inline anonymous struct/union type literal.
type AnonTypeHint struct {
	ThBase
	Decl StructDecl
}

type RefTypeHint struct {
	ThBase
	Inner TypeHint
}

type RefMutTypeHint struct {
	ThBase
	Inner TypeHint
}

// RawPtrTypeHint is `*raw T`, only constructible/dereferenceable in an
// unsafe context (spec.md §4.6 Safety).
type RawPtrTypeHint struct {
	ThBase
	Inner TypeHint
}

type VoidTypeHint struct{ ThBase }

// ThisTypeHint / MutThisTypeHint are the implicit `this`/`mut this` receiver
// type written in a method's parameter list.
type ThisTypeHint struct{ ThBase }
type MutThisTypeHint struct{ ThBase }

// FnPtrTypeHint spells a function-pointer type: `fn(params): ret`.
type FnPtrTypeHint struct {
	ThBase
	Params []TypeHint
	Ret    TypeHint
}
