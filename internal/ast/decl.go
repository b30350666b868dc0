package ast

// TypeParam is a generic parameter's parsed spelling: a name plus its
// bound list (trait paths it must implement).
type TypeParam struct {
	Name  string
	Sp    Span
	Bounds []TypePath
}

// Param is one function parameter, including the synthetic `this`/`mut this`
// receiver which is represented as a Param whose Ty is ThisTypeHint/MutThisTypeHint.
type Param struct {
	Sp      Span
	Mutable bool
	Keyword bool
	Pattern Pattern
	Ty      TypeHint
	Default Expr // nil if absent
}

// FnDecl is a function signature, shared by free functions, methods, trait
// method declarations, and extension methods.
type FnDecl struct {
	Sp         Span
	Attrs      []Attribute
	Public     bool
	Name       string
	NameSpan   Span
	IsAsync    bool
	IsUnsafe   bool
	Linkage    Linkage
	Variadic   bool
	TypeParams []TypeParam
	Params     []Param
	Ret        TypeHint // nil if elided (-> Void)
}

// Linkage mirrors spec.md §3 Function.linkage: {Internal, Import(extern), Export}.
type Linkage int

const (
	LinkInternal Linkage = iota
	LinkImport
	LinkExport
)

// MemberDecl is one struct/union member declaration.
type MemberDecl struct {
	Public  bool
	Shared  bool // union-only: a member present on every variant
	Name    string
	NameSpan Span
	Ty      TypeHint
	Default Expr // nil if absent; feeds the synthesized constructor's default
}

// StructDecl covers struct bodies, and doubles as the shared base of a
// tagged union's per-variant payload record (spec.md §4.4 point 2-3) and of
// anonymous struct literals (AnonTypeHint.Decl).
type StructDecl struct {
	Sp         Span
	Public     bool
	Name       string
	NameSpan   Span
	Attrs      []Attribute
	TypeParams []TypeParam
	Members    []MemberDecl
	Impls      []TypePath
	Functions  []FnStmt
	Packed     bool // `packed struct`: members must be int/empty-union typed
}

// UnionVariant is one tagged-union arm: a name plus an optional payload,
// which is either a tuple-like list of types or an inline anonymous struct.
type UnionVariant struct {
	Name       string
	NameSpan   Span
	TupleTypes []TypeHint  // tuple-like payload
	Fields     []MemberDecl // struct-like payload
	HasPayload bool
}

type UnionDecl struct {
	Sp       Span
	Unsafe   bool
	Shared   []MemberDecl // members common to every variant
	Variants []UnionVariant
	Base     StructDecl // carries Name/TypeParams/Impls/Functions/Attrs
}

type TraitDecl struct {
	Sp         Span
	Public     bool
	Name       string
	NameSpan   Span
	TypeParams []TypeParam
	SuperTraits []TypePath
	Functions  []FnDecl
}

// UserTypeDecl is the union of every named user-type kind C4 can declare.
// Exactly one field is non-nil, selected by Kind.
type UserTypeDecl struct {
	Sp    Span
	Kind  UserTypeKind
	Struct *StructDecl
	Union  *UnionDecl
	Trait  *TraitDecl
}

type UserTypeKind int

const (
	KindStruct UserTypeKind = iota
	KindUnion
	KindUnsafeUnion
	KindTrait
)
