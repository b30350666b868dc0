// Package types is the type interner and algebra (C3): the Type sum type,
// structural interning for anonymous structs/tuples, and the small algebra
// of substitution/stripping helpers the checker (C6-C8) builds on. Grounded
// on original_source/src/ty.rs's Type enum and on the teacher's
// internal/typesystem package (funvibe-funxy), whose TCon/TApp/TFunc/TTuple/
// TRecord sum-via-interface shape is the direct model for Go's lack of
// algebraic sum types.
package types

import "fmt"

// Type is implemented by every concrete type node. Values are compared for
// identity with Equal, never with Go's == (structural types like Array/Ptr
// embed a Type field and must recurse).
type Type interface {
	isType()
	String() string
}

type base struct{}

func (base) isType() {}

// Primitive scalar kinds (spec.md §3 Type: Void, Never, Bool, Char, F32/F64,
// Int/Uint widths, Isize/Usize, CInt/CUint/CVoid).
type Primitive struct {
	base
	Kind PrimKind
}

type PrimKind int

const (
	Void PrimKind = iota
	Never
	Bool
	Char
	F32
	F64
	Isize
	Usize
	CInt
	CUint
	CVoid
)

var primNames = map[PrimKind]string{
	Void: "void", Never: "never", Bool: "bool", Char: "char", F32: "f32", F64: "f64",
	Isize: "isize", Usize: "usize", CInt: "c_int", CUint: "c_uint", CVoid: "c_void",
}

func (p Primitive) String() string { return primNames[p.Kind] }

func Prim(k PrimKind) Type { return Primitive{Kind: k} }

// Int/Uint carry an explicit bit width (8/16/32/64/128), distinct from the
// target-dependent Isize/Usize.
type Int struct {
	base
	Bits int
}

func (t Int) String() string { return fmt.Sprintf("i%d", t.Bits) }

type Uint struct {
	base
	Bits int
}

func (t Uint) String() string { return fmt.Sprintf("u%d", t.Bits) }

// Unknown is the inference placeholder produced by bidirectional checking
// before a hole is solved (spec.md §4.6 "cannot infer" diagnostic fires
// when one survives to the end of a function body).
type Unknown struct{ base }

func (Unknown) String() string { return "{unknown}" }

// Unresolved wraps a not-yet-resolved type-hint AST node; C6's
// resolve_typehint replaces it in place, idempotently, the first time
// something forces it (spec.md §4.6 "lazy type resolution").
type Unresolved struct {
	base
	Hint any // ast.TypeHint; `any` here avoids an import cycle with internal/ast
}

func (Unresolved) String() string { return "{unresolved}" }

// Ptr/MutPtr/RawPtr are ctl's three pointer flavors: shared, exclusive, and
// unsafe-only raw (spec.md §4.6 Safety).
type Ptr struct {
	base
	Inner Type
}

func (t Ptr) String() string { return "*" + t.Inner.String() }

type MutPtr struct {
	base
	Inner Type
}

func (t MutPtr) String() string { return "*mut " + t.Inner.String() }

type RawPtr struct {
	base
	Inner Type
}

func (t RawPtr) String() string { return "*raw " + t.Inner.String() }

type Array struct {
	base
	Elem Type
	Len  int
}

func (t Array) String() string { return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len) }

type Slice struct {
	base
	Elem Type
	Mut  bool
}

func (t Slice) String() string {
	if t.Mut {
		return "[" + t.Elem.String() + "]mut"
	}
	return "[" + t.Elem.String() + "]"
}

type Tuple struct {
	base
	Elems []Type
}

func (t Tuple) String() string {
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

// AnonStruct is a structurally-interned anonymous struct type: two anon
// structs with the same field set (name+type, order-independent) are the
// same Type value (spec.md §3 "anonymous struct/tuple interning").
type AnonStruct struct {
	base
	Fields []AnonField
}

type AnonField struct {
	Name string
	Ty   Type
}

func (t AnonStruct) String() string {
	s := "{"
	for i, f := range t.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Ty.String()
	}
	return s + "}"
}

// User references a declared struct/union by id, with any generic
// arguments already substituted in (spec.md §3 Type::User).
type User struct {
	base
	Id     uint32 // scope.UserTypeId; kept untyped to avoid an import cycle
	Name   string
	Args   []Type
}

func (t User) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	s := t.Name + "<"
	for i, a := range t.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

type FnPtr struct {
	base
	Params []Type
	Ret    Type
}

func (t FnPtr) String() string {
	s := "fn("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + "): " + t.Ret.String()
}

// TraitSelf stands for `This` inside a trait/extension body before
// this_type_of substitutes the concrete implementer (SPEC_FULL.md §12).
type TraitSelf struct{ base }

func (TraitSelf) String() string { return "This" }

// TypeParamRef is a reference to a function/type's own generic parameter,
// substituted away by fill_templates once concrete arguments are known.
type TypeParamRef struct {
	base
	Name string
}

func (t TypeParamRef) String() string { return t.Name }
