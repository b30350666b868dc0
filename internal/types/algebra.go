package types

import "sort"

// Interner deduplicates structural types (anonymous structs and tuples) so
// two occurrences of the same shape compare Equal by identity-free
// structural comparison — mirrors original_source/src/ty.rs's
// anon-struct/tuple interning cache, adapted to Go via a string-keyed map
// since Go types can't be map keys when they contain slices.
type Interner struct {
	anon  map[string]AnonStruct
	tuple map[string]Tuple
}

func NewInterner() *Interner {
	return &Interner{anon: make(map[string]AnonStruct), tuple: make(map[string]Tuple)}
}

func (in *Interner) AnonStruct(fields []AnonField) AnonStruct {
	sorted := append([]AnonField(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	key := ""
	for _, f := range sorted {
		key += f.Name + ":" + f.Ty.String() + ";"
	}
	if existing, ok := in.anon[key]; ok {
		return existing
	}
	v := AnonStruct{Fields: sorted}
	in.anon[key] = v
	return v
}

func (in *Interner) Tuple(elems []Type) Tuple {
	key := ""
	for _, e := range elems {
		key += e.String() + ","
	}
	if existing, ok := in.tuple[key]; ok {
		return existing
	}
	v := Tuple{Elems: elems}
	in.tuple[key] = v
	return v
}

// Equal does structural comparison; two User types are equal only if they
// share an id and have pairwise-equal type arguments (spec.md §4.6).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case Int:
		bt, ok := b.(Int)
		return ok && at.Bits == bt.Bits
	case Uint:
		bt, ok := b.(Uint)
		return ok && at.Bits == bt.Bits
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case Ptr:
		bt, ok := b.(Ptr)
		return ok && Equal(at.Inner, bt.Inner)
	case MutPtr:
		bt, ok := b.(MutPtr)
		return ok && Equal(at.Inner, bt.Inner)
	case RawPtr:
		bt, ok := b.(RawPtr)
		return ok && Equal(at.Inner, bt.Inner)
	case Array:
		bt, ok := b.(Array)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case Slice:
		bt, ok := b.(Slice)
		return ok && at.Mut == bt.Mut && Equal(at.Elem, bt.Elem)
	case Tuple:
		bt, ok := b.(Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !Equal(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case AnonStruct:
		bt, ok := b.(AnonStruct)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if at.Fields[i].Name != bt.Fields[i].Name || !Equal(at.Fields[i].Ty, bt.Fields[i].Ty) {
				return false
			}
		}
		return true
	case User:
		bt, ok := b.(User)
		if !ok || at.Id != bt.Id || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case FnPtr:
		bt, ok := b.(FnPtr)
		if !ok || len(at.Params) != len(bt.Params) || !Equal(at.Ret, bt.Ret) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case TraitSelf:
		_, ok := b.(TraitSelf)
		return ok
	case TypeParamRef:
		bt, ok := b.(TypeParamRef)
		return ok && at.Name == bt.Name
	}
	return false
}

// Subst maps generic parameter names to concrete types.
type Subst map[string]Type

// FillTemplates substitutes every TypeParamRef according to sub, recursing
// into compound types. Grounded on spec.md §4.8 "fill_templates" — the
// monomorphization substitution applied when a generic function/type is
// instantiated with concrete arguments.
func FillTemplates(t Type, sub Subst) Type {
	switch tt := t.(type) {
	case TypeParamRef:
		if r, ok := sub[tt.Name]; ok {
			return r
		}
		return t
	case Ptr:
		return Ptr{Inner: FillTemplates(tt.Inner, sub)}
	case MutPtr:
		return MutPtr{Inner: FillTemplates(tt.Inner, sub)}
	case RawPtr:
		return RawPtr{Inner: FillTemplates(tt.Inner, sub)}
	case Array:
		return Array{Elem: FillTemplates(tt.Elem, sub), Len: tt.Len}
	case Slice:
		return Slice{Elem: FillTemplates(tt.Elem, sub), Mut: tt.Mut}
	case Tuple:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = FillTemplates(e, sub)
		}
		return Tuple{Elems: elems}
	case AnonStruct:
		fields := make([]AnonField, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = AnonField{Name: f.Name, Ty: FillTemplates(f.Ty, sub)}
		}
		return AnonStruct{Fields: fields}
	case User:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = FillTemplates(a, sub)
		}
		return User{Id: tt.Id, Name: tt.Name, Args: args}
	case FnPtr:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = FillTemplates(p, sub)
		}
		return FnPtr{Params: params, Ret: FillTemplates(tt.Ret, sub)}
	default:
		return t
	}
}

// FillThis substitutes every TraitSelf occurrence with concrete — used when
// entering an extension/trait-impl body to give `This` its real meaning
// (spec.md §4.8, SPEC_FULL.md §12 "this_type_of").
func FillThis(t Type, concrete Type) Type {
	switch tt := t.(type) {
	case TraitSelf:
		return concrete
	case Ptr:
		return Ptr{Inner: FillThis(tt.Inner, concrete)}
	case MutPtr:
		return MutPtr{Inner: FillThis(tt.Inner, concrete)}
	case RawPtr:
		return RawPtr{Inner: FillThis(tt.Inner, concrete)}
	case Array:
		return Array{Elem: FillThis(tt.Elem, concrete), Len: tt.Len}
	case Slice:
		return Slice{Elem: FillThis(tt.Elem, concrete), Mut: tt.Mut}
	case Tuple:
		elems := make([]Type, len(tt.Elems))
		for i, e := range tt.Elems {
			elems[i] = FillThis(e, concrete)
		}
		return Tuple{Elems: elems}
	case User:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = FillThis(a, concrete)
		}
		return User{Id: tt.Id, Name: tt.Name, Args: args}
	default:
		return t
	}
}

// StripReferences peels Ptr/MutPtr layers to reach the pointee, returning
// the number of layers removed (spec.md §4.6 "auto-deref for member
// access/method calls").
func StripReferences(t Type) (Type, int) {
	n := 0
	for {
		switch tt := t.(type) {
		case Ptr:
			t = tt.Inner
		case MutPtr:
			t = tt.Inner
		default:
			return t, n
		}
		n++
	}
}

// AutoDeref is StripReferences without the depth count, for call sites that
// only care about the pointee (spec.md §4.6 "auto_deref").
func AutoDeref(t Type) Type {
	u, _ := StripReferences(t)
	return u
}

const optionLangName = "option"

// AsOptionInner reports whether t is the `option<T>` lang item and, if so,
// returns T (spec.md §4.6 null-coalesce/`?` unwrap rely on this).
func AsOptionInner(t Type) (Type, bool) {
	u, ok := t.(User)
	if !ok || u.Name != optionLangName || len(u.Args) != 1 {
		return nil, false
	}
	return u.Args[0], true
}

// StripOptions repeatedly unwraps nested option<option<...<T>>> down to the
// innermost non-option T, mirroring original_source's handling of chained
// `??`/`?` coercions (spec.md §4.6).
func StripOptions(t Type) Type {
	for {
		inner, ok := AsOptionInner(t)
		if !ok {
			return t
		}
		t = inner
	}
}

// MatchedInnerType returns the scrutinee type a pattern actually matches
// against after stripping one option layer when the pattern itself is
// null/some-shaped — used by C7 before structural pattern comparison
// (spec.md §4.7).
func MatchedInnerType(scrutinee Type, patternIsOptionShaped bool) Type {
	if !patternIsOptionShaped {
		return scrutinee
	}
	if inner, ok := AsOptionInner(scrutinee); ok {
		return inner
	}
	return scrutinee
}

// IntegerStats reports the numeric bounds of an integer-ish type, used by
// const-eval range checks and truncating-cast warnings (spec.md §4.6,
// SPEC_FULL.md §12 "get_int_type_and_val").
type Stats struct {
	Bits     int
	Signed   bool
	IsFloat  bool
}

func IntegerStats(t Type) (Stats, bool) {
	switch tt := t.(type) {
	case Int:
		return Stats{Bits: tt.Bits, Signed: true}, true
	case Uint:
		return Stats{Bits: tt.Bits, Signed: false}, true
	case Primitive:
		switch tt.Kind {
		case Isize:
			return Stats{Bits: 64, Signed: true}, true
		case Usize:
			return Stats{Bits: 64, Signed: false}, true
		case CInt:
			return Stats{Bits: 32, Signed: true}, true
		case CUint:
			return Stats{Bits: 32, Signed: false}, true
		case Char:
			return Stats{Bits: 32, Signed: false}, true
		case F32:
			return Stats{Bits: 32, IsFloat: true}, true
		case F64:
			return Stats{Bits: 64, IsFloat: true}, true
		}
	}
	return Stats{}, false
}

// SupportsBinOp reports whether a binary operator is defined for two
// operand types without going through a trait (the arithmetic/bitwise/
// comparison operators ctl defines natively on numeric/bool/char types —
// spec.md §4.6 "check_binary" falls back to operator-trait lookup when
// this returns false).
func SupportsBinOp(opName string, left Type) bool {
	if _, ok := IntegerStats(left); ok {
		return true
	}
	if _, ok := left.(Primitive); ok {
		return opName == "==" || opName == "!=" || opName == "&&" || opName == "||"
	}
	return false
}

// Name renders a type for diagnostics (spec.md §4.6 "name").
func Name(t Type) string {
	if t == nil {
		return "{unknown}"
	}
	return t.String()
}
