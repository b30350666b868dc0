package types

import "testing"

func TestAnonStructInterningIsOrderIndependent(t *testing.T) {
	in := NewInterner()
	a := in.AnonStruct([]AnonField{{Name: "x", Ty: Prim(F64)}, {Name: "y", Ty: Prim(F64)}})
	b := in.AnonStruct([]AnonField{{Name: "y", Ty: Prim(F64)}, {Name: "x", Ty: Prim(F64)}})
	if !Equal(a, b) {
		t.Fatalf("expected interned anon structs to be equal regardless of field order")
	}
}

func TestFillTemplatesSubstitutesGenericParam(t *testing.T) {
	generic := Slice{Elem: TypeParamRef{Name: "T"}}
	got := FillTemplates(generic, Subst{"T": Int{Bits: 32}})
	want := Slice{Elem: Int{Bits: 32}}
	if !Equal(got, want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestStripReferencesCountsLayers(t *testing.T) {
	ty := Ptr{Inner: MutPtr{Inner: Prim(Bool)}}
	inner, n := StripReferences(ty)
	if n != 2 || !Equal(inner, Prim(Bool)) {
		t.Fatalf("got %s depth %d", inner, n)
	}
}

func TestAsOptionInnerAndStripOptions(t *testing.T) {
	opt := User{Name: "option", Args: []Type{User{Name: "option", Args: []Type{Prim(Char)}}}}
	inner, ok := AsOptionInner(opt)
	if !ok {
		t.Fatal("expected option<option<char>> to unwrap once")
	}
	if _, ok := AsOptionInner(inner); !ok {
		t.Fatal("expected the inner layer to still be an option")
	}
	if got := StripOptions(opt); !Equal(got, Prim(Char)) {
		t.Fatalf("StripOptions should reach char, got %s", got)
	}
}

func TestIntegerStats(t *testing.T) {
	st, ok := IntegerStats(Uint{Bits: 8})
	if !ok || st.Bits != 8 || st.Signed {
		t.Fatalf("unexpected stats: %#v ok=%v", st, ok)
	}
}

func TestUserTypeEqualityRequiresSameArgs(t *testing.T) {
	a := User{Id: 1, Name: "Vec", Args: []Type{Int{Bits: 32}}}
	b := User{Id: 1, Name: "Vec", Args: []Type{Int{Bits: 64}}}
	if Equal(a, b) {
		t.Fatal("Vec<i32> and Vec<i64> must not be equal")
	}
}
