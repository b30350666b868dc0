package emitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/delta229/ctl/internal/types"
)

// typeName renders ty in "prefix" position — legal anywhere a declarator
// isn't needed (return types, cast targets, struct field types whose name
// comes from the caller via declare). Arrays must go through declare,
// since C's array syntax is postfix on the variable name, not the type.
func (e *Emitter) typeName(ty types.Type) string {
	switch t := ty.(type) {
	case types.Primitive:
		return primC(t.Kind)
	case types.Int:
		return e.intC(t.Bits, true)
	case types.Uint:
		return e.intC(t.Bits, false)
	case types.Ptr:
		return "const " + e.typeName(t.Inner) + " *"
	case types.MutPtr:
		return e.typeName(t.Inner) + " *"
	case types.RawPtr:
		return e.typeName(t.Inner) + " *"
	case types.Slice:
		return e.sliceStruct(t)
	case types.Array:
		return e.typeName(t.Elem) // caller must use declare() for the [N] suffix
	case types.Tuple:
		return e.tupleStruct(t)
	case types.AnonStruct:
		return e.anonStruct(t)
	case types.User:
		if t.Name == "option" && len(t.Args) == 1 {
			return e.optionStruct(t.Args[0])
		}
		return mangle(t.Name)
	case types.FnPtr:
		return e.fnPtrC(t, "")
	case types.TypeParamRef:
		return "void *" // unmonomorphized generic parameter
	case types.TraitSelf:
		return "void *"
	case types.Unknown, types.Unresolved:
		panic("emitter: Type::Unresolved/{unknown} reached codegen — spec.md §3 invariant violated")
	}
	return "void"
}

// declare renders "TYPE name" (or, for arrays/function pointers, the
// correct postfix/parenthesized C declarator form).
func (e *Emitter) declare(name string, ty types.Type) string {
	switch t := ty.(type) {
	case types.Array:
		return fmt.Sprintf("%s %s[%d]", e.typeName(t.Elem), name, t.Len)
	case types.FnPtr:
		return e.fnPtrC(t, name)
	default:
		return e.typeName(ty) + " " + name
	}
}

func primC(k types.PrimKind) string {
	switch k {
	case types.Void, types.Never:
		return "void"
	case types.Bool:
		return "uint8_t"
	case types.Char:
		return "uint32_t" // ctl Char is a 21-bit Unicode scalar, not a C char
	case types.F32:
		return "float"
	case types.F64:
		return "double"
	case types.Isize:
		return "intptr_t"
	case types.Usize:
		return "size_t"
	case types.CInt:
		return "int"
	case types.CUint:
		return "unsigned int"
	case types.CVoid:
		return "void"
	}
	return "void"
}

// intC picks a concrete C integer type for an Int/Uint's bit width. Powers
// of two map onto the fixed-width stdint.h types; a non-power-of-two width
// (e.g. `u24`) needs C23's `_BitInt(N)` — unless --no-bit-int is set, in
// which case spec.md §6 requires restricting to the nearest power-of-two
// width instead of emitting the extension.
func (e *Emitter) intC(bits int, signed bool) string {
	switch bits {
	case 8, 16, 32, 64:
		if signed {
			return fmt.Sprintf("int%d_t", bits)
		}
		return fmt.Sprintf("uint%d_t", bits)
	}
	if e.opts.NoBitInt {
		w := nearestPow2(bits)
		if signed {
			return fmt.Sprintf("int%d_t", w)
		}
		return fmt.Sprintf("uint%d_t", w)
	}
	if signed {
		return fmt.Sprintf("_BitInt(%d)", bits)
	}
	return fmt.Sprintf("unsigned _BitInt(%d)", bits)
}

func nearestPow2(n int) int {
	for _, w := range []int{8, 16, 32, 64, 128} {
		if n <= w {
			return w
		}
	}
	return 128
}

// sliceStruct/tupleStruct/anonStruct lazily emit (and memoize, by structural
// key) an anonymous-in-ctl, named-in-C struct the first time a given shape
// is referenced — mirroring spec.md §3's structural interning of anonymous
// struct/tuple types, but realized as C structs rather than interned Type
// values.
func (e *Emitter) sliceStruct(t types.Slice) string {
	key := "slice$" + t.Elem.String()
	if name, ok := e.tupleNames[key]; ok {
		return name
	}
	name := fmt.Sprintf("ctl_slice_%d", len(e.tupleNames))
	e.tupleNames[key] = name
	elemTy := e.typeName(t.Elem)
	fmt.Fprintf(&e.buf, "typedef struct %s { %s *ptr; size_t len; } %s;\n\n", name, elemTy, name)
	return name
}

func (e *Emitter) tupleStruct(t types.Tuple) string {
	key := "tuple$" + t.String()
	if name, ok := e.tupleNames[key]; ok {
		return name
	}
	name := fmt.Sprintf("ctl_tuple_%d", len(e.tupleNames))
	e.tupleNames[key] = name
	var fields strings.Builder
	for i, elem := range t.Elems {
		fmt.Fprintf(&fields, " %s;", e.declare(fmt.Sprintf("_%d", i), elem))
	}
	fmt.Fprintf(&e.buf, "typedef struct %s {%s } %s;\n\n", name, fields.String(), name)
	return name
}

func (e *Emitter) anonStruct(t types.AnonStruct) string {
	fs := append([]types.AnonField(nil), t.Fields...)
	sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
	key := "anon$" + t.String()
	if name, ok := e.tupleNames[key]; ok {
		return name
	}
	name := fmt.Sprintf("ctl_anon_%d", len(e.tupleNames))
	e.tupleNames[key] = name
	var fields strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&fields, " %s;", e.declare(f.Name, f.Ty))
	}
	fmt.Fprintf(&e.buf, "typedef struct %s {%s } %s;\n\n", name, fields.String(), name)
	return name
}

// optionStruct lazily emits (and memoizes, per concrete inner type) the C
// struct backing ctl's `option<T>` lang item. option<T> is never pushed
// through declareStruct/declareUnion — it's a virtual types.User recognized
// structurally (internal/types/algebra.go's AsOptionInner) rather than a
// declared UserTypeRecord — so emitUserTypes never sees it; this is the
// emitter's own synthesis of the same shape, keyed the same way
// sliceStruct/tupleStruct/anonStruct memoize their synthesized structs. The
// `has_value`/`value` field names are load-bearing: binary()'s `??` and
// unary()'s Unwrap/Try lowerings (expr.go) read them directly.
func (e *Emitter) optionStruct(inner types.Type) string {
	key := "option$" + inner.String()
	if name, ok := e.tupleNames[key]; ok {
		return name
	}
	name := fmt.Sprintf("ctl_option_%d", len(e.tupleNames))
	e.tupleNames[key] = name
	innerTy := e.typeName(inner)
	fmt.Fprintf(&e.buf, "typedef struct %s { uint8_t has_value; %s value; } %s;\n\n", name, innerTy, name)
	return name
}

func (e *Emitter) fnPtrC(t types.FnPtr, name string) string {
	var params strings.Builder
	if len(t.Params) == 0 {
		params.WriteString("void")
	}
	for i, p := range t.Params {
		if i > 0 {
			params.WriteString(", ")
		}
		params.WriteString(e.typeName(p))
	}
	return fmt.Sprintf("%s (*%s)(%s)", e.typeName(t.Ret), name, params.String())
}
