package check

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// checkPattern is C7 (spec.md §4.7): it validates a pattern's shape against
// the scrutinee type it's matched against, reporting a diagnostic for an
// outright structural impossibility (e.g. a tuple pattern against a union
// type) without attempting to bind names — bindPattern/bindPatternVars
// handle binding separately so `is`-expressions (which only test, never
// bind into the surrounding scope) and match arms (which do) can share one
// checker.
func (c *Checker) checkPattern(p ast.Pattern, scrutinee types.Type, sc scope.ScopeId) {
	switch pt := p.(type) {
	case *ast.IdentPattern, *ast.WildcardPattern:
		// always matches
	case *ast.LiteralPattern:
		c.checkLiteralPattern(pt, scrutinee)
	case *ast.RangePattern:
		if _, ok := types.IntegerStats(scrutinee); !ok {
			c.Sink.Error(diag.MustBeIrrefutable(types.Name(scrutinee), pt.Sp))
		}
	case *ast.SomePattern:
		inner, ok := types.AsOptionInner(scrutinee)
		if !ok {
			c.Sink.Error(diag.TypeMismatch("option<_>", types.Name(scrutinee), pt.Sp))
			return
		}
		c.checkPattern(pt.Inner, inner, sc)
	case *ast.NullPattern:
		if _, ok := types.AsOptionInner(scrutinee); !ok {
			c.Sink.Error(diag.TypeMismatch("option<_>", types.Name(scrutinee), pt.Sp))
		}
	case *ast.VariantPattern:
		c.checkVariantPattern(pt, scrutinee, sc)
	case *ast.StructPattern:
		c.checkStructPattern(pt, scrutinee, sc)
	case *ast.TuplePattern:
		tup, ok := scrutinee.(types.Tuple)
		if !ok {
			c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
			return
		}
		for i, sub := range pt.Elems {
			if i < len(tup.Elems) {
				c.checkPattern(sub, tup.Elems[i], sc)
			}
		}
		if len(pt.Elems) != len(tup.Elems) {
			c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
		}
	case *ast.ArrayPattern:
		elem, ok := arrayLikeElem(scrutinee)
		if !ok {
			c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
			return
		}
		for _, sub := range pt.Elems {
			if _, isRest := sub.(*ast.RestPattern); isRest {
				continue
			}
			c.checkPattern(sub, elem, sc)
		}
	case *ast.RestPattern:
		// only valid nested inside an ArrayPattern; checked there
	}
}

func arrayLikeElem(t types.Type) (types.Type, bool) {
	switch tt := t.(type) {
	case types.Array:
		return tt.Elem, true
	case types.Slice:
		return tt.Elem, true
	}
	return nil, false
}

func (c *Checker) checkLiteralPattern(pt *ast.LiteralPattern, scrutinee types.Type) {
	switch pt.Kind {
	case ast.LitInt:
		if _, ok := types.IntegerStats(scrutinee); !ok {
			c.Sink.Error(diag.TypeMismatch("integer", types.Name(scrutinee), pt.Sp))
		}
	case ast.LitChar:
		if !types.Equal(scrutinee, types.Prim(types.Char)) {
			c.Sink.Error(diag.TypeMismatch("char", types.Name(scrutinee), pt.Sp))
		}
	case ast.LitBool:
		if !types.Equal(scrutinee, types.Prim(types.Bool)) {
			c.Sink.Error(diag.TypeMismatch("bool", types.Name(scrutinee), pt.Sp))
		}
	case ast.LitString:
		if _, ok := scrutinee.(types.Slice); !ok {
			c.Sink.Error(diag.TypeMismatch("str", types.Name(scrutinee), pt.Sp))
		}
	case ast.LitVoid:
		if !types.Equal(scrutinee, types.Prim(types.Void)) {
			c.Sink.Error(diag.TypeMismatch("void", types.Name(scrutinee), pt.Sp))
		}
	case ast.LitNull:
		if _, ok := types.AsOptionInner(scrutinee); !ok {
			c.Sink.Error(diag.TypeMismatch("option<_>", types.Name(scrutinee), pt.Sp))
		}
	}
}

func (c *Checker) checkVariantPattern(pt *ast.VariantPattern, scrutinee types.Type, sc scope.ScopeId) {
	ut, ok := scrutinee.(types.User)
	if !ok || ut.Id == 0 || int(ut.Id)-1 >= len(c.UserTypes) {
		c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
		return
	}
	rec := c.UserTypes[ut.Id-1]
	name := pt.Path.Last().Name
	if !rec.IsUnion {
		c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
		return
	}
	if _, ok := rec.Variants[name]; !ok {
		c.Sink.Error(diag.NoMember(rec.FullName, name, pt.Sp))
		return
	}
	variant := findVariant(rec, name)
	if variant == nil {
		return
	}
	for i, sub := range pt.TupleElems {
		if i < len(variant.TupleTypes) {
			c.checkPattern(sub, c.resolveTypeHint(variant.TupleTypes[i], sc), sc)
		}
	}
	for _, fp := range pt.Fields {
		if fp.Sub != nil {
			c.checkPattern(fp.Sub, c.fieldPatternType(variant, rec, fp.Name, sc), sc)
		}
	}
}

func findVariant(rec UserTypeRecord, name string) *ast.UnionVariant {
	if rec.Decl.Union == nil {
		return nil
	}
	for i := range rec.Decl.Union.Variants {
		if rec.Decl.Union.Variants[i].Name == name {
			return &rec.Decl.Union.Variants[i]
		}
	}
	return nil
}

func (c *Checker) fieldPatternType(variant *ast.UnionVariant, rec UserTypeRecord, name string, sc scope.ScopeId) types.Type {
	for _, f := range variant.Fields {
		if f.Name == name {
			return c.resolveTypeHint(f.Ty, sc)
		}
	}
	if t, ok := rec.MemberOf[name]; ok {
		return t
	}
	return types.Unknown{}
}

func (c *Checker) checkStructPattern(pt *ast.StructPattern, scrutinee types.Type, sc scope.ScopeId) {
	base := types.AutoDeref(scrutinee)
	if anon, ok := base.(types.AnonStruct); ok {
		for _, fp := range pt.Fields {
			for _, f := range anon.Fields {
				if f.Name == fp.Name && fp.Sub != nil {
					c.checkPattern(fp.Sub, f.Ty, sc)
				}
			}
		}
		return
	}
	ut, ok := base.(types.User)
	if !ok || ut.Id == 0 || int(ut.Id)-1 >= len(c.UserTypes) {
		c.Sink.Error(diag.BadDestructure(types.Name(scrutinee), pt.Sp))
		return
	}
	rec := c.UserTypes[ut.Id-1]
	for _, fp := range pt.Fields {
		mt, ok := rec.MemberOf[fp.Name]
		if !ok {
			c.Sink.Error(diag.NoMember(rec.FullName, fp.Name, pt.Sp))
			continue
		}
		if fp.Sub != nil {
			c.checkPattern(fp.Sub, mt, sc)
		}
	}
}

// bindPattern declares every name a pattern introduces as a fresh Variable
// in sc — used for `let` and `for` bindings, which are irrefutable
// (spec.md §4.7 "a let/for pattern must be irrefutable").
func (c *Checker) bindPattern(p ast.Pattern, ty types.Type, sc scope.ScopeId) {
	c.bindPatternVars(p, ty, sc)
}

// bindPatternVars walks p, declaring each IdentPattern/FieldPattern
// shorthand/RestPattern binding it introduces. Shared by match arms
// (refutable) and let/for bindings (irrefutable) — match's per-arm scope
// means re-declaring a name across arms is never a collision.
func (c *Checker) bindPatternVars(p ast.Pattern, ty types.Type, sc scope.ScopeId) {
	switch pt := p.(type) {
	case *ast.IdentPattern:
		vid := scope.VariableId(len(c.Variables) + 1)
		c.Variables = append(c.Variables, VariableRecord{Name: pt.Name, Ty: ty, Mutable: pt.Mutable, Scope: sc})
		c.Scopes.DeclareVariable(sc, pt.Name, vid, false)
	case *ast.SomePattern:
		if inner, ok := types.AsOptionInner(ty); ok {
			c.bindPatternVars(pt.Inner, inner, sc)
		}
	case *ast.VariantPattern:
		c.bindVariantPatternVars(pt, ty, sc)
	case *ast.StructPattern:
		c.bindStructPatternVars(pt, ty, sc)
	case *ast.TuplePattern:
		if tup, ok := ty.(types.Tuple); ok {
			for i, sub := range pt.Elems {
				if i < len(tup.Elems) {
					c.bindPatternVars(sub, tup.Elems[i], sc)
				}
			}
		}
	case *ast.ArrayPattern:
		elem, ok := arrayLikeElem(ty)
		if !ok {
			return
		}
		for _, sub := range pt.Elems {
			if rest, isRest := sub.(*ast.RestPattern); isRest {
				if rest.Name != "" {
					vid := scope.VariableId(len(c.Variables) + 1)
					restTy := types.Slice{Elem: elem, Mut: rest.Mutable}
					c.Variables = append(c.Variables, VariableRecord{Name: rest.Name, Ty: restTy, Mutable: rest.Mutable, Scope: sc})
					c.Scopes.DeclareVariable(sc, rest.Name, vid, false)
				}
				continue
			}
			c.bindPatternVars(sub, elem, sc)
		}
	}
}

func (c *Checker) bindVariantPatternVars(pt *ast.VariantPattern, ty types.Type, sc scope.ScopeId) {
	ut, ok := ty.(types.User)
	if !ok || ut.Id == 0 || int(ut.Id)-1 >= len(c.UserTypes) {
		return
	}
	rec := c.UserTypes[ut.Id-1]
	variant := findVariant(rec, pt.Path.Last().Name)
	if variant == nil {
		return
	}
	for i, sub := range pt.TupleElems {
		if i < len(variant.TupleTypes) {
			c.bindPatternVars(sub, c.resolveTypeHint(variant.TupleTypes[i], sc), sc)
		}
	}
	for _, fp := range pt.Fields {
		ft := c.fieldPatternType(variant, rec, fp.Name, sc)
		if fp.Sub != nil {
			c.bindPatternVars(fp.Sub, ft, sc)
		} else {
			vid := scope.VariableId(len(c.Variables) + 1)
			c.Variables = append(c.Variables, VariableRecord{Name: fp.Name, Ty: ft, Mutable: fp.Mutable, Scope: sc})
			c.Scopes.DeclareVariable(sc, fp.Name, vid, false)
		}
	}
}

func (c *Checker) bindStructPatternVars(pt *ast.StructPattern, ty types.Type, sc scope.ScopeId) {
	base := types.AutoDeref(ty)
	ut, ok := base.(types.User)
	if !ok || ut.Id == 0 || int(ut.Id)-1 >= len(c.UserTypes) {
		return
	}
	rec := c.UserTypes[ut.Id-1]
	for _, fp := range pt.Fields {
		mt := rec.MemberOf[fp.Name]
		if fp.Sub != nil {
			c.bindPatternVars(fp.Sub, mt, sc)
		} else {
			vid := scope.VariableId(len(c.Variables) + 1)
			c.Variables = append(c.Variables, VariableRecord{Name: fp.Name, Ty: mt, Mutable: fp.Mutable, Scope: sc})
			c.Scopes.DeclareVariable(sc, fp.Name, vid, false)
		}
	}
}

// checkMatchExhaustive is C7's match-coverage check (spec.md §4.7): it
// dispatches to one of five algorithms by the scrutinee's kind — tagged
// union (collect variant names, each must be covered), bool (both
// literals), integer/char (walk the covered range, reporting a gap; char
// skips the UTF-16 surrogate range since no char value ever lands there),
// and string/span/span_mut, which (like every other shape: struct, tuple,
// array, void) just require at least one irrefutable arm, since ctl has no
// static enumeration of their inhabitants to walk.
func (c *Checker) checkMatchExhaustive(ex *ast.MatchExpr, scrutinee types.Type) {
	hasIrrefutable := false
	for _, arm := range ex.Arms {
		if armIsIrrefutable(arm.Pattern) {
			hasIrrefutable = true
			break
		}
	}

	if ut, ok := scrutinee.(types.User); ok && ut.Id > 0 && int(ut.Id)-1 < len(c.UserTypes) {
		rec := c.UserTypes[ut.Id-1]
		if rec.IsUnion {
			if hasIrrefutable {
				return
			}
			seen := map[string]bool{}
			for _, arm := range ex.Arms {
				if vp, ok := arm.Pattern.(*ast.VariantPattern); ok {
					seen[vp.Path.Last().Name] = true
				}
			}
			var missing []string
			for name := range rec.Variants {
				if !seen[name] {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				sort.Strings(missing)
				c.Sink.Error(diag.MatchNotExhaustive("missing variant(s) "+strings.Join(missing, ", "), ex.Sp))
			}
			return
		}
	}

	if types.Equal(scrutinee, types.Prim(types.Bool)) {
		if hasIrrefutable {
			return
		}
		seen := map[bool]bool{}
		for _, arm := range ex.Arms {
			if lp, ok := arm.Pattern.(*ast.LiteralPattern); ok && lp.Kind == ast.LitBool {
				seen[lp.Bool] = true
			}
		}
		if !seen[true] || !seen[false] {
			c.Sink.Error(diag.MatchNotExhaustive("missing 'true' or 'false' arm", ex.Sp))
		}
		return
	}

	if types.Equal(scrutinee, types.Prim(types.Char)) {
		if hasIrrefutable {
			return
		}
		if !charRangeCovers(ex) {
			c.Sink.Error(diag.MatchNotExhaustive("not all char values are covered", ex.Sp))
		}
		return
	}

	if st, ok := types.IntegerStats(scrutinee); ok && !st.IsFloat {
		if hasIrrefutable {
			return
		}
		if !coversRange(collectIntIntervals(ex), intBounds(st)) {
			c.Sink.Error(diag.MatchNotExhaustive("not all values are covered", ex.Sp))
		}
		return
	}

	// string, span, span_mut, struct, tuple, array, void, and everything
	// else: no walkable domain, so coverage comes down to a catch-all arm
	// (an irrefutable binding, or for span/span_mut an empty rest pattern).
	if !hasIrrefutable {
		c.Sink.Error(diag.MatchNotExhaustive("requires a catch-all arm", ex.Sp))
	}
}

// armIsIrrefutable reports whether p matches every value of its scrutinee
// type unconditionally — a plain binding/wildcard, or a structural pattern
// whose every sub-pattern is itself irrefutable (spec.md §4.7).
func armIsIrrefutable(p ast.Pattern) bool {
	switch pt := p.(type) {
	case *ast.IdentPattern, *ast.WildcardPattern:
		return true
	case *ast.TuplePattern:
		for _, sub := range pt.Elems {
			if !armIsIrrefutable(sub) {
				return false
			}
		}
		return true
	case *ast.StructPattern:
		for _, fp := range pt.Fields {
			if fp.Sub != nil && !armIsIrrefutable(fp.Sub) {
				return false
			}
		}
		return true
	case *ast.ArrayPattern:
		// a lone, unbounded rest pattern matches a span/array of any length.
		if len(pt.Elems) == 1 {
			if _, ok := pt.Elems[0].(*ast.RestPattern); ok {
				return true
			}
		}
		return false
	}
	return false
}

type intInterval struct{ lo, hi int64 }

// intBounds returns the inclusive [lo, hi] domain of an integer type of
// the given width/signedness, clipped to int64 for u64/usize/i64 — ctl
// match arms never enumerate anywhere near the full 64-bit domain, so the
// clip never changes a real coverage verdict.
func intBounds(st types.Stats) (int64, int64) {
	if st.Bits >= 64 {
		if st.Signed {
			return math.MinInt64, math.MaxInt64
		}
		return 0, math.MaxInt64
	}
	if st.Signed {
		hi := int64(1)<<(st.Bits-1) - 1
		return -(hi + 1), hi
	}
	return 0, int64(1)<<uint(st.Bits) - 1
}

func collectIntIntervals(ex *ast.MatchExpr) []intInterval {
	var out []intInterval
	for _, arm := range ex.Arms {
		switch p := arm.Pattern.(type) {
		case *ast.LiteralPattern:
			switch p.Kind {
			case ast.LitInt:
				if v, ok := parseIntLiteral(p.Int); ok {
					out = append(out, intInterval{v, v})
				}
			case ast.LitChar:
				out = append(out, intInterval{int64(p.Char), int64(p.Char)})
			}
		case *ast.RangePattern:
			lo, lok := rangeEndpoint(p.Start)
			hi, hok := rangeEndpoint(p.End)
			if lok && hok {
				if !p.Inclusive {
					hi--
				}
				out = append(out, intInterval{lo, hi})
			}
		}
	}
	return out
}

func rangeEndpoint(p ast.Pattern) (int64, bool) {
	lp, ok := p.(*ast.LiteralPattern)
	if !ok {
		return 0, false
	}
	switch lp.Kind {
	case ast.LitInt:
		return parseIntLiteral(lp.Int)
	case ast.LitChar:
		return int64(lp.Char), true
	}
	return 0, false
}

func parseIntLiteral(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// coversRange walks intervals in ascending order, reporting whether they
// jointly cover [lo, hi] with no gap (spec.md §4.7 "walk the numeric
// range").
func coversRange(ivs []intInterval, lo, hi int64) bool {
	if len(ivs) == 0 {
		return lo > hi
	}
	sorted := append([]intInterval{}, ivs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })
	cur := lo
	for _, iv := range sorted {
		if iv.lo > cur {
			return false
		}
		if iv.hi+1 > cur {
			cur = iv.hi + 1
		}
		if cur > hi {
			return true
		}
	}
	return cur > hi
}

// charRangeCovers applies coversRange over both halves of the char domain
// split around the UTF-16 surrogate gap (0xD800-0xDFFF), which no char
// literal or range endpoint can ever name, so a match never needs to cover
// it (spec.md §4.7 "char: skip the surrogate gap").
func charRangeCovers(ex *ast.MatchExpr) bool {
	ivs := collectIntIntervals(ex)
	return coversRange(ivs, 0, 0xD7FF) && coversRange(ivs, 0xE000, 0x10FFFF)
}
