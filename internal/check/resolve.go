package check

import (
	"strconv"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

var builtinPrims = map[string]types.Type{
	"void": types.Prim(types.Void), "never": types.Prim(types.Never), "bool": types.Prim(types.Bool),
	"char": types.Prim(types.Char), "f32": types.Prim(types.F32), "f64": types.Prim(types.F64),
	"isize": types.Prim(types.Isize), "usize": types.Prim(types.Usize),
	"c_int": types.Prim(types.CInt), "c_uint": types.Prim(types.CUint), "c_void": types.Prim(types.CVoid),
}

// resolveBuiltinIntName parses "i8".."i128"/"u8".."u128" into Int/Uint.
func resolveBuiltinIntName(name string) (types.Type, bool) {
	if len(name) < 2 {
		return nil, false
	}
	signed := name[0] == 'i'
	if !signed && name[0] != 'u' {
		return nil, false
	}
	bits, err := strconv.Atoi(name[1:])
	if err != nil {
		return nil, false
	}
	if signed {
		return types.Int{Bits: bits}, true
	}
	return types.Uint{Bits: bits}, true
}

// resolveTypeHint is C5/C6's resolve_typehint: it turns parsed syntax into
// a Type, looking up named paths through the scope graph (spec.md §4.5,
// §4.6). Unresolvable names produce Type{Unresolved} plus a diagnostic,
// rather than aborting the whole pass — so the rest of the signature still
// gets a best-effort type (spec.md §7 "independent errors").
func (c *Checker) resolveTypeHint(h ast.TypeHint, sc scope.ScopeId) types.Type {
	if h == nil {
		return types.Prim(types.Void)
	}
	switch t := h.(type) {
	case *ast.NamedTypeHint:
		return c.resolveNamedType(t, sc)
	case *ast.ArrayTypeHint:
		elem := c.resolveTypeHint(t.Elem, sc)
		n, ok := c.constEvalInt(t.Count, sc)
		if !ok {
			c.Sink.Error(diag.NoConsteval(t.Sp))
			n = 0
		}
		return types.Array{Elem: elem, Len: n}
	case *ast.SliceTypeHint:
		return types.Slice{Elem: c.resolveTypeHint(t.Elem, sc)}
	case *ast.TupleTypeHint:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.resolveTypeHint(e, sc)
		}
		return c.Intern.Tuple(elems)
	case *ast.MapTypeHint:
		return types.User{Name: "map", Args: []types.Type{c.resolveTypeHint(t.Key, sc), c.resolveTypeHint(t.Value, sc)}}
	case *ast.OptionTypeHint:
		return types.User{Name: "option", Args: []types.Type{c.resolveTypeHint(t.Inner, sc)}}
	case *ast.AnonTypeHint:
		fields := make([]types.AnonField, len(t.Decl.Members))
		for i, m := range t.Decl.Members {
			fields[i] = types.AnonField{Name: m.Name, Ty: c.resolveTypeHint(m.Ty, sc)}
		}
		return c.Intern.AnonStruct(fields)
	case *ast.RefTypeHint:
		return types.Ptr{Inner: c.resolveTypeHint(t.Inner, sc)}
	case *ast.RefMutTypeHint:
		return types.MutPtr{Inner: c.resolveTypeHint(t.Inner, sc)}
	case *ast.RawPtrTypeHint:
		return types.RawPtr{Inner: c.resolveTypeHint(t.Inner, sc)}
	case *ast.VoidTypeHint:
		return types.Prim(types.Void)
	case *ast.ThisTypeHint:
		return types.TraitSelf{}
	case *ast.MutThisTypeHint:
		return types.MutPtr{Inner: types.TraitSelf{}}
	case *ast.FnPtrTypeHint:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveTypeHint(p, sc)
		}
		ret := types.Type(types.Prim(types.Void))
		if t.Ret != nil {
			ret = c.resolveTypeHint(t.Ret, sc)
		}
		return types.FnPtr{Params: params, Ret: ret}
	}
	return types.Unresolved{Hint: h}
}

func (c *Checker) resolveNamedType(t *ast.NamedTypeHint, sc scope.ScopeId) types.Type {
	name := t.Path.Last().Name
	if len(t.Path.Components) == 1 {
		if prim, ok := builtinPrims[name]; ok {
			return prim
		}
		if prim, ok := resolveBuiltinIntName(name); ok {
			return prim
		}
		for _, tp := range c.curTypeParams {
			if tp == name {
				return types.TypeParamRef{Name: name}
			}
		}
	}
	res, ok := c.resolvePathInTNS(t.Path, sc)
	if !ok {
		c.Sink.Error(diag.NoSymbol(name, t.Path.Sp))
		return types.Unresolved{Hint: t}
	}
	if res.IsType {
		var args []types.Type
		for _, a := range t.Path.Last().TyArgs {
			args = append(args, c.resolveTypeHint(a, sc))
		}
		full := ""
		if int(res.UserType)-1 < len(c.UserTypes) && res.UserType > 0 {
			full = c.UserTypes[res.UserType-1].FullName
		}
		return types.User{Id: uint32(res.UserType), Name: full, Args: args}
	}
	return types.Unresolved{Hint: t}
}

// resolvePathInTNS walks a (possibly multi-component) path through the type
// namespace: a single component is a normal lexical TNS lookup; a
// multi-component path resolves its first segment, then looks its
// remaining segments up directly in that scope's own TNS (spec.md §4.5
// "resolve_type_path").
func (c *Checker) resolvePathInTNS(p ast.TypePath, sc scope.ScopeId) (scope.TypeResult, bool) {
	if len(p.Components) == 0 {
		return scope.TypeResult{}, false
	}
	first := p.Components[0]
	res, ok := c.Scopes.FindInTNS(sc, first.Name)
	if !ok {
		return scope.TypeResult{}, false
	}
	for _, comp := range p.Components[1:] {
		target := c.scopeOfTNS(res)
		if target == scope.NoScope {
			return scope.TypeResult{}, false
		}
		res, ok = c.Scopes.FindInTNSDirect(target, comp.Name)
		if !ok {
			c.Sink.Error(diag.NoSymbol(comp.Name, comp.NameSpan))
			return scope.TypeResult{}, false
		}
		if !res.Public && !c.Scopes.CanAccessPrivates(sc, c.Scopes.Scope(target).File) {
			c.Sink.Error(diag.Private(comp.Name, comp.NameSpan))
		}
	}
	return res, true
}

func (c *Checker) scopeOfTNS(res scope.TypeResult) scope.ScopeId {
	if res.IsType && res.UserType > 0 && int(res.UserType)-1 < len(c.UserTypes) {
		return c.UserTypes[res.UserType-1].Scope
	}
	if res.IsTrait && res.Trait > 0 && int(res.Trait)-1 < len(c.Traits) {
		return c.Traits[res.Trait-1].Scope
	}
	return res.FoundScope
}

// resolveValuePath resolves a path in the value namespace, the VNS
// counterpart of resolvePathInTNS (spec.md §4.5).
func (c *Checker) resolveValuePath(p ast.TypePath, sc scope.ScopeId) (scope.ValueResult, bool) {
	if len(p.Components) == 1 {
		res, ok := c.Scopes.FindInVNS(sc, p.Components[0].Name)
		return res, ok
	}
	modPath := ast.TypePath{Components: p.Components[:len(p.Components)-1]}
	tres, ok := c.resolvePathInTNS(modPath, sc)
	if !ok {
		return scope.ValueResult{}, false
	}
	target := c.scopeOfTNS(tres)
	last := p.Last()
	vres, ok := c.Scopes.FindInVNSDirect(target, last.Name)
	if ok && !vres.Public && !c.Scopes.CanAccessPrivates(sc, c.Scopes.Scope(target).File) {
		c.Sink.Error(diag.PrivateMember(c.Scopes.Scope(target).Name, last.Name, last.NameSpan))
	}
	return vres, ok
}

// resolveUses drains every scope's pending-use queue (C9), recursing into
// child scopes. Must run after every file in the project has been
// declared, so a `use` can see names declared later in a different file of
// the same module (spec.md §4.9).
func (c *Checker) resolveUses(sc scope.ScopeId) {
	for _, u := range c.Scopes.PendingUses(sc) {
		c.resolveOneUse(u, sc)
	}
	for _, child := range c.Scopes.Children(sc) {
		c.resolveUses(child)
	}
}

func (c *Checker) resolveOneUse(u scope.PendingUse, sc scope.ScopeId) {
	if u.All {
		c.resolveUseAll(u, sc)
		return
	}
	comp := u.Path.Last()
	modPath := ast.TypePath{Origin: u.Path.Origin, SuperCount: u.Path.SuperCount, Components: u.Path.Components[:len(u.Path.Components)-1]}
	var targetScope scope.ScopeId
	if len(modPath.Components) == 0 {
		targetScope = sc
	} else {
		tres, ok := c.resolvePathInTNS(modPath, sc)
		if !ok {
			c.Sink.Error(diag.NoSymbol(modPath.Last().Name, modPath.Sp))
			return
		}
		targetScope = c.scopeOfTNS(tres)
	}
	foundAny := false
	declModFile := c.Scopes.Scope(targetScope).File
	if tres, ok := c.Scopes.FindInTNSDirect(targetScope, comp.Name); ok {
		foundAny = true
		if !tres.Public && !c.Scopes.CanAccessPrivates(sc, declModFile) {
			c.Sink.Error(diag.Private(comp.Name, comp.NameSpan))
		} else {
			id := scope.UserTypeId(0)
			if tres.IsType {
				id = tres.UserType
			}
			c.Scopes.DeclareType(sc, comp.Name, id, u.Public)
		}
	}
	if vres, ok := c.Scopes.FindInVNSDirect(targetScope, comp.Name); ok {
		foundAny = true
		if !vres.Public && !c.Scopes.CanAccessPrivates(sc, declModFile) {
			c.Sink.Error(diag.Private(comp.Name, comp.NameSpan))
		} else {
			c.Scopes.DeclareFunction(sc, comp.Name, vres.Function, u.Public)
		}
	}
	if !foundAny {
		c.Sink.Error(diag.NoSymbol(comp.Name, comp.NameSpan))
	}
}

// resolveUseAll implements `use path::*`, bulk-importing every public name
// visible in the target scope (spec.md §4.9 "use_all"). A wildcard import
// of a private item is silently skipped rather than erroring — mirroring
// original_source's leniency, since the set of names a glob pulls in is
// not written out explicitly at the use site.
func (c *Checker) resolveUseAll(u scope.PendingUse, sc scope.ScopeId) {
	tres, ok := c.resolvePathInTNS(u.Path, sc)
	if !ok {
		c.Sink.Error(diag.NoSymbol(u.Path.Last().Name, u.Path.Sp))
		return
	}
	target := c.scopeOfTNS(tres)
	for name, r := range c.Scopes.AllTNS(target) {
		if r.Public {
			id := scope.UserTypeId(0)
			if r.IsType {
				id = r.UserType
			}
			c.Scopes.DeclareType(sc, name, id, u.Public)
		}
	}
	for name, r := range c.Scopes.AllVNS(target) {
		if r.Public {
			c.Scopes.DeclareFunction(sc, name, r.Function, u.Public)
		}
	}
}
