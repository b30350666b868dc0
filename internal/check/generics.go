package check

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// getMemberFn is C8's get_member_fn (spec.md §4.8): find a method declared
// on typeFullName by name. A linear scan over the function arena is
// adequate at ctl's scale — original_source
// instead indexes methods per-type in its Scopes, an optimization this
// port trades for the simpler, still-correct scan.
func (c *Checker) getMemberFn(typeFullName, method string) (FunctionRecord, bool) {
	for _, fn := range c.Functions {
		if fn.Decl.Name != method || fn.ThisType == nil {
			continue
		}
		if thisTypeNames(fn.ThisType) == typeFullName {
			return fn, true
		}
	}
	return FunctionRecord{}, false
}

func thisTypeNames(t types.Type) string {
	switch tt := t.(type) {
	case types.User:
		return tt.Name
	case types.Ptr:
		return thisTypeNames(tt.Inner)
	case types.MutPtr:
		return thisTypeNames(tt.Inner)
	}
	return ""
}

// getTraitDefaultMethod searches rec's implemented traits for a default
// method body of the given name, substituting This and the impl's own
// type arguments into the trait's declared signature (spec.md §4.8's
// extension/trait-impl fallback feeding C6's method dispatch). Probing
// each candidate trait is speculative (spec.md §4.1): a trait whose
// default method doesn't actually apply to this call must not leak any
// diagnostic from the attempt, so the sink is gated for the duration.
// The parser keeps only the signatures of a trait's methods
// (ast.TraitDecl.Functions), so every trait method's body is nil and this
// lookup finds no default method.
func (c *Checker) getTraitDefaultMethod(rec UserTypeRecord, self types.Type, method string) (types.Type, bool) {
	prevEnabled := c.Sink.SetErrorsEnabled(false)
	mark := c.Sink.CaptureErrors()
	defer func() {
		c.Sink.TruncateErrors(mark)
		c.Sink.SetErrorsEnabled(prevEnabled)
	}()
	for _, impl := range rec.Impls {
		trait, ok := c.findTrait(impl.Path.Last().Name)
		if !ok {
			continue
		}
		idx := c.traitFunctionIndex(trait, method)
		if idx < 0 || c.bodies[idx] == nil {
			continue
		}
		tm := c.Functions[idx]
		sub := types.Subst{}
		for i, tp := range trait.Decl.TypeParams {
			if i < len(impl.Path.Last().TyArgs) {
				sub[tp.Name] = c.resolveTypeHint(impl.Path.Last().TyArgs[i], impl.Scope)
			}
		}
		params := make([]types.Type, len(tm.ParamTypes))
		for i, pt := range tm.ParamTypes {
			if types.Equal(pt, types.TraitSelf{}) {
				params[i] = self
			} else if mp, ok := pt.(types.MutPtr); ok && types.Equal(mp.Inner, types.TraitSelf{}) {
				params[i] = types.MutPtr{Inner: self}
			} else {
				params[i] = types.FillTemplates(pt, sub)
			}
		}
		ret := types.FillTemplates(tm.RetType, sub)
		return types.FnPtr{Params: params, Ret: ret}, true
	}
	return nil, false
}

// traitFunctionIndex finds the FunctionRecord index a trait's own
// declaration produced for method — identified by the method's declared
// scope being a direct child of the trait's own scope, since declareTrait
// pushes each of its Functions through declareFunction with parent=tsc.
func (c *Checker) traitFunctionIndex(trait TraitRecord, method string) int {
	for i, fn := range c.Functions {
		if fn.Decl.Name == method && c.Scopes.Scope(fn.Scope).Parent == trait.Scope {
			return i
		}
	}
	return -1
}

func (c *Checker) findTrait(name string) (TraitRecord, bool) {
	for _, t := range c.Traits {
		if t.Decl.Name == name {
			return t, true
		}
	}
	return TraitRecord{}, false
}

// implementsTraitAndResolve is C8's implements_trait_and_resolve: it
// reports whether concrete implements the named trait — via either a
// `struct ... impl Trait` declaration or an `extension ... impl Trait for
// Ty` block — and, if so, which record declared it (spec.md §4.8). A
// bare name-only check (no bound type arguments to match).
func (c *Checker) implementsTraitAndResolve(concrete types.Type, traitName string) (UserTypeRecord, bool) {
	return c.implementsTraitArgs(concrete, traitName, nil)
}

// implementsTraitArgs is implementsTraitAndResolve's substitution-aware
// form: when wantArgs is non-nil, a candidate impl's own declared type
// arguments (after substituting concrete's own generic args into them)
// must match wantArgs too — spec.md §4.8 "check_bounds" substitutes the
// call site's ty_args into the bound's own ty_args before testing.
func (c *Checker) implementsTraitArgs(concrete types.Type, traitName string, wantArgs []types.Type) (UserTypeRecord, bool) {
	ut, ok := concrete.(types.User)
	if !ok || ut.Id == 0 || int(ut.Id)-1 >= len(c.UserTypes) {
		return UserTypeRecord{}, false
	}
	rec := c.UserTypes[ut.Id-1]
	sub := types.Subst{}
	for i, tp := range structTypeParamNames(rec) {
		if i < len(ut.Args) {
			sub[tp] = ut.Args[i]
		}
	}
	if c.implTypeArgsMatch(rec.Impls, traitName, sub, wantArgs) {
		return rec, true
	}
	for _, ext := range c.Extensions {
		if !types.Equal(ext.Target, concrete) {
			continue
		}
		if c.implTypeArgsMatch(ext.Impls, traitName, sub, wantArgs) {
			return rec, true
		}
	}
	return UserTypeRecord{}, false
}

// implTypeArgsMatch reports whether impls contains an `impl traitName<...>`
// whose own type arguments, substituted via sub, equal wantArgs (or any
// match at all, if wantArgs is nil — the pre-substitution simple-bound
// check).
func (c *Checker) implTypeArgsMatch(impls []ImplRecord, traitName string, sub types.Subst, wantArgs []types.Type) bool {
	for _, impl := range impls {
		if impl.Path.Last().Name != traitName {
			continue
		}
		if wantArgs == nil {
			return true
		}
		implArgs := make([]types.Type, len(impl.Path.Last().TyArgs))
		for i, a := range impl.Path.Last().TyArgs {
			implArgs[i] = types.FillTemplates(c.resolveTypeHint(a, impl.Scope), sub)
		}
		if len(implArgs) != len(wantArgs) {
			continue
		}
		ok := true
		for i := range implArgs {
			if !types.Equal(implArgs[i], wantArgs[i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// checkBounds verifies a generic argument satisfies every trait bound its
// type parameter declared (spec.md §4.8 "check_bounds"): each bound's own
// type arguments are substituted via sub (the enclosing generic's
// parameter->argument map) before testing implementsTraitArgs.
func (c *Checker) checkBounds(argTy types.Type, bounds []ast.TypePath, sub types.Subst, sc scope.ScopeId) bool {
	for _, b := range bounds {
		var wantArgs []types.Type
		for _, a := range b.Last().TyArgs {
			wantArgs = append(wantArgs, types.FillTemplates(c.resolveTypeHint(a, sc), sub))
		}
		if _, ok := c.implementsTraitArgs(argTy, b.Last().Name, wantArgs); !ok {
			return false
		}
	}
	return true
}

// checkSignatureConformance is C8's "Signature conformance" pass (spec.md
// §4.8): for every declared `impl Trait` (on a struct/union or via an
// extension), each of the trait's declared methods must have a matching
// override at the implementer with the same arity and, after substituting
// the impl's type arguments and This, the same parameter and return types.
// Runs once after every type/trait/impl is declared, before any function
// body is checked, so a signature defect is reported independent of
// whether the method is ever called.
func (c *Checker) checkSignatureConformance() {
	for i, rec := range c.UserTypes {
		self := types.User{Id: uint32(i + 1), Name: rec.FullName}
		for _, impl := range rec.Impls {
			c.checkImplConformance(rec.FullName, self, impl)
		}
	}
	for _, ext := range c.Extensions {
		for _, impl := range ext.Impls {
			c.checkImplConformance(typeNameOf(ext.Target), ext.Target, impl)
		}
	}
}

func typeNameOf(t types.Type) string {
	if ut, ok := t.(types.User); ok {
		return ut.Name
	}
	return types.Name(t)
}

func (c *Checker) checkImplConformance(implTypeName string, self types.Type, impl ImplRecord) {
	trait, ok := c.findTrait(impl.Path.Last().Name)
	if !ok {
		return
	}
	sub := types.Subst{}
	for i, tp := range trait.Decl.TypeParams {
		if i < len(impl.Path.Last().TyArgs) {
			sub[tp.Name] = c.resolveTypeHint(impl.Path.Last().TyArgs[i], impl.Scope)
		}
	}
	for _, tm := range trait.Decl.Functions {
		idx := c.traitFunctionIndex(trait, tm.Name)
		if idx < 0 {
			continue
		}
		if c.bodies[idx] != nil {
			continue // trait supplies a default implementation; an override is optional
		}
		tmScope := c.Functions[idx].Scope
		implFn, ok := c.getMemberFn(implTypeName, tm.Name)
		if !ok {
			c.Sink.Error(diag.DoesntImplement(implTypeName, trait.FullName, tm.NameSpan))
			continue
		}
		c.checkMethodConformsToTrait(implFn, tm, tmScope, self, sub, trait.FullName)
	}
}

// checkMethodConformsToTrait compares implFn (the implementer's method)
// against traitMethod (the trait's own declared signature, after
// substituting sub and This) — arity, then per-parameter, then return
// type, each mismatch localized to its own span (spec.md §4.8).
func (c *Checker) checkMethodConformsToTrait(implFn FunctionRecord, traitMethod ast.FnDecl, tmScope scope.ScopeId, self types.Type, sub types.Subst, traitFullName string) {
	if len(implFn.ParamTypes) != len(traitMethod.Params) {
		c.Sink.Error(diag.DoesntImplement(implFn.FullName, traitFullName, traitMethod.NameSpan))
		return
	}
	for i, tp := range traitMethod.Params {
		want := c.traitParamType(tp, tmScope, self, sub)
		if !types.Equal(want, implFn.ParamTypes[i]) {
			c.Sink.Error(diag.TypeMismatch(types.Name(want), types.Name(implFn.ParamTypes[i]), implFn.Decl.NameSpan))
		}
	}
	var wantRet types.Type = types.Prim(types.Void)
	if traitMethod.Ret != nil {
		wantRet = types.FillTemplates(c.resolveTypeHint(traitMethod.Ret, tmScope), sub)
	}
	if !types.Equal(wantRet, implFn.RetType) {
		c.Sink.Error(diag.TypeMismatch(types.Name(wantRet), types.Name(implFn.RetType), implFn.Decl.NameSpan))
	}
}

// traitParamType resolves one trait-method parameter's declared type,
// special-casing `this`/`mut this` the same way declareFunction does
// (since a trait method's own FunctionRecord stores a nil This type — the
// trait has no concrete This until an impl supplies one).
func (c *Checker) traitParamType(p ast.Param, tmScope scope.ScopeId, self types.Type, sub types.Subst) types.Type {
	switch p.Ty.(type) {
	case *ast.ThisTypeHint:
		return self
	case *ast.MutThisTypeHint:
		return types.MutPtr{Inner: self}
	default:
		return types.FillTemplates(c.resolveTypeHint(p.Ty, tmScope), sub)
	}
}
