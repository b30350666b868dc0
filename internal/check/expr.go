package check

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// exprCtx carries the scope an expression is checked in, plus the enclosing
// function's return type for `return`/`yield` checks — the same pair
// original_source's typecheck.rs threads as `(scope, target_fn)` through
// check_expr_inner.
type exprCtx struct {
	scope scope.ScopeId
	ret   types.Type
}

// inferExpr is C6's check_expr_inner: it infers (and caches, via
// c.exprTypes) the type of a single expression node, recursing into
// subexpressions as needed.
func (c *Checker) inferExpr(e ast.Expr, ctx exprCtx) types.Type {
	if e == nil {
		return types.Prim(types.Void)
	}
	if t, ok := c.exprTypes[e]; ok {
		return t
	}
	t := c.inferExprUncached(e, ctx)
	c.exprTypes[e] = t
	return t
}

func (c *Checker) inferExprUncached(e ast.Expr, ctx exprCtx) types.Type {
	switch ex := e.(type) {
	case *ast.BoolLit:
		return types.Prim(types.Bool)
	case *ast.IntLit:
		if ex.Suffix != "" {
			if t, ok := builtinPrims[ex.Suffix]; ok {
				return t
			}
			if t, ok := resolveBuiltinIntName(ex.Suffix); ok {
				return t
			}
		}
		return types.Int{Bits: 32}
	case *ast.FloatLit:
		if ex.Is32 {
			return types.Prim(types.F32)
		}
		return types.Prim(types.F64)
	case *ast.StringLit:
		return types.Slice{Elem: types.Prim(types.Char)}
	case *ast.CharLit:
		return types.Prim(types.Char)
	case *ast.VoidExpr:
		return types.Prim(types.Void)
	case *ast.NoneExpr:
		return types.User{Name: "option", Args: []types.Type{types.Unknown{}}}
	case *ast.ContinueExpr:
		if !c.Scopes.InLoop(ctx.scope) {
			c.Sink.Error(diag.BreakOutsideLoop(ex.Sp))
		}
		return types.Prim(types.Never)
	case *ast.SymbolExpr:
		return c.inferSymbol(ex, ctx)
	case *ast.BinaryExpr:
		return c.inferBinary(ex, ctx)
	case *ast.UnaryExpr:
		return c.inferUnary(ex, ctx)
	case *ast.AssignExpr:
		return c.inferAssign(ex, ctx)
	case *ast.CallExpr:
		return c.inferCall(ex, ctx)
	case *ast.ArrayExpr:
		var elem types.Type = types.Unknown{}
		for _, el := range ex.Elems {
			elem = c.inferExpr(el, ctx)
		}
		return types.Array{Elem: elem, Len: len(ex.Elems)}
	case *ast.ArrayWithInitExpr:
		elem := c.inferExpr(ex.Init, ctx)
		n, _ := c.constEvalInt(ex.Count, ctx.scope)
		return types.Array{Elem: elem, Len: n}
	case *ast.TupleExpr:
		elems := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = c.inferExpr(el, ctx)
		}
		return c.Intern.Tuple(elems)
	case *ast.MapExpr:
		var k, v types.Type = types.Unknown{}, types.Unknown{}
		for _, ent := range ex.Entries {
			k = c.inferExpr(ent.Key, ctx)
			v = c.inferExpr(ent.Value, ctx)
		}
		return types.User{Name: "map", Args: []types.Type{k, v}}
	case *ast.BlockExpr:
		return c.checkBlock(ex.Stmts, ctx)
	case *ast.IfExpr:
		c.expectBool(ex.Cond, ctx)
		thenTy := c.inferExpr(ex.IfBranch, ctx)
		if ex.ElseBranch == nil {
			return types.Prim(types.Void)
		}
		elseTy := c.inferExpr(ex.ElseBranch, ctx)
		if !types.Equal(thenTy, elseTy) {
			c.Sink.Error(diag.TypeMismatch(types.Name(thenTy), types.Name(elseTy), ex.ElseBranch.Span()))
		}
		return thenTy
	case *ast.LoopExpr:
		lsc := c.Scopes.New(ctx.scope, true, scope.KindLoop, 0, "")
		if ex.Cond != nil {
			c.expectBool(ex.Cond, exprCtx{scope: lsc, ret: ctx.ret})
		}
		c.checkBlock(ex.Body, exprCtx{scope: lsc, ret: ctx.ret})
		return types.Prim(types.Void)
	case *ast.ForExpr:
		return c.inferFor(ex, ctx)
	case *ast.MemberExpr:
		return c.inferMember(ex, ctx)
	case *ast.SubscriptExpr:
		return c.inferSubscript(ex, ctx)
	case *ast.ReturnExpr:
		c.inferExprTarget(ex.Value, ctx.ret, ctx)
		if _, inFn := c.Scopes.FunctionOf(ctx.scope); !inFn {
			c.Sink.Error(diag.ReturnOutsideFunction(ex.Sp))
		}
		return types.Prim(types.Never)
	case *ast.YieldExpr:
		c.inferExpr(ex.Value, ctx)
		return types.Prim(types.Never)
	case *ast.BreakExpr:
		if !c.Scopes.InLoop(ctx.scope) {
			c.Sink.Error(diag.BreakOutsideLoop(ex.Sp))
		}
		if ex.Value != nil {
			c.inferExpr(ex.Value, ctx)
		}
		return types.Prim(types.Never)
	case *ast.RangeExpr:
		var elemTy types.Type = types.Int{Bits: 32}
		if ex.Start != nil {
			elemTy = c.inferExpr(ex.Start, ctx)
		} else if ex.End != nil {
			elemTy = c.inferExpr(ex.End, ctx)
		}
		return types.User{Name: "range", Args: []types.Type{elemTy}}
	case *ast.IsExpr:
		scrutinee := c.inferExpr(ex.Scrutinee, ctx)
		c.checkPattern(ex.Pattern, scrutinee, ctx.scope)
		return types.Prim(types.Bool)
	case *ast.AsExpr:
		c.inferExpr(ex.Value, ctx)
		return c.resolveTypeHint(ex.Target, ctx.scope)
	case *ast.UnsafeExpr:
		restore := c.enterSafety(SafetyUnsafe)
		defer restore()
		return c.inferExpr(ex.Body, ctx)
	case *ast.MatchExpr:
		return c.inferMatch(ex, ctx)
	case *ast.StructInitExpr:
		return c.inferStructInit(ex, ctx)
	case *ast.LambdaExpr:
		// The parser produces no LambdaExpr; a lambda that reaches the
		// checker is typed Unknown without checking its body.
		return types.Unknown{}
	}
	return types.Unknown{}
}

// inferExprTarget is C6's bidirectional check_expr (spec.md §4.6
// "Bidirectional mode"): like inferExpr, but a non-nil target lets an
// untyped integer literal pick its width from context and lets a bare
// value coerce into the `?T` an option-typed target expects (`fn g(): ?i32
// { 5 }` must type `5` as i32, then wrap it into `Some(5)`).
func (c *Checker) inferExprTarget(e ast.Expr, target types.Type, ctx exprCtx) types.Type {
	if e == nil {
		return types.Prim(types.Void)
	}
	if target != nil {
		switch lit := e.(type) {
		case *ast.IntLit:
			if lit.Suffix == "" {
				t := c.literalIntType(target)
				c.exprTypes[e] = t
				return c.coerceToTarget(t, target, e)
			}
		case *ast.NoneExpr:
			if _, ok := types.AsOptionInner(target); ok {
				c.exprTypes[e] = target
				return target
			}
		}
	}
	got := c.inferExpr(e, ctx)
	return c.coerceToTarget(got, target, e)
}

// literalIntType picks the width an untyped int literal takes from its
// target (stripping one Option layer first, so `?i32`'s literal still
// picks up i32 rather than defaulting), falling back to ctl's default
// i32 (spec.md §4.6 "numeric literal defaulting").
func (c *Checker) literalIntType(target types.Type) types.Type {
	inner := target
	if oi, ok := types.AsOptionInner(target); ok {
		inner = oi
	}
	if st, ok := types.IntegerStats(inner); ok && !st.IsFloat {
		return inner
	}
	return types.Int{Bits: 32}
}

// coerceToTarget reports a mismatch unless got already matches target, or
// target is one Option layer around got (`T -> Option<T>` coercion,
// spec.md §4.6 scenario S4).
func (c *Checker) coerceToTarget(got, target types.Type, e ast.Expr) types.Type {
	if target == nil || types.Equal(got, target) {
		return got
	}
	if inner, ok := types.AsOptionInner(target); ok && types.Equal(got, inner) {
		return target
	}
	c.Sink.Error(diag.TypeMismatch(types.Name(target), types.Name(got), e.Span()))
	return types.Unknown{}
}

func (c *Checker) expectBool(e ast.Expr, ctx exprCtx) {
	t := c.inferExpr(e, ctx)
	if !types.Equal(t, types.Prim(types.Bool)) {
		c.Sink.Error(diag.TypeMismatch("bool", types.Name(t), e.Span()))
	}
}

func (c *Checker) inferSymbol(ex *ast.SymbolExpr, ctx exprCtx) types.Type {
	res, ok := c.resolveValuePath(ex.Path, ctx.scope)
	if !ok {
		c.Sink.Error(diag.NoSymbol(ex.Path.Last().Name, ex.Sp))
		return types.Unresolved{Hint: nil}
	}
	if res.IsFunction {
		if int(res.Function)-1 < len(c.Functions) && res.Function > 0 {
			fn := c.Functions[res.Function-1]
			return types.FnPtr{Params: fn.ParamTypes, Ret: fn.RetType}
		}
		return types.Unknown{}
	}
	if int(res.Variable)-1 < len(c.Variables) && res.Variable > 0 {
		return c.Variables[res.Variable-1].Ty
	}
	return types.Unknown{}
}

func (c *Checker) inferBinary(ex *ast.BinaryExpr, ctx exprCtx) types.Type {
	lt := c.inferExpr(ex.Left, ctx)
	rt := c.inferExpr(ex.Right, ctx)
	switch ex.Op {
	case ast.Gt, ast.GtEqual, ast.Lt, ast.LtEqual, ast.Equal, ast.NotEqual:
		return types.Prim(types.Bool)
	case ast.LogicalAnd, ast.LogicalOr:
		return types.Prim(types.Bool)
	case ast.Cmp:
		return types.Int{Bits: 32}
	case ast.NoneCoalesce:
		inner, ok := types.AsOptionInner(lt)
		if !ok {
			c.Sink.Error(diag.InvalidOperator("??", types.Name(lt), ex.Sp))
			return rt
		}
		if !types.Equal(inner, rt) {
			c.Sink.Error(diag.TypeMismatch(types.Name(inner), types.Name(rt), ex.Right.Span()))
		}
		return inner
	}
	if !types.SupportsBinOp(ex.Op.String(), lt) {
		c.Sink.Error(diag.InvalidOperator(ex.Op.String(), types.Name(lt), ex.Sp))
	}
	if !types.Equal(lt, rt) {
		c.Sink.Error(diag.TypeMismatch(types.Name(lt), types.Name(rt), ex.Right.Span()))
	}
	return lt
}

func (c *Checker) inferUnary(ex *ast.UnaryExpr, ctx exprCtx) types.Type {
	if ex.Op == ast.Sizeof {
		c.resolveTypeHint(ex.TypeOperand, ctx.scope)
		return types.Prim(types.Usize)
	}
	t := c.inferExpr(ex.Expr, ctx)
	switch ex.Op {
	case ast.Not:
		return types.Prim(types.Bool)
	case ast.Deref:
		inner, n := types.StripReferences(t)
		if n == 0 {
			if rp, ok := t.(types.RawPtr); ok {
				if c.safety != SafetyUnsafe {
					c.Sink.Error(diag.IsUnsafe(ex.Sp))
				}
				return rp.Inner
			}
			c.Sink.Error(diag.InvalidOperator("*", types.Name(t), ex.Sp))
			return types.Unknown{}
		}
		return inner
	case ast.Addr:
		return types.Ptr{Inner: t}
	case ast.AddrMut:
		return types.MutPtr{Inner: t}
	case ast.AddrRaw:
		if c.safety != SafetyUnsafe {
			c.Sink.Error(diag.IsUnsafe(ex.Sp))
		}
		return types.RawPtr{Inner: t}
	case ast.Unwrap, ast.Try:
		inner, ok := types.AsOptionInner(t)
		if !ok {
			c.Sink.Error(diag.InvalidOperator(ex.Op.String(), types.Name(t), ex.Sp))
			return t
		}
		return inner
	case ast.PreIncrement, ast.PreDecrement, ast.PostIncrement, ast.PostDecrement, ast.Plus, ast.Neg:
		if _, ok := types.IntegerStats(t); !ok {
			c.Sink.Error(diag.InvalidOperator(ex.Op.String(), types.Name(t), ex.Sp))
		}
		return t
	}
	return t
}

func (c *Checker) inferAssign(ex *ast.AssignExpr, ctx exprCtx) types.Type {
	target := c.inferExpr(ex.Target, ctx)
	val := c.inferExpr(ex.Value, ctx)
	if !types.Equal(target, val) {
		c.Sink.Error(diag.TypeMismatch(types.Name(target), types.Name(val), ex.Value.Span()))
	}
	return types.Prim(types.Void)
}

func (c *Checker) inferCall(ex *ast.CallExpr, ctx exprCtx) types.Type {
	calleeTy := c.inferExpr(ex.Callee, ctx)
	fp, ok := calleeTy.(types.FnPtr)
	if !ok {
		if _, isUnresolved := calleeTy.(types.Unresolved); !isUnresolved {
			c.Sink.Error(diag.NoMethod(types.Name(calleeTy), "()", ex.Sp))
		}
		for _, a := range ex.Args {
			c.inferExpr(a.Value, ctx)
		}
		return types.Unknown{}
	}
	c.checkFnArgs(fp.Params, ex.Args, ctx)
	return fp.Ret
}

// checkFnArgs pairwise-compares call-site argument types against a
// signature's declared parameter types (spec.md §4.6 "check_fn_args"). A
// variadic tail (more args than params) is left unchecked since ctl's
// variadic functions are always extern-linkage C interop (spec.md §3).
func (c *Checker) checkFnArgs(params []types.Type, args []ast.Arg, ctx exprCtx) {
	for i, a := range args {
		var want types.Type
		if i < len(params) {
			want = params[i]
		}
		c.inferExprTarget(a.Value, want, ctx)
	}
}

func (c *Checker) inferFor(ex *ast.ForExpr, ctx exprCtx) types.Type {
	iterTy := c.inferExpr(ex.Iter, ctx)
	var elem types.Type = types.Unknown{}
	switch it := iterTy.(type) {
	case types.Array:
		elem = it.Elem
	case types.Slice:
		elem = it.Elem
	case types.User:
		if (it.Name == "range" || it.Name == "option") && len(it.Args) == 1 {
			elem = it.Args[0]
		}
	}
	lsc := c.Scopes.New(ctx.scope, true, scope.KindLoop, 0, "")
	c.bindPattern(ex.Pattern, elem, lsc)
	c.checkBlock(ex.Body, exprCtx{scope: lsc, ret: ctx.ret})
	return types.Prim(types.Void)
}

func (c *Checker) inferMember(ex *ast.MemberExpr, ctx exprCtx) types.Type {
	srcTy := c.inferExpr(ex.Source, ctx)
	base := types.AutoDeref(srcTy)
	ut, ok := base.(types.User)
	if !ok {
		if _, isUnresolved := base.(types.Unresolved); !isUnresolved {
			c.Sink.Error(diag.NoMember(types.Name(base), ex.Member, ex.Sp))
		}
		return types.Unknown{}
	}
	if int(ut.Id)-1 >= len(c.UserTypes) || ut.Id == 0 {
		return types.Unknown{}
	}
	rec := c.UserTypes[ut.Id-1]
	if mt, ok := rec.MemberOf[ex.Member]; ok {
		sub := types.Subst{}
		for i, tp := range structTypeParamNames(rec) {
			if i < len(ut.Args) {
				sub[tp] = ut.Args[i]
			}
		}
		return types.FillTemplates(mt, sub)
	}
	if fn, ok := c.getMemberFn(rec.FullName, ex.Member); ok {
		c.checkTurbofishBounds(ex, fn, ctx)
		return types.FnPtr{Params: fn.ParamTypes, Ret: fn.RetType}
	}
	// No directly-declared method: speculatively probe the type's trait
	// impls for a default implementation (spec.md §4.8 dispatch order,
	// C8's extension/trait-impl search feeding C6's member lookup).
	if fp, ok := c.getTraitDefaultMethod(rec, base, ex.Member); ok {
		return fp
	}
	c.Sink.Error(diag.NoMember(types.Name(base), ex.Member, ex.Sp))
	return types.Unknown{}
}

// checkTurbofishBounds validates an explicit `.method<T>()` type argument
// against the method's declared generic bounds (spec.md §4.8
// "check_bounds"), reporting diag.DoesntImplement per unsatisfied bound.
func (c *Checker) checkTurbofishBounds(ex *ast.MemberExpr, fn FunctionRecord, ctx exprCtx) {
	for i, arg := range ex.TyArgs {
		if i >= len(fn.Decl.TypeParams) {
			break
		}
		tp := fn.Decl.TypeParams[i]
		if len(tp.Bounds) == 0 {
			continue
		}
		argTy := c.resolveTypeHint(arg, ctx.scope)
		sub := types.Subst{tp.Name: argTy}
		if !c.checkBounds(argTy, tp.Bounds, sub, ctx.scope) {
			for _, b := range tp.Bounds {
				if _, ok := c.implementsTraitAndResolve(argTy, b.Last().Name); !ok {
					c.Sink.Error(diag.DoesntImplement(types.Name(argTy), b.Last().Name, arg.Span()))
				}
			}
		}
	}
}

func structTypeParamNames(rec UserTypeRecord) []string {
	if rec.Decl.Struct != nil {
		out := make([]string, len(rec.Decl.Struct.TypeParams))
		for i, tp := range rec.Decl.Struct.TypeParams {
			out[i] = tp.Name
		}
		return out
	}
	if rec.Decl.Union != nil {
		out := make([]string, len(rec.Decl.Union.Base.TypeParams))
		for i, tp := range rec.Decl.Union.Base.TypeParams {
			out[i] = tp.Name
		}
		return out
	}
	return nil
}

func (c *Checker) inferSubscript(ex *ast.SubscriptExpr, ctx exprCtx) types.Type {
	calleeTy := c.inferExpr(ex.Callee, ctx)
	for _, a := range ex.Args {
		c.inferExpr(a, ctx)
	}
	switch t := calleeTy.(type) {
	case types.Array:
		return t.Elem
	case types.Slice:
		return t.Elem
	case types.User:
		if t.Name == "map" && len(t.Args) == 2 {
			return types.User{Name: "option", Args: []types.Type{t.Args[1]}}
		}
	}
	if _, isUnresolved := calleeTy.(types.Unresolved); !isUnresolved {
		c.Sink.Error(diag.NoMethod(types.Name(calleeTy), "[]", ex.Sp))
	}
	return types.Unknown{}
}

func (c *Checker) inferMatch(ex *ast.MatchExpr, ctx exprCtx) types.Type {
	scrutinee := c.inferExpr(ex.Scrutinee, ctx)
	var resultTy types.Type
	for i, arm := range ex.Arms {
		asc := c.Scopes.New(ctx.scope, true, scope.KindBlock, 0, "")
		c.checkPattern(arm.Pattern, scrutinee, asc)
		c.bindPatternVars(arm.Pattern, scrutinee, asc)
		if arm.Guard != nil {
			c.expectBool(arm.Guard, exprCtx{scope: asc, ret: ctx.ret})
		}
		armTy := c.inferExpr(arm.Body, exprCtx{scope: asc, ret: ctx.ret})
		if i == 0 {
			resultTy = armTy
		} else if !types.Equal(resultTy, armTy) {
			c.Sink.Error(diag.TypeMismatch(types.Name(resultTy), types.Name(armTy), arm.Body.Span()))
		}
	}
	c.checkMatchExhaustive(ex, scrutinee)
	if resultTy == nil {
		return types.Prim(types.Void)
	}
	return resultTy
}

// inferStructInit checks `Name { field: value, ... }` construction syntax
// (spec.md §4.4 points 2-4) by resolving Path through the value namespace
// to the synthesized constructor declareStruct/declareUnion installed
// there — the struct/variant/unsafe-union constructor shares its name with
// the type across TNS/VNS intentionally (spec.md §9).
func (c *Checker) inferStructInit(ex *ast.StructInitExpr, ctx exprCtx) types.Type {
	vres, ok := c.resolveValuePath(ex.Path, ctx.scope)
	if !ok || !vres.IsFunction || vres.Function == 0 || int(vres.Function)-1 >= len(c.Functions) {
		for _, a := range ex.Args {
			c.inferExpr(a.Value, ctx)
		}
		c.Sink.Error(diag.NoSymbol(ex.Path.Last().Name, ex.Path.Sp))
		return types.Unresolved{Hint: nil}
	}
	fn := c.Functions[vres.Function-1]
	c.checkCtorArgs(fn, ex.Args, ctx)
	return fn.RetType
}

// checkCtorArgs routes each constructor argument by label against the
// constructor's synthesized keyword parameters (spec.md §4.4), falling
// back to positional order for a tuple-payload's positional elements. An
// unsafe-union constructor has no parameters, so each of its arguments is
// inferred with no expected type.
func (c *Checker) checkCtorArgs(fn FunctionRecord, args []ast.Arg, ctx exprCtx) {
	for i, a := range args {
		var want types.Type
		if a.Label != "" {
			for pi, p := range fn.Decl.Params {
				if pi < len(fn.ParamTypes) && patternName(p.Pattern) == a.Label {
					want = fn.ParamTypes[pi]
					break
				}
			}
		} else if i < len(fn.ParamTypes) {
			want = fn.ParamTypes[i]
		}
		c.inferExprTarget(a.Value, want, ctx)
	}
}
