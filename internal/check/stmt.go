package check

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// checkFunctionBody is C6's entry point (spec.md §4.6): it type-checks one
// declared function's body against its already-declared signature. Runs
// only after every function in the project has been declared (check.go's
// Check), so a call to a function declared later in the same file or a
// sibling file still resolves.
func (c *Checker) checkFunctionBody(i int) {
	fn := c.Functions[i]
	body := c.bodies[i]
	if body == nil {
		return // trait method signature with no default implementation
	}
	restore := c.enterSafety(SafetyNormal)
	defer restore()
	if fn.Decl.IsUnsafe {
		c.safety = SafetyUnsafe
	}
	c.withTypeParams(fn.Decl.TypeParams, func() {
		target := fn.RetType
		if blockEndsInNeverOrReturn(body) {
			target = nil // every path already diverged; the tail value (if any) needn't match
		}
		c.checkBlockTarget(body, exprCtx{scope: fn.Scope, ret: fn.RetType}, target)
	})
}

// blockEndsInNeverOrReturn reports whether body's last statement is an
// expression of type Never (return/break/continue), in which case a
// body/declared-return-type mismatch would be a false positive — every
// control-flow path already diverged before reaching the fall-through
// check (spec.md §4.6 "never-typed tail doesn't need to match").
func blockEndsInNeverOrReturn(body []ast.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	last, ok := body[len(body)-1].(*ast.ExprStmt)
	if !ok {
		return false
	}
	switch last.Expr.(type) {
	case *ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr:
		return true
	}
	return false
}

// checkBlock type-checks every statement in a block in its own child
// scope and returns the type of its tail expression (the block's value,
// spec.md §4.6 "block expressions").
func (c *Checker) checkBlock(stmts []ast.Stmt, ctx exprCtx) types.Type {
	return c.checkBlockTarget(stmts, ctx, nil)
}

// checkBlockTarget is checkBlock's bidirectional sibling (spec.md §4.6
// "Bidirectional mode"): target, if non-nil, is only pushed onto the
// block's tail statement — every earlier statement is still checked
// bottom-up, since only the value a block produces participates in
// coercion.
func (c *Checker) checkBlockTarget(stmts []ast.Stmt, ctx exprCtx, target types.Type) types.Type {
	bsc := c.Scopes.New(ctx.scope, true, scope.KindBlock, 0, "")
	inner := exprCtx{scope: bsc, ret: ctx.ret}
	var last types.Type = types.Prim(types.Void)
	for i, s := range stmts {
		var t types.Type
		if i == len(stmts)-1 {
			t = c.checkStmtTarget(s, inner, target)
		} else {
			t = c.checkStmt(s, inner)
		}
		if i == len(stmts)-1 {
			last = t
		}
	}
	return last
}

// checkStmt type-checks one statement and, for an ExprStmt, returns its
// expression's type so checkBlock can treat it as the block's tail value.
func (c *Checker) checkStmt(s ast.Stmt, ctx exprCtx) types.Type {
	return c.checkStmtTarget(s, ctx, nil)
}

func (c *Checker) checkStmtTarget(s ast.Stmt, ctx exprCtx, target types.Type) types.Type {
	switch st := s.(type) {
	case *ast.ExprStmt:
		return c.inferExprTarget(st.Expr, target, ctx)
	case *ast.LetStmt:
		c.checkLet(st, ctx)
	case *ast.FnStmt:
		// Nested function: already declared at module scope by declareStmts
		// walking the same statement list; nothing further to check here
		// beyond its own body, handled by the outer Check loop over
		// c.Functions.
	case *ast.UserTypeStmt, *ast.StaticStmt, *ast.ModuleStmt, *ast.UseStmt, *ast.ExtensionStmt:
		// Declarations: already processed by declareStmts; no per-statement
		// body to check here. A static's initializer is not type-checked:
		// declareStatic records only its declared type.
	}
	return types.Prim(types.Void)
}

func (c *Checker) checkLet(st *ast.LetStmt, ctx exprCtx) {
	var declared types.Type
	if st.Ty != nil {
		declared = c.resolveTypeHint(st.Ty, ctx.scope)
	}
	var valueTy types.Type
	if st.Value != nil {
		valueTy = c.inferExprTarget(st.Value, declared, ctx)
	}
	final := declared
	if final == nil {
		final = valueTy
	}
	if final == nil {
		final = types.Unknown{}
	}
	c.bindPattern(st.Pattern, final, ctx.scope)
}
