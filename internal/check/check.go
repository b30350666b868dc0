// Package check is the semantic core (C4-C9): the declaration pass, path
// resolution, the bidirectional type checker, pattern/exhaustiveness
// analysis, and generic instantiation & trait search. It consumes the AST
// (internal/ast) produced by the lexer/parser and drives internal/scope and
// internal/types, reporting through internal/diag. Grounded on
// original_source/src/typecheck.rs (the single largest file in the
// original compiler) and on the teacher's internal/analyzer package
// (funvibe-funxy), whose declare-then-infer two-pass structure and
// processor-driven pipeline this package's Checker mirrors.
package check

import (
	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// Safety mirrors spec.md §4.6 "Safety": the current block's unsafe gate.
// Entering `unsafe { }` flips it for the block's duration; a deferred
// restore (enterSafety) puts the prior value back the way
// original_source's typecheck.rs threads a "safety: Cell<Safety>" through
// nested checks.
type Safety int

const (
	SafetyNormal Safety = iota
	SafetyUnsafe
)

type FunctionRecord struct {
	Decl       *ast.FnDecl
	Scope      scope.ScopeId
	ParamTypes []types.Type
	RetType    types.Type
	IsMethod   bool
	ThisType   types.Type // set for methods/extension functions
	FullName   string
	// IsCtor marks a synthesized struct/variant/unsafe-union constructor
	// (spec.md §4.4 points 2-4) rather than a user-written function — the
	// constructor's name aliases its type across TNS/VNS intentionally
	// (spec.md §9).
	IsCtor bool
}

// ImplRecord is one `impl Trait<Args>` a type or extension declares,
// keeping the bound's own type arguments (spec.md §4.8 "check_bounds"
// substitutes the call site's ty_args into the bound's own ty_args, which
// a bare trait-name string can't represent).
type ImplRecord struct {
	Path  ast.TypePath
	Scope scope.ScopeId
}

type UserTypeRecord struct {
	Decl      ast.UserTypeDecl
	Scope     scope.ScopeId
	FullName  string
	MemberOf  map[string]types.Type // name -> type, flattened (struct members, or a union's shared members)
	Variants  map[string]int        // union tag name -> ordinal, nil for structs
	Impls     []ImplRecord          // traits this type declares `impl` for
	IsUnion   bool
	IsPacked  bool
}

type TraitRecord struct {
	Decl     *ast.TraitDecl
	Scope    scope.ScopeId
	FullName string
}

type VariableRecord struct {
	Name    string
	Ty      types.Type
	Mutable bool
	Scope   scope.ScopeId
}

type ExtensionRecord struct {
	Decl   *ast.ExtensionStmt
	Scope  scope.ScopeId
	Target types.Type
	Impls  []ImplRecord
}

// Checker owns every arena and runs the full C4-C9 pipeline over one or
// more parsed files sharing a single scope graph (a "project" in
// spec.md §1 terms).
type Checker struct {
	Sink   *diag.Sink
	Scopes *scope.Graph
	Intern *types.Interner

	Functions []FunctionRecord
	UserTypes []UserTypeRecord
	Traits    []TraitRecord
	Variables []VariableRecord
	Extensions []ExtensionRecord

	root   scope.ScopeId
	safety Safety

	// bodies[i] is the statement list for Functions[i]; kept parallel to
	// the Functions arena rather than embedded in FunctionRecord so a
	// trait-method signature (no body) and a concrete function (has one)
	// share the same declaration path.
	bodies [][]ast.Stmt

	// exprTypes caches the inferred type of every expression node checked
	// so later passes (emitter) don't need to re-infer.
	exprTypes map[ast.Expr]types.Type

	// curTypeParams is the in-scope generic parameter names while declaring
	// or checking a generic function/type's signature — consulted by
	// resolveNamedType before treating a bare name as a lang-item/user-type
	// lookup (spec.md §4.8).
	curTypeParams []string
}

// withTypeParams pushes a declaration's generic parameters for the
// duration of fn, then restores the previous set — used around
// declareFunction/declareStruct/declareUnion/declareTrait bodies so a
// signature like `fn max<T: Ord>(a: T, b: T): T` resolves `T` as a
// TypeParamRef rather than an unresolved symbol.
func (c *Checker) withTypeParams(params []ast.TypeParam, fn func()) {
	prev := c.curTypeParams
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	c.curTypeParams = append(append([]string{}, prev...), names...)
	fn()
	c.curTypeParams = prev
}

func NewChecker(sink *diag.Sink) *Checker {
	c := &Checker{
		Sink:      sink,
		Scopes:    scope.NewGraph(),
		Intern:    types.NewInterner(),
		exprTypes: make(map[ast.Expr]types.Type),
	}
	c.root = c.Scopes.New(scope.NoScope, false, scope.KindModule, 0, "")
	return c
}

// enterSafety flips the current Safety for the duration of the returned
// restore closure, called via `defer` at unsafe-block entry points
// (spec.md §4.6 Safety; SPEC_FULL.md §12).
func (c *Checker) enterSafety(s Safety) func() {
	prev := c.safety
	c.safety = s
	return func() { c.safety = prev }
}

// Check runs the full pipeline — declare every program, then resolve
// pending `use`s, then check every function body — over a batch of files
// that share one project (spec.md §5: single-threaded, whole-project
// analysis with no incremental re-entry).
func (c *Checker) Check(progs []*ast.Program) {
	for _, p := range progs {
		c.declareStmts(p.Stmts, c.root)
	}
	c.resolveUses(c.root)
	c.checkSignatureConformance()
	for i := range c.Functions {
		c.checkFunctionBody(i)
	}
}

// ExprType exposes the type C6 inferred for e, memoized in exprTypes during
// checking — the emitter needs it to declare a `let`'s C-side local and to
// tell a tagged-union match's scrutinee type from any other (spec.md §6
// "Emitter ... walks checked bodies").
func (c *Checker) ExprType(e ast.Expr) types.Type {
	if t, ok := c.exprTypes[e]; ok {
		return t
	}
	return types.Unknown{}
}

// FunctionBody exposes Functions[i]'s statement list to external
// consumers (the emitter — spec.md §6 "walks checked bodies"); nil for a
// trait method with no default implementation.
func (c *Checker) FunctionBody(i int) []ast.Stmt {
	return c.bodies[i]
}

func (c *Checker) typeName(t types.Type) string {
	if t == nil {
		return "{unknown}"
	}
	return types.Name(t)
}
