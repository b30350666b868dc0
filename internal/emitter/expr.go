package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/types"
)

// exprEmitter lowers a single expression tree to a C expression string.
// Unlike stmtEmitter, it never needs indentation state — C expression
// syntax nests through parentheses, not lines.
type exprEmitter struct {
	e       *Emitter
	retType types.Type // threaded through from the enclosing stmtEmitter so a `return` inside a nested block-as-value still wraps against the right option target
}

func (x *exprEmitter) expr(e ast.Expr) string {
	if e == nil {
		return ""
	}
	switch ex := e.(type) {
	case *ast.BoolLit:
		if ex.Value {
			return "1"
		}
		return "0"
	case *ast.IntLit:
		return ex.Digits
	case *ast.FloatLit:
		if ex.Is32 {
			return ex.Digits + "f"
		}
		return ex.Digits
	case *ast.StringLit:
		return strconv.Quote(ex.Value)
	case *ast.CharLit:
		return fmt.Sprintf("%d /* '%c' */", ex.Value, ex.Value)
	case *ast.VoidExpr:
		return ""
	case *ast.NoneExpr:
		return fmt.Sprintf("(%s){0}", x.e.typeName(x.e.c.ExprType(ex)))
	case *ast.SymbolExpr:
		return mangle(ex.Path.Last().Name)
	case *ast.BinaryExpr:
		return x.binary(ex)
	case *ast.UnaryExpr:
		return x.unary(ex)
	case *ast.AssignExpr:
		return x.assign(ex)
	case *ast.CallExpr:
		return x.call(ex)
	case *ast.TupleExpr:
		return x.tuple(ex)
	case *ast.MemberExpr:
		return fmt.Sprintf("(%s).%s", x.expr(ex.Source), ex.Member)
	case *ast.SubscriptExpr:
		return x.subscript(ex)
	case *ast.IfExpr:
		return x.ifExpr(ex)
	case *ast.BlockExpr:
		return x.blockTail(ex)
	case *ast.AsExpr:
		return fmt.Sprintf("(%s)(%s)", x.e.typeName(x.e.c.ExprType(ex)), x.expr(ex.Value))
	case *ast.UnsafeExpr:
		return x.expr(ex.Body)
	case *ast.StructInitExpr:
		return x.structInit(ex)
	case *ast.ContinueExpr:
		return "" // a statement-position continue is emitted as C `continue;` by stmtEmitter.exprStmt
	}
	return fmt.Sprintf("(ctl_panic(\"unsupported expression form\"), (void)0)")
}

func (x *exprEmitter) binary(ex *ast.BinaryExpr) string {
	if ex.Op == ast.NoneCoalesce {
		l := x.expr(ex.Left)
		return fmt.Sprintf("((%s).has_value ? (%s).value : (%s))", l, l, x.expr(ex.Right))
	}
	if ex.Op == ast.LogicalAnd {
		return fmt.Sprintf("((%s) && (%s))", x.expr(ex.Left), x.expr(ex.Right))
	}
	if ex.Op == ast.LogicalOr {
		return fmt.Sprintf("((%s) || (%s))", x.expr(ex.Left), x.expr(ex.Right))
	}
	if ex.Op == ast.Cmp {
		return fmt.Sprintf("(((%s) > (%s)) - ((%s) < (%s)))", x.expr(ex.Left), x.expr(ex.Right), x.expr(ex.Left), x.expr(ex.Right))
	}
	return fmt.Sprintf("(%s %s %s)", x.expr(ex.Left), ex.Op.String(), x.expr(ex.Right))
}

func (x *exprEmitter) unary(ex *ast.UnaryExpr) string {
	switch ex.Op {
	case ast.Sizeof:
		// TypeOperand's resolved Type isn't cached anywhere the emitter can
		// reach without a scope id (the checker resolves type hints inline,
		// scoped to the declaration being checked) — emitted as a pointer
		// width placeholder; a real backend would thread scope through here.
		return "sizeof(void *) /* placeholder for sizeof(<type operand>) */"
	case ast.PostIncrement:
		return fmt.Sprintf("(%s)++", x.expr(ex.Expr))
	case ast.PostDecrement:
		return fmt.Sprintf("(%s)--", x.expr(ex.Expr))
	case ast.PreIncrement:
		return fmt.Sprintf("++(%s)", x.expr(ex.Expr))
	case ast.PreDecrement:
		return fmt.Sprintf("--(%s)", x.expr(ex.Expr))
	case ast.Unwrap, ast.Try:
		return fmt.Sprintf("(%s).value", x.expr(ex.Expr))
	default:
		return fmt.Sprintf("(%s%s)", ex.Op.String(), x.expr(ex.Expr))
	}
}

// wrapForTarget renders e for a position (a return, in practice) whose
// static target type is target. C6's bidirectional check_expr allows a
// bare `T` value where an `?T` is expected (spec.md §4.6 scenario S4) but
// leaves no AST trace of the wrap — the checker caches e's own inferred
// type (T), not target (option<T>), in exprTypes. The emitter has to redo
// that coercion decision here: if target is one Option layer around e's
// own type, synthesize the wrap as a compound literal; otherwise e's C
// rendering already has the right type.
func (x *exprEmitter) wrapForTarget(target types.Type, e ast.Expr) string {
	rendered := x.expr(e)
	if _, ok := types.AsOptionInner(target); !ok {
		return rendered
	}
	if got := x.e.c.ExprType(e); types.Equal(got, target) {
		return rendered // e was already option-typed (e.g. `none`, or an option-returning call)
	}
	return fmt.Sprintf("(%s){1, %s}", x.e.typeName(target), rendered)
}

func (x *exprEmitter) assign(ex *ast.AssignExpr) string {
	if ex.Binary != nil {
		return fmt.Sprintf("(%s %s= %s)", x.expr(ex.Target), ex.Binary.String(), x.expr(ex.Value))
	}
	return fmt.Sprintf("(%s = %s)", x.expr(ex.Target), x.expr(ex.Value))
}

func (x *exprEmitter) call(ex *ast.CallExpr) string {
	var args strings.Builder
	for i, a := range ex.Args {
		if i > 0 {
			args.WriteString(", ")
		}
		args.WriteString(x.expr(a.Value))
	}
	return fmt.Sprintf("%s(%s)", x.expr(ex.Callee), args.String())
}

func (x *exprEmitter) tuple(ex *ast.TupleExpr) string {
	ty := x.e.typeName(x.e.c.ExprType(ex))
	var fields strings.Builder
	for i, el := range ex.Elems {
		if i > 0 {
			fields.WriteString(", ")
		}
		fields.WriteString(x.expr(el))
	}
	return fmt.Sprintf("(%s){%s}", ty, fields.String())
}

func (x *exprEmitter) subscript(ex *ast.SubscriptExpr) string {
	if len(ex.Args) != 1 {
		return "(ctl_panic(\"multi-dimensional subscript unsupported\"), (void)0)"
	}
	return fmt.Sprintf("(%s)[%s]", x.expr(ex.Callee), x.expr(ex.Args[0]))
}

// ifExpr renders an if-expression used in value position (e.g. as a `let`
// initializer) via C's ternary operator; ifStmt handles the statement
// position case with real C control flow instead.
func (x *exprEmitter) ifExpr(ex *ast.IfExpr) string {
	elseVal := "0"
	if ex.ElseBranch != nil {
		elseVal = x.tailExpr(ex.ElseBranch)
	}
	return fmt.Sprintf("((%s) ? (%s) : (%s))", x.expr(ex.Cond), x.tailExpr(ex.IfBranch), elseVal)
}

func (x *exprEmitter) tailExpr(e ast.Expr) string {
	if b, ok := e.(*ast.BlockExpr); ok {
		return x.blockTail(b)
	}
	return x.expr(e)
}

// blockTail renders a block used as a value: GCC/Clang statement
// expressions (`({ ...; tail; })`), the same non-standard extension the
// teacher's own build relies on implicitly via cgo on those two
// toolchains; MSVC targets are out of scope (spec.md §6 lists no Windows
// target).
func (x *exprEmitter) blockTail(b *ast.BlockExpr) string {
	var body strings.Builder
	for i, st := range b.Stmts {
		if i == len(b.Stmts)-1 {
			if es, ok := st.(*ast.ExprStmt); ok {
				fmt.Fprintf(&body, "%s;", x.expr(es.Expr))
				continue
			}
		}
		se := &stmtEmitter{e: x.e, buf: &body, indent: 0, retType: x.retType}
		se.stmt(st)
	}
	return fmt.Sprintf("({ %s })", body.String())
}

// structInit renders `Name { field: value, ... }` construction as a C
// compound literal, laid out in the same field order declareStructCtor /
// declareUnionVariantCtors used to build the struct (emitter.go).
func (x *exprEmitter) structInit(ex *ast.StructInitExpr) string {
	ty := x.e.c.ExprType(ex)
	name := x.e.typeName(ty)
	var fields strings.Builder
	for i, a := range ex.Args {
		if i > 0 {
			fields.WriteString(", ")
		}
		if a.Label != "" {
			fmt.Fprintf(&fields, ".%s = %s", a.Label, x.expr(a.Value))
		} else {
			fields.WriteString(x.expr(a.Value))
		}
	}
	return fmt.Sprintf("(%s){%s}", name, fields.String())
}
