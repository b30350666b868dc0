package check

import (
	"strconv"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/scope"
)

// constEvalInt evaluates the small subset of expressions ctl allows in an
// array-length position (spec.md §4.6 "const-eval for array sizes"):
// integer literals and arithmetic over them. Anything else fails rather
// than attempting general constant folding — original_source's consteval
// is far larger, but array lengths are the only place SPEC_FULL.md
// requires it.
func (c *Checker) constEvalInt(e ast.Expr, sc scope.ScopeId) (int, bool) {
	switch ex := e.(type) {
	case *ast.IntLit:
		n, err := strconv.ParseInt(ex.Digits, 0, 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	case *ast.UnaryExpr:
		v, ok := c.constEvalInt(ex.Expr, sc)
		if !ok {
			return 0, false
		}
		switch ex.Op {
		case ast.Neg:
			return -v, true
		case ast.Plus:
			return v, true
		}
		return 0, false
	case *ast.BinaryExpr:
		l, ok := c.constEvalInt(ex.Left, sc)
		if !ok {
			return 0, false
		}
		r, ok := c.constEvalInt(ex.Right, sc)
		if !ok {
			return 0, false
		}
		switch ex.Op {
		case ast.Add:
			return l + r, true
		case ast.Sub:
			return l - r, true
		case ast.Mul:
			return l * r, true
		case ast.Div:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.Rem:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		}
		return 0, false
	}
	return 0, false
}
