package parser

import (
	"testing"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	toks := lexer.New(src, 0, sink).Tokenize()
	prog := New(toks, 0, sink).ParseProgram()
	return prog, sink
}

func TestParseStructWithMethod(t *testing.T) {
	prog, sink := parseSrc(t, `
		struct Point {
			x: i32,
			y: i32,
		} impl {
			fn sum(this): i32 {
				this.x + this.y
			}
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 top-level stmt, got %d", len(prog.Stmts))
	}
	uts, ok := prog.Stmts[0].(*ast.UserTypeStmt)
	if !ok || uts.Decl.Kind != ast.KindStruct {
		t.Fatalf("expected a struct decl, got %#v", prog.Stmts[0])
	}
	if uts.Decl.Struct.Name != "Point" || len(uts.Decl.Struct.Members) != 2 {
		t.Fatalf("unexpected struct shape: %#v", uts.Decl.Struct)
	}
	if len(uts.Decl.Struct.Functions) != 1 || uts.Decl.Struct.Functions[0].Decl.Name != "sum" {
		t.Fatalf("expected method 'sum', got %#v", uts.Decl.Struct.Functions)
	}
}

func TestParseUnionAndMatch(t *testing.T) {
	prog, sink := parseSrc(t, `
		union Shape {
			Circle(f64),
			Square(f64),
		}
		fn area(s: Shape): f64 {
			match s {
				Shape::Circle(r) => r * r,
				Shape::Square(side) => side * side,
			}
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if len(prog.Stmts) != 2 {
		t.Fatalf("expected 2 top-level stmts, got %d", len(prog.Stmts))
	}
}

func TestParseGenericFnWithBound(t *testing.T) {
	prog, sink := parseSrc(t, `
		fn max<T: Ord>(a: T, b: T): T {
			if a > b { a } else { b }
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	fn := prog.Stmts[0].(*ast.FnStmt)
	if len(fn.Decl.TypeParams) != 1 || fn.Decl.TypeParams[0].Name != "T" {
		t.Fatalf("unexpected type params: %#v", fn.Decl.TypeParams)
	}
	if len(fn.Decl.TypeParams[0].Bounds) != 1 {
		t.Fatalf("expected one bound, got %#v", fn.Decl.TypeParams[0].Bounds)
	}
}

func TestParseOptionCoalesce(t *testing.T) {
	prog, sink := parseSrc(t, `fn f(x: i32?): i32 { x ?? 0 }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	fn := prog.Stmts[0].(*ast.FnStmt)
	if _, ok := fn.Decl.Params[0].Ty.(*ast.OptionTypeHint); !ok {
		t.Fatalf("expected an option type hint, got %#v", fn.Decl.Params[0].Ty)
	}
}

func TestParseUnsafeBlock(t *testing.T) {
	_, sink := parseSrc(t, `
		fn f(p: *raw i32): i32 {
			unsafe { *p }
		}
	`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestParseUseStatement(t *testing.T) {
	prog, sink := parseSrc(t, `use core::io::println;`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	use, ok := prog.Stmts[0].(*ast.UseStmt)
	if !ok {
		t.Fatalf("expected a use stmt, got %#v", prog.Stmts[0])
	}
	if len(use.Path.Components) != 3 {
		t.Fatalf("unexpected path: %#v", use.Path)
	}
}
