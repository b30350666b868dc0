package check

import (
	"testing"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/lexer"
	"github.com/delta229/ctl/internal/parser"
)

func checkSrc(t *testing.T, src string) (*Checker, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	file := sink.AddFile("test.ctl")
	toks := lexer.New(src, file, sink).Tokenize()
	prog := parser.New(toks, file, sink).ParseProgram()
	c := NewChecker(sink)
	c.Check([]*ast.Program{prog})
	return c, sink
}

func TestCheckSimpleFunctionBody(t *testing.T) {
	_, sink := checkSrc(t, `fn add(a: i32, b: i32): i32 { return a + b; }`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestCheckMismatchedReturnReported(t *testing.T) {
	_, sink := checkSrc(t, `fn f(): i32 { return true; }`)
	if !sink.HasErrors() {
		t.Fatal("expected a type mismatch on a bool returned where i32 is declared")
	}
}

func TestCheckStructMemberAccess(t *testing.T) {
	_, sink := checkSrc(t, `
struct Point { x: i32, y: i32 }
fn sum(p: Point): i32 { return p.x + p.y; }
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestCheckUnionMatchExhaustive(t *testing.T) {
	_, sink := checkSrc(t, `
union Shape {
	Circle(f64),
	Square(f64),
}
fn area(s: Shape): f64 {
	return match s {
		Shape::Circle(r) => r,
		Shape::Square(side) => side,
	};
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestCheckUnionMatchNonExhaustiveReported(t *testing.T) {
	_, sink := checkSrc(t, `
union Shape {
	Circle(f64),
	Square(f64),
}
fn area(s: Shape): f64 {
	return match s {
		Shape::Circle(r) => r,
	};
}
`)
	if !sink.HasErrors() {
		t.Fatal("expected missing 'Square' arm to be reported")
	}
}

func TestCheckUndeclaredSymbolReported(t *testing.T) {
	_, sink := checkSrc(t, `fn f(): i32 { return nope; }`)
	if !sink.HasErrors() {
		t.Fatal("expected an unresolved symbol diagnostic")
	}
}

// The remaining tests cover spec.md §8's end-to-end scenarios S1-S6.
// Struct member syntax mixes fn declarations into the struct body are
// written against the `impl { ... }` form the parser actually accepts
// (decl.go's parseStructBody splits shape from behavior), not literal
// spec.md source.

func TestScenarioS1StructAndMethod(t *testing.T) {
	_, sink := checkSrc(t, `
struct P { x: i32, y: i32 } impl {
	pub fn sum(this): i32 { return this.x + this.y; }
}
fn main(): i32 { return P(x: 1, y: 2).sum(); }
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestScenarioS2ExhaustivenessFail(t *testing.T) {
	_, sink := checkSrc(t, `
union Color { Red, Green, Blue }
fn f(c: Color): i32 {
	return match c {
		Color::Red => 0,
		Color::Green => 1,
	};
}
`)
	if !sink.HasErrors() {
		t.Fatal("expected a missing-variant 'Blue' diagnostic")
	}
}

func TestScenarioS3GenericInferenceAndBound(t *testing.T) {
	_, sink := checkSrc(t, `
trait Add { fn add(this, rhs: This): This; }
struct I {} impl Add {
	fn add(this, rhs: I): I { return this; }
}
fn twice<T: Add>(x: T): T { return x.add(x); }
fn main(): I { return twice(I()); }
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestScenarioS4OptionCoercionAndCoalesce(t *testing.T) {
	_, sink := checkSrc(t, `
fn f(a: i32?, b: i32): i32 { return a ?? b; }
fn g(): i32? { return 5; }
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
}

func TestScenarioS5UnsafeGate(t *testing.T) {
	_, sink := checkSrc(t, `fn r(p: *raw i32): i32 { return *p; }`)
	if !sink.HasErrors() {
		t.Fatal("expected an 'unsafe operation' diagnostic on the un-gated deref")
	}

	_, sink2 := checkSrc(t, `fn r(p: *raw i32): i32 { return unsafe { *p }; }`)
	if sink2.HasErrors() {
		t.Fatalf("unexpected errors once gated by unsafe {}: %v", sink2.Errors())
	}
}

func TestScenarioS6UsePrivacy(t *testing.T) {
	_, sink := checkSrc(t, `
mod m {
	fn priv(): i32 { return 0; }
	pub fn pub_(): i32 { return priv(); }
}
use m::priv;
fn main(): i32 { return priv(); }
`)
	if !sink.HasErrors() {
		t.Fatal("expected a privacy diagnostic on the use of m::priv from outside the module")
	}
}
