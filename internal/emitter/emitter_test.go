package emitter

import (
	"strings"
	"testing"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/check"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/lexer"
	"github.com/delta229/ctl/internal/parser"
)

func emitSrc(t *testing.T, src string, opts Options) string {
	t.Helper()
	sink := diag.NewSink()
	file := sink.AddFile("test.ctl")
	toks := lexer.New(src, file, sink).Tokenize()
	prog := parser.New(toks, file, sink).ParseProgram()
	c := check.NewChecker(sink)
	c.Check([]*ast.Program{prog})
	if sink.HasErrors() {
		t.Fatalf("unexpected check errors: %v", sink.Errors())
	}
	var sb strings.Builder
	if err := New(c, opts).Emit(&sb); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return sb.String()
}

func TestEmitSimpleFunction(t *testing.T) {
	out := emitSrc(t, `fn add(a: i32, b: i32): i32 { return a + b; }`, Options{})
	if !strings.Contains(out, "add(") {
		t.Fatalf("expected a mangled 'add' function in output, got:\n%s", out)
	}
	if strings.Contains(out, "int main(") {
		t.Fatalf("expected a main trampoline to be skipped when no `main` is declared, got:\n%s", out)
	}
}

func TestEmitMainTrampoline(t *testing.T) {
	out := emitSrc(t, `fn main(): i32 { return 0; }`, Options{})
	if !strings.Contains(out, "int main(int argc, char **argv)") {
		t.Fatalf("expected a C main() trampoline, got:\n%s", out)
	}
}

func TestEmitLibSkipsTrampoline(t *testing.T) {
	out := emitSrc(t, `fn main(): i32 { return 0; }`, Options{Lib: true})
	if strings.Contains(out, "int main(int argc, char **argv)") {
		t.Fatalf("--lib build should not emit a main trampoline, got:\n%s", out)
	}
}

func TestEmitStructLayout(t *testing.T) {
	out := emitSrc(t, `
struct Point { x: i32, y: i32 } impl {
	fn sum(this): i32 { return this.x + this.y; }
}
fn main(): i32 { return Point(x: 1, y: 2).sum(); }
`, Options{})
	if !strings.Contains(out, "typedef struct Point {") {
		t.Fatalf("expected a generated Point struct, got:\n%s", out)
	}
}

func TestEmitOptionReturnWrapsValue(t *testing.T) {
	out := emitSrc(t, `fn g(): i32? { return 5; }`, Options{})
	if !strings.Contains(out, "ctl_option_") {
		t.Fatalf("expected a synthesized option<i32> struct for g's return type, got:\n%s", out)
	}
	if !strings.Contains(out, "has_value") {
		t.Fatalf("expected option struct fields has_value/value, got:\n%s", out)
	}
}
