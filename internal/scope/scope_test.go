package scope

import "testing"

func TestDeclareAndFindWalksParents(t *testing.T) {
	g := NewGraph()
	mod := g.New(NoScope, false, KindModule, 0, "app")
	fn := g.New(mod, true, KindFunction, 0, "main")
	block := g.New(fn, true, KindBlock, 0, "")

	g.DeclareVariable(fn, "x", VariableId(1), false)
	res, ok := g.FindInVNS(block, "x")
	if !ok || res.Variable != VariableId(1) {
		t.Fatalf("expected to find x via parent walk, got %#v ok=%v", res, ok)
	}
}

func TestFindStopsAtModuleBoundary(t *testing.T) {
	g := NewGraph()
	outer := g.New(NoScope, false, KindModule, 0, "outer")
	inner := g.New(outer, true, KindModule, 0, "inner")
	g.DeclareVariable(outer, "secret", VariableId(1), false)
	if _, ok := g.FindInVNS(inner, "secret"); ok {
		t.Fatal("expected lookup to stop at the inner module boundary")
	}
}

func TestRedeclarationRejected(t *testing.T) {
	g := NewGraph()
	mod := g.New(NoScope, false, KindModule, 0, "app")
	if !g.DeclareFunction(mod, "f", FunctionId(1), true) {
		t.Fatal("first declaration should succeed")
	}
	if g.DeclareFunction(mod, "f", FunctionId(2), true) {
		t.Fatal("second declaration of the same name should fail")
	}
}

func TestFullName(t *testing.T) {
	g := NewGraph()
	outer := g.New(NoScope, false, KindModule, 0, "app")
	inner := g.New(outer, true, KindModule, 0, "util")
	if got, want := g.FullName(inner, "helper"), "app::util::helper"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCanAccessPrivatesSameModuleOnly(t *testing.T) {
	g := NewGraph()
	a := g.New(NoScope, false, KindModule, 1, "a")
	b := g.New(NoScope, false, KindModule, 2, "b")
	if !g.CanAccessPrivates(a, 1) {
		t.Fatal("same module should access its own privates")
	}
	if g.CanAccessPrivates(b, 1) {
		t.Fatal("a different module should not access a's privates")
	}
}

func TestInLoopStopsAtFunctionBoundary(t *testing.T) {
	g := NewGraph()
	mod := g.New(NoScope, false, KindModule, 0, "app")
	loop := g.New(mod, true, KindLoop, 0, "")
	lambda := g.New(loop, true, KindLambda, 0, "")
	if !g.InLoop(loop) {
		t.Fatal("expected InLoop to be true directly inside the loop")
	}
	if g.InLoop(lambda) {
		t.Fatal("expected InLoop to stop at a lambda boundary")
	}
}
