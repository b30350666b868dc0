package lspsvc

import (
	"strings"
	"testing"
)

const sampleSrc = `
fn add(a: i32, b: i32): i32 {
	return a + b;
}

fn main(): i32 {
	return add(1, 2);
}
`

func TestStoreOpenAndGet(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	if doc.Sink.HasErrors() {
		t.Fatalf("unexpected check errors: %v", doc.Sink.Errors())
	}
	got, ok := store.Get("file:///sample.ctl")
	if !ok || got != doc {
		t.Fatal("expected Get to return the just-opened document")
	}
	if _, ok := store.Get("file:///missing.ctl"); ok {
		t.Fatal("expected Get on an unopened URI to report not-found")
	}
}

func TestStoreCloseRemovesDocument(t *testing.T) {
	store := NewStore()
	store.Open("file:///sample.ctl", sampleSrc)
	store.Close("file:///sample.ctl")
	if _, ok := store.Get("file:///sample.ctl"); ok {
		t.Fatal("expected document to be gone after Close")
	}
}

func TestHoverFindsEnclosingFunction(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	pos := uint32(strings.Index(sampleSrc, "a + b"))
	text, ok := Hover(doc, pos)
	if !ok {
		t.Fatal("expected a hover result inside add's body")
	}
	if !strings.Contains(text, "add") {
		t.Fatalf("expected hover text to name the enclosing function, got %q", text)
	}
}

func TestHoverOutsideAnyFunction(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	if _, ok := Hover(doc, 0); ok {
		t.Fatal("expected no hover result at position 0, outside any function body")
	}
}

func TestDefinitionFindsFunctionSpan(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	sp, ok := Definition(doc, "add")
	if !ok {
		t.Fatal("expected to find add's declaration span")
	}
	if sp.Len == 0 {
		t.Fatal("expected a non-empty span for add's declaration")
	}
}

func TestDefinitionMissingSymbol(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	if _, ok := Definition(doc, "nope"); ok {
		t.Fatal("expected no definition for an undeclared symbol")
	}
}

func TestCompletionsListsVisibleNames(t *testing.T) {
	store := NewStore()
	doc := store.Open("file:///sample.ctl", sampleSrc)
	pos := uint32(strings.Index(sampleSrc, "add(1, 2)"))
	names := Completions(doc, pos)
	found := false
	for _, n := range names {
		if n == "add" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'add' among completions inside main, got %v", names)
	}
}
