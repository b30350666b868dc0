package lspsvc

import (
	"fmt"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/check"
	"github.com/delta229/ctl/internal/scope"
	"github.com/delta229/ctl/internal/types"
)

// enclosingFunction finds the innermost declared function whose source
// span (from the signature to the end of its last body statement) covers
// pos, preferring the narrowest match when spans nest (a
// method's span sits inside its extension/impl block's, which this
// package never declares a FunctionRecord for, so in practice this is
// just "the function containing pos"). This is the one position index
// hover/completion/definition all key off; there's no finer-grained
// (statement or expression level) index in this package.
func enclosingFunction(doc *Document, pos uint32) (check.FunctionRecord, bool) {
	var best check.FunctionRecord
	var bestLen uint32
	found := false
	for i, fn := range doc.Checker.Functions {
		sp := fn.Decl.Sp
		end := sp.Pos + sp.Len
		if body := doc.Checker.FunctionBody(i); len(body) > 0 {
			last := body[len(body)-1].Span()
			end = last.Pos + last.Len
		}
		if pos < sp.Pos || pos >= end {
			continue
		}
		if !found || end-sp.Pos < bestLen {
			best, bestLen, found = fn, end-sp.Pos, true
		}
	}
	return best, found
}

// Hover renders a one-line signature for the function enclosing pos
// (spec.md §6 LSP collaborator).
func Hover(doc *Document, pos uint32) (string, bool) {
	fn, ok := enclosingFunction(doc, pos)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("fn %s(...): %s", fn.FullName, types.Name(fn.RetType)), true
}

// Completions lists every name visible in the value and type namespaces
// from the enclosing function's scope, walking its parents up to and
// including the enclosing module, the same order FindInVNS/FindInTNS
// search (internal/scope/scope.go).
func Completions(doc *Document, pos uint32) []string {
	fn, ok := enclosingFunction(doc, pos)
	if !ok {
		return nil
	}
	names := make([]string, 0, 8)
	sc := fn.Scope
	for {
		for name := range doc.Checker.Scopes.AllVNS(sc) {
			names = append(names, name)
		}
		for name := range doc.Checker.Scopes.AllTNS(sc) {
			names = append(names, name)
		}
		s := doc.Checker.Scopes.Scope(sc)
		if s.Kind == scope.KindModule || !s.HasParent {
			break
		}
		sc = s.Parent
	}
	return names
}

// Definition finds the declaration span of a named function (spec.md §6
// LSP collaborator "definition").
func Definition(doc *Document, symbol string) (ast.Span, bool) {
	for _, fn := range doc.Checker.Functions {
		if fn.Decl.Name == symbol {
			return fn.Decl.Sp, true
		}
	}
	return ast.Span{}, false
}
