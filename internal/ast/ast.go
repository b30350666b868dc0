// Package ast defines the parsed syntax tree the core (C4-C9) consumes.
// It is an external collaborator per spec.md §6: the lexer and parser
// produce these nodes, the checker in internal/check walks them by value
// and never mutates them in place (it builds a parallel "declared"/"checked"
// shadow in the checker's own structures instead). Grounded on
// original_source/src/ast.rs and src/ast/mod.rs, organized file-per-concern
// the way the teacher splits internal/ast (funvibe-funxy) and
// malphas-lang-malphas-lang/internal/ast.
package ast

import "github.com/delta229/ctl/internal/diag"

// FileId identifies a source file. Aliased to diag.FileId so lexer/parser
// spans can be reported through the sink without a conversion step.
type FileId = diag.FileId

// Span locates a span of bytes within a single file.
type Span = diag.Span

// Node is implemented by every AST node so generic walkers can fetch a span
// for diagnostics without a type switch.
type Node interface {
	Span() Span
}

// Attribute is a `@name(props...)` annotation recognized at declaration time
// (spec.md §4.4 point 7: lang, intrinsic, panic_handler, autouse).
type Attribute struct {
	Name  string
	NameSpan Span
	Props []Attribute
}

func (a Attribute) Val() (string, bool) {
	if len(a.Props) == 0 {
		return "", false
	}
	return a.Props[0].Name, true
}

func HasAttr(attrs []Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

func FindAttr(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Program is a single parsed file: a flat top-level statement list.
type Program struct {
	File  FileId
	Stmts []Stmt
}
