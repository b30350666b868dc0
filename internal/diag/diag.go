// Package diag is the diagnostics sink (C1): an append-only accumulator of
// errors and warnings keyed to source spans, with a gate that lets the
// checker silence errors during speculative resolution.
package diag

import "fmt"

// FileId is an opaque index into the sink's file table.
type FileId uint32

// Span locates a run of bytes within a single file.
type Span struct {
	Pos  uint32
	Len  uint32
	File FileId
}

// Code identifies the class of a diagnostic. Grouped by the error-kind
// taxonomy in spec.md §7: lexical, parse, resolution, type, generics,
// pattern, safety, structural, semantic.
type Code string

const (
	CodeLexical    Code = "LEX"
	CodeParse      Code = "PARSE"
	CodeResolution Code = "RESOLVE"
	CodeType       Code = "TYPE"
	CodeGenerics   Code = "GENERIC"
	CodePattern    Code = "PATTERN"
	CodeSafety     Code = "SAFETY"
	CodeStructural Code = "STRUCT"
	CodeSemantic   Code = "SEMANTIC"
	CodeWarning    Code = "WARN"
)

// Diagnostic is a single error or warning.
type Diagnostic struct {
	Code    Code
	Message string
	Span    Span
}

func New(code Code, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// Sink accumulates diagnostics for one compilation. Errors logged while
// errorsDisabled is set are silently dropped; warnings never are.
type Sink struct {
	errors        []Diagnostic
	warnings      []Diagnostic
	paths         []string
	errorsDisabled bool
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Error(d Diagnostic) {
	if s.errorsDisabled {
		return
	}
	s.errors = append(s.errors, d)
}

func (s *Sink) Errorf(code Code, span Span, format string, args ...any) {
	s.Error(New(code, span, format, args...))
}

func (s *Sink) Warn(d Diagnostic) {
	s.warnings = append(s.warnings, d)
}

func (s *Sink) Warnf(code Code, span Span, format string, args ...any) {
	s.Warn(New(code, span, format, args...))
}

// AddFile registers a source file and returns its id. Ids are stable for
// the lifetime of the sink and are never reused.
func (s *Sink) AddFile(path string) FileId {
	s.paths = append(s.paths, path)
	return FileId(len(s.paths) - 1)
}

func (s *Sink) FilePath(id FileId) string {
	return s.paths[id]
}

func (s *Sink) HasErrors() bool {
	return len(s.errors) > 0
}

func (s *Sink) Errors() []Diagnostic   { return s.errors }
func (s *Sink) Warnings() []Diagnostic { return s.warnings }

// SetErrorsEnabled toggles error recording and returns the previous state.
// Used while speculatively resolving a path or overload so a failed guess
// never surfaces to the user.
func (s *Sink) SetErrorsEnabled(enabled bool) bool {
	prev := !s.errorsDisabled
	s.errorsDisabled = !enabled
	return prev
}

// CaptureErrors returns a checkpoint that TruncateErrors can roll back to.
func (s *Sink) CaptureErrors() int {
	return len(s.errors)
}

func (s *Sink) TruncateErrors(idx int) {
	s.errors = s.errors[:idx]
}
