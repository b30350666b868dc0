package lspsvc

import (
	"sync"

	"github.com/delta229/ctl/internal/ast"
	"github.com/delta229/ctl/internal/check"
	"github.com/delta229/ctl/internal/diag"
	"github.com/delta229/ctl/internal/lexer"
	"github.com/delta229/ctl/internal/parser"
)

// Document is one open file's last-compiled state — recomputed whole-hog
// on every Open, since this package (like the rest of SPEC_FULL.md's
// scope) does no incremental re-checking (spec.md §5: single-threaded,
// whole-project analysis with no incremental re-entry).
type Document struct {
	URI     string
	Source  string
	Sink    *diag.Sink
	Program *ast.Program
	Checker *check.Checker
	File    diag.FileId
}

// Store holds every open document keyed by URI. Requests can arrive
// concurrently over separate gRPC streams, so access is mutex-guarded.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open lexes, parses, and checks source under uri, replacing whatever
// Document previously lived at that URI.
func (s *Store) Open(uri, source string) *Document {
	sink := diag.NewSink()
	file := sink.AddFile(uri)
	toks := lexer.New(source, file, sink).Tokenize()
	prog := parser.New(toks, file, sink).ParseProgram()

	c := check.NewChecker(sink)
	c.Check([]*ast.Program{prog})

	doc := &Document{URI: uri, Source: source, Sink: sink, Program: prog, Checker: c, File: file}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

func (s *Store) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}
