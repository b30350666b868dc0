// Package lspsvc is the language-server collaborator (spec.md §6 "lsp"
// subcommand; SPEC_FULL.md §11 DOMAIN STACK): it answers hover,
// completion, and definition queries against a live Checker over gRPC,
// using dynamic protobuf messages built from an in-memory .proto schema
// at startup rather than generated *.pb.go stubs — the same no-codegen
// pattern tools like grpcurl build on top of github.com/jhump/protoreflect
// for. github.com/google/uuid generates a correlation id per request,
// returned in the Open acknowledgement, mirroring the teacher's
// internal/ext host-call tagging
// (funvibe-funxy/internal/ext/inspector.go).
//
// Grounded on the teacher's actual cmd/lsp: a Documents-keyed-by-URI
// store, recompiled from scratch on every edit, answering hover/
// completion/definition by walking the checked program — this package's
// Store and handlers.go mirror that shape, just served over gRPC instead
// of the teacher's JSON-RPC loop (spec.md leaves the LSP collaborator's
// wire protocol unspecified; SPEC_FULL.md §11 is this repo's choice of
// one that exercises the pack's protobuf/grpc/protoreflect stack).
package lspsvc
