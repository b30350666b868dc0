package lspsvc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// protoSource is parsed once at startup rather than shipped as generated
// Go bindings — the dynamic.Message values built against it stand in for
// protoc-gen-go structs (spec.md §6 LSP collaborator; SPEC_FULL.md §11).
const protoSource = `
syntax = "proto3";
package lspsvc;

message OpenRequest {
  string uri = 1;
  string text = 2;
}

message HoverRequest {
  string uri = 1;
  uint32 pos = 2;
}

message HoverResponse {
  bool found = 1;
  string text = 2;
}

message CompletionRequest {
  string uri = 1;
  uint32 pos = 2;
}

message CompletionResponse {
  repeated string items = 1;
}

message DefinitionRequest {
  string uri = 1;
  string symbol = 2;
}

message DefinitionResponse {
  bool found = 1;
  uint32 pos = 2;
  uint32 len = 3;
}

message Ack {
  string request_id = 1;
}
`

// schema holds the message descriptors loadSchema parses out of
// protoSource, looked up once and reused for every dynamic.NewMessage
// call rather than re-walking the descriptor per request.
type schema struct {
	openReq                       *desc.MessageDescriptor
	hoverReq, hoverResp           *desc.MessageDescriptor
	completionReq, completionResp *desc.MessageDescriptor
	definitionReq, definitionResp *desc.MessageDescriptor
	ack                           *desc.MessageDescriptor
	wireSize                      int
}

// loadSchema parses protoSource from memory (protoparse.FileContentsFromMap,
// no filesystem access) into a set of message descriptors.
func loadSchema() (*schema, error) {
	p := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{"lspsvc.proto": protoSource}),
	}
	fds, err := p.ParseFiles("lspsvc.proto")
	if err != nil {
		return nil, err
	}
	fd := fds[0]
	find := func(name string) *desc.MessageDescriptor {
		return fd.FindMessage("lspsvc." + name)
	}
	size, err := describe(fd)
	if err != nil {
		return nil, fmt.Errorf("lspsvc: describing schema: %w", err)
	}
	return &schema{
		openReq:        find("OpenRequest"),
		hoverReq:       find("HoverRequest"),
		hoverResp:      find("HoverResponse"),
		completionReq:  find("CompletionRequest"),
		completionResp: find("CompletionResponse"),
		definitionReq:  find("DefinitionRequest"),
		definitionResp: find("DefinitionResponse"),
		ack:            find("Ack"),
		wireSize:       size,
	}, nil
}

// describe renders fd's raw FileDescriptorProto through the generated
// google.golang.org/protobuf machinery (the same message type protoc-gen-go
// would hand a real service), mostly as a byte-size sanity check that the
// in-memory schema parsed into something real before the server starts
// answering RPCs against it.
func describe(fd *desc.FileDescriptor) (int, error) {
	var raw *descriptorpb.FileDescriptorProto = fd.AsFileDescriptorProto()
	b, err := proto.Marshal(raw)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
