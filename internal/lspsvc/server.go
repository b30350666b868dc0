package lspsvc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
)

// dynamicCodec marshals/unmarshals the *dynamic.Message values handle
// reads and writes, standing in for the codec a protoc-gen-go service
// would get for free from its generated stubs (spec.md §6 LSP
// collaborator; SPEC_FULL.md §11 "dynamic protobuf messages").
type dynamicCodec struct{}

func (dynamicCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(*dynamic.Message)
	if !ok {
		return nil, fmt.Errorf("lspsvc: codec: unexpected type %T", v)
	}
	return m.Marshal()
}

func (dynamicCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(*dynamic.Message)
	if !ok {
		return fmt.Errorf("lspsvc: codec: unexpected type %T", v)
	}
	return m.Unmarshal(data)
}

func (dynamicCodec) Name() string { return "proto" }

// Server is the gRPC-served LSP collaborator. It registers no generated
// service — grpc.UnknownServiceHandler dispatches every incoming RPC to
// handle by method name instead, since there's no protoc-gen-go interface
// for a schema that only exists in memory.
type Server struct {
	schema *schema
	store  *Store
	grpc   *grpc.Server
}

// NewServer parses the in-memory schema once (protoparse's descriptor
// build isn't cheap enough to redo per request) and wires the gRPC server.
func NewServer() (*Server, error) {
	sc, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("lspsvc: parsing schema: %w", err)
	}
	fmt.Fprintf(os.Stderr, "lspsvc: schema loaded, %d bytes on the wire\n", sc.wireSize)
	s := &Server{schema: sc, store: NewStore()}
	s.grpc = grpc.NewServer(
		grpc.ForceServerCodec(dynamicCodec{}),
		grpc.UnknownServiceHandler(s.handle),
	)
	return s, nil
}

// Serve listens on a unix domain socket (addr, or a default path under
// os.TempDir if empty) and blocks until the listener errors or Stop is
// called.
func (s *Server) Serve(addr string) error {
	if addr == "" {
		addr = filepath.Join(os.TempDir(), "ctl-lsp.sock")
	}
	_ = os.Remove(addr) // stale socket left by a prior crashed run
	lis, err := net.Listen("unix", addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "lspsvc: listening on %s\n", addr)
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() { s.grpc.GracefulStop() }

// handle is the grpc.UnknownServiceHandler: every RPC this server answers
// is dispatched here by method name. A fresh uuid is generated for each
// request, mirroring the teacher's internal/ext host-call tagging; only
// the Open acknowledgement carries it back to the client.
func (s *Server) handle(_ interface{}, stream grpc.ServerStream) error {
	full, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return fmt.Errorf("lspsvc: stream has no method")
	}
	method := full
	if i := strings.LastIndex(full, "/"); i >= 0 {
		method = full[i+1:]
	}
	reqID := uuid.New().String()

	switch method {
	case "Open":
		return s.handleOpen(stream, reqID)
	case "Hover":
		return s.handleHover(stream)
	case "Completion":
		return s.handleCompletion(stream)
	case "Definition":
		return s.handleDefinition(stream)
	default:
		return fmt.Errorf("lspsvc: unknown method %q", method)
	}
}

func (s *Server) handleOpen(stream grpc.ServerStream, reqID string) error {
	req := dynamic.NewMessage(s.schema.openReq)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	uri, _ := req.TryGetFieldByName("uri")
	text, _ := req.TryGetFieldByName("text")
	s.store.Open(asString(uri), asString(text))

	ack := dynamic.NewMessage(s.schema.ack)
	_ = ack.TrySetFieldByName("request_id", reqID)
	return stream.SendMsg(ack)
}

func (s *Server) handleHover(stream grpc.ServerStream) error {
	req := dynamic.NewMessage(s.schema.hoverReq)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	uri, _ := req.TryGetFieldByName("uri")
	pos, _ := req.TryGetFieldByName("pos")

	resp := dynamic.NewMessage(s.schema.hoverResp)
	if doc, ok := s.store.Get(asString(uri)); ok {
		if text, ok := Hover(doc, asUint32(pos)); ok {
			_ = resp.TrySetFieldByName("found", true)
			_ = resp.TrySetFieldByName("text", text)
		}
	}
	return stream.SendMsg(resp)
}

func (s *Server) handleCompletion(stream grpc.ServerStream) error {
	req := dynamic.NewMessage(s.schema.completionReq)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	uri, _ := req.TryGetFieldByName("uri")
	pos, _ := req.TryGetFieldByName("pos")

	resp := dynamic.NewMessage(s.schema.completionResp)
	if doc, ok := s.store.Get(asString(uri)); ok {
		items := Completions(doc, asUint32(pos))
		for _, item := range items {
			_ = resp.TryAddRepeatedFieldByName("items", item)
		}
	}
	return stream.SendMsg(resp)
}

func (s *Server) handleDefinition(stream grpc.ServerStream) error {
	req := dynamic.NewMessage(s.schema.definitionReq)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	uri, _ := req.TryGetFieldByName("uri")
	symbol, _ := req.TryGetFieldByName("symbol")

	resp := dynamic.NewMessage(s.schema.definitionResp)
	if doc, ok := s.store.Get(asString(uri)); ok {
		if sp, ok := Definition(doc, asString(symbol)); ok {
			_ = resp.TrySetFieldByName("found", true)
			_ = resp.TrySetFieldByName("pos", uint32(sp.Pos))
			_ = resp.TrySetFieldByName("len", uint32(sp.Len))
		}
	}
	return stream.SendMsg(resp)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asUint32(v interface{}) uint32 {
	u, _ := v.(uint32)
	return u
}
