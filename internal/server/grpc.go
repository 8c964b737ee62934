package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/timetable-import/internal/common"
)

const ServiceName = "timetable.v1.TimetableService"

// TimetableServiceServer is the gRPC surface. Messages are google.protobuf.Struct
// carrying the same JSON documents as the HTTP API.
type TimetableServiceServer interface {
	ExtractTimetable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportTimetable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitImport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEntries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetImportJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportTimetable(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(TimetableServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TimetableServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TimetableServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var TimetableServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimetableServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ExtractTimetable", TimetableServiceServer.ExtractTimetable),
		unary("ImportTimetable", TimetableServiceServer.ImportTimetable),
		unary("SubmitImport", TimetableServiceServer.SubmitImport),
		unary("ListEntries", TimetableServiceServer.ListEntries),
		unary("GetImportJob", TimetableServiceServer.GetImportJob),
		unary("ExportTimetable", TimetableServiceServer.ExportTimetable),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timetable/v1/timetable.proto",
}

func RegisterTimetableServiceServer(s grpc.ServiceRegistrar, srv TimetableServiceServer) {
	s.RegisterService(&TimetableServiceDesc, srv)
}

// GRPCServer adapts Service to TimetableServiceServer.
type GRPCServer struct {
	svc    *Service
	logger *slog.Logger
}

func NewGRPCServer(svc *Service, logger *slog.Logger) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{svc: svc, logger: logger}
}

func (g *GRPCServer) ExtractTimetable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ExtractInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "ExtractTimetable", func() (any, error) { return g.svc.Extract(ctx, in) })
}

func (g *GRPCServer) ImportTimetable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ImportInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "ImportTimetable", func() (any, error) { return g.svc.Import(ctx, in) })
}

func (g *GRPCServer) SubmitImport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ImportInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "SubmitImport", func() (any, error) { return g.svc.Submit(ctx, in) })
}

func (g *GRPCServer) ListEntries(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		TimetableID string `json:"timetableId"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "ListEntries", func() (any, error) { return g.svc.ListEntries(ctx, in.TimetableID) })
}

func (g *GRPCServer) GetImportJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		JobID string `json:"jobId"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "GetImportJob", func() (any, error) { return g.svc.GetJob(ctx, in.JobID) })
}

// ExportTimetable returns the document base64-encoded in "content".
func (g *GRPCServer) ExportTimetable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ExportInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return respond(g.logger, "ExportTimetable", func() (any, error) { return g.svc.Export(ctx, in) })
}

func respond(logger *slog.Logger, method string, fn func() (any, error)) (*structpb.Struct, error) {
	start := time.Now()
	out, err := fn()
	if err != nil {
		logger.Warn("grpc.call.failed", "method", method, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.ToStatus(err)
	}
	s, err := toStruct(out)
	if err != nil {
		logger.Error("grpc.encode.failed", "method", method, "error", err)
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	logger.Debug("grpc.call.ok", "method", method, "elapsed_ms", time.Since(start).Milliseconds())
	return s, nil
}

func fromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return common.InvalidArgumentError("request body is required")
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return common.InvalidArgumentErrorf("decode request: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return common.InvalidArgumentErrorf("decode request: %v", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return out, nil
}

// Client is a thin caller for TimetableService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Call invokes method with req encoded as a Struct and decodes the reply into resp.
func (c *Client) Call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	b, err := protojson.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, resp)
}
