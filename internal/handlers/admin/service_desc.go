package admin

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "rpgaction.admin.v1.AdminService"

// Full method names
const (
	MethodListSessions = "/" + ServiceName + "/ListSessions"
	MethodEndSession   = "/" + ServiceName + "/EndSession"
	MethodListRuns     = "/" + ServiceName + "/ListRuns"
)

// AdminServer is the server API for the admin service. Requests and
// responses are structpb.Struct documents.
type AdminServer interface {
	ListSessions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAdminServer registers srv on s
func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the admin service for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSessions", Handler: unary(MethodListSessions, AdminServer.ListSessions)},
		{MethodName: "EndSession", Handler: unary(MethodEndSession, AdminServer.EndSession)},
		{MethodName: "ListRuns", Handler: unary(MethodListRuns, AdminServer.ListRuns)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpgaction/admin/v1/admin.proto",
}

type unaryMethod func(AdminServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdminServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AdminServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AdminClient calls the admin service
type AdminClient struct {
	cc grpc.ClientConnInterface
}

// NewAdminClient creates a client over cc
func NewAdminClient(cc grpc.ClientConnInterface) *AdminClient {
	return &AdminClient{cc: cc}
}

// ListSessions lists running sessions
func (c *AdminClient) ListSessions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListSessions, in, opts...)
}

// EndSession stops a session by {"sessionId"}
func (c *AdminClient) EndSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEndSession, in, opts...)
}

// ListRuns lists recent run records, {"limit"} optional
func (c *AdminClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListRuns, in, opts...)
}

func (c *AdminClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
