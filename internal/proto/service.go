package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "bookmarker.v1.Bookmarker"

// BookmarkerServer is the read-only RPC surface. Requests and responses are
// google.protobuf.Struct so no generated code is needed.
type BookmarkerServer interface {
	ListLinks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLink(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCollections(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var BookmarkerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookmarkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListLinks", Handler: unaryHandler("ListLinks", BookmarkerServer.ListLinks)},
		{MethodName: "GetLink", Handler: unaryHandler("GetLink", BookmarkerServer.GetLink)},
		{MethodName: "ListCollections", Handler: unaryHandler("ListCollections", BookmarkerServer.ListCollections)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookmarker/v1/bookmarker.proto",
}

func RegisterBookmarkerServer(s grpc.ServiceRegistrar, srv BookmarkerServer) {
	s.RegisterService(&BookmarkerServiceDesc, srv)
}

type method func(BookmarkerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, m method) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + serviceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(BookmarkerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return m(srv.(BookmarkerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type BookmarkerClient struct {
	cc grpc.ClientConnInterface
}

func NewBookmarkerClient(cc grpc.ClientConnInterface) *BookmarkerClient {
	return &BookmarkerClient{cc: cc}
}

func (c *BookmarkerClient) ListLinks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListLinks", in, opts...)
}

func (c *BookmarkerClient) GetLink(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetLink", in, opts...)
}

func (c *BookmarkerClient) ListCollections(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListCollections", in, opts...)
}

func (c *BookmarkerClient) invoke(ctx context.Context, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+name, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
