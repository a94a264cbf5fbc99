package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName          = "omnipos.assistant.v1.AssistantService"
	ProcessCommandMethod = "/" + ServiceName + "/ProcessCommand"
)

// AssistantServer is the server side of AssistantService. Requests and replies are
// well-known Struct messages: {"text": "..."} in, the chat result out.
type AssistantServer interface {
	ProcessCommand(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessCommand", Handler: processCommandHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/assistant/v1/assistant.proto",
}

func RegisterAssistantServer(s grpc.ServiceRegistrar, srv AssistantServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func processCommandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AssistantServer).ProcessCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProcessCommandMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AssistantServer).ProcessCommand(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls AssistantService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ProcessCommand(ctx context.Context, text string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProcessCommandMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
