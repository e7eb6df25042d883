package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described with well-known message types only, so no
// generated message code is needed:
//
//	service EvaluateService {
//	  rpc Evaluate(google.protobuf.BytesValue) returns (google.protobuf.BytesValue);
//	  rpc CheckExtension(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc Shutdown(google.protobuf.Empty) returns (google.protobuf.Empty);
//	}
const (
	EvaluateService_Evaluate_FullMethodName       = "/fastevaluate.EvaluateService/Evaluate"
	EvaluateService_CheckExtension_FullMethodName = "/fastevaluate.EvaluateService/CheckExtension"
	EvaluateService_Shutdown_FullMethodName       = "/fastevaluate.EvaluateService/Shutdown"
)

type EvaluateServiceClient interface {
	Evaluate(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	CheckExtension(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Shutdown(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type evaluateServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEvaluateServiceClient(cc grpc.ClientConnInterface) EvaluateServiceClient {
	return &evaluateServiceClient{cc}
}

func (c *evaluateServiceClient) Evaluate(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, EvaluateService_Evaluate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *evaluateServiceClient) CheckExtension(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateService_CheckExtension_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *evaluateServiceClient) Shutdown(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, EvaluateService_Shutdown_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type EvaluateServiceServer interface {
	Evaluate(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	CheckExtension(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

type UnimplementedEvaluateServiceServer struct{}

func (UnimplementedEvaluateServiceServer) Evaluate(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Evaluate not implemented")
}
func (UnimplementedEvaluateServiceServer) CheckExtension(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CheckExtension not implemented")
}
func (UnimplementedEvaluateServiceServer) Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Shutdown not implemented")
}

func RegisterEvaluateServiceServer(s grpc.ServiceRegistrar, srv EvaluateServiceServer) {
	s.RegisterService(&EvaluateService_ServiceDesc, srv)
}

func _EvaluateService_Evaluate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluateServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateService_Evaluate_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluateServiceServer).Evaluate(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _EvaluateService_CheckExtension_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluateServiceServer).CheckExtension(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateService_CheckExtension_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluateServiceServer).CheckExtension(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _EvaluateService_Shutdown_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluateServiceServer).Shutdown(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateService_Shutdown_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluateServiceServer).Shutdown(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var EvaluateService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fastevaluate.EvaluateService",
	HandlerType: (*EvaluateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    _EvaluateService_Evaluate_Handler,
		},
		{
			MethodName: "CheckExtension",
			Handler:    _EvaluateService_CheckExtension_Handler,
		},
		{
			MethodName: "Shutdown",
			Handler:    _EvaluateService_Shutdown_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fastevaluate.proto",
}
