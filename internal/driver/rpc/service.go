package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC service path every method/stream is registered
// under.
const ServiceName = "monsgeek.KeyboardService"

// KeyboardServiceServer is implemented by the driver process.
type KeyboardServiceServer interface {
	GetState(ctx context.Context, req *GetStateRequest) (*GetStateResponse, error)
	GetDeviceInfo(ctx context.Context, req *GetStateRequest) (*DeviceInfo, error)
	SetProfile(ctx context.Context, req *SetProfileRequest) (*SetProfileResponse, error)
	SetKeyAction(ctx context.Context, req *SetKeyActionRequest) (*SetKeyActionResponse, error)
	SetLEDParams(ctx context.Context, req *SetLEDParamsRequest) (*SetLEDParamsResponse, error)
	SetCalibration(ctx context.Context, req *CalibrationRequest) (*CalibrationResponse, error)
	GetBatteryStatus(ctx context.Context, req *GetBatteryStatusRequest) (*GetBatteryStatusResponse, error)
	StreamEvents(req *StreamEventsRequest, stream KeyboardService_StreamEventsServer) error
}

// KeyboardService_StreamEventsServer is the server side of the
// StreamEvents server-streaming RPC.
type KeyboardService_StreamEventsServer interface {
	Send(*VendorEventMessage) error
	grpc.ServerStream
}

type keyboardServiceStreamEventsServer struct {
	grpc.ServerStream
}

func (s *keyboardServiceStreamEventsServer) Send(m *VendorEventMessage) error {
	return s.ServerStream.SendMsg(m)
}

func handleGetState(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetStateRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).GetState(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetState"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).GetState(ctx, req.(*GetStateRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleGetDeviceInfo(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetStateRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).GetDeviceInfo(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetDeviceInfo"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).GetDeviceInfo(ctx, req.(*GetStateRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleSetProfile(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SetProfileRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).SetProfile(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/SetProfile"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).SetProfile(ctx, req.(*SetProfileRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleSetKeyAction(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SetKeyActionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).SetKeyAction(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/SetKeyAction"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).SetKeyAction(ctx, req.(*SetKeyActionRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleSetLEDParams(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SetLEDParamsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).SetLEDParams(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/SetLEDParams"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).SetLEDParams(ctx, req.(*SetLEDParamsRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleSetCalibration(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(CalibrationRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).SetCalibration(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/SetCalibration"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).SetCalibration(ctx, req.(*CalibrationRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleGetBatteryStatus(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetBatteryStatusRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyboardServiceServer).GetBatteryStatus(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/GetBatteryStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyboardServiceServer).GetBatteryStatus(ctx, req.(*GetBatteryStatusRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handleStreamEvents(srv any, stream grpc.ServerStream) error {
	req := new(StreamEventsRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(KeyboardServiceServer).StreamEvents(req, &keyboardServiceStreamEventsServer{stream})
}

// ServiceDesc is registered with grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*KeyboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: handleGetState},
		{MethodName: "GetDeviceInfo", Handler: handleGetDeviceInfo},
		{MethodName: "SetProfile", Handler: handleSetProfile},
		{MethodName: "SetKeyAction", Handler: handleSetKeyAction},
		{MethodName: "SetLEDParams", Handler: handleSetLEDParams},
		{MethodName: "SetCalibration", Handler: handleSetCalibration},
		{MethodName: "GetBatteryStatus", Handler: handleGetBatteryStatus},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamEvents", Handler: handleStreamEvents, ServerStreams: true},
	},
	Metadata: "keyboard.proto",
}

// RegisterKeyboardServiceServer registers impl with s.
func RegisterKeyboardServiceServer(s grpc.ServiceRegistrar, impl KeyboardServiceServer) {
	s.RegisterService(&ServiceDesc, impl)
}
