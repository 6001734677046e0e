package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// KeyboardServiceClient mirrors KeyboardServiceServer for callers on the
// other end of the connection, without depending on a generated stub.
type KeyboardServiceClient interface {
	GetState(ctx context.Context, req *GetStateRequest, opts ...grpc.CallOption) (*GetStateResponse, error)
	GetDeviceInfo(ctx context.Context, req *GetStateRequest, opts ...grpc.CallOption) (*DeviceInfo, error)
	SetProfile(ctx context.Context, req *SetProfileRequest, opts ...grpc.CallOption) (*SetProfileResponse, error)
	SetKeyAction(ctx context.Context, req *SetKeyActionRequest, opts ...grpc.CallOption) (*SetKeyActionResponse, error)
	SetLEDParams(ctx context.Context, req *SetLEDParamsRequest, opts ...grpc.CallOption) (*SetLEDParamsResponse, error)
	SetCalibration(ctx context.Context, req *CalibrationRequest, opts ...grpc.CallOption) (*CalibrationResponse, error)
	GetBatteryStatus(ctx context.Context, req *GetBatteryStatusRequest, opts ...grpc.CallOption) (*GetBatteryStatusResponse, error)
	StreamEvents(ctx context.Context, req *StreamEventsRequest, opts ...grpc.CallOption) (KeyboardService_StreamEventsClient, error)
}

// KeyboardService_StreamEventsClient is the client side of the StreamEvents
// server-streaming RPC.
type KeyboardService_StreamEventsClient interface {
	Recv() (*VendorEventMessage, error)
	grpc.ClientStream
}

type keyboardServiceClient struct {
	cc *grpc.ClientConn
}

// NewKeyboardServiceClient wraps cc with the content subtype this package's
// codec registers under, so every call is carried as JSON rather than wire
// protobuf.
func NewKeyboardServiceClient(cc *grpc.ClientConn) KeyboardServiceClient {
	return &keyboardServiceClient{cc: cc}
}

func withJSONSubtype(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *keyboardServiceClient) GetState(ctx context.Context, req *GetStateRequest, opts ...grpc.CallOption) (*GetStateResponse, error) {
	resp := new(GetStateResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetState", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) GetDeviceInfo(ctx context.Context, req *GetStateRequest, opts ...grpc.CallOption) (*DeviceInfo, error) {
	resp := new(DeviceInfo)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetDeviceInfo", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) SetProfile(ctx context.Context, req *SetProfileRequest, opts ...grpc.CallOption) (*SetProfileResponse, error) {
	resp := new(SetProfileResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SetProfile", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) SetKeyAction(ctx context.Context, req *SetKeyActionRequest, opts ...grpc.CallOption) (*SetKeyActionResponse, error) {
	resp := new(SetKeyActionResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SetKeyAction", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) SetLEDParams(ctx context.Context, req *SetLEDParamsRequest, opts ...grpc.CallOption) (*SetLEDParamsResponse, error) {
	resp := new(SetLEDParamsResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SetLEDParams", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) SetCalibration(ctx context.Context, req *CalibrationRequest, opts ...grpc.CallOption) (*CalibrationResponse, error) {
	resp := new(CalibrationResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/SetCalibration", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) GetBatteryStatus(ctx context.Context, req *GetBatteryStatusRequest, opts ...grpc.CallOption) (*GetBatteryStatusResponse, error) {
	resp := new(GetBatteryStatusResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetBatteryStatus", req, resp, withJSONSubtype(opts)...); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *keyboardServiceClient) StreamEvents(ctx context.Context, req *StreamEventsRequest, opts ...grpc.CallOption) (KeyboardService_StreamEventsClient, error) {
	desc := &grpc.StreamDesc{StreamName: "StreamEvents", ServerStreams: true}
	stream, err := c.cc.NewStream(ctx, desc, "/"+ServiceName+"/StreamEvents", withJSONSubtype(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &keyboardServiceStreamEventsClient{stream}, nil
}

type keyboardServiceStreamEventsClient struct {
	grpc.ClientStream
}

func (c *keyboardServiceStreamEventsClient) Recv() (*VendorEventMessage, error) {
	m := new(VendorEventMessage)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
