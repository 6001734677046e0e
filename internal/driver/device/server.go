// internal/driver/device/server.go
package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"monsgeek-hid/internal/driver/rpc"
	"monsgeek-hid/internal/events"
	"monsgeek-hid/internal/keyboard"
	"monsgeek-hid/internal/protocol"
)

// KeyboardServer implements rpc.KeyboardServiceServer over one open
// keyboard.Keyboard and its event subsystem. It is the driver-side half of
// the gRPC bridge: the process holding the physical transport runs this,
// CLI/TUI clients dial it instead of touching USB/BLE themselves.
type KeyboardServer struct {
	kb        *keyboard.Keyboard
	events    *events.Subsystem
	startTime time.Time

	mu      sync.RWMutex
	profile byte
}

// NewKeyboardServer wraps an already-open keyboard and its event subsystem.
func NewKeyboardServer(kb *keyboard.Keyboard, sub *events.Subsystem) *KeyboardServer {
	return &KeyboardServer{
		kb:        kb,
		events:    sub,
		startTime: time.Now(),
	}
}

// GetState reports the keyboard's current profile.
func (s *KeyboardServer) GetState(ctx context.Context, req *rpc.GetStateRequest) (*rpc.GetStateResponse, error) {
	profile, err := s.kb.GetProfile(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "get profile: %v", err)
	}
	return &rpc.GetStateResponse{Profile: profile}, nil
}

// GetDeviceInfo reports the transport kind and patch status of the open
// keyboard.
func (s *KeyboardServer) GetDeviceInfo(ctx context.Context, req *rpc.GetStateRequest) (*rpc.DeviceInfo, error) {
	info := &rpc.DeviceInfo{
		Transport: s.kb.Kind().String(),
		Connected: true,
	}

	patch, err := s.kb.GetPatchInfo(ctx)
	if err == nil && patch.Installed {
		info.PatchVersion = patch.Version
		info.PatchName = patch.Name
	}
	return info, nil
}

func (s *KeyboardServer) SetProfile(ctx context.Context, req *rpc.SetProfileRequest) (*rpc.SetProfileResponse, error) {
	if err := s.kb.SetProfile(ctx, req.Profile); err != nil {
		return nil, status.Errorf(codes.Internal, "set profile: %v", err)
	}
	s.mu.Lock()
	s.profile = req.Profile
	s.mu.Unlock()
	return &rpc.SetProfileResponse{}, nil
}

func (s *KeyboardServer) SetKeyAction(ctx context.Context, req *rpc.SetKeyActionRequest) (*rpc.SetKeyActionResponse, error) {
	action := protocol.KeyActionFromConfigBytes([4]byte{req.CfgType, req.B1, req.B2, req.B3})
	if err := s.kb.SetKeyMatrixEntry(ctx, req.Profile, req.KeyIndex, req.Layer, action); err != nil {
		return nil, status.Errorf(codes.Internal, "set key action: %v", err)
	}
	return &rpc.SetKeyActionResponse{}, nil
}

func (s *KeyboardServer) SetLEDParams(ctx context.Context, req *rpc.SetLEDParamsRequest) (*rpc.SetLEDParamsResponse, error) {
	params := keyboard.LEDParams{
		Mode:          req.Mode,
		InvertedSpeed: req.InvertedSpeed,
		Brightness:    req.Brightness,
		Layer:         req.Layer,
		Dazzle:        req.Dazzle,
		Red:           req.Red,
		Green:         req.Green,
		Blue:          req.Blue,
	}
	if err := s.kb.SetLEDParams(ctx, params); err != nil {
		return nil, status.Errorf(codes.Internal, "set led params: %v", err)
	}
	return &rpc.SetLEDParamsResponse{}, nil
}

func (s *KeyboardServer) SetCalibration(ctx context.Context, req *rpc.CalibrationRequest) (*rpc.CalibrationResponse, error) {
	var err error
	if req.Start {
		err = s.kb.StartCalibration(ctx)
	} else {
		err = s.kb.StopCalibration(ctx)
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "calibration: %v", err)
	}
	return &rpc.CalibrationResponse{}, nil
}

func (s *KeyboardServer) GetBatteryStatus(ctx context.Context, req *rpc.GetBatteryStatusRequest) (*rpc.GetBatteryStatusResponse, error) {
	level, online, idle, err := s.kb.GetBatteryStatus(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "get battery status: %v", err)
	}
	return &rpc.GetBatteryStatusResponse{Level: level, Online: online, Idle: idle}, nil
}

// StreamEvents forwards every broadcast event until the client disconnects
// or the event subsystem shuts down.
func (s *KeyboardServer) StreamEvents(req *rpc.StreamEventsRequest, stream rpc.KeyboardService_StreamEventsServer) error {
	ch, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case ts, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(vendorEventToMessage(ts)); err != nil {
				return fmt.Errorf("send event: %w", err)
			}
		}
	}
}

func vendorEventToMessage(ts events.Timestamped) *rpc.VendorEventMessage {
	e := ts.Event
	return &rpc.VendorEventMessage{
		Kind:            e.Kind.Name(),
		Profile:         e.Profile,
		KeyIndex:        e.KeyIndex,
		Depth:           e.Depth,
		Value:           e.Value,
		Started:         e.Started,
		Locked:          e.Locked,
		Swapped:         e.Swapped,
		BatteryLevel:    e.BatteryLevel,
		BatteryCharging: e.BatteryCharging,
		BatteryOnline:   e.BatteryOnline,
		ObservedAtUnix:  ts.At.Unix(),
	}
}

// Close closes the underlying keyboard connection.
func (s *KeyboardServer) Close() error {
	return s.kb.Close()
}
