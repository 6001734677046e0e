// Package host is the client half of the driver/host gRPC split: it dials
// a running driver process and exposes the same operations keyboard.Keyboard
// exposes locally, for callers (CLI, TUI, effects engine) that don't want to
// own the physical transport themselves.
package host

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"monsgeek-hid/internal/driver/rpc"
)

// DefaultDriverAddress is where the driver process listens by default.
const DefaultDriverAddress = "127.0.0.1:50551"

// Bridge is a connection to a running driver process.
type Bridge struct {
	client rpc.KeyboardServiceClient
	conn   *grpc.ClientConn
	addr   string
}

// Dial connects to the driver at addr, verifying the connection with a
// GetDeviceInfo round trip before returning.
func Dial(addr string) (*Bridge, error) {
	if addr == "" {
		addr = DefaultDriverAddress
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial driver at %s: %w", addr, err)
	}

	b := &Bridge{
		client: rpc.NewKeyboardServiceClient(conn),
		conn:   conn,
		addr:   addr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.client.GetDeviceInfo(ctx, &rpc.GetStateRequest{}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("verify driver connection: %w", err)
	}

	return b, nil
}

func (b *Bridge) Close() error {
	return b.conn.Close()
}

func (b *Bridge) GetState(ctx context.Context) (*rpc.GetStateResponse, error) {
	return b.client.GetState(ctx, &rpc.GetStateRequest{})
}

func (b *Bridge) GetDeviceInfo(ctx context.Context) (*rpc.DeviceInfo, error) {
	return b.client.GetDeviceInfo(ctx, &rpc.GetStateRequest{})
}

func (b *Bridge) SetProfile(ctx context.Context, profile byte) error {
	_, err := b.client.SetProfile(ctx, &rpc.SetProfileRequest{Profile: profile})
	return err
}

func (b *Bridge) SetKeyAction(ctx context.Context, req *rpc.SetKeyActionRequest) error {
	_, err := b.client.SetKeyAction(ctx, req)
	return err
}

func (b *Bridge) SetLEDParams(ctx context.Context, req *rpc.SetLEDParamsRequest) error {
	_, err := b.client.SetLEDParams(ctx, req)
	return err
}

func (b *Bridge) SetCalibration(ctx context.Context, start bool) error {
	_, err := b.client.SetCalibration(ctx, &rpc.CalibrationRequest{Start: start})
	return err
}

func (b *Bridge) GetBatteryStatus(ctx context.Context) (*rpc.GetBatteryStatusResponse, error) {
	return b.client.GetBatteryStatus(ctx, &rpc.GetBatteryStatusRequest{})
}

// StreamEvents opens an event stream and forwards messages to out until
// ctx is done or the stream ends. Runs until the context is canceled;
// callers typically invoke it in its own goroutine.
func (b *Bridge) StreamEvents(ctx context.Context, out chan<- *rpc.VendorEventMessage) error {
	stream, err := b.client.StreamEvents(ctx, &rpc.StreamEventsRequest{})
	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	for {
		msg, err := stream.Recv()
		if err != nil {
			return err
		}
		select {
		case out <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
