// Package rpc is the gRPC bridge between the driver process (which owns
// the physical transport) and host-side clients (CLI, TUI, effects
// engine). It hand-wires a grpc.ServiceDesc instead of depending on
// protoc-generated stubs — this environment has no protoc available — and
// carries messages over a JSON codec rather than the wire protobuf
// encoding. The well-known durationpb type is still used for
// DeviceInfo.Uptime: it's pre-generated by the protobuf module itself, so
// no codegen step is needed to use it, and its struct already carries the
// right json tags for this codec. Event timestamps travel as plain Unix
// seconds (VendorEventMessage.ObservedAtUnix).
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CodecName is the content-subtype clients must request via
// grpc.CallContentSubtype to match this package's server registration.
const CodecName = codecName
