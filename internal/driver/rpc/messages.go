package rpc

import "google.golang.org/protobuf/types/known/durationpb"

// DeviceInfo mirrors keyboard.Keyboard's identity for GetDeviceInfo.
type DeviceInfo struct {
	Transport    string `json:"transport"`
	VendorID     uint16 `json:"vendor_id"`
	ProductID    uint16 `json:"product_id"`
	Connected    bool   `json:"connected"`
	Uptime       *durationpb.Duration `json:"uptime"`
	PatchVersion byte   `json:"patch_version,omitempty"`
	PatchName    string `json:"patch_name,omitempty"`
}

// GetStateRequest is empty: state is always queried for the driver's
// currently-open keyboard.
type GetStateRequest struct{}

// GetStateResponse reports the active profile and live magnetism
// reporting toggle.
type GetStateResponse struct {
	Profile            byte `json:"profile"`
	MagnetismReporting bool `json:"magnetism_reporting"`
}

// SetProfileRequest selects the active profile, 0..3.
type SetProfileRequest struct {
	Profile byte `json:"profile"`
}

// SetProfileResponse is empty on success; errors surface as a gRPC status.
type SetProfileResponse struct{}

// SetKeyActionRequest remaps one key's assignment.
type SetKeyActionRequest struct {
	Profile  byte   `json:"profile"`
	KeyIndex byte   `json:"key_index"`
	Layer    byte   `json:"layer"`
	CfgType  byte   `json:"cfg_type"`
	B1       byte   `json:"b1"`
	B2       byte   `json:"b2"`
	B3       byte   `json:"b3"`
}

type SetKeyActionResponse struct{}

// SetLEDParamsRequest carries the main LED effect parameters.
type SetLEDParamsRequest struct {
	Mode          byte `json:"mode"`
	InvertedSpeed byte `json:"inverted_speed"`
	Brightness    byte `json:"brightness"`
	Layer         byte `json:"layer"`
	Dazzle        bool `json:"dazzle"`
	Red           byte `json:"red"`
	Green         byte `json:"green"`
	Blue          byte `json:"blue"`
}

type SetLEDParamsResponse struct{}

// CalibrationRequest toggles min/max travel calibration.
type CalibrationRequest struct {
	Start bool `json:"start"`
}

type CalibrationResponse struct{}

// GetBatteryStatusRequest is empty: battery state is always queried for
// the driver's currently-open keyboard.
type GetBatteryStatusRequest struct{}

// GetBatteryStatusResponse is the callable counterpart to the unsolicited
// BatteryStatus event: level, online (device reachable/reporting), and
// idle (dongle has no cached keyboard response pending).
type GetBatteryStatusResponse struct {
	Level  byte `json:"level"`
	Online bool `json:"online"`
	Idle   bool `json:"idle"`
}

// StreamEventsRequest is empty: every connected client receives every
// event the driver's events.Subsystem broadcasts.
type StreamEventsRequest struct{}

// VendorEventMessage is the wire shape of a protocol.VendorEvent, flattened
// for JSON transport.
type VendorEventMessage struct {
	Kind            string `json:"kind"`
	Profile         byte   `json:"profile,omitempty"`
	KeyIndex        byte   `json:"key_index,omitempty"`
	Depth           uint16 `json:"depth,omitempty"`
	Value           byte   `json:"value,omitempty"`
	Started         bool   `json:"started,omitempty"`
	Locked          bool   `json:"locked,omitempty"`
	Swapped         bool   `json:"swapped,omitempty"`
	BatteryLevel    byte   `json:"battery_level,omitempty"`
	BatteryCharging bool   `json:"battery_charging,omitempty"`
	BatteryOnline   bool   `json:"battery_online,omitempty"`
	ObservedAtUnix  int64  `json:"observed_at_unix"`
}
