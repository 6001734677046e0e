package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUSBEventWake(t *testing.T) {
	ev := ParseUSBEvent([]byte{0, 0, 0, 0})
	require.Equal(t, EventWake, ev.Kind)
}

func TestParseUSBEventProfileChange(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifProfile, 2})
	require.Equal(t, EventProfileChange, ev.Kind)
	require.Equal(t, byte(2), ev.Profile)
}

func TestParseUSBEventKeyDepth(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifKeyDepth, 0x34, 0x12, 7, 0})
	require.Equal(t, EventKeyDepth, ev.Kind)
	require.Equal(t, uint16(0x1234), ev.Depth)
	require.Equal(t, byte(7), ev.KeyIndex)
}

func TestParseUSBEventBatteryStatus(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifBatteryStat, 0, 0, 80, 0x03})
	require.Equal(t, EventBatteryStatus, ev.Kind)
	require.Equal(t, byte(80), ev.BatteryLevel)
	require.True(t, ev.BatteryCharging)
	require.True(t, ev.BatteryOnline)
}

func TestParseUSBEventKbFuncWinLock(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifKbFunc, 1, 0, kbFuncWinLock})
	require.Equal(t, EventWinLockToggle, ev.Kind)
	require.True(t, ev.Locked)
}

func TestParseUSBEventKbFuncUnknown(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifKbFunc, 1, 0x42, 0x99})
	require.Equal(t, EventUnknownKbFunc, ev.Kind)
	require.Equal(t, byte(0x42), ev.KbFuncCategory)
	require.Equal(t, byte(0x99), ev.KbFuncAction)
}

func TestParseUSBEventMouseReport(t *testing.T) {
	ev := ParseUSBEvent([]byte{mouseReportID, 0x01, 0x00, 0x10, 0x00, 0x20, 0x00})
	require.Equal(t, EventMouseReport, ev.Kind)
	require.Equal(t, byte(0x01), ev.MouseButtons)
	require.Equal(t, int16(0x10), ev.MouseX)
	require.Equal(t, int16(0x20), ev.MouseY)
	require.Equal(t, int16(0), ev.MouseWheel)
}

func TestParseUSBEventMouseReportWithWheel(t *testing.T) {
	ev := ParseUSBEvent([]byte{mouseReportID, 0x00, 0x00, 0xFF, 0xFF, 0x01, 0x00, 0x02, 0x00})
	require.Equal(t, EventMouseReport, ev.Kind)
	require.Equal(t, int16(-1), ev.MouseX)
	require.Equal(t, int16(1), ev.MouseY)
	require.Equal(t, int16(2), ev.MouseWheel)
}

func TestParseUSBEventTooShortFallsBackToUnknown(t *testing.T) {
	ev := ParseUSBEvent([]byte{notifKeyDepth, 1, 2})
	require.Equal(t, EventUnknown, ev.Kind)
}

func TestParseUSBEventEmpty(t *testing.T) {
	ev := ParseUSBEvent(nil)
	require.Equal(t, EventUnknown, ev.Kind)
}

func TestParseBLEEventStripsFraming(t *testing.T) {
	ble := ParseBLEEvent([]byte{bleReportID, bleMarkerEvent, notifProfile, 3})
	require.Equal(t, EventProfileChange, ble.Kind)
	require.Equal(t, byte(3), ble.Profile)
}

func TestParseBLEEventStripsMarkerOnly(t *testing.T) {
	ble := ParseBLEEvent([]byte{bleMarkerEvent, notifProfile, 1})
	require.Equal(t, EventProfileChange, ble.Kind)
	require.Equal(t, byte(1), ble.Profile)
}

func TestVendorEventStringVariants(t *testing.T) {
	require.Equal(t, "Wake", VendorEvent{Kind: EventWake}.String())
	require.Contains(t, VendorEvent{Kind: EventKeyDepth, KeyIndex: 1, Depth: 2}.String(), "key=1")
	require.Contains(t, VendorEvent{Kind: EventUnknown, Raw: []byte{0xAB}}.String(), "ab")
}

func TestVendorEventKindNameIsStableUnlikeString(t *testing.T) {
	// Name() must not carry field values: callers (the gRPC bridge, the
	// TUI) compare against it directly rather than parsing String()'s
	// formatted output.
	require.Equal(t, "ProfileChange", EventProfileChange.Name())
	require.Equal(t, "KeyDepth", EventKeyDepth.Name())
	require.Equal(t, "BatteryStatus", EventBatteryStatus.Name())
	require.Equal(t, "Unknown", VendorEventKind(999).Name())

	ev := VendorEvent{Kind: EventProfileChange, Profile: 4}
	require.NotEqual(t, ev.Kind.Name(), ev.String())
}
