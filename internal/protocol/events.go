package protocol

import "fmt"

// VendorEventKind tags the VendorEvent union.
type VendorEventKind int

const (
	EventWake VendorEventKind = iota
	EventProfileChange
	EventKeyDepth
	EventLedEffectMode
	EventLedEffectSpeed
	EventBrightnessLevel
	EventLedColor
	EventSettingsAck
	EventWinLockToggle
	EventWasdSwapToggle
	EventBacklightToggle
	EventFnLayerToggle
	EventDialModeToggle
	EventUnknownKbFunc
	EventBatteryStatus
	EventMouseReport
	EventUnknown
)

// VendorEvent is the tagged union over observable notification kinds. Only
// the fields relevant to Kind are meaningful.
type VendorEvent struct {
	Kind VendorEventKind

	Profile byte // EventProfileChange

	KeyIndex byte   // EventKeyDepth
	Depth    uint16 // EventKeyDepth: raw sensor value, mm = raw / precisionFactor

	Value byte // EventLedEffectMode/Speed, EventBrightnessLevel, EventLedColor

	Started bool // EventSettingsAck

	Locked  bool // EventWinLockToggle
	Swapped bool // EventWasdSwapToggle

	KbFuncCategory byte // EventUnknownKbFunc
	KbFuncAction   byte // EventUnknownKbFunc

	BatteryLevel    byte // EventBatteryStatus
	BatteryCharging bool
	BatteryOnline   bool

	MouseButtons byte // EventMouseReport
	MouseX       int16
	MouseY       int16
	MouseWheel   int16

	Raw []byte // EventUnknown: full payload, for diagnostics
}

// Name returns the short, stable tag for k, suitable for wire messages and
// switch/compare logic that shouldn't break if String()'s formatting
// changes. Unlike String(), it carries no field values.
func (k VendorEventKind) Name() string {
	switch k {
	case EventWake:
		return "Wake"
	case EventProfileChange:
		return "ProfileChange"
	case EventKeyDepth:
		return "KeyDepth"
	case EventLedEffectMode:
		return "LedEffectMode"
	case EventLedEffectSpeed:
		return "LedEffectSpeed"
	case EventBrightnessLevel:
		return "BrightnessLevel"
	case EventLedColor:
		return "LedColor"
	case EventSettingsAck:
		return "SettingsAck"
	case EventWinLockToggle:
		return "WinLockToggle"
	case EventWasdSwapToggle:
		return "WasdSwapToggle"
	case EventBacklightToggle:
		return "BacklightToggle"
	case EventFnLayerToggle:
		return "FnLayerToggle"
	case EventDialModeToggle:
		return "DialModeToggle"
	case EventUnknownKbFunc:
		return "UnknownKbFunc"
	case EventBatteryStatus:
		return "BatteryStatus"
	case EventMouseReport:
		return "MouseReport"
	default:
		return "Unknown"
	}
}

func (e VendorEvent) String() string {
	switch e.Kind {
	case EventWake:
		return "Wake"
	case EventProfileChange:
		return fmt.Sprintf("ProfileChange{profile=%d}", e.Profile)
	case EventKeyDepth:
		return fmt.Sprintf("KeyDepth{key=%d, depth=%d}", e.KeyIndex, e.Depth)
	case EventLedEffectMode:
		return fmt.Sprintf("LedEffectMode{%d}", e.Value)
	case EventLedEffectSpeed:
		return fmt.Sprintf("LedEffectSpeed{%d}", e.Value)
	case EventBrightnessLevel:
		return fmt.Sprintf("BrightnessLevel{%d}", e.Value)
	case EventLedColor:
		return fmt.Sprintf("LedColor{%d}", e.Value)
	case EventSettingsAck:
		return fmt.Sprintf("SettingsAck{started=%t}", e.Started)
	case EventWinLockToggle:
		return fmt.Sprintf("WinLockToggle{locked=%t}", e.Locked)
	case EventWasdSwapToggle:
		return fmt.Sprintf("WasdSwapToggle{swapped=%t}", e.Swapped)
	case EventBacklightToggle:
		return "BacklightToggle"
	case EventFnLayerToggle:
		return "FnLayerToggle"
	case EventDialModeToggle:
		return "DialModeToggle"
	case EventUnknownKbFunc:
		return fmt.Sprintf("UnknownKbFunc{cat=0x%02X, action=0x%02X}", e.KbFuncCategory, e.KbFuncAction)
	case EventBatteryStatus:
		return fmt.Sprintf("BatteryStatus{level=%d, charging=%t, online=%t}", e.BatteryLevel, e.BatteryCharging, e.BatteryOnline)
	case EventMouseReport:
		return fmt.Sprintf("MouseReport{buttons=0x%02X, x=%d, y=%d, wheel=%d}", e.MouseButtons, e.MouseX, e.MouseY, e.MouseWheel)
	default:
		return fmt.Sprintf("Unknown(%x)", e.Raw)
	}
}

// notification-byte namespace: same numeric values as the command bytes
// above mean something entirely different on the input endpoint.
const (
	notifWake         byte = 0x00
	notifProfile      byte = 0x01
	notifKbFunc       byte = 0x03
	notifLedMode      byte = 0x04
	notifLedSpeed     byte = 0x05
	notifBrightness   byte = 0x06
	notifLedColor     byte = 0x07
	notifSettingsAck  byte = 0x0F
	notifKeyDepth     byte = 0x1B
	notifBatteryStat  byte = 0x88
	mouseReportID     byte = 0x02
	kbFuncWinLock     byte = 0x01
	kbFuncWasdSwap    byte = 0x03
	kbFuncFnLayer     byte = 0x08
	kbFuncBacklight   byte = 0x09
	kbFuncDialMode    byte = 0x11
	wasdSwapSwappedB1 byte = 8
)

// ParseUSBEvent dispatches a USB/dongle input report (report id already
// stripped, or zero) into a VendorEvent, per the notification-byte table.
func ParseUSBEvent(raw []byte) VendorEvent {
	if len(raw) == 0 {
		return VendorEvent{Kind: EventUnknown, Raw: append([]byte(nil), raw...)}
	}
	if allZero(raw) {
		return VendorEvent{Kind: EventWake}
	}
	switch raw[0] {
	case notifProfile:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventProfileChange, Profile: raw[1]}
		}
	case notifKbFunc:
		if len(raw) >= 4 {
			return parseKbFunc(raw)
		}
	case notifLedMode:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventLedEffectMode, Value: raw[1]}
		}
	case notifLedSpeed:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventLedEffectSpeed, Value: raw[1]}
		}
	case notifBrightness:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventBrightnessLevel, Value: raw[1]}
		}
	case notifLedColor:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventLedColor, Value: raw[1]}
		}
	case notifSettingsAck:
		if len(raw) >= 2 {
			return VendorEvent{Kind: EventSettingsAck, Started: raw[1] != 0}
		}
	case notifKeyDepth:
		if len(raw) >= 5 {
			depth := uint16(raw[1]) | uint16(raw[2])<<8
			return VendorEvent{Kind: EventKeyDepth, Depth: depth, KeyIndex: raw[3]}
		}
	case notifBatteryStat:
		if len(raw) >= 5 {
			return VendorEvent{
				Kind:            EventBatteryStatus,
				BatteryLevel:    raw[3],
				BatteryCharging: raw[4]&0x02 != 0,
				BatteryOnline:   raw[4]&0x01 != 0,
			}
		}
	case mouseReportID:
		// layout: [02, buttons, reserved, X_lo, X_hi, Y_lo, Y_hi, wheel_lo, wheel_hi]
		if len(raw) >= 7 {
			ev := VendorEvent{
				Kind:         EventMouseReport,
				MouseButtons: raw[1],
				MouseX:       int16(uint16(raw[3]) | uint16(raw[4])<<8),
				MouseY:       int16(uint16(raw[5]) | uint16(raw[6])<<8),
			}
			if len(raw) >= 9 {
				ev.MouseWheel = int16(uint16(raw[7]) | uint16(raw[8])<<8)
			}
			return ev
		}
	}
	return VendorEvent{Kind: EventUnknown, Raw: append([]byte(nil), raw...)}
}

func parseKbFunc(raw []byte) VendorEvent {
	switch raw[3] {
	case kbFuncWinLock:
		return VendorEvent{Kind: EventWinLockToggle, Locked: raw[1] != 0}
	case kbFuncWasdSwap:
		return VendorEvent{Kind: EventWasdSwapToggle, Swapped: raw[1] == wasdSwapSwappedB1}
	case kbFuncFnLayer:
		return VendorEvent{Kind: EventFnLayerToggle}
	case kbFuncBacklight:
		return VendorEvent{Kind: EventBacklightToggle}
	case kbFuncDialMode:
		return VendorEvent{Kind: EventDialModeToggle}
	default:
		return VendorEvent{Kind: EventUnknownKbFunc, KbFuncCategory: raw[2], KbFuncAction: raw[3]}
	}
}

// ParseBLEEvent strips the BLE framing (report id 0x06, marker 0x66) and
// dispatches through ParseUSBEvent.
func ParseBLEEvent(raw []byte) VendorEvent {
	payload := raw
	if len(payload) >= 2 && payload[0] == bleReportID && payload[1] == bleMarkerEvent {
		payload = payload[2:]
	} else if len(payload) >= 1 && payload[0] == bleMarkerEvent {
		payload = payload[1:]
	}
	return ParseUSBEvent(payload)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
