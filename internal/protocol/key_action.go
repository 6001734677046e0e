package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// HID modifier bitmask constants (USB HID keyboard report modifier byte).
const (
	ModLCtrl  byte = 0x01
	ModLShift byte = 0x02
	ModLAlt   byte = 0x04
	ModLGui   byte = 0x08
	ModRCtrl  byte = 0x10
	ModRShift byte = 0x20
	ModRAlt   byte = 0x40
	ModRGui   byte = 0x80
)

// config_type values for the 4-byte key config tuple.
const (
	ctKey            byte = 0
	ctMouse          byte = 1
	ctConsumer       byte = 3
	ctProfileSwitch  byte = 8
	ctMacro          byte = 9
	ctSpecialFn      byte = 10
	ctLedControl     byte = 13
	ctConnectionMode byte = 14
	ctKnob           byte = 18
	ctGamepad        byte = 21
)

// Sub-function IDs for config_type SpecialFn (10). Sub values 0, 4, 6, 7,
// and 0x0F-0x16 are firmware no-ops and are preserved as SpecialFn rather
// than decoded specially.
const (
	specialFnKey       byte = 1
	specialFnGameMode  byte = 2
	specialFnWinLock   byte = 3
	specialFnOSMode    byte = 5
	specialFnBTPairing byte = 8
	specialFnFnToggle  byte = 9
	specialFnWasdSwap  byte = 0x0a
	specialFnNKROToggl byte = 0x0b
	specialFnFnLock    byte = 0x0c
	specialFnReportMod byte = 0x0d
	specialFnFlags2B2  byte = 0x0e
	specialFnRCtrlMod  byte = 0x17
)

// KeyActionKind tags the KeyAction union, one per config_type plus the
// disambiguated sub-cases of config_type 0.
type KeyActionKind int

const (
	ActionDisabled KeyActionKind = iota
	ActionKey
	ActionCombo
	ActionMouse
	ActionConsumer
	ActionMacro
	ActionGamepad
	ActionFn
	ActionSpecialFn
	ActionProfileSwitch
	ActionConnectionMode
	ActionLedControl
	ActionKnob
	ActionUnknown
)

// KeyAction is what a key does when pressed. Maps 1:1 to the protocol's
// 4-byte config format [config_type, b1, b2, b3] used by SET_KEYMATRIX,
// SET_FN, and their GET counterparts.
type KeyAction struct {
	Kind KeyActionKind

	Key  byte // ActionKey
	Mods byte // ActionCombo: HID modifier bitmask
	Code byte // ActionCombo: keycode

	Button byte // ActionMouse, ActionGamepad

	Consumer uint16 // ActionConsumer: usage page id

	MacroIndex byte // ActionMacro
	MacroKind  byte // ActionMacro: 0=repeat, 1=toggle, 2=hold

	SpecialSub byte // ActionSpecialFn
	SpecialB2  byte
	SpecialB3  byte

	ProfileAction byte // ActionProfileSwitch: 1=next,2=prev,3=cycle,4=switch
	ProfileIndex  byte

	ConnB1, ConnB2, ConnB3 byte // ActionConnectionMode

	Data [3]byte // ActionLedControl, ActionKnob, ActionUnknown

	UnknownConfigType byte // ActionUnknown
}

// ToConfigBytes encodes a to the 4-byte config format.
func (a KeyAction) ToConfigBytes() [4]byte {
	switch a.Kind {
	case ActionDisabled:
		return [4]byte{ctKey, 0, 0, 0}
	case ActionKey:
		return [4]byte{ctKey, 0, a.Key, 0}
	case ActionCombo:
		return [4]byte{ctKey, a.Mods, a.Code, 0}
	case ActionMouse:
		return [4]byte{ctMouse, 0, a.Button, 0}
	case ActionConsumer:
		return [4]byte{ctConsumer, 0, byte(a.Consumer), byte(a.Consumer >> 8)}
	case ActionMacro:
		return [4]byte{ctMacro, a.MacroKind, a.MacroIndex, 0}
	case ActionGamepad:
		return [4]byte{ctGamepad, 0, a.Button, 0}
	case ActionFn:
		return [4]byte{ctSpecialFn, specialFnKey, 0, 0}
	case ActionSpecialFn:
		return [4]byte{ctSpecialFn, a.SpecialSub, a.SpecialB2, a.SpecialB3}
	case ActionProfileSwitch:
		return [4]byte{ctProfileSwitch, 0, a.ProfileAction, a.ProfileIndex}
	case ActionConnectionMode:
		return [4]byte{ctConnectionMode, a.ConnB1, a.ConnB2, a.ConnB3}
	case ActionLedControl:
		return [4]byte{ctLedControl, a.Data[0], a.Data[1], a.Data[2]}
	case ActionKnob:
		return [4]byte{ctKnob, a.Data[0], a.Data[1], a.Data[2]}
	default:
		return [4]byte{a.UnknownConfigType, a.Data[0], a.Data[1], a.Data[2]}
	}
}

// KeyActionFromConfigBytes decodes the 4-byte config format returned by
// GET_KEYMATRIX/GET_FN.
//
// The firmware uses two key-code positions for config_type=0:
//   - Default/factory keys: [0, 0, keycode, 0] — code at byte 2.
//   - User remaps:          [0, keycode, 0, 0] — code at byte 1 (byte 2 = 0).
//   - Modifier combos:      [0, mod_mask, keycode, 0] — both bytes non-zero.
//
// A naive "byte 2 is the keycode" check misidentifies every user remap as
// unchanged; all three sub-cases must be checked in this order.
func KeyActionFromConfigBytes(bytes [4]byte) KeyAction {
	switch bytes[0] {
	case ctKey:
		switch {
		case bytes[1] == 0 && bytes[2] == 0:
			return KeyAction{Kind: ActionDisabled}
		case bytes[1] != 0 && bytes[2] != 0:
			return KeyAction{Kind: ActionCombo, Mods: bytes[1], Code: bytes[2]}
		case bytes[2] != 0:
			return KeyAction{Kind: ActionKey, Key: bytes[2]}
		default:
			return KeyAction{Kind: ActionKey, Key: bytes[1]}
		}
	case ctMouse:
		return KeyAction{Kind: ActionMouse, Button: bytes[2]}
	case ctConsumer:
		return KeyAction{Kind: ActionConsumer, Consumer: uint16(bytes[2]) | uint16(bytes[3])<<8}
	case ctMacro:
		return KeyAction{Kind: ActionMacro, MacroKind: bytes[1], MacroIndex: bytes[2]}
	case ctGamepad:
		return KeyAction{Kind: ActionGamepad, Button: bytes[2]}
	case ctProfileSwitch:
		return KeyAction{Kind: ActionProfileSwitch, ProfileAction: bytes[2], ProfileIndex: bytes[3]}
	case ctSpecialFn:
		if bytes[1] == specialFnKey {
			return KeyAction{Kind: ActionFn}
		}
		return KeyAction{Kind: ActionSpecialFn, SpecialSub: bytes[1], SpecialB2: bytes[2], SpecialB3: bytes[3]}
	case ctLedControl:
		return KeyAction{Kind: ActionLedControl, Data: [3]byte{bytes[1], bytes[2], bytes[3]}}
	case ctConnectionMode:
		return KeyAction{Kind: ActionConnectionMode, ConnB1: bytes[1], ConnB2: bytes[2], ConnB3: bytes[3]}
	case ctKnob:
		return KeyAction{Kind: ActionKnob, Data: [3]byte{bytes[1], bytes[2], bytes[3]}}
	default:
		return KeyAction{Kind: ActionUnknown, UnknownConfigType: bytes[0], Data: [3]byte{bytes[1], bytes[2], bytes[3]}}
	}
}

// HIDCode returns the HID keycode if a is a simple Key action.
func (a KeyAction) HIDCode() (byte, bool) {
	if a.Kind == ActionKey {
		return a.Key, true
	}
	return 0, false
}

func (a KeyAction) String() string {
	switch a.Kind {
	case ActionDisabled:
		return "Disabled"
	case ActionKey:
		return HIDKeyName(a.Key)
	case ActionCombo:
		return comboString(a.Mods, a.Code)
	case ActionMouse:
		return fmt.Sprintf("Mouse%d", a.Button)
	case ActionConsumer:
		return fmt.Sprintf("Consumer(0x%04X)", a.Consumer)
	case ActionMacro:
		return fmt.Sprintf("Macro(%d,kind=%d)", a.MacroIndex, a.MacroKind)
	case ActionGamepad:
		return fmt.Sprintf("Gamepad(%d)", a.Button)
	case ActionFn:
		return "Fn"
	case ActionSpecialFn:
		return fmt.Sprintf("SpecialFn(sub=0x%02X,b2=0x%02X,b3=0x%02X)", a.SpecialSub, a.SpecialB2, a.SpecialB3)
	case ActionProfileSwitch:
		return fmt.Sprintf("ProfileSwitch(action=%d,index=%d)", a.ProfileAction, a.ProfileIndex)
	case ActionConnectionMode:
		return fmt.Sprintf("ConnectionMode(%d,%d,%d)", a.ConnB1, a.ConnB2, a.ConnB3)
	case ActionLedControl:
		return fmt.Sprintf("LedControl(%d,%d,%d)", a.Data[0], a.Data[1], a.Data[2])
	case ActionKnob:
		return fmt.Sprintf("Knob(%d,%d,%d)", a.Data[0], a.Data[1], a.Data[2])
	default:
		return fmt.Sprintf("Unknown(type=%d,data=[0x%02X,0x%02X,0x%02X])", a.UnknownConfigType, a.Data[0], a.Data[1], a.Data[2])
	}
}

func comboString(mods, key byte) string {
	var parts []string
	for mask, name := range modNamesOrdered {
		if mods&mask != 0 {
			parts = append(parts, name)
		}
	}
	parts = append(parts, HIDKeyName(key))
	return strings.Join(parts, "+")
}

var modNamesOrdered = map[byte]string{
	ModLCtrl: "Ctrl", ModLShift: "Shift", ModLAlt: "Alt", ModLGui: "Gui",
	ModRCtrl: "RCtrl", ModRShift: "RShift", ModRAlt: "RAlt", ModRGui: "RGui",
}

var modNamesParse = map[string]byte{
	"ctrl": ModLCtrl, "lctrl": ModLCtrl, "control": ModLCtrl,
	"shift": ModLShift, "lshift": ModLShift,
	"alt": ModLAlt, "lalt": ModLAlt,
	"gui": ModLGui, "lgui": ModLGui, "win": ModLGui, "cmd": ModLGui,
	"rctrl": ModRCtrl, "rshift": ModRShift, "ralt": ModRAlt, "rgui": ModRGui,
}

// ParseModifier looks up a modifier bitmask by case-insensitive name.
func ParseModifier(name string) (byte, bool) {
	mask, ok := modNamesParse[strings.ToLower(name)]
	return mask, ok
}

// ParseKeyAction parses a human-readable key action: plain key names,
// "Mod+Mod+Key" combos, hex keycode literals, "MouseN"/"GamepadN", "Fn",
// and "Disabled". Macro and the other config types have no text form here.
func ParseKeyAction(s string) (KeyAction, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "disabled", "":
		return KeyAction{Kind: ActionDisabled}, nil
	case "fn":
		return KeyAction{Kind: ActionFn}, nil
	}
	if strings.HasPrefix(strings.ToLower(s), "mouse") {
		n, err := strconv.Atoi(s[len("mouse"):])
		if err != nil {
			return KeyAction{}, fmt.Errorf("parse mouse button: %w", err)
		}
		return KeyAction{Kind: ActionMouse, Button: byte(n)}, nil
	}
	if strings.HasPrefix(strings.ToLower(s), "gamepad") {
		n, err := strconv.Atoi(s[len("gamepad"):])
		if err != nil {
			return KeyAction{}, fmt.Errorf("parse gamepad button: %w", err)
		}
		return KeyAction{Kind: ActionGamepad, Button: byte(n)}, nil
	}
	if strings.Contains(s, "+") {
		parts := strings.Split(s, "+")
		var mods byte
		for _, p := range parts[:len(parts)-1] {
			mask, ok := ParseModifier(p)
			if !ok {
				return KeyAction{}, fmt.Errorf("unknown modifier %q", p)
			}
			mods |= mask
		}
		code, ok := HIDKeyCodeFromName(parts[len(parts)-1])
		if !ok {
			return KeyAction{}, fmt.Errorf("unknown key %q", parts[len(parts)-1])
		}
		return KeyAction{Kind: ActionCombo, Mods: mods, Code: code}, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return KeyAction{}, fmt.Errorf("parse hex keycode: %w", err)
		}
		return KeyAction{Kind: ActionKey, Key: byte(n)}, nil
	}
	code, ok := HIDKeyCodeFromName(s)
	if !ok {
		return KeyAction{}, fmt.Errorf("unknown key %q", s)
	}
	return KeyAction{Kind: ActionKey, Key: code}, nil
}
