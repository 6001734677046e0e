package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// hidNames is the USB HID keyboard usage table (usage page 0x07), code to
// canonical name.
var hidNames = map[byte]string{
	0x00: "None", 0x04: "A", 0x05: "B", 0x06: "C", 0x07: "D", 0x08: "E",
	0x09: "F", 0x0A: "G", 0x0B: "H", 0x0C: "I", 0x0D: "J", 0x0E: "K",
	0x0F: "L", 0x10: "M", 0x11: "N", 0x12: "O", 0x13: "P", 0x14: "Q",
	0x15: "R", 0x16: "S", 0x17: "T", 0x18: "U", 0x19: "V", 0x1A: "W",
	0x1B: "X", 0x1C: "Y", 0x1D: "Z",
	0x1E: "1", 0x1F: "2", 0x20: "3", 0x21: "4", 0x22: "5", 0x23: "6",
	0x24: "7", 0x25: "8", 0x26: "9", 0x27: "0",
	0x28: "Enter", 0x29: "Escape", 0x2A: "Backspace", 0x2B: "Tab", 0x2C: "Space",
	0x2D: "-", 0x2E: "=", 0x2F: "[", 0x30: "]", 0x31: "\\", 0x32: "#",
	0x33: ";", 0x34: "'", 0x35: "`", 0x36: ",", 0x37: ".", 0x38: "/",
	0x39: "CapsLock",
	0x3A: "F1", 0x3B: "F2", 0x3C: "F3", 0x3D: "F4", 0x3E: "F5", 0x3F: "F6",
	0x40: "F7", 0x41: "F8", 0x42: "F9", 0x43: "F10", 0x44: "F11", 0x45: "F12",
	0x46: "PrintScr", 0x47: "ScrollLock", 0x48: "Pause", 0x49: "Insert",
	0x4A: "Home", 0x4B: "PageUp", 0x4C: "Delete", 0x4D: "End", 0x4E: "PageDown",
	0x4F: "Right", 0x50: "Left", 0x51: "Down", 0x52: "Up",
	0x53: "NumLock", 0x54: "KP/", 0x55: "KP*", 0x56: "KP-", 0x57: "KP+",
	0x58: "KPEnter", 0x59: "KP1", 0x5A: "KP2", 0x5B: "KP3", 0x5C: "KP4",
	0x5D: "KP5", 0x5E: "KP6", 0x5F: "KP7", 0x60: "KP8", 0x61: "KP9",
	0x62: "KP0", 0x63: "KP.", 0x64: "NonUS\\", 0x65: "App", 0x66: "Power",
	0x67: "KP=",
	0xE0: "LCtrl", 0xE1: "LShift", 0xE2: "LAlt", 0xE3: "LGUI",
	0xE4: "RCtrl", 0xE5: "RShift", 0xE6: "RAlt", 0xE7: "RGUI",
}

// HIDKeyName returns the HID usage name for code, "F13-F24" for the
// contiguous extended function-key range, or "?" if unassigned.
func HIDKeyName(code byte) string {
	if code >= 0x68 && code <= 0x73 {
		return "F13-F24"
	}
	if name, ok := hidNames[code]; ok {
		return name
	}
	return "?"
}

var hidAliases = map[string]string{
	"esc": "Escape", "bksp": "Backspace", "del": "Delete", "ent": "Enter",
	"spc": "Space", "caps": "CapsLock", "win": "LGUI", "cmd": "LGUI",
	"lshf": "LShift", "lctl": "LCtrl", "rshf": "RShift", "rctl": "RCtrl",
	"pgup": "PageUp", "pgdn": "PageDown", "prtsc": "PrintScr",
}

// HIDKeyCodeFromName looks up a HID usage code by case-insensitive name,
// accepting both canonical names and common aliases, plus individual
// "F13".."F24" (HIDKeyName collapses that range to one label,
// so reverse lookup needs to special-case it).
func HIDKeyCodeFromName(name string) (byte, bool) {
	lower := strings.ToLower(name)
	if rest, ok := strings.CutPrefix(lower, "f"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 13 && n <= 24 {
			return byte(0x68 + (n - 13)), true
		}
	}
	if canonical, ok := hidAliases[lower]; ok {
		lower = strings.ToLower(canonical)
	}
	for code, n := range hidNames {
		if strings.ToLower(n) == lower {
			return code, true
		}
	}
	return 0, false
}

// CharToHID converts a character to (keycode, needsShift), for the macro
// text-entry helper. Returns ok=false for characters with no HID mapping.
func CharToHID(ch rune) (code byte, needsShift bool, ok bool) {
	switch {
	case ch >= 'a' && ch <= 'z':
		return 0x04 + byte(ch-'a'), false, true
	case ch >= 'A' && ch <= 'Z':
		return 0x04 + byte(ch-'A'), true, true
	case ch >= '1' && ch <= '9':
		return 0x1E + byte(ch-'1'), false, true
	}
	switch ch {
	case '0':
		return 0x27, false, true
	case ' ':
		return 0x2C, false, true
	case '-':
		return 0x2D, false, true
	case '=':
		return 0x2E, false, true
	case '[':
		return 0x2F, false, true
	case ']':
		return 0x30, false, true
	case '\\':
		return 0x31, false, true
	case ';':
		return 0x33, false, true
	case '\'':
		return 0x34, false, true
	case '`':
		return 0x35, false, true
	case ',':
		return 0x36, false, true
	case '.':
		return 0x37, false, true
	case '/':
		return 0x38, false, true
	case '\n':
		return 0x28, false, true
	case '\t':
		return 0x2B, false, true
	case '!':
		return 0x1E, true, true
	case '@':
		return 0x1F, true, true
	case '#':
		return 0x20, true, true
	case '$':
		return 0x21, true, true
	case '%':
		return 0x22, true, true
	case '^':
		return 0x23, true, true
	case '&':
		return 0x24, true, true
	case '*':
		return 0x25, true, true
	case '(':
		return 0x26, true, true
	case ')':
		return 0x27, true, true
	case '_':
		return 0x2D, true, true
	case '+':
		return 0x2E, true, true
	case '{':
		return 0x2F, true, true
	case '}':
		return 0x30, true, true
	case '|':
		return 0x31, true, true
	case ':':
		return 0x33, true, true
	case '"':
		return 0x34, true, true
	case '~':
		return 0x35, true, true
	case '<':
		return 0x36, true, true
	case '>':
		return 0x37, true, true
	case '?':
		return 0x38, true, true
	default:
		return 0, false, false
	}
}

// ConsumerName returns a human-readable label for a consumer-page usage id;
// it knows only the handful of media keys exposed through config_type=3 and
// otherwise falls back to the raw hex value.
func ConsumerName(usage uint16) string {
	switch usage {
	case 0x00E2:
		return "Mute"
	case 0x00E9:
		return "VolumeUp"
	case 0x00EA:
		return "VolumeDown"
	case 0x00CD:
		return "PlayPause"
	case 0x00B5:
		return "NextTrack"
	case 0x00B6:
		return "PrevTrack"
	case 0x00B7:
		return "Stop"
	default:
		return fmt.Sprintf("0x%04X", usage)
	}
}
