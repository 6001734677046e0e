// Package protocol implements the wire codec for the MonsGeek Hall-Effect
// keyboard HID protocol: command/response framing, checksums, event parsing,
// and the key/matrix name tables. Pure functions and data — no I/O.
package protocol

import "fmt"

// ChecksumKind selects which slot (if any) carries the command's checksum byte.
type ChecksumKind int

const (
	ChecksumNone ChecksumKind = iota
	ChecksumBit7
	ChecksumBit8
)

const (
	ReportSize      = 65 // feature report size, including report id
	InputReportSize = 64
	BLEReportSize   = 66

	bit7Offset = 8 // absolute offset of the checksum byte for ChecksumBit7
	bit8Offset = 9 // absolute offset of the checksum byte for ChecksumBit8

	bleMarkerCmd   = 0x55
	bleMarkerEvent = 0x66
	bleReportID    = 0x06
)

// Command bytes (FEA_CMD_*). Extracted from the vendor's cloud driver and
// firmware reverse engineering; grouped the way the wire table groups them.
const (
	CmdSetReset      byte = 0x01
	CmdSetReport     byte = 0x03
	CmdSetProfile    byte = 0x04
	CmdSetLedOnOff   byte = 0x05
	CmdSetDebounce   byte = 0x06
	CmdSetLedParam   byte = 0x07
	CmdSetSLedParam  byte = 0x08
	CmdSetKbOption   byte = 0x09
	CmdSetKeyMatrix  byte = 0x0A
	CmdSetMacro      byte = 0x0B
	CmdSetUserpic    byte = 0x0C
	CmdSetAudioViz   byte = 0x0D
	CmdSetScreenColr byte = 0x0E
	CmdSetFn         byte = 0x10
	CmdSetSleepTime  byte = 0x11
	CmdSetUserGifStr byte = 0x18
	CmdSetAutoOSEn   byte = 0x17
	CmdSetUserGif    byte = 0x12

	CmdSetMagnetismReport byte = 0x1B
	CmdSetMagnetismCal    byte = 0x1C
	CmdSetKeyMagnetMode   byte = 0x1D
	CmdSetMagnetismMaxCal byte = 0x1E
	CmdSetMultiMagnetism  byte = 0x65

	CmdFactoryReset byte = 0x7F

	// Dongle-local control plane. Handled by the dongle firmware, never
	// forwarded over the radio.
	CmdGetDongleInfo     byte = 0xF0
	CmdSetCtrlByte       byte = 0xF6
	CmdGetDongleStatus   byte = 0xF7
	CmdEnterPairing      byte = 0xF8
	CmdPairingCmd        byte = 0x7A
	CmdGetCachedResponse byte = 0xFC
	CmdGetDongleID       byte = 0xFD
	CmdGetCalibration    byte = 0xFE // keyboard: GET_CALIBRATION; dongle: SET_RESPONSE_SIZE

	CmdGetRev          byte = 0x80
	CmdGetReport       byte = 0x83
	CmdGetProfile      byte = 0x84
	CmdGetLedOnOff     byte = 0x85
	CmdGetDebounce     byte = 0x86
	CmdGetLedParam     byte = 0x87
	CmdGetSLedParam    byte = 0x88
	CmdGetKbOption     byte = 0x89
	CmdGetKeyMatrix    byte = 0x8A
	CmdGetMacro        byte = 0x8B
	CmdGetUserpic      byte = 0x8C
	CmdGetUSBVersion   byte = 0x8F
	CmdGetFn           byte = 0x90
	CmdGetSleepTime    byte = 0x91
	CmdGetAutoOSEn     byte = 0x97
	CmdGetMagnetismCal byte = 0x9C
	CmdGetKeyMagnetism byte = 0x9D
	CmdGetMagnetismMax byte = 0x9E

	CmdGetMultiMagnetism byte = 0xE5 // response has no echo byte
	CmdGetFeatureList    byte = 0xE6
	CmdGetPatchInfo      byte = 0xE7 // firmware extension discovery
	CmdLedStream         byte = 0xE8 // firmware extension: streaming LED frames

	CmdFlush byte = 0xFC // dongle-only: move cached response into the feature buffer

	StatusSuccess byte = 0xAA
)

// Multi-magnetism sub-commands (payload of 0xE5/0x65).
const (
	SubPressTravel    byte = 0x00
	SubLiftTravel     byte = 0x01
	SubRTPress        byte = 0x02
	SubRTLift         byte = 0x03
	SubDKSTravel      byte = 0x04
	SubModTapTime     byte = 0x05
	SubBottomDeadzone byte = 0x06
	SubKeyMode        byte = 0x07
	SubSnapTapEnable  byte = 0x09
	SubDKSModes       byte = 0x0A
	SubTopDeadzone    byte = 0xFB
	SubSwitchType     byte = 0xFC
	SubCalibration    byte = 0xFE
)

// patchMagic is the two-byte marker the firmware expects at the start of a
// GET_PATCH_INFO request; absent entirely on stock firmware.
var patchMagic = [2]byte{0xCA, 0xFE}

// BuildCommand assembles a 65-byte USB/dongle feature report: report id 0,
// command byte, up to 62 bytes of payload, and the checksum (if any).
func BuildCommand(cmd byte, data []byte, checksum ChecksumKind) [ReportSize]byte {
	var buf [ReportSize]byte
	buf[0] = 0
	buf[1] = cmd
	n := len(data)
	if n > ReportSize-3 {
		n = ReportSize - 3
	}
	copy(buf[2:2+n], data[:n])
	ApplyChecksum(buf[:], checksum)
	return buf
}

// BuildBLECommand assembles the BLE envelope: vendor report id 0x06, marker
// 0x55, command byte, payload, checksum covering bytes from cmd onward.
func BuildBLECommand(cmd byte, data []byte, checksum ChecksumKind) [BLEReportSize]byte {
	var buf [BLEReportSize]byte
	buf[0] = bleReportID
	buf[1] = bleMarkerCmd
	buf[2] = cmd
	n := len(data)
	if n > BLEReportSize-4 {
		n = BLEReportSize - 4
	}
	copy(buf[3:3+n], data[:n])
	applyChecksumBLE(buf[:], checksum)
	return buf
}

// ApplyChecksum writes the one-byte complement sum into the conventional
// slot for kind. The sum runs over bytes from cmd (offset 1) up to, but not
// including, the checksum slot. No-op for ChecksumNone.
//
// The checksum slot sits at absolute offset 8 for Bit7 and 9 for Bit8 —
// i.e. 7 and 8 bytes after the cmd byte, not 7 and 8 bytes from the start
// of the buffer.
func ApplyChecksum(buf []byte, kind ChecksumKind) {
	switch kind {
	case ChecksumBit7:
		writeChecksum(buf, bit7Offset)
	case ChecksumBit8:
		writeChecksum(buf, bit8Offset)
	}
}

func writeChecksum(buf []byte, offset int) {
	if offset >= len(buf) {
		return
	}
	var sum byte
	for i := 1; i < offset; i++ {
		sum += buf[i]
	}
	buf[offset] = 255 - sum
}

// applyChecksumBLE shifts the USB layout by the marker byte: viewed from
// buf[1:], cmd sits at offset 1, so the sum starts at cmd and the slot
// lands one byte later than in the USB envelope.
func applyChecksumBLE(buf []byte, kind ChecksumKind) {
	switch kind {
	case ChecksumBit7:
		writeChecksum(buf[1:], bit7Offset)
	case ChecksumBit8:
		writeChecksum(buf[1:], bit8Offset)
	}
}

// VerifyChecksum reports whether buf's checksum byte matches its payload,
// for kinds that carry one. Always true for ChecksumNone.
func VerifyChecksum(buf []byte, kind ChecksumKind) bool {
	var offset int
	switch kind {
	case ChecksumNone:
		return true
	case ChecksumBit7:
		offset = bit7Offset
	case ChecksumBit8:
		offset = bit8Offset
	default:
		return false
	}
	if offset >= len(buf) {
		return false
	}
	var sum byte
	for i := 1; i < offset; i++ {
		sum += buf[i]
	}
	return buf[offset] == 255-sum
}

// ParsedCommand is the best-effort decode of an outbound feature report,
// used by diagnostic printers. Payloads that don't correspond to a known
// command still decode, tagged Unknown.
type ParsedCommand struct {
	Cmd     byte
	Name    string
	Payload []byte
}

// ParsedResponse is the best-effort decode of an inbound feature report.
type ParsedResponse struct {
	Echo    byte
	Name    string
	Payload []byte
	HasEcho bool
}

// TryParseCommand decodes buf (a full feature report, report id included)
// into a ParsedCommand. It never fails: unrecognised command bytes still
// produce a result with Name "Unknown".
func TryParseCommand(buf []byte) ParsedCommand {
	if len(buf) < 2 {
		return ParsedCommand{Name: "Unknown"}
	}
	cmd := buf[1]
	name := cmdName(cmd)
	payload := []byte{}
	if len(buf) > 2 {
		payload = buf[2:]
	}
	return ParsedCommand{Cmd: cmd, Name: name, Payload: payload}
}

// TryParseResponse decodes buf into a ParsedResponse. GET_MULTI_MAGNETISM
// carries no echo byte; everything else does.
func TryParseResponse(buf []byte, requestCmd byte) ParsedResponse {
	if len(buf) == 0 {
		return ParsedResponse{Name: "Unknown"}
	}
	if requestCmd == CmdGetMultiMagnetism {
		return ParsedResponse{Payload: buf, Name: cmdName(requestCmd)}
	}
	echo := buf[0]
	payload := []byte{}
	if len(buf) > 1 {
		payload = buf[1:]
	}
	return ParsedResponse{Echo: echo, Name: cmdName(echo), Payload: payload, HasEcho: true}
}

var cmdNames = map[byte]string{
	CmdSetReset: "SET_RESET", CmdSetReport: "SET_REPORT", CmdSetProfile: "SET_PROFILE",
	CmdSetLedOnOff: "SET_LEDONOFF", CmdSetDebounce: "SET_DEBOUNCE", CmdSetLedParam: "SET_LEDPARAM",
	CmdSetSLedParam: "SET_SLEDPARAM", CmdSetKbOption: "SET_KBOPTION", CmdSetKeyMatrix: "SET_KEYMATRIX",
	CmdSetMacro: "SET_MACRO", CmdSetUserpic: "SET_USERPIC", CmdSetAudioViz: "SET_AUDIO_VIZ",
	CmdSetScreenColr: "SET_SCREEN_COLOR", CmdSetFn: "SET_FN", CmdSetSleepTime: "SET_SLEEPTIME",
	CmdSetUserGifStr: "SET_USERGIFSTART", CmdSetAutoOSEn: "SET_AUTOOS_EN", CmdSetUserGif: "SET_USERGIF",
	CmdSetMagnetismReport: "SET_MAGNETISM_REPORT", CmdSetMagnetismCal: "SET_MAGNETISM_CAL",
	CmdSetKeyMagnetMode: "SET_KEY_MAGNETISM_MODE", CmdSetMagnetismMaxCal: "SET_MAGNETISM_MAX_CAL",
	CmdSetMultiMagnetism: "SET_MULTI_MAGNETISM", CmdFactoryReset: "FACTORY_RESET",
	CmdGetDongleInfo: "GET_DONGLE_INFO", CmdSetCtrlByte: "SET_CTRL_BYTE",
	CmdGetDongleStatus: "GET_DONGLE_STATUS", CmdEnterPairing: "ENTER_PAIRING",
	CmdPairingCmd: "PAIRING_CMD", CmdGetCachedResponse: "GET_CACHED_RESPONSE",
	CmdGetDongleID: "GET_DONGLE_ID", CmdGetCalibration: "GET_CALIBRATION",
	CmdGetRev: "GET_REV", CmdGetReport: "GET_REPORT", CmdGetProfile: "GET_PROFILE",
	CmdGetLedOnOff: "GET_LEDONOFF", CmdGetDebounce: "GET_DEBOUNCE", CmdGetLedParam: "GET_LEDPARAM",
	CmdGetSLedParam: "GET_SLEDPARAM", CmdGetKbOption: "GET_KBOPTION", CmdGetKeyMatrix: "GET_KEYMATRIX",
	CmdGetMacro: "GET_MACRO", CmdGetUserpic: "GET_USERPIC", CmdGetUSBVersion: "GET_USB_VERSION",
	CmdGetFn: "GET_FN", CmdGetSleepTime: "GET_SLEEPTIME", CmdGetAutoOSEn: "GET_AUTOOS_EN",
	CmdGetMagnetismCal: "GET_MAGNETISM_CAL", CmdGetKeyMagnetism: "GET_KEY_MAGNETISM_MODE",
	CmdGetMagnetismMax: "GET_MAGNETISM_CALMAX", CmdGetMultiMagnetism: "GET_MULTI_MAGNETISM",
	CmdGetFeatureList: "GET_FEATURE_LIST", CmdGetPatchInfo: "GET_PATCH_INFO",
	CmdLedStream: "LED_STREAM",
	// CmdFlush shares CmdGetCachedResponse's byte value (0xFC): same wire
	// value, direction disambiguates meaning, same as CmdGetCalibration/0xFE.
}

func cmdName(cmd byte) string {
	if name, ok := cmdNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", cmd)
}

// PatchInfoRequest returns the GET_PATCH_INFO request payload: the magic
// bytes the firmware extension checks for before replying.
func PatchInfoRequest() []byte {
	return patchMagic[:]
}

// IsPatchMagic reports whether a GET_PATCH_INFO response carries the
// expected magic bytes, i.e. the patch is actually installed.
func IsPatchMagic(resp []byte) bool {
	return len(resp) >= 2 && resp[0] == patchMagic[0] && resp[1] == patchMagic[1]
}
