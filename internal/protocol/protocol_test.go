package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildCommandChecksumBit7(t *testing.T) {
	buf := BuildCommand(CmdSetProfile, []byte{0x02}, ChecksumBit7)
	require.Equal(t, byte(0), buf[0])
	require.Equal(t, CmdSetProfile, buf[1])
	require.True(t, VerifyChecksum(buf[:], ChecksumBit7))
}

func TestBuildCommandChecksumBit8(t *testing.T) {
	buf := BuildCommand(CmdSetDebounce, []byte{0x05, 0x10}, ChecksumBit8)
	require.True(t, VerifyChecksum(buf[:], ChecksumBit8))
	require.False(t, VerifyChecksum(buf[:], ChecksumBit7))
}

func TestBuildCommandChecksumNoneAlwaysVerifies(t *testing.T) {
	buf := BuildCommand(CmdGetProfile, nil, ChecksumNone)
	require.True(t, VerifyChecksum(buf[:], ChecksumNone))
}

func TestBuildCommandTruncatesOversizedPayload(t *testing.T) {
	payload := make([]byte, ReportSize)
	for i := range payload {
		payload[i] = 0xFF
	}
	buf := BuildCommand(CmdSetMacro, payload, ChecksumNone)
	require.Len(t, buf, ReportSize)
}

func TestVerifyChecksumDetectsCorruption(t *testing.T) {
	buf := BuildCommand(CmdSetLedParam, []byte{1, 2, 3}, ChecksumBit7)
	buf[3] ^= 0xFF
	require.False(t, VerifyChecksum(buf[:], ChecksumBit7))
}

func TestBuildBLECommandChecksum(t *testing.T) {
	buf := BuildBLECommand(CmdSetKeyMatrix, []byte{1, 2, 3, 4}, ChecksumBit7)
	require.Equal(t, byte(bleReportID), buf[0])
	require.Equal(t, byte(bleMarkerCmd), buf[1])
	require.Equal(t, CmdSetKeyMatrix, buf[2])
}

func TestTryParseCommandUnknown(t *testing.T) {
	parsed := TryParseCommand([]byte{0, 0x99, 1, 2, 3})
	require.Equal(t, byte(0x99), parsed.Cmd)
	require.Contains(t, parsed.Name, "Unknown")
	require.Equal(t, []byte{1, 2, 3}, parsed.Payload)
}

func TestTryParseCommandKnown(t *testing.T) {
	parsed := TryParseCommand([]byte{0, CmdSetProfile, 0x02})
	require.Equal(t, "SET_PROFILE", parsed.Name)
	require.Equal(t, []byte{0x02}, parsed.Payload)
}

func TestTryParseCommandTooShort(t *testing.T) {
	parsed := TryParseCommand([]byte{0})
	require.Equal(t, "Unknown", parsed.Name)
}

func TestTryParseResponseWithEcho(t *testing.T) {
	resp := TryParseResponse([]byte{CmdGetProfile, 0x03}, CmdGetProfile)
	require.True(t, resp.HasEcho)
	require.Equal(t, "GET_PROFILE", resp.Name)
	require.Equal(t, []byte{0x03}, resp.Payload)
}

func TestTryParseResponseMultiMagnetismHasNoEcho(t *testing.T) {
	resp := TryParseResponse([]byte{1, 2, 3}, CmdGetMultiMagnetism)
	require.False(t, resp.HasEcho)
	require.Equal(t, []byte{1, 2, 3}, resp.Payload)
}

func TestPatchInfoRoundTrip(t *testing.T) {
	req := PatchInfoRequest()
	require.Len(t, req, 2)
	require.True(t, IsPatchMagic(req))
	require.False(t, IsPatchMagic([]byte{0, 0}))
	require.False(t, IsPatchMagic([]byte{0xCA}))
}
