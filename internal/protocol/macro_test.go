package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMacroDataRoundTrip(t *testing.T) {
	events := []MacroEvent{
		{Keycode: 0x04, IsDown: true, DelayMs: 50},
		{Keycode: 0x04, IsDown: false, DelayMs: 0},
		{Keycode: 0x05, IsDown: true, DelayMs: 200},
		{Keycode: 0x05, IsDown: false, DelayMs: 10},
	}
	data := EncodeMacroData(events, 3)

	repeat, decoded, err := DecodeMacroData(data)
	require.NoError(t, err)
	require.Equal(t, uint16(3), repeat)
	require.Equal(t, events, decoded)
}

func TestDecodeMacroDataUninitializedSlot(t *testing.T) {
	data := make([]byte, MacroPageSize)
	for i := range data {
		data[i] = 0xFF
	}
	repeat, events, err := DecodeMacroData(data)
	require.NoError(t, err)
	require.Zero(t, repeat)
	require.Nil(t, events)
}

func TestDecodeMacroDataTooShort(t *testing.T) {
	_, _, err := DecodeMacroData([]byte{1})
	require.Error(t, err)
}

func TestPageMacroDataPadsAndSplits(t *testing.T) {
	data := make([]byte, MacroPageSize+10)
	pages := PageMacroData(data)
	require.Len(t, pages, 2)
	require.Len(t, pages[0], MacroPageSize)
	require.Len(t, pages[1], MacroPageSize)
}

func TestParseMacroSeqTapWithDelay(t *testing.T) {
	seq, err := ParseMacroSeq("A(50ms),B", 20)
	require.NoError(t, err)
	require.Len(t, seq.Steps, 2)
	require.Equal(t, StepTap, seq.Steps[0].Kind)
	require.NotNil(t, seq.Steps[0].Delay)
	require.Equal(t, uint16(50), *seq.Steps[0].Delay)
	require.Nil(t, seq.Steps[1].Delay)
}

func TestParseMacroSeqComboAndExplicitHalves(t *testing.T) {
	seq, err := ParseMacroSeq("Ctrl+C,A:Press,A:Release,100ms", 20)
	require.NoError(t, err)
	require.Len(t, seq.Steps, 4)
	require.Equal(t, StepTapCombo, seq.Steps[0].Kind)
	require.Equal(t, ModLCtrl, seq.Steps[0].Mods)
	require.Equal(t, StepDown, seq.Steps[1].Kind)
	require.Equal(t, StepUp, seq.Steps[2].Kind)
	require.Equal(t, StepDelay, seq.Steps[3].Kind)
	require.Equal(t, uint16(100), *seq.Steps[3].Delay)
}

func TestParseMacroSeqEmptyString(t *testing.T) {
	seq, err := ParseMacroSeq("  ", 20)
	require.NoError(t, err)
	require.Empty(t, seq.Steps)
}

func TestParseMacroSeqUnknownKeyErrors(t *testing.T) {
	_, err := ParseMacroSeq("NotAKey", 20)
	require.Error(t, err)
}

func TestMacroSeqToEventsUsesDefaultDelay(t *testing.T) {
	seq := MacroSeq{DefaultDelay: 30, Steps: []MacroStep{{Kind: StepTap, Key: 0x04}}}
	events := seq.ToEvents()
	require.Len(t, events, 2)
	require.Equal(t, uint16(30), events[0].DelayMs)
	require.Equal(t, uint16(30), events[1].DelayMs)
}

func TestMacroSeqStringRoundTripsTap(t *testing.T) {
	seq, err := ParseMacroSeq("A(50ms)", 20)
	require.NoError(t, err)
	require.Equal(t, "A(50ms)", seq.String())
}

func TestParseMacroEventsRoundTripsComboSequence(t *testing.T) {
	seq, err := ParseMacroSeq("Ctrl+A(50ms),Ctrl+C", 10)
	require.NoError(t, err)

	events := seq.ToEvents()
	steps, defaultDelay := ParseMacroEvents(events)

	require.Equal(t, uint16(10), defaultDelay)
	require.Len(t, steps, 2)

	roundTripped := MacroSeq{Steps: steps, DefaultDelay: defaultDelay}
	require.Equal(t, "Ctrl+A(50ms),Ctrl+C", roundTripped.String())
}
