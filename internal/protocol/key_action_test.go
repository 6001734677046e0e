package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyActionConfigBytesRoundTrip(t *testing.T) {
	cases := []KeyAction{
		{Kind: ActionDisabled},
		{Kind: ActionKey, Key: 0x04},
		{Kind: ActionCombo, Mods: ModLCtrl | ModLShift, Code: 0x06},
		{Kind: ActionMouse, Button: 2},
		{Kind: ActionConsumer, Consumer: 0x00E9},
		{Kind: ActionMacro, MacroIndex: 3, MacroKind: 1},
		{Kind: ActionGamepad, Button: 5},
		{Kind: ActionProfileSwitch, ProfileAction: 1, ProfileIndex: 2},
		{Kind: ActionConnectionMode, ConnB1: 1, ConnB2: 2, ConnB3: 3},
		{Kind: ActionLedControl, Data: [3]byte{1, 2, 3}},
		{Kind: ActionKnob, Data: [3]byte{4, 5, 6}},
	}

	for _, original := range cases {
		bytes := original.ToConfigBytes()
		decoded := KeyActionFromConfigBytes(bytes)
		require.Equal(t, original.Kind, decoded.Kind, "config bytes %v", bytes)
	}
}

func TestKeyActionFromConfigBytesDisambiguatesFactoryVsRemap(t *testing.T) {
	// Factory default: code at byte 2.
	factory := KeyActionFromConfigBytes([4]byte{ctKey, 0, 0x04, 0})
	require.Equal(t, ActionKey, factory.Kind)
	require.Equal(t, byte(0x04), factory.Key)

	// User remap: code at byte 1, byte 2 zero.
	remap := KeyActionFromConfigBytes([4]byte{ctKey, 0x05, 0, 0})
	require.Equal(t, ActionKey, remap.Kind)
	require.Equal(t, byte(0x05), remap.Key)

	// Modifier combo: both non-zero.
	combo := KeyActionFromConfigBytes([4]byte{ctKey, ModLCtrl, 0x06, 0})
	require.Equal(t, ActionCombo, combo.Kind)
	require.Equal(t, ModLCtrl, combo.Mods)
	require.Equal(t, byte(0x06), combo.Code)

	disabled := KeyActionFromConfigBytes([4]byte{ctKey, 0, 0, 0})
	require.Equal(t, ActionDisabled, disabled.Kind)
}

func TestKeyActionFromConfigBytesSpecialFnKeyIsFn(t *testing.T) {
	action := KeyActionFromConfigBytes([4]byte{ctSpecialFn, specialFnKey, 0, 0})
	require.Equal(t, ActionFn, action.Kind)
}

func TestKeyActionFromConfigBytesUnknownConfigType(t *testing.T) {
	action := KeyActionFromConfigBytes([4]byte{200, 1, 2, 3})
	require.Equal(t, ActionUnknown, action.Kind)
	require.Equal(t, byte(200), action.UnknownConfigType)
	require.Equal(t, [3]byte{1, 2, 3}, action.Data)
}

func TestParseKeyActionCombo(t *testing.T) {
	action, err := ParseKeyAction("Ctrl+Shift+A")
	require.NoError(t, err)
	require.Equal(t, ActionCombo, action.Kind)
	require.Equal(t, ModLCtrl|ModLShift, action.Mods)
}

func TestParseKeyActionDisabledAndFn(t *testing.T) {
	d, err := ParseKeyAction("disabled")
	require.NoError(t, err)
	require.Equal(t, ActionDisabled, d.Kind)

	fn, err := ParseKeyAction("Fn")
	require.NoError(t, err)
	require.Equal(t, ActionFn, fn.Kind)
}

func TestParseKeyActionMouseAndGamepad(t *testing.T) {
	m, err := ParseKeyAction("Mouse1")
	require.NoError(t, err)
	require.Equal(t, ActionMouse, m.Kind)
	require.Equal(t, byte(1), m.Button)

	g, err := ParseKeyAction("Gamepad3")
	require.NoError(t, err)
	require.Equal(t, ActionGamepad, g.Kind)
	require.Equal(t, byte(3), g.Button)
}

func TestParseKeyActionHexLiteral(t *testing.T) {
	action, err := ParseKeyAction("0x1A")
	require.NoError(t, err)
	require.Equal(t, ActionKey, action.Kind)
	require.Equal(t, byte(0x1A), action.Key)
}

func TestParseKeyActionUnknownModifierErrors(t *testing.T) {
	_, err := ParseKeyAction("Super+A")
	require.Error(t, err)
}

func TestParseModifierCaseInsensitive(t *testing.T) {
	mask, ok := ParseModifier("CTRL")
	require.True(t, ok)
	require.Equal(t, ModLCtrl, mask)

	_, ok = ParseModifier("nope")
	require.False(t, ok)
}
