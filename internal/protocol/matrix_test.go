package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyNameKnownAndOutOfRange(t *testing.T) {
	require.Equal(t, "Esc", KeyName(0))
	require.Equal(t, "?", KeyName(255))
}

func TestKeyCodeFromNameCanonical(t *testing.T) {
	idx, ok := KeyCodeFromName("Esc")
	require.True(t, ok)
	require.Equal(t, byte(0), idx)
}

func TestKeyCodeFromNameAlias(t *testing.T) {
	idx, ok := KeyCodeFromName("Escape")
	require.True(t, ok)
	require.Equal(t, byte(0), idx)

	idx, ok = KeyCodeFromName("SPACEBAR")
	require.True(t, ok)
	require.Equal(t, KeyName(idx), "Spc")
}

func TestKeyCodeFromNameRejectsUnusedSlotMarker(t *testing.T) {
	_, ok := KeyCodeFromName("?")
	require.False(t, ok)
}

func TestKeyCodeFromNameUnknown(t *testing.T) {
	_, ok := KeyCodeFromName("NotAKey")
	require.False(t, ok)
}

func TestKeyNameRoundTripsForEveryNamedSlot(t *testing.T) {
	for i := 0; i < MatrixSize; i++ {
		name := KeyName(byte(i))
		if name == "?" {
			continue
		}
		idx, ok := KeyCodeFromName(name)
		require.True(t, ok, "name %q at index %d should resolve", name, i)
		require.Equal(t, name, KeyName(idx))
	}
}
