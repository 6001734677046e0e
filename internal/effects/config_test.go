package effects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := Config{
		Effects: []EffectProfile{
			{
				Name:   "breathing",
				LoopMS: 2000,
				Keyframes: []Keyframe{
					{OffsetMS: 0, Red: 255, Brightness: 0},
					{OffsetMS: 1000, Red: 255, Brightness: 255},
				},
			},
		},
		Joystick: []JoystickAxis{
			{KeyIndex: 12, Axis: "left_x", Deadzone: 0.3},
		},
		ActiveFX: "breathing",
	}

	require.NoError(t, Save(cfg))

	path, err := ConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "monsgeek", "effects.toml"), path)
	require.FileExists(t, path)

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	profile, ok := got.ProfileByName("breathing")
	require.True(t, ok)
	require.Len(t, profile.Keyframes, 2)

	_, ok = got.ProfileByName("nope")
	require.False(t, ok)
}

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Empty(t, cfg.Effects)
	require.Empty(t, cfg.Joystick)
}

func TestConfigPathDefaultsToDotConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path, err := ConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "monsgeek", "effects.toml"), path)
}
