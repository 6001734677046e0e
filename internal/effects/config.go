// Package effects is the persistence stub for two host-side shells that
// sit outside the core driver: a keyframe lighting-effects engine and a
// virtual-joystick axis mapper. Both keep their configuration as TOML
// under $XDG_CONFIG_HOME/monsgeek/, loaded and saved the same way the
// rest of this module loads its .env-style driver config.
package effects

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configDirName = "monsgeek"

// Keyframe is one stop in a lighting effect's color/brightness timeline.
type Keyframe struct {
	OffsetMS   uint32 `toml:"offset_ms"`
	Red        byte   `toml:"red"`
	Green      byte   `toml:"green"`
	Blue       byte   `toml:"blue"`
	Brightness byte   `toml:"brightness"`
}

// EffectProfile is a named, looping keyframe sequence.
type EffectProfile struct {
	Name       string     `toml:"name"`
	LoopMS     uint32     `toml:"loop_ms"`
	Keyframes  []Keyframe `toml:"keyframes"`
	AudioFFT   bool       `toml:"audio_fft"`
	FFTBins    int        `toml:"fft_bins,omitempty"`
}

// JoystickAxis maps a matrix key's analog travel depth onto a virtual
// joystick axis, with a deadzone and an optional inverted direction.
type JoystickAxis struct {
	KeyIndex byte    `toml:"key_index"`
	Axis     string  `toml:"axis"`
	Deadzone float64 `toml:"deadzone_mm"`
	Inverted bool    `toml:"inverted"`
}

// Config is the effects engine and joystick mapper's combined persisted
// state. They're stored together since both are optional shells around
// the same physical keyboard and a user is likely to tune them in one
// sitting.
type Config struct {
	Effects   []EffectProfile `toml:"effects"`
	Joystick  []JoystickAxis  `toml:"joystick"`
	ActiveFX  string          `toml:"active_effect,omitempty"`
}

// ConfigPath returns the TOML file path under $XDG_CONFIG_HOME (or
// ~/.config if unset).
func ConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configDirName, "effects.toml"), nil
}

// Load reads the effects/joystick config, returning a zero-value Config
// if no file has been saved yet.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config atomically-enough for a single-user desktop
// tool: write to a temp file in the same directory, then rename.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// ProfileByName finds an effect profile by name, for the CLI's effect
// subcommand and the TUI's effect picker.
func (c Config) ProfileByName(name string) (EffectProfile, bool) {
	for _, p := range c.Effects {
		if p.Name == name {
			return p, true
		}
	}
	return EffectProfile{}, false
}
