// Package config loads driver configuration the same way the teacher's
// device config loader does: a .env file near go.mod, overridden by
// environment variables, with a Must* accessor for cmd/ entrypoints that
// should fail fast on missing required settings.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DriverConfig holds the settings every cmd/ entrypoint needs: which
// transport to prefer, timing overrides, logging, and the gRPC listen
// address for the driver server.
type DriverConfig struct {
	TransportPreference []string // ordered: "wired", "dongle", "ble"
	BLEPeripheralID      string
	DongleAwakeTimeout   time.Duration
	DongleAsleepTimeout  time.Duration
	LogLevel             string
	GRPCListenAddr       string
	DiscoveryRetries     int
}

var (
	driverConfig *DriverConfig
	configLoaded bool
)

// defaultConfig mirrors the values used throughout internal/transport.
func defaultConfig() *DriverConfig {
	return &DriverConfig{
		TransportPreference: []string{"wired", "dongle", "ble"},
		DongleAwakeTimeout:   500 * time.Millisecond,
		DongleAsleepTimeout:  2000 * time.Millisecond,
		LogLevel:             "info",
		GRPCListenAddr:       "127.0.0.1:50551",
		DiscoveryRetries:     3,
	}
}

// LoadDriverConfig loads and caches the driver configuration: defaults,
// then a .env file found by walking up from the working directory to
// go.mod, then environment variable overrides.
func LoadDriverConfig() (*DriverConfig, error) {
	if driverConfig != nil && configLoaded {
		return driverConfig, nil
	}

	cfg := defaultConfig()

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")
	if data, err := os.ReadFile(envPath); err == nil {
		parseEnvFile(string(data), cfg)
	}

	applyEnvOverrides(cfg)

	driverConfig = cfg
	configLoaded = true
	return cfg, nil
}

func parseEnvFile(content string, cfg *DriverConfig) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		setField(cfg, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}
}

func applyEnvOverrides(cfg *DriverConfig) {
	for _, key := range []string{
		"TRANSPORT_PREFERENCE", "BLE_PERIPHERAL_ID", "DONGLE_AWAKE_TIMEOUT_MS",
		"DONGLE_ASLEEP_TIMEOUT_MS", "LOG_LEVEL", "GRPC_LISTEN_ADDR", "DISCOVERY_RETRIES",
	} {
		if v := os.Getenv(key); v != "" {
			setField(cfg, key, v)
		}
	}
}

func setField(cfg *DriverConfig, key, value string) {
	switch key {
	case "TRANSPORT_PREFERENCE":
		cfg.TransportPreference = strings.Split(value, ",")
	case "BLE_PERIPHERAL_ID":
		cfg.BLEPeripheralID = value
	case "DONGLE_AWAKE_TIMEOUT_MS":
		if ms, err := strconv.Atoi(value); err == nil {
			cfg.DongleAwakeTimeout = time.Duration(ms) * time.Millisecond
		}
	case "DONGLE_ASLEEP_TIMEOUT_MS":
		if ms, err := strconv.Atoi(value); err == nil {
			cfg.DongleAsleepTimeout = time.Duration(ms) * time.Millisecond
		}
	case "LOG_LEVEL":
		cfg.LogLevel = value
	case "GRPC_LISTEN_ADDR":
		cfg.GRPCListenAddr = value
	case "DISCOVERY_RETRIES":
		if n, err := strconv.Atoi(value); err == nil {
			cfg.DiscoveryRetries = n
		}
	}
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}

// MustLoadDriverConfig loads the driver config or panics; intended for
// cmd/ entrypoints only, never for library code.
func MustLoadDriverConfig() DriverConfig {
	cfg, err := LoadDriverConfig()
	if err != nil {
		panic("failed to load driver configuration: " + err.Error())
	}
	return *cfg
}
