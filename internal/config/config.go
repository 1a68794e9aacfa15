// Package config loads loaderctl's host-level defaults — bridge service
// id, bridge control port, preferred serial port — from a .env file or the
// process environment, the same way guiperry-HASHER's internal/config
// does for its device credentials.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the environment-sourced defaults that seed Options before
// CLI flags are applied.
type Config struct {
	SerialPort        string
	BridgeServiceID   string
	BridgeControlPort uint16
}

var (
	loaded     *Config
	configRead bool
)

// Load reads .env (if present, walking up from the working directory to
// the nearest go.mod) then overrides with process environment variables.
// The result is cached; call Reset in tests that vary the environment.
func Load() *Config {
	if loaded != nil && configRead {
		return loaded
	}

	cfg := &Config{}

	root := findProjectRoot()
	data, err := os.ReadFile(filepath.Join(root, ".env"))
	if err == nil {
		parseEnvFile(string(data), cfg)
	}

	if v := os.Getenv("LOADER_SERIAL_PORT"); v != "" {
		cfg.SerialPort = v
	}
	if v := os.Getenv("LOADER_BRIDGE_SERVICE_ID"); v != "" {
		cfg.BridgeServiceID = v
	}
	if v := os.Getenv("LOADER_BRIDGE_CONTROL_PORT"); v != "" {
		if port, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.BridgeControlPort = uint16(port)
		}
	}

	loaded = cfg
	configRead = true
	return cfg
}

// Reset clears the cached config, forcing the next Load to re-read.
func Reset() {
	loaded = nil
	configRead = false
}

func parseEnvFile(content string, cfg *Config) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "LOADER_SERIAL_PORT":
			cfg.SerialPort = value
		case "LOADER_BRIDGE_SERVICE_ID":
			cfg.BridgeServiceID = value
		case "LOADER_BRIDGE_CONTROL_PORT":
			if port, err := strconv.ParseUint(value, 10, 16); err == nil {
				cfg.BridgeControlPort = uint16(port)
			}
		}
	}
}

func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
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
