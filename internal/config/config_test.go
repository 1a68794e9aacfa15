package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	Reset()
	t.Setenv("LOADER_SERIAL_PORT", "COM7")
	t.Setenv("LOADER_BRIDGE_SERVICE_ID", "test-bridge")
	t.Setenv("LOADER_BRIDGE_CONTROL_PORT", "8123")

	cfg := Load()

	assert.Equal(t, "COM7", cfg.SerialPort)
	assert.Equal(t, "test-bridge", cfg.BridgeServiceID)
	assert.EqualValues(t, 8123, cfg.BridgeControlPort)
}

func TestLoadIgnoresUnparsablePort(t *testing.T) {
	Reset()
	t.Setenv("LOADER_BRIDGE_CONTROL_PORT", "not-a-port")

	cfg := Load()

	assert.Zero(t, cfg.BridgeControlPort)
}

func TestParseEnvFileSkipsCommentsAndBlankLines(t *testing.T) {
	cfg := &Config{}
	parseEnvFile("# comment\n\nLOADER_SERIAL_PORT=COM3\n", cfg)

	assert.Equal(t, "COM3", cfg.SerialPort)
}

func TestLoadCachesUntilReset(t *testing.T) {
	Reset()
	t.Setenv("LOADER_SERIAL_PORT", "COM1")
	first := Load()
	assert.Equal(t, "COM1", first.SerialPort)

	os.Setenv("LOADER_SERIAL_PORT", "COM2")
	cached := Load()
	assert.Equal(t, "COM1", cached.SerialPort, "Load must return the cached config until Reset is called")
}
