package firmware

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHex(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "firmware.hex")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFlexSPIBaseMapping(t *testing.T) {
	path := writeHex(t,
		":0200000460009A",
		":04001000DEADBEEFB4",
		":00000001FF",
	)
	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, img.Data[0x10:0x14])
	assert.Contains(t, img.BlocksToWrite, 0, "block 0 must always be in the write-set")
}

func TestLoadAddressOutOfRange(t *testing.T) {
	path := writeHex(t,
		":02000004607C1E",
		":04001000DEADBEEFB4",
		":00000001FF",
	)
	_, err := Load(path)
	require.Error(t, err)
	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, KindAddressOutOfRange, herr.Kind)
}

func TestLoadCorruptChecksum(t *testing.T) {
	path := writeHex(t,
		":04001000DEADBEEF00",
		":00000001FF",
	)
	_, err := Load(path)
	require.Error(t, err)
	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, KindInvalidChecksum, herr.Kind)
}

func TestBlocksToWriteSparse(t *testing.T) {
	// touch a byte in block 2 only; block 1 must stay out of the write-set.
	path := writeHex(t,
		":04080000AABBCCDDE6",
		":00000001FF",
	)
	img, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, img.BlocksToWrite, 0)
	assert.Contains(t, img.BlocksToWrite, 2)
	assert.NotContains(t, img.BlocksToWrite, 1)
}

func TestLoadNotText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "firmware.hex")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0xFF, 0x80, 0x01, '\n'}, 0o644))
	_, err := Load(path)
	require.Error(t, err)
	var herr *Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, KindNotText, herr.Kind)
}
