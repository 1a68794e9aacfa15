package halfkay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

func TestBuildBlockReportFormat(t *testing.T) {
	data := make([]byte, teensy41.BlockSize)
	data[0] = 0xAA
	data[teensy41.BlockSize-1] = 0xCC

	report := BuildBlockReport(0x00123400, data)

	require := assert.New(t)
	require.Len(report, teensy41.ReportSize)
	require.Equal(byte(0x00), report[0])
	require.Equal([]byte{0x00, 0x34, 0x12}, report[1:4])
	for _, b := range report[4:teensy41.HeaderSize+1] {
		require.Equal(byte(0), b)
	}
	require.Equal(byte(0xAA), report[1+teensy41.HeaderSize])
	require.Equal(byte(0xCC), report[len(report)-1])
}

func TestBuildBootReportFormat(t *testing.T) {
	report := BuildBootReport()

	assert.Len(t, report, teensy41.ReportSize)
	assert.Equal(t, byte(0x00), report[0])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, report[1:4])
	for _, b := range report[4:] {
		assert.Equal(t, byte(0), b)
	}
}
