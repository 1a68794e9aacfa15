package halfkay

import "github.com/petitechose-midi-studio/loader/internal/teensy41"

// BuildBlockReport lays out the 1089-byte block-write envelope: report-id
// 0x00, a 3-byte little-endian block address, HeaderSize-3 zero bytes, then
// the 1024 firmware bytes.
func BuildBlockReport(blockAddr uint32, data []byte) []byte {
	report := make([]byte, teensy41.ReportSize)
	report[0] = 0x00
	pkt := report[1:]
	pkt[0] = byte(blockAddr)
	pkt[1] = byte(blockAddr >> 8)
	pkt[2] = byte(blockAddr >> 16)
	copy(pkt[teensy41.HeaderSize:], data)
	return report
}

// BuildBootReport lays out the boot envelope: report-id 0x00, address field
// 0xFF 0xFF 0xFF, and a zero payload.
func BuildBootReport() []byte {
	report := make([]byte, teensy41.ReportSize)
	report[0] = 0x00
	pkt := report[1:]
	pkt[0], pkt[1], pkt[2] = 0xFF, 0xFF, 0xFF
	return report
}
