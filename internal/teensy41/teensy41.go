// Package teensy41 holds the vendor/product identifiers and flash memory
// layout constants for the Teensy 4.1 HalfKay bootloader target.
package teensy41

const (
	// VID is the PJRC vendor id shared by both the HalfKay HID interface
	// and the application-mode USB serial port.
	VID = 0x16C0

	// PIDHalfKay is the product id the device presents once it has
	// re-enumerated into bootloader mode.
	PIDHalfKay = 0x0478

	// CodeSize is the total addressable flash span, in bytes.
	CodeSize = 8_126_464

	// BlockSize is the unit of flash programming.
	BlockSize = 1024

	// HeaderSize is the non-payload portion of a block-write packet.
	HeaderSize = 64

	// PacketSize is the HID payload carried after the report-id byte.
	PacketSize = HeaderSize + BlockSize

	// ReportSize is the full HID report: report-id byte plus packet.
	ReportSize = 1 + PacketSize

	// NumBlocks is the number of programmable blocks in CodeSize.
	NumBlocks = CodeSize / BlockSize

	// FlexSPIBase is the execute-in-place window the device maps code
	// through; HEX records reference it, on-device programming does not.
	FlexSPIBase = 0x6000_0000
)
