// Package serialreboot implements the 134-baud trick: opening a Teensy's
// USB serial port at that baud rate is interpreted by the device firmware
// as a request to reboot into the HalfKay bootloader.
package serialreboot

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

const (
	magicBaud   = 134
	openDelay   = 120 * time.Millisecond
	openTimeout = 500 * time.Millisecond
)

// ErrorKind classifies a soft-reboot failure.
type ErrorKind int

const (
	ErrNoTeensySerial ErrorKind = iota
	ErrSerial
)

// Error is the error type surfaced by this package.
type Error struct {
	Kind ErrorKind
	Port string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == ErrNoTeensySerial {
		return "serialreboot: no Teensy serial port found"
	}
	return fmt.Sprintf("serialreboot: %s: %v", e.Port, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// SoftRebootPort opens port at the magic baud rate, re-asserts the baud
// rate once opened (some drivers only transmit the line-coding descriptor
// on an explicit change), sleeps 120ms, then closes it (§4.3, §6).
func SoftRebootPort(portName string) error {
	mode := &serial.Mode{
		BaudRate: magicBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return &Error{Kind: ErrSerial, Port: portName, Err: err}
	}
	defer port.Close()

	if err := port.SetReadTimeout(openTimeout); err != nil {
		return &Error{Kind: ErrSerial, Port: portName, Err: err}
	}
	if err := port.SetMode(mode); err != nil {
		return &Error{Kind: ErrSerial, Port: portName, Err: err}
	}

	time.Sleep(openDelay)
	return nil
}

// SoftRebootTeensy41 enumerates candidate serial ports bearing the
// recognized vendor id, picks preferred if given (else the first
// candidate), triggers the reboot, and returns the port name used.
func SoftRebootTeensy41(preferred string) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", &Error{Kind: ErrSerial, Err: err}
	}

	var candidates []string
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vid, err := parseHexID(p.VID)
		if err != nil || vid != teensy41.VID {
			continue
		}
		candidates = append(candidates, p.Name)
	}
	if len(candidates) == 0 {
		return "", &Error{Kind: ErrNoTeensySerial}
	}

	chosen := candidates[0]
	if preferred != "" {
		for _, c := range candidates {
			if c == preferred {
				chosen = preferred
				break
			}
		}
	}

	if err := SoftRebootPort(chosen); err != nil {
		return "", err
	}
	return chosen, nil
}

func parseHexID(s string) (uint16, error) {
	var n uint16
	_, err := fmt.Sscanf(s, "%x", &n)
	return n, err
}
