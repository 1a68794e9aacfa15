package targets

import (
	"fmt"
	"strconv"

	"go.bug.st/serial/enumerator"

	"github.com/petitechose-midi-studio/loader/internal/halfkay"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

// Error wraps a failure from either enumeration source.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("discover targets: %s: %v", e.Msg, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Discover enumerates both sources: every HalfKay HID device, and every USB
// serial port whose descriptor reports the recognized vendor id. The
// result is sorted deterministically (§4.4): HalfKay before Serial, then
// lexicographically by identifier.
func Discover() ([]Target, error) {
	var out []Target

	hidDevs, err := halfkay.ListDevices()
	if err != nil {
		return nil, &Error{Msg: "halfkay enumeration failed", Err: err}
	}
	for _, d := range hidDevs {
		out = append(out, Target{Kind: KindHalfKay, VID: d.VID, PID: d.PID, Path: d.Path})
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, &Error{Msg: "serial port enumeration failed", Err: err}
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		vid, ok := parseHexID(p.VID)
		if !ok || vid != teensy41.VID {
			continue
		}
		pid, _ := parseHexID(p.PID)
		out = append(out, Target{
			Kind:         KindSerial,
			VID:          vid,
			PID:          pid,
			PortName:     p.Name,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}

	SortTargets(out)
	return out, nil
}

func parseHexID(s string) (uint16, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
