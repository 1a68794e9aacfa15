package flashapi

import (
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
)

// Options configures a Flash run. Zero-value Options is not valid; start
// from DefaultOptions.
type Options struct {
	// Wait: if no targets are discovered, keep re-discovering every 250ms
	// until one appears or WaitTimeout elapses.
	Wait        bool
	WaitTimeout time.Duration

	// NoReboot skips the final boot report (§4.9 step 6).
	NoReboot bool

	// Retries is the number of retries after the first failed block write
	// (so Retries+1 total attempts) before ErrWriteFailed (§4.9 step 5).
	Retries int
	// ReopenTimeout bounds how long a device reopen may poll for.
	ReopenTimeout time.Duration
	// ReopenDelay is slept before and after each reopen attempt.
	ReopenDelay time.Duration

	// SoftRebootDelay is slept after triggering a serial-target soft
	// reboot, before polling for the new HalfKay path.
	SoftRebootDelay time.Duration
	// SerialPreference is matched against serial target port names during
	// auto-disambiguation (§4.9 step 3).
	SerialPreference string

	// Plan, when set, returns after selection without streaming any block
	// or touching the bridge (§4.9 final paragraph).
	Plan bool

	Bridge bridgecontrol.Options
}

// DefaultOptions mirrors the literal defaults named in §4.9.
func DefaultOptions() Options {
	return Options{
		WaitTimeout:     60 * time.Second,
		Retries:         3,
		ReopenTimeout:   10 * time.Second,
		ReopenDelay:     150 * time.Millisecond,
		SoftRebootDelay: 250 * time.Millisecond,
		Bridge:          bridgecontrol.DefaultOptions(),
	}
}

// Plan is the result of a Plan-mode run (§4.9 final paragraph): the loaded
// image, the resolved selection, and whether the run would have needed the
// bridge, without performing any write.
type Plan struct {
	Bytes       int
	Blocks      int
	Selected    []string // target ids
	NeedsSerial bool
}
