package main

import (
	"fmt"
	"os"

	"github.com/petitechose-midi-studio/loader/internal/flashapi"
	"github.com/petitechose-midi-studio/loader/internal/operation"
	"github.com/petitechose-midi-studio/loader/internal/rebootapi"
)

// Exit codes per the CLI collaborator contract: OK=0, NoDevice=10,
// InvalidHex=11, WriteFailed=12, Ambiguous=13, Unexpected=20.
const (
	exitOK          = 0
	exitNoDevice    = 10
	exitInvalidHex  = 11
	exitWriteFailed = 12
	exitAmbiguous   = 13
	exitUnexpected  = 20
)

// exitCodeFor derives the process exit code from the top-level error's
// kind. BridgePauseFailed has no dedicated code in the contract table, so
// it falls into the catch-all Unexpected bucket.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	switch e := err.(type) {
	case *flashapi.Error:
		switch e.Kind {
		case flashapi.ErrNoDevice:
			return exitNoDevice
		case flashapi.ErrInvalidHex:
			return exitInvalidHex
		case flashapi.ErrWriteFailed:
			return exitWriteFailed
		case flashapi.ErrAmbiguousTarget:
			return exitAmbiguous
		default:
			return exitUnexpected
		}
	case *rebootapi.Error:
		switch e.Kind {
		case rebootapi.ErrNoDevice:
			return exitNoDevice
		case rebootapi.ErrAmbiguousTarget:
			return exitAmbiguous
		default:
			return exitUnexpected
		}
	default:
		return exitUnexpected
	}
}

// printEvent renders a single event as one human-readable line to stderr.
// Observers that want structured output should use a dedicated emit
// function instead (see runWithTUI for the interactive renderer).
func printEvent(ev operation.Event) {
	switch ev.Kind {
	case operation.DiscoverStart:
		fmt.Fprintln(os.Stderr, "discovering targets...")
	case operation.TargetDetected:
		fmt.Fprintf(os.Stderr, "  [%d] %s\n", ev.Index, ev.TargetID)
	case operation.DiscoverDone:
		fmt.Fprintf(os.Stderr, "found %d target(s)\n", ev.Count)
	case operation.TargetSelected:
		fmt.Fprintf(os.Stderr, "selected %s\n", ev.TargetID)
	case operation.HexLoaded:
		fmt.Fprintf(os.Stderr, "loaded hex: %d bytes, %d block(s) to write\n", ev.Bytes, ev.Blocks)
	case operation.BridgePauseStart:
		fmt.Fprintln(os.Stderr, "pausing bridge...")
	case operation.BridgePaused:
		fmt.Fprintf(os.Stderr, "bridge paused via %s\n", ev.BridgeMethod)
	case operation.BridgePauseSkipped:
		fmt.Fprintf(os.Stderr, "bridge pause skipped: %s\n", ev.SkipReason)
	case operation.BridgePauseFailed:
		fmt.Fprintf(os.Stderr, "bridge pause failed: %s\n", ev.ErrorMessage)
	case operation.BridgeResumeStart:
		fmt.Fprintln(os.Stderr, "resuming bridge...")
	case operation.BridgeResumed:
		fmt.Fprintln(os.Stderr, "bridge resumed")
	case operation.BridgeResumeFailed:
		fmt.Fprintf(os.Stderr, "bridge resume failed: %s\n", ev.ErrorMessage)
		if ev.ErrorHint != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", ev.ErrorHint)
		}
	case operation.TargetStart:
		fmt.Fprintf(os.Stderr, "%s: starting\n", ev.TargetID)
	case operation.TargetDone:
		if ev.OK {
			fmt.Fprintf(os.Stderr, "%s: done\n", ev.TargetID)
		} else {
			fmt.Fprintf(os.Stderr, "%s: failed: %s\n", ev.TargetID, ev.Message)
		}
	case operation.SoftReboot:
		fmt.Fprintf(os.Stderr, "triggered soft reboot on %s\n", ev.Port)
	case operation.SoftRebootSkipped:
		fmt.Fprintf(os.Stderr, "soft reboot skipped: %s\n", ev.Message)
	case operation.HalfKayAppeared:
		fmt.Fprintf(os.Stderr, "bootloader appeared at %s\n", ev.Path)
	case operation.HalfKayOpen:
		fmt.Fprintf(os.Stderr, "opened %s\n", ev.Path)
	case operation.Block:
		fmt.Fprintf(os.Stderr, "\rblock %d/%d (addr 0x%06X)", ev.Index+1, ev.Blocks, ev.Addr)
	case operation.Retry:
		fmt.Fprintf(os.Stderr, "\nretry %d/%d at addr 0x%06X: %s\n", ev.Attempt, ev.Retries, ev.Addr, ev.Message)
	case operation.Boot:
		fmt.Fprintln(os.Stderr, "\nbooting device")
	case operation.Done:
		fmt.Fprintln(os.Stderr, "done")
	}
}
