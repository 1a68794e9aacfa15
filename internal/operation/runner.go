package operation

import (
	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/targets"
)

// RunOne performs the per-target action (flash or reboot) for target,
// identified by id for event correlation.
type RunOne func(target targets.Target, id string, emit Emit) error

// PauseBridge attempts to pause the bridge per opts, returning the outcome
// and, for a Paused outcome, the Guard owning its resume plan. Production
// callers pass bridgecontrol.Pause; tests substitute a fake to make the
// outcome deterministic.
type PauseBridge func(opts bridgecontrol.Options) (bridgecontrol.PauseOutcome, *bridgecontrol.Guard)

// Adapters lets Run stay agnostic of the caller's concrete error type
// (§4.8/§9: "a generic algorithm... languages without generics should pass
// function values").
type Adapters struct {
	// IsAmbiguous reports whether err represents an ambiguous-selection
	// failure surfaced from RunOne (rather than a plain target failure).
	IsAmbiguous func(err error) bool
	// MakeAmbiguous builds the return error for a sticky ambiguous result.
	MakeAmbiguous func(message string) error
	// MakeMultiFailed builds the return error when some (not all, or all)
	// targets failed in multi-target mode without triggering Ambiguous.
	MakeMultiFailed func(failed, total int) error
	// MakeBridgePauseFailed builds the return error for a failed pause gate.
	MakeBridgePauseFailed func(outcome bridgecontrol.PauseOutcome) error
}

// Run implements §4.8: gate on the bridge if any selected target is Serial,
// dispatch runOne to every selected target (aggregating failures in
// multi-target mode, aborting immediately in single-target mode), resolve
// outcome precedence, and guarantee a best-effort bridge resume on every
// exit path.
func Run(selected []targets.Target, bridgeOpts bridgecontrol.Options, pauseBridge PauseBridge, runOne RunOne, adapters Adapters, emit Emit) error {
	multi := len(selected) > 1
	needsSerial := false
	for _, t := range selected {
		if t.Kind == targets.KindSerial {
			needsSerial = true
			break
		}
	}

	// guard is non-nil only when a pause actually succeeded. A HalfKay-only
	// selection never assigns it, so it never emits BridgeResume* either.
	var guard *bridgecontrol.Guard
	// The deferred Resume covers a panic in runOne and retries once more if
	// the explicit resume below failed; after a successful one it is a no-op.
	defer func() {
		if guard != nil {
			_ = guard.Resume()
		}
	}()
	if needsSerial {
		emit.Send(Event{Kind: BridgePauseStart})
		outcome, g := pauseBridge(bridgeOpts)
		switch outcome.Kind {
		case bridgecontrol.OutcomePaused:
			guard = g
			emit.Send(Event{Kind: BridgePaused, BridgeMethod: outcome.Info.Method.String(), BridgePIDs: outcome.Info.PIDs})
		case bridgecontrol.OutcomeSkipped:
			emit.Send(Event{Kind: BridgePauseSkipped, SkipReason: outcome.SkipReason.String()})
		case bridgecontrol.OutcomeFailed:
			emit.Send(Event{Kind: BridgePauseFailed, ErrorMessage: outcome.Error.Message, ErrorHint: outcome.Error.Hint})
			return adapters.MakeBridgePauseFailed(outcome)
		}
	}

	var (
		fatalErr      error
		ambiguousMsg  string
		haveAmbiguous bool
		failedCount   int
	)

loop:
	for _, t := range selected {
		id := t.ID()
		kind := "serial"
		if t.Kind == targets.KindHalfKay {
			kind = "halfkay"
		}
		emit.Send(Event{Kind: TargetStart, TargetID: id, Target: t, TargetKind: kind})

		err := runOne(t, id, emit)
		if err != nil {
			emit.Send(Event{Kind: TargetDone, TargetID: id, Target: t, OK: false, Message: err.Error()})

			if adapters.IsAmbiguous != nil && adapters.IsAmbiguous(err) {
				if !haveAmbiguous {
					haveAmbiguous = true
					ambiguousMsg = err.Error()
				}
				if !multi {
					fatalErr = err
					break loop
				}
				continue
			}

			if !multi {
				fatalErr = err
				break loop
			}
			failedCount++
			continue
		}

		emit.Send(Event{Kind: TargetDone, TargetID: id, Target: t, OK: true})
	}

	var result error
	switch {
	case fatalErr != nil:
		result = fatalErr
	case haveAmbiguous:
		result = adapters.MakeAmbiguous(ambiguousMsg)
	case failedCount > 0:
		result = adapters.MakeMultiFailed(failedCount, len(selected))
	default:
		result = nil
	}

	if guard != nil {
		emit.Send(Event{Kind: BridgeResumeStart})
		if err := guard.Resume(); err != nil {
			emit.Send(Event{Kind: BridgeResumeFailed, ErrorMessage: err.Error(), ErrorHint: guard.ResumeHint()})
		} else {
			emit.Send(Event{Kind: BridgeResumed})
		}
	}

	return result
}
