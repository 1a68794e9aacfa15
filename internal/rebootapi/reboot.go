// Package rebootapi implements the Reboot operation (§4.10): the same
// discovery/selection/runner scaffolding as Flash, but a HalfKay target is
// already done (it's already in the bootloader) and a Serial target only
// triggers the soft-reboot-and-wait sequence, with no block streaming.
package rebootapi

import (
	"errors"
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bootloaderwait"
	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/operation"
	"github.com/petitechose-midi-studio/loader/internal/selector"
	"github.com/petitechose-midi-studio/loader/internal/serialreboot"
	"github.com/petitechose-midi-studio/loader/internal/targets"
)

// Options configures a Reboot run.
type Options struct {
	WaitTimeout time.Duration
	Bridge      bridgecontrol.Options
}

// DefaultOptions mirrors the literal wait_for_new default from §4.9.
func DefaultOptions() Options {
	return Options{
		WaitTimeout: 60 * time.Second,
		Bridge:      bridgecontrol.DefaultOptions(),
	}
}

// Reboot discovers, selects, then for each selected target either confirms
// it is already in the bootloader (HalfKay) or triggers and awaits a soft
// reboot (Serial).
func Reboot(selectorToken string, opts Options, emit operation.Emit) error {
	emit.Send(operation.Event{Kind: operation.DiscoverStart})
	found, err := targets.Discover()
	if err != nil {
		return &Error{Kind: ErrUnexpected, Err: err}
	}
	for i, t := range found {
		emit.Send(operation.Event{Kind: operation.TargetDetected, Index: i, TargetID: t.ID(), Target: t})
	}
	emit.Send(operation.Event{Kind: operation.DiscoverDone, Count: len(found)})

	if len(found) == 0 {
		return &Error{Kind: ErrNoDevice, Msg: "no targets detected"}
	}

	selected, err := resolveSelection(selectorToken, found)
	if err != nil {
		return err
	}
	for _, t := range selected {
		emit.Send(operation.Event{Kind: operation.TargetSelected, TargetID: t.ID(), Target: t})
	}

	runOne := func(target targets.Target, id string, emit operation.Emit) error {
		return rebootTarget(target, opts, emit)
	}
	adapters := operation.Adapters{
		IsAmbiguous:     isAmbiguous,
		MakeAmbiguous:   func(msg string) error { return &Error{Kind: ErrAmbiguousTarget, Msg: msg} },
		MakeMultiFailed: func(failed, total int) error { return &Error{Kind: ErrNoDevice, Msg: "some targets failed to reboot"} },
		MakeBridgePauseFailed: func(outcome bridgecontrol.PauseOutcome) error {
			return &Error{Kind: ErrBridgePauseFailed, Msg: outcome.Error.Message}
		},
	}

	if err := operation.Run(selected, opts.Bridge, bridgecontrol.Pause, runOne, adapters, emit); err != nil {
		return err
	}
	emit.Send(operation.Event{Kind: operation.Done})
	return nil
}

func resolveSelection(selectorToken string, found []targets.Target) ([]targets.Target, error) {
	if selectorToken == "" {
		if len(found) == 1 {
			return found, nil
		}
		var halfkays []targets.Target
		for _, t := range found {
			if t.Kind == targets.KindHalfKay {
				halfkays = append(halfkays, t)
			}
		}
		if len(halfkays) == 1 {
			return halfkays, nil
		}
		return nil, &Error{Kind: ErrAmbiguousTarget, Msg: "cannot auto-select among multiple targets"}
	}

	sel, err := selector.Parse(selectorToken)
	if err != nil {
		return nil, &Error{Kind: ErrUnexpected, Err: err}
	}
	idxs, err := selector.Resolve(sel, found)
	if err != nil {
		var se *selector.Error
		if errors.As(err, &se) && se.Kind == selector.ErrMultipleMatches {
			return nil, &Error{Kind: ErrAmbiguousTarget, Msg: err.Error()}
		}
		return nil, &Error{Kind: ErrNoDevice, Msg: err.Error()}
	}
	if len(idxs) == 0 {
		return nil, &Error{Kind: ErrNoDevice, Msg: "selector matched no target"}
	}
	out := make([]targets.Target, len(idxs))
	for i, idx := range idxs {
		out[i] = found[idx]
	}
	return out, nil
}

func isAmbiguous(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == ErrAmbiguousTarget
}

func rebootTarget(target targets.Target, opts Options, emit operation.Emit) error {
	if target.Kind == targets.KindHalfKay {
		emit.Send(operation.Event{Kind: operation.HalfKayOpen, Path: target.Path})
		return nil
	}

	before, err := bootloaderwait.Snapshot()
	if err != nil {
		return &Error{Kind: ErrNoDevice, Err: err}
	}

	if err := serialreboot.SoftRebootPort(target.PortName); err != nil {
		emit.Send(operation.Event{Kind: operation.SoftRebootSkipped, Message: err.Error()})
		return &Error{Kind: ErrNoDevice, Err: err}
	}
	emit.Send(operation.Event{Kind: operation.SoftReboot, Port: target.PortName})

	path, err := bootloaderwait.WaitForNew(before, opts.WaitTimeout, 50*time.Millisecond)
	if err != nil {
		var we *bootloaderwait.Error
		if errors.As(err, &we) && we.Kind == bootloaderwait.ErrAmbiguous {
			return &Error{Kind: ErrAmbiguousTarget, Count: we.Count, Msg: err.Error()}
		}
		return &Error{Kind: ErrNoDevice, Err: err}
	}
	emit.Send(operation.Event{Kind: operation.HalfKayAppeared, Path: path})
	return nil
}
