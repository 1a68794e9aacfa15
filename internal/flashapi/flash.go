// Package flashapi implements the Flash operation (§4.9): load a HEX
// image, discover and select a target, then stream it over HID with
// retry/reopen, optionally triggering a serial target's soft reboot first.
package flashapi

import (
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bootloaderwait"
	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/firmware"
	"github.com/petitechose-midi-studio/loader/internal/halfkay"
	"github.com/petitechose-midi-studio/loader/internal/operation"
	"github.com/petitechose-midi-studio/loader/internal/selector"
	"github.com/petitechose-midi-studio/loader/internal/serialreboot"
	"github.com/petitechose-midi-studio/loader/internal/targets"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

// Flash runs the full operation described in §4.9. selectorToken is an
// optional user-supplied target token (§3); empty means auto-disambiguate
// across everything discovered. On Plan-mode options, the Plan result is
// populated and no write is performed.
func Flash(hexPath string, opts Options, selectorToken string, emit operation.Emit) (*Plan, error) {
	img, err := firmware.Load(hexPath)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidHex, Err: err}
	}
	emit.Send(operation.Event{Kind: operation.HexLoaded, Bytes: img.ByteCount, Blocks: len(img.BlocksToWrite)})

	found, err := discoverWithWait(opts.Wait, opts.WaitTimeout, emit)
	if err != nil {
		return nil, &Error{Kind: ErrUnexpected, Err: err}
	}
	if len(found) == 0 {
		return nil, &Error{Kind: ErrNoDevice, Msg: "no targets detected"}
	}

	selected, err := resolveSelection(selectorToken, opts.SerialPreference, found)
	if err != nil {
		return nil, err
	}
	for _, t := range selected {
		emit.Send(operation.Event{Kind: operation.TargetSelected, TargetID: t.ID(), Target: t})
	}

	needsSerial := false
	for _, t := range selected {
		if t.Kind == targets.KindSerial {
			needsSerial = true
			break
		}
	}

	if opts.Plan {
		ids := make([]string, len(selected))
		for i, t := range selected {
			ids[i] = t.ID()
		}
		return &Plan{Bytes: img.ByteCount, Blocks: len(img.BlocksToWrite), Selected: ids, NeedsSerial: needsSerial}, nil
	}

	runOne := func(target targets.Target, id string, emit operation.Emit) error {
		return flashTarget(target, img, opts, emit)
	}

	adapters := operation.Adapters{
		IsAmbiguous:     isAmbiguous,
		MakeAmbiguous:   func(msg string) error { return &Error{Kind: ErrAmbiguousTarget, Msg: msg} },
		MakeMultiFailed: func(failed, total int) error { return &Error{Kind: ErrWriteFailed, Msg: multiFailedMsg(failed, total)} },
		MakeBridgePauseFailed: func(outcome bridgecontrol.PauseOutcome) error {
			return &Error{Kind: ErrBridgePauseFailed, Msg: outcome.Error.Message}
		},
	}

	if err := operation.Run(selected, opts.Bridge, bridgecontrol.Pause, runOne, adapters, emit); err != nil {
		return nil, err
	}
	emit.Send(operation.Event{Kind: operation.Done})
	return nil, nil
}

// discoverWithWait retries discovery every 250ms while wait is set and
// nothing has been found yet. waitTimeout<=0 means poll forever, mirroring
// bootloaderwait.WaitForNew's timeout<=0 sentinel.
func discoverWithWait(wait bool, waitTimeout time.Duration, emit operation.Emit) ([]targets.Target, error) {
	start := time.Now()
	for {
		emit.Send(operation.Event{Kind: operation.DiscoverStart})
		found, err := targets.Discover()
		if err != nil {
			return nil, err
		}
		for i, t := range found {
			emit.Send(operation.Event{Kind: operation.TargetDetected, Index: i, TargetID: t.ID(), Target: t})
		}
		emit.Send(operation.Event{Kind: operation.DiscoverDone, Count: len(found)})

		if len(found) > 0 || !wait {
			return found, nil
		}
		if waitTimeout > 0 && time.Since(start) >= waitTimeout {
			return found, nil
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// resolveSelection applies §4.5 (explicit token) or §4.9 step 3's
// auto-disambiguation rules when no token was given.
func resolveSelection(selectorToken, serialPreference string, found []targets.Target) ([]targets.Target, error) {
	if selectorToken != "" {
		sel, err := selector.Parse(selectorToken)
		if err != nil {
			return nil, &Error{Kind: ErrUnexpected, Err: err}
		}
		idxs, err := selector.Resolve(sel, found)
		if err != nil {
			return nil, selectorErrorToFlashError(err)
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

	var halfkays []targets.Target
	var serials []targets.Target
	for _, t := range found {
		if t.Kind == targets.KindHalfKay {
			halfkays = append(halfkays, t)
		} else {
			serials = append(serials, t)
		}
	}

	switch len(halfkays) {
	case 1:
		return halfkays, nil
	default:
		if len(halfkays) > 1 {
			return nil, &Error{Kind: ErrAmbiguousTarget, Msg: "multiple HalfKay devices present"}
		}
	}

	if serialPreference != "" {
		var match *targets.Target
		matches := 0
		for i := range serials {
			if serials[i].PortName == serialPreference {
				match = &serials[i]
				matches++
			}
		}
		if matches == 1 {
			return []targets.Target{*match}, nil
		}
	}

	if len(found) == 1 {
		return found, nil
	}

	return nil, &Error{Kind: ErrAmbiguousTarget, Msg: "cannot auto-select among multiple targets"}
}

func selectorErrorToFlashError(err error) error {
	se, ok := err.(*selector.Error)
	if !ok {
		return &Error{Kind: ErrUnexpected, Err: err}
	}
	switch se.Kind {
	case selector.ErrMultipleMatches:
		return &Error{Kind: ErrAmbiguousTarget, Msg: err.Error()}
	default:
		return &Error{Kind: ErrNoDevice, Msg: err.Error()}
	}
}

func multiFailedMsg(failed, total int) string {
	if failed == total {
		return "all targets failed"
	}
	return "some targets failed"
}

// flashTarget dispatches the per-target action of §4.9 step 4.
func flashTarget(target targets.Target, img *firmware.Image, opts Options, emit operation.Emit) error {
	if target.Kind == targets.KindHalfKay {
		dev, err := halfkay.Open(target.Path)
		if err != nil {
			return &Error{Kind: ErrNoDevice, Err: err}
		}
		emit.Send(operation.Event{Kind: operation.HalfKayOpen, Path: target.Path})
		return streamAndClose(dev, target.Path, img, opts, emit)
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

	time.Sleep(opts.SoftRebootDelay)

	path, err := bootloaderwait.WaitForNew(before, opts.WaitTimeout, 50*time.Millisecond)
	if err != nil {
		return waitErrorToFlashError(err)
	}
	emit.Send(operation.Event{Kind: operation.HalfKayAppeared, Path: path})

	dev, err := halfkay.OpenWaiting(path, opts.ReopenTimeout)
	if err != nil {
		return &Error{Kind: ErrNoDevice, Err: err}
	}
	emit.Send(operation.Event{Kind: operation.HalfKayOpen, Path: path})
	return streamAndClose(dev, path, img, opts, emit)
}

func waitErrorToFlashError(err error) error {
	we, ok := err.(*bootloaderwait.Error)
	if ok && we.Kind == bootloaderwait.ErrAmbiguous {
		return &Error{Kind: ErrAmbiguousTarget, Count: we.Count, Msg: err.Error()}
	}
	return &Error{Kind: ErrNoDevice, Err: err}
}

func streamAndClose(dev *halfkay.Device, path string, img *firmware.Image, opts Options, emit operation.Emit) error {
	defer dev.Close()

	if err := streamBlocks(dev, path, img, opts, emit); err != nil {
		return err
	}
	if !opts.NoReboot {
		emit.Send(operation.Event{Kind: operation.Boot})
		_ = dev.Boot()
	}
	return nil
}

// streamBlocks implements §4.9 step 5: each block is attempted, retried up
// to opts.Retries times with a reopen in between, and the device reference
// itself may be swapped out from under the caller on reopen.
func streamBlocks(dev *halfkay.Device, path string, img *firmware.Image, opts Options, emit operation.Emit) error {
	total := len(img.BlocksToWrite)
	for pos, blockIndex := range img.BlocksToWrite {
		addr := uint32(blockIndex * teensy41.BlockSize)
		data := img.Data[blockIndex*teensy41.BlockSize : (blockIndex+1)*teensy41.BlockSize]
		emit.Send(operation.Event{Kind: operation.Block, Index: pos, Blocks: total, Addr: addr})

		var lastErr error
		attempt := 0
		for {
			err := dev.WriteBlock(addr, data, blockIndex)
			if err == nil {
				lastErr = nil
				break
			}
			lastErr = err
			if attempt >= opts.Retries {
				break
			}
			attempt++
			emit.Send(operation.Event{Kind: operation.Retry, Addr: addr, Attempt: attempt, Retries: opts.Retries, Message: err.Error()})

			time.Sleep(opts.ReopenDelay)
			dev.Close()
			reopened, reopenErr := halfkay.OpenWaiting(path, opts.ReopenTimeout)
			if reopenErr != nil {
				lastErr = reopenErr
				break
			}
			*dev = *reopened
			time.Sleep(opts.ReopenDelay)
		}

		if lastErr != nil {
			return &Error{Kind: ErrWriteFailed, Addr: addr, Attempts: attempt + 1, Err: lastErr}
		}
	}
	return nil
}
