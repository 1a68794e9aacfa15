package operation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/targets"
)

type ambiguousErr struct{ msg string }

func (e *ambiguousErr) Error() string { return e.msg }

func testAdapters() Adapters {
	return Adapters{
		IsAmbiguous: func(err error) bool {
			var ae *ambiguousErr
			return errors.As(err, &ae)
		},
		MakeAmbiguous: func(msg string) error { return errors.New("ambiguous: " + msg) },
		MakeMultiFailed: func(failed, total int) error {
			return errors.New("multi failed")
		},
		MakeBridgePauseFailed: func(outcome bridgecontrol.PauseOutcome) error {
			return errors.New("bridge pause failed: " + outcome.Error.Message)
		},
	}
}

func halfkayTarget(path string) targets.Target {
	return targets.Target{Kind: targets.KindHalfKay, Path: path}
}

func serialTarget(port string) targets.Target {
	return targets.Target{Kind: targets.KindSerial, PortName: port}
}

func pausePanics(t *testing.T) PauseBridge {
	return func(bridgecontrol.Options) (bridgecontrol.PauseOutcome, *bridgecontrol.Guard) {
		t.Fatal("pauseBridge must not be called for a HalfKay-only selection")
		return bridgecontrol.PauseOutcome{}, nil
	}
}

func pauseSucceeds() PauseBridge {
	return func(bridgecontrol.Options) (bridgecontrol.PauseOutcome, *bridgecontrol.Guard) {
		outcome := bridgecontrol.PauseOutcome{
			Kind: bridgecontrol.OutcomePaused,
			Info: bridgecontrol.PauseInfo{Method: bridgecontrol.MethodControl},
		}
		return outcome, bridgecontrol.NewNoopGuard()
	}
}

func pauseFails(message string) PauseBridge {
	return func(bridgecontrol.Options) (bridgecontrol.PauseOutcome, *bridgecontrol.Guard) {
		outcome := bridgecontrol.PauseOutcome{
			Kind:  bridgecontrol.OutcomeFailed,
			Error: bridgecontrol.ErrorInfo{Message: message},
		}
		return outcome, bridgecontrol.NewNoopGuard()
	}
}

func TestRunHalfKayOnlyNeverPauses(t *testing.T) {
	var kinds []EventKind
	emit := func(ev Event) { kinds = append(kinds, ev.Kind) }

	called := false
	err := Run([]targets.Target{halfkayTarget("usb:1.2")}, bridgecontrol.DefaultOptions(), pausePanics(t),
		func(target targets.Target, id string, emit Emit) error {
			called = true
			return nil
		}, testAdapters(), emit)

	require.NoError(t, err)
	assert.True(t, called)
	for _, k := range kinds {
		assert.NotEqual(t, BridgePauseStart, k, "a HalfKay-only selection must never gate on the bridge")
	}
}

func TestRunHalfKayOnlyEmitsNoBridgeResumeEvents(t *testing.T) {
	var kinds []EventKind
	emit := func(ev Event) { kinds = append(kinds, ev.Kind) }

	err := Run([]targets.Target{halfkayTarget("usb:1.2")}, bridgecontrol.DefaultOptions(), pausePanics(t),
		func(target targets.Target, id string, emit Emit) error {
			return nil
		}, testAdapters(), emit)

	require.NoError(t, err)
	for _, k := range kinds {
		assert.NotEqual(t, BridgeResumeStart, k, "a selection containing only HalfKay targets must never emit BridgeResume* events")
		assert.NotEqual(t, BridgeResumed, k, "a selection containing only HalfKay targets must never emit BridgeResume* events")
	}
}

func TestRunPauseFailedAbortsBeforeTouchingAnyTarget(t *testing.T) {
	touched := false
	var kinds []EventKind
	emit := func(ev Event) { kinds = append(kinds, ev.Kind) }

	err := Run([]targets.Target{serialTarget("COM9")}, bridgecontrol.DefaultOptions(), pauseFails("pause failed"),
		func(target targets.Target, id string, emit Emit) error {
			touched = true
			return nil
		}, testAdapters(), emit)

	require.Error(t, err)
	assert.False(t, touched, "no target may be touched once the bridge pause gate fails")
	assert.Contains(t, kinds, BridgePauseFailed)
	assert.NotContains(t, kinds, TargetStart)
}

func TestRunResumeEventsEmittedEvenOnTargetFailure(t *testing.T) {
	var kinds []EventKind
	emit := func(ev Event) { kinds = append(kinds, ev.Kind) }

	err := Run([]targets.Target{serialTarget("COM9")}, bridgecontrol.DefaultOptions(), pauseSucceeds(),
		func(target targets.Target, id string, emit Emit) error {
			return errors.New("write failed")
		}, testAdapters(), emit)

	require.Error(t, err)
	assert.Contains(t, kinds, BridgeResumeStart)
	assert.Contains(t, kinds, BridgeResumed, "resume after a successful pause must run even though the target failed")
}

func TestRunSingleTargetFailureIsFatal(t *testing.T) {
	err := Run([]targets.Target{halfkayTarget("usb:1.2")}, bridgecontrol.DefaultOptions(), pausePanics(t),
		func(target targets.Target, id string, emit Emit) error {
			return errors.New("boom")
		}, testAdapters(), func(Event) {})

	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestRunMultiTargetAggregatesFailuresAndContinues(t *testing.T) {
	var ran []string
	err := Run([]targets.Target{halfkayTarget("usb:1.1"), halfkayTarget("usb:1.2")}, bridgecontrol.DefaultOptions(), pausePanics(t),
		func(target targets.Target, id string, emit Emit) error {
			ran = append(ran, id)
			if id == "halfkay:usb:1.1" {
				return errors.New("boom")
			}
			return nil
		}, testAdapters(), func(Event) {})

	require.Error(t, err)
	assert.Equal(t, "multi failed", err.Error())
	assert.Len(t, ran, 2, "a multi-target run must continue dispatching after one target fails")
}

func TestRunAmbiguousIsStickyAcrossFurtherSuccesses(t *testing.T) {
	err := Run([]targets.Target{halfkayTarget("usb:1.1"), halfkayTarget("usb:1.2")}, bridgecontrol.DefaultOptions(), pausePanics(t),
		func(target targets.Target, id string, emit Emit) error {
			if id == "halfkay:usb:1.1" {
				return &ambiguousErr{msg: "multiple halfkay devices"}
			}
			return nil
		}, testAdapters(), func(Event) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple halfkay devices")
}
