package rebootapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petitechose-midi-studio/loader/internal/operation"
	"github.com/petitechose-midi-studio/loader/internal/targets"
)

func halfkayTarget(path string) targets.Target {
	return targets.Target{Kind: targets.KindHalfKay, Path: path}
}

func serialTarget(port string) targets.Target {
	return targets.Target{Kind: targets.KindSerial, PortName: port}
}

func TestResolveSelectionSingleTargetAutoSelects(t *testing.T) {
	found := []targets.Target{serialTarget("COM5")}

	selected, err := resolveSelection("", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "serial:COM5", selected[0].ID())
}

func TestResolveSelectionSingleHalfKayAmongManyAutoSelects(t *testing.T) {
	found := []targets.Target{serialTarget("COM5"), halfkayTarget("HK1"), serialTarget("COM6")}

	selected, err := resolveSelection("", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "halfkay:HK1", selected[0].ID())
}

func TestResolveSelectionAmbiguousWithoutToken(t *testing.T) {
	found := []targets.Target{serialTarget("COM5"), serialTarget("COM6")}

	_, err := resolveSelection("", found)

	require.Error(t, err)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrAmbiguousTarget, re.Kind)
}

func TestRebootTargetHalfKayIsImmediatelyDone(t *testing.T) {
	var kinds []operation.EventKind
	emit := func(ev operation.Event) { kinds = append(kinds, ev.Kind) }

	err := rebootTarget(halfkayTarget("usb:1.1"), DefaultOptions(), emit)

	require.NoError(t, err)
	assert.Contains(t, kinds, operation.HalfKayOpen)
	assert.NotContains(t, kinds, operation.SoftReboot, "a HalfKay target must never trigger a serial reboot")
}
