package flashapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petitechose-midi-studio/loader/internal/targets"
)

func halfkayTarget(path string) targets.Target {
	return targets.Target{Kind: targets.KindHalfKay, Path: path}
}

func serialTarget(port string) targets.Target {
	return targets.Target{Kind: targets.KindSerial, PortName: port}
}

func TestResolveSelectionAutoSelectsSingleHalfKayAmidSerials(t *testing.T) {
	found := []targets.Target{serialTarget("COM5"), halfkayTarget("HK1"), serialTarget("COM6")}

	selected, err := resolveSelection("", "", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "halfkay:HK1", selected[0].ID())
}

func TestResolveSelectionAutoSelectsBySerialPreference(t *testing.T) {
	found := []targets.Target{serialTarget("COM5"), serialTarget("COM6")}

	selected, err := resolveSelection("", "COM6", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "serial:COM6", selected[0].ID())
}

func TestResolveSelectionMultipleHalfKaysIsAmbiguous(t *testing.T) {
	found := []targets.Target{halfkayTarget("HK1"), halfkayTarget("HK2")}

	_, err := resolveSelection("", "", found)

	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrAmbiguousTarget, fe.Kind)
}

func TestResolveSelectionSingleTotalTargetWins(t *testing.T) {
	found := []targets.Target{serialTarget("COM5")}

	selected, err := resolveSelection("", "", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "serial:COM5", selected[0].ID())
}

func TestResolveSelectionNoPreferenceMultipleSerialsIsAmbiguous(t *testing.T) {
	found := []targets.Target{serialTarget("COM5"), serialTarget("COM6")}

	_, err := resolveSelection("", "", found)

	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrAmbiguousTarget, fe.Kind)
}

func TestResolveSelectionExplicitIndexToken(t *testing.T) {
	found := []targets.Target{halfkayTarget("HK1"), serialTarget("COM6")}

	selected, err := resolveSelection("index:1", "", found)

	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "serial:COM6", selected[0].ID())
}

func TestDefaultOptionsMatchSpecLiterals(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 3, opts.Retries)
	assert.EqualValues(t, 10_000_000_000, opts.ReopenTimeout) // 10s in nanoseconds
	assert.EqualValues(t, 150_000_000, opts.ReopenDelay)       // 150ms
	assert.EqualValues(t, 250_000_000, opts.SoftRebootDelay)   // 250ms
}
