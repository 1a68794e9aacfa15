package bridgecontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseDisabledSkips(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	outcome, guard := Pause(opts)

	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, SkipDisabled, outcome.SkipReason)
	require.NotNil(t, guard)
	assert.NoError(t, guard.Resume(), "a noop guard must resume cleanly")
}

func TestPauseMethodNoneSkips(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = None
	outcome, _ := Pause(opts)

	assert.Equal(t, OutcomeSkipped, outcome.Kind)
	assert.Equal(t, SkipDisabled, outcome.SkipReason)
}

func TestPauseControlOnlyFailsWithoutListener(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = Control
	opts.ControlPort = 1 // nothing listens here
	opts.ControlTimeout = 50 * time.Millisecond
	outcome, guard := Pause(opts)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.NotEmpty(t, outcome.Error.Message)
	assert.Nil(t, guard.plan, "a failed pause must not carry a resume plan")
}

func TestPauseProcessOnlyDisallowedFailsImmediately(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = Process
	opts.AllowProcessFallback = false
	outcome, guard := Pause(opts)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Nil(t, guard.plan)
}

func TestResumePlanForSkippedOrFailedIsNil(t *testing.T) {
	opts := DefaultOptions()
	assert.Nil(t, resumePlanFor(PauseOutcome{Kind: OutcomeSkipped}, opts, nil))
	assert.Nil(t, resumePlanFor(PauseOutcome{Kind: OutcomeFailed}, opts, nil))
}
