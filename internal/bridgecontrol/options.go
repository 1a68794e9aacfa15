// Package bridgecontrol coordinates with "the bridge", a separate host
// process that may hold the target's USB serial port exclusively. It
// implements the three-strategy pause/resume escalation (§4.7) and the
// RAII-style resume guard (§3, §9).
package bridgecontrol

import "time"

// Method selects which pause strategy to use.
type Method int

const (
	Auto Method = iota
	Control
	Service
	Process
	None
)

// Options configures a pause attempt.
type Options struct {
	Enabled             bool
	Method              Method
	AllowProcessFallback bool
	ServiceID           string // empty means use the platform default
	Timeout             time.Duration
	ControlPort         uint16
	ControlTimeout      time.Duration
}

// DefaultOptions mirrors the original's Default impl. ControlTimeout is
// 2500ms because the bridge's own pause handler waits for the serial port
// to actually close (ack) before replying — that round-trip has to fit.
func DefaultOptions() Options {
	return Options{
		Enabled:              true,
		Method:               Auto,
		AllowProcessFallback: true,
		Timeout:              5 * time.Second,
		ControlPort:          7999,
		ControlTimeout:       2500 * time.Millisecond,
	}
}

// SkipReason explains why a pause was skipped rather than attempted.
type SkipReason int

const (
	SkipDisabled SkipReason = iota
	SkipNotRunning
	SkipNotInstalled
	SkipProcessNotRestartable
)

func (r SkipReason) String() string {
	switch r {
	case SkipDisabled:
		return "disabled"
	case SkipNotRunning:
		return "not running"
	case SkipNotInstalled:
		return "not installed"
	case SkipProcessNotRestartable:
		return "process not restartable"
	default:
		return "unknown"
	}
}

// PauseMethod tags which strategy actually succeeded.
type PauseMethod int

const (
	MethodControl PauseMethod = iota
	MethodService
	MethodProcess
)

func (m PauseMethod) String() string {
	switch m {
	case MethodControl:
		return "control"
	case MethodService:
		return "service"
	case MethodProcess:
		return "process"
	default:
		return "unknown"
	}
}

// PauseInfo describes a successful pause.
type PauseInfo struct {
	Method PauseMethod
	ID     string
	PIDs   []int32
}

// ErrorInfo is a human-readable failure with an optional out-of-band
// recovery hint.
type ErrorInfo struct {
	Message string
	Hint    string // empty means "no hint available"
}

// OutcomeKind tags the three arms of PauseOutcome.
type OutcomeKind int

const (
	OutcomePaused OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// PauseOutcome is exactly one of Paused, Skipped, or Failed (§3).
type PauseOutcome struct {
	Kind       OutcomeKind
	Info       PauseInfo  // OutcomePaused
	SkipReason SkipReason // OutcomeSkipped
	Error      ErrorInfo  // OutcomeFailed
}

// ControlErrorKind classifies a strategy-level failure.
type ControlErrorKind int

const (
	ErrCommandFailed ControlErrorKind = iota
	ErrTimeout
	ErrProcessRestartUnavailable
)

// ControlError is the error type returned by resume and by the strategy
// implementations.
type ControlError struct {
	Kind    ControlErrorKind
	Cmd     string
	Message string
}

func (e *ControlError) Error() string {
	switch e.Kind {
	case ErrCommandFailed:
		return "bridgecontrol: command failed (" + e.Cmd + "): " + e.Message
	case ErrTimeout:
		return "bridgecontrol: timed out"
	case ErrProcessRestartUnavailable:
		return "bridgecontrol: process restart unavailable"
	default:
		return "bridgecontrol: unknown error"
	}
}
