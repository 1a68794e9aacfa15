// Package operation defines the event stream and the runner shared by the
// Flash and Reboot APIs.
package operation

import "github.com/petitechose-midi-studio/loader/internal/targets"

// EventKind tags which variant of Event is populated.
type EventKind int

const (
	DiscoverStart EventKind = iota
	DiscoverDone
	TargetDetected
	TargetSelected
	HexLoaded
	BridgePauseStart
	BridgePaused
	BridgePauseSkipped
	BridgePauseFailed
	BridgeResumeStart
	BridgeResumed
	BridgeResumeFailed
	TargetStart
	TargetDone
	SoftReboot
	SoftRebootSkipped
	HalfKayAppeared
	HalfKayOpen
	Block
	Retry
	Boot
	Done
)

// Event is a single tagged variant threaded through every operation. Only
// the fields relevant to Kind are populated; the rest are zero values.
// Events are advisory: an observer may drop, filter, or throttle them
// without changing the operation's outcome.
type Event struct {
	Kind EventKind

	TargetID string
	Target   targets.Target
	Index    int // TargetDetected index, or Block position within the write-set
	Count    int // DiscoverDone count

	Bytes  int // HexLoaded
	Blocks int // HexLoaded, or Block total

	BridgeMethod string // BridgePaused
	BridgePIDs   []int32
	SkipReason   string // BridgePauseSkipped
	ErrorMessage string // *Failed variants
	ErrorHint    string

	TargetKind string // TargetStart
	OK         bool   // TargetDone
	Message    string // TargetDone, SoftRebootSkipped, Retry

	Port string // SoftReboot
	Path string // HalfKayAppeared, HalfKayOpen

	Addr    uint32 // Block, Retry
	Attempt int    // Retry
	Retries int    // Retry
}

// Emit is the observer callback signature. A nil Emit is legal and means
// "no observer"; Send guards against it so call sites don't have to.
type Emit func(Event)

// Send invokes e with ev, unless e is nil.
func (e Emit) Send(ev Event) {
	if e != nil {
		e(ev)
	}
}
