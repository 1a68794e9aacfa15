package bridgecontrol

import "time"

// resumePlanKind tags which strategy a Guard must undo.
type resumePlanKind int

const (
	planControl resumePlanKind = iota
	planService
	planProcess
)

// resumePlan describes how to undo a successful pause.
type resumePlan struct {
	kind    resumePlanKind
	port    uint16        // planControl
	timeout time.Duration // planControl, planService
	id      string        // planService
	cmds    []relaunchCmd // planProcess
}

func (p resumePlan) hint() string {
	switch p.kind {
	case planControl:
		return controlResumeHint(p.port)
	case planService:
		return hintStartService(p.id)
	default:
		return ""
	}
}

func resumePlanFor(outcome PauseOutcome, opts Options, relaunch []relaunchCmd) *resumePlan {
	if outcome.Kind != OutcomePaused {
		return nil
	}
	switch outcome.Info.Method {
	case MethodControl:
		return &resumePlan{kind: planControl, port: opts.ControlPort, timeout: opts.ControlTimeout}
	case MethodService:
		return &resumePlan{kind: planService, id: outcome.Info.ID, timeout: opts.Timeout}
	case MethodProcess:
		return &resumePlan{kind: planProcess, cmds: relaunch}
	default:
		return nil
	}
}

func resumeVia(p resumePlan) error {
	switch p.kind {
	case planControl:
		return controlResume(p.port, p.timeout)
	case planService:
		return startService(p.id, p.timeout)
	case planProcess:
		return resumeProcesses(p.cmds)
	default:
		return nil
	}
}

// Guard is the scoped acquisition of the paused state (§3, §9): it owns
// exactly one resume plan and guarantees resume is attempted on every exit
// path. A successful explicit Resume clears the plan, arming subsequent
// calls (including from a deferred cleanup) into a no-op.
type Guard struct {
	plan *resumePlan
}

// NewNoopGuard returns a guard with no plan — resume is always a no-op.
// Pause returns it for Skipped and Failed outcomes; tests use it as a stand-in.
func NewNoopGuard() *Guard { return &Guard{} }

// ResumeHint returns a human-readable out-of-band recovery command, or
// empty if none is available (process-fallback plans have none).
func (g *Guard) ResumeHint() string {
	if g.plan == nil {
		return ""
	}
	return g.plan.hint()
}

// Resume attempts to undo the pause. On success the plan is cleared so a
// later call (e.g. from a deferred cleanup after an explicit call already
// succeeded) is a safe no-op. On failure the plan is kept so a best-effort
// retry can be attempted again later.
func (g *Guard) Resume() error {
	if g.plan == nil {
		return nil
	}
	if err := resumeVia(*g.plan); err != nil {
		return err
	}
	g.plan = nil
	return nil
}
