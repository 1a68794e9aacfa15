package bridgecontrol

// Pause implements §4.7's dispatcher: Disabled or explicit None skips
// immediately; otherwise it dispatches to the requested strategy (or tries
// all of them, in priority order, under Auto). It returns the outcome and,
// for a Paused outcome, a Guard owning the matching resume plan.
func Pause(opts Options) (PauseOutcome, *Guard) {
	if !opts.Enabled || opts.Method == None {
		return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipDisabled}, NewNoopGuard()
	}

	serviceID := opts.ServiceID
	if serviceID == "" {
		serviceID = defaultServiceID()
	}

	switch opts.Method {
	case Control:
		return pauseControlOnly(opts)
	case Service:
		return pauseServiceOnly(opts, serviceID)
	case Process:
		return pauseProcessOnly(opts)
	default:
		return pauseAuto(opts, serviceID)
	}
}

func pauseControlOnly(opts Options) (PauseOutcome, *Guard) {
	if err := controlPause(opts.ControlPort, opts.ControlTimeout); err != nil {
		return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{
			Message: err.Error(),
			Hint:    controlPauseHint(opts.ControlPort),
		}}, NewNoopGuard()
	}
	outcome := PauseOutcome{Kind: OutcomePaused, Info: PauseInfo{Method: MethodControl}}
	return outcome, &Guard{plan: resumePlanFor(outcome, opts, nil)}
}

func pauseServiceOnly(opts Options, serviceID string) (PauseOutcome, *Guard) {
	status, _, err := serviceStatus(serviceID)
	if err != nil {
		return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{
			Message: err.Error(),
			Hint:    hintQueryService(serviceID),
		}}, NewNoopGuard()
	}

	switch status {
	case ServiceNotInstalled:
		return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipNotInstalled}, NewNoopGuard()
	case ServiceStopped:
		return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipNotRunning}, NewNoopGuard()
	}

	if err := stopService(serviceID, opts.Timeout); err != nil {
		return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{
			Message: err.Error(),
			Hint:    hintStopService(serviceID),
		}}, NewNoopGuard()
	}
	outcome := PauseOutcome{Kind: OutcomePaused, Info: PauseInfo{Method: MethodService, ID: serviceID}}
	return outcome, &Guard{plan: resumePlanFor(outcome, opts, nil)}
}

func pauseProcessOnly(opts Options) (PauseOutcome, *Guard) {
	if !opts.AllowProcessFallback {
		return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{
			Message: "process fallback disabled",
		}}, NewNoopGuard()
	}
	outcome, relaunch := pauseProcessFallback(opts.Timeout)
	return outcome, &Guard{plan: resumePlanFor(outcome, opts, relaunch)}
}

// pauseAuto tries IPC first unconditionally; falls through to the service
// manager; falls through to process termination if allowed (§4.7 priority
// order). A service query of NotInstalled falls through to the next
// strategy here (unlike Service-only mode, where it is a terminal Skip).
func pauseAuto(opts Options, serviceID string) (PauseOutcome, *Guard) {
	if err := controlPause(opts.ControlPort, opts.ControlTimeout); err == nil {
		outcome := PauseOutcome{Kind: OutcomePaused, Info: PauseInfo{Method: MethodControl}}
		return outcome, &Guard{plan: resumePlanFor(outcome, opts, nil)}
	}

	status, _, err := serviceStatus(serviceID)
	if err == nil {
		switch status {
		case ServiceRunning:
			if serr := stopService(serviceID, opts.Timeout); serr == nil {
				outcome := PauseOutcome{Kind: OutcomePaused, Info: PauseInfo{Method: MethodService, ID: serviceID}}
				return outcome, &Guard{plan: resumePlanFor(outcome, opts, nil)}
			}
		case ServiceStopped:
			return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipNotRunning}, NewNoopGuard()
		}
		// ServiceNotInstalled falls through to process fallback.
	}

	if !opts.AllowProcessFallback {
		return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipNotInstalled}, NewNoopGuard()
	}
	outcome, relaunch := pauseProcessFallback(opts.Timeout)
	return outcome, &Guard{plan: resumePlanFor(outcome, opts, relaunch)}
}
