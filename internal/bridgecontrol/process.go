package bridgecontrol

import (
	"os/exec"
	"strings"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
)

// relaunchCmd is a captured (exe, args) pair sufficient to respawn a
// process this package just terminated.
type relaunchCmd struct {
	Exe  string
	Args []string
}

// findBridgeProcesses enumerates host processes named oc-bridge
// (case-insensitive, with or without .exe), mirroring the
// capability-probing style of the hardware detector this package borrows
// its exec/process idiom from.
func findBridgeProcesses() ([]*gopsprocess.Process, error) {
	procs, err := gopsprocess.Processes()
	if err != nil {
		return nil, err
	}
	var matches []*gopsprocess.Process
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		lower := strings.ToLower(name)
		if lower == "oc-bridge" || lower == "oc-bridge.exe" {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// pauseProcessFallback implements §4.7 strategy 3: if any matched process
// lacks a known executable path we refuse (we will not kill something we
// cannot restart); otherwise capture (exe, argv[1:]) for each, terminate
// them, and poll until they are gone or timeout elapses.
func pauseProcessFallback(timeout time.Duration) (PauseOutcome, []relaunchCmd) {
	procs, err := findBridgeProcesses()
	if err != nil {
		return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{Message: err.Error()}}, nil
	}
	if len(procs) == 0 {
		return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipNotRunning}, nil
	}

	var pids []int32
	var relaunch []relaunchCmd
	for _, p := range procs {
		exePath, err := p.Exe()
		if err != nil || exePath == "" {
			return PauseOutcome{Kind: OutcomeSkipped, SkipReason: SkipProcessNotRestartable}, nil
		}
		args, err := p.CmdlineSlice()
		var rest []string
		if err == nil && len(args) > 1 {
			rest = args[1:]
		} else {
			rest = []string{"--daemon", "--no-relaunch"}
		}
		pids = append(pids, p.Pid)
		relaunch = append(relaunch, relaunchCmd{Exe: exePath, Args: rest})
	}

	for _, p := range procs {
		_ = p.Kill()
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining, err := findBridgeProcesses()
		if err == nil && len(remaining) == 0 {
			break
		}
		if time.Now().After(deadline) {
			return PauseOutcome{Kind: OutcomeFailed, Error: ErrorInfo{Message: "timed out waiting for process termination"}}, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return PauseOutcome{Kind: OutcomePaused, Info: PauseInfo{Method: MethodProcess, PIDs: pids}}, relaunch
}

// resumeProcesses spawns each relaunch command detached from stdio.
func resumeProcesses(cmds []relaunchCmd) error {
	for _, c := range cmds {
		cmd := exec.Command(c.Exe, c.Args...)
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Start(); err != nil {
			return &ControlError{Kind: ErrCommandFailed, Cmd: c.Exe, Message: err.Error()}
		}
	}
	return nil
}
