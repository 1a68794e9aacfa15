package bridgecontrol

import (
	"runtime"
	"strconv"
	"strings"
	"time"
)

// ServiceStatus is the observed state of the platform service manager's
// record for the bridge (§4.7 Status machine). State is never cached:
// every query re-asks the OS.
type ServiceStatus int

const (
	ServiceRunning ServiceStatus = iota
	ServiceStopped
	ServiceNotInstalled
)

func (s ServiceStatus) String() string {
	switch s {
	case ServiceRunning:
		return "running"
	case ServiceStopped:
		return "stopped"
	case ServiceNotInstalled:
		return "not installed"
	default:
		return "unknown"
	}
}

// defaultServiceID returns the platform default per the mapping table in
// §4.7.
func defaultServiceID() string {
	switch runtime.GOOS {
	case "windows":
		return "OpenControlBridge"
	case "linux":
		return "open-control-bridge"
	case "darwin":
		return "com.petitechose.open-control-bridge"
	default:
		return "oc-bridge"
	}
}

func hintStopService(id string) string {
	switch runtime.GOOS {
	case "windows":
		return "Try: sc stop " + id
	case "linux":
		return "Try: systemctl --user stop " + id
	case "darwin":
		return "Try: launchctl stop " + id
	default:
		return ""
	}
}

func hintStartService(id string) string {
	switch runtime.GOOS {
	case "windows":
		return "Try: sc start " + id
	case "linux":
		return "Try: systemctl --user start " + id
	case "darwin":
		return "Try: launchctl start " + id
	default:
		return ""
	}
}

func hintQueryService(id string) string {
	switch runtime.GOOS {
	case "windows":
		return "Try: sc query " + id
	case "linux":
		return "Try: systemctl --user status " + id
	case "darwin":
		return "Try: launchctl list " + id
	default:
		return ""
	}
}

// serviceStatus queries the platform service manager for id (§4.7).
func serviceStatus(id string) (ServiceStatus, *cmdOutput, error) {
	switch runtime.GOOS {
	case "windows":
		out, err := runCapture("sc", []string{"query", id}, nil)
		if err != nil {
			return ServiceNotInstalled, out, err
		}
		if out.StatusCode != 0 && strings.Contains(out.Text, "1060") {
			return ServiceNotInstalled, out, nil
		}
		return parseSCState(out.Text), out, nil

	case "linux":
		env := linuxUserEnvFix()
		out, err := runCapture("systemctl", []string{"--user", "is-active", id}, env)
		if err != nil {
			return ServiceNotInstalled, out, err
		}
		line := firstNonEmptyLine(out.Text)
		switch {
		case line == "active" || line == "activating" || line == "deactivating":
			return ServiceRunning, out, nil
		case line == "inactive" || line == "failed":
			return ServiceStopped, out, nil
		case line == "unknown",
			strings.Contains(out.Text, "not-found"),
			strings.Contains(out.Text, "could not be found"):
			return ServiceNotInstalled, out, nil
		case out.StatusCode == 0:
			return ServiceRunning, out, nil
		default:
			return ServiceStopped, out, nil
		}

	case "darwin":
		out, err := runCapture("launchctl", []string{"list", id}, nil)
		if err != nil {
			return ServiceNotInstalled, out, err
		}
		if out.StatusCode != 0 {
			lower := strings.ToLower(out.Text)
			if strings.Contains(lower, "could not find") || strings.Contains(lower, "no such process") {
				return ServiceNotInstalled, out, nil
			}
			return ServiceStopped, out, nil
		}
		return parseLaunchctlListStatus(out.Text), out, nil

	default:
		return ServiceNotInstalled, nil, nil
	}
}

// parseSCState looks for a line containing "STATE" (not the localized
// RUNNING/STOPPED keyword, per §9's open question on locale) and parses
// the first contiguous digit run after ':'.
func parseSCState(text string) ServiceStatus {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "STATE") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+1:])
		digits := leadingDigits(rest)
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		switch n {
		case 1:
			return ServiceStopped
		case 4:
			return ServiceRunning
		default:
			return ServiceRunning // conservative
		}
	}
	return ServiceRunning
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// parseLaunchctlListStatus reads the first whitespace field: "-" means
// Stopped, a numeric PID>0 means Running. An unparseable row is treated as
// Running, conservatively — a deliberate fail-safe (§9 open question):
// it may mask a truly Stopped service, but never fights a running one.
func parseLaunchctlListStatus(text string) ServiceStatus {
	fields := strings.Fields(firstNonEmptyLine(text))
	if len(fields) == 0 {
		return ServiceRunning
	}
	if fields[0] == "-" {
		return ServiceStopped
	}
	if pid, err := strconv.Atoi(fields[0]); err == nil && pid > 0 {
		return ServiceRunning
	}
	return ServiceRunning
}

// stopService stops id and waits for Stopped within timeout, polling every
// 200ms. NotInstalled is treated as already-Ok.
func stopService(id string, timeout time.Duration) error {
	status, _, err := serviceStatus(id)
	if err != nil {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "query", Message: err.Error()}
	}
	if status == ServiceNotInstalled {
		return nil
	}
	if status == ServiceStopped {
		return nil
	}

	if _, err := runServiceCmd(id, "stop"); err != nil {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "stop", Message: err.Error()}
	}
	return waitForServiceState(id, ServiceStopped, timeout)
}

// startService starts id and waits for Running within timeout.
// NotInstalled is a hard error here (there is nothing to resume).
func startService(id string, timeout time.Duration) error {
	status, _, err := serviceStatus(id)
	if err != nil {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "query", Message: err.Error()}
	}
	if status == ServiceNotInstalled {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "start", Message: "service not installed"}
	}
	if status == ServiceRunning {
		return nil
	}

	if _, err := runServiceCmd(id, "start"); err != nil {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "start", Message: err.Error()}
	}
	return waitForServiceState(id, ServiceRunning, timeout)
}

func runServiceCmd(id, action string) (*cmdOutput, error) {
	switch runtime.GOOS {
	case "windows":
		return runCapture("sc", []string{action, id}, nil)
	case "linux":
		return runCapture("systemctl", []string{"--user", action, id}, linuxUserEnvFix())
	case "darwin":
		return runCapture("launchctl", []string{action, id}, nil)
	default:
		return &cmdOutput{}, nil
	}
}

func waitForServiceState(id string, want ServiceStatus, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		status, _, err := serviceStatus(id)
		if err == nil && status == want {
			return nil
		}
		if time.Now().After(deadline) {
			return &ControlError{Kind: ErrTimeout}
		}
		time.Sleep(200 * time.Millisecond)
	}
}
