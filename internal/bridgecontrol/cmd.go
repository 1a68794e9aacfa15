package bridgecontrol

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"runtime"
)

// cmdOutput is the captured result of a service-manager probe command.
type cmdOutput struct {
	StatusCode int
	Text       string
}

// runCapture executes program with args and an augmented environment,
// capturing combined stdout+stderr — the same exec.Command probing shape
// used throughout the hardware-capability detector this package is
// modeled on.
func runCapture(program string, args []string, env []string) (*cmdOutput, error) {
	cmd := exec.Command(program, args...)
	cmd.Env = env
	cmd.Stdin = nil

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()

	code := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("bridgecontrol: exec %s: %w", program, runErr)
		}
	}
	return &cmdOutput{StatusCode: code, Text: buf.String()}, nil
}

// linuxUserEnvFix synthesizes XDG_RUNTIME_DIR and DBUS_SESSION_BUS_ADDRESS
// when unset, so `systemctl --user` can reach the user session bus from a
// process launched outside a full login (e.g. an SSH session or a cron
// job). Mirrors the equivalent fixup in the project's service helper
// scripts.
func linuxUserEnvFix() []string {
	env := os.Environ()
	if runtime.GOOS != "linux" {
		return env
	}
	if os.Getenv("XDG_RUNTIME_DIR") != "" && os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return env
	}

	u, err := user.Current()
	if err != nil {
		return env
	}
	if os.Getenv("XDG_RUNTIME_DIR") == "" {
		env = append(env, fmt.Sprintf("XDG_RUNTIME_DIR=/run/user/%s", u.Uid))
	}
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		env = append(env, fmt.Sprintf("DBUS_SESSION_BUS_ADDRESS=unix:path=/run/user/%s/bus", u.Uid))
	}
	return env
}
