package bridgecontrol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

type controlResponse struct {
	OK        bool   `json:"ok"`
	Paused    bool   `json:"paused"`
	SerialOpen *bool  `json:"serial_open,omitempty"`
	Message   string `json:"message,omitempty"`
}

// controlSend dials 127.0.0.1:port, writes {"cmd":"..."}\n, and reads the
// single-line JSON response, honoring connect/read/write deadlines of
// timeout (§6 Bridge IPC).
func controlSend(port uint16, cmd string, timeout time.Duration) (*controlResponse, error) {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, &ControlError{Kind: ErrCommandFailed, Cmd: "connect", Message: err.Error()}
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	_ = conn.SetDeadline(deadline)

	if _, err := fmt.Fprintf(conn, "{\"cmd\":%q}\n", cmd); err != nil {
		return nil, &ControlError{Kind: ErrCommandFailed, Cmd: cmd, Message: err.Error()}
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if line == "" && err != nil {
		return nil, &ControlError{Kind: ErrCommandFailed, Cmd: cmd, Message: err.Error()}
	}

	return parseControlResponse(line)
}

// parseControlResponse is robust against leading whitespace (§6).
func parseControlResponse(s string) (*controlResponse, error) {
	trimmed := strings.TrimSpace(s)
	var resp controlResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return nil, &ControlError{Kind: ErrCommandFailed, Cmd: "parse", Message: err.Error()}
	}
	return &resp, nil
}

// controlStatus sends {"cmd":"status"}.
func controlStatus(port uint16, timeout time.Duration) (*controlResponse, error) {
	return controlSend(port, "status", timeout)
}

// controlPause requires ok=true, paused=true, and serial_open absent-or-false.
func controlPause(port uint16, timeout time.Duration) error {
	resp, err := controlSend(port, "pause", timeout)
	if err != nil {
		return err
	}
	if !resp.OK || !resp.Paused || (resp.SerialOpen != nil && *resp.SerialOpen) {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "pause", Message: resp.Message}
	}
	return nil
}

// controlResume requires ok=true, paused=false.
func controlResume(port uint16, timeout time.Duration) error {
	resp, err := controlSend(port, "resume", timeout)
	if err != nil {
		return err
	}
	if !resp.OK || resp.Paused {
		return &ControlError{Kind: ErrCommandFailed, Cmd: "resume", Message: resp.Message}
	}
	return nil
}

func controlResumeHint(port uint16) string {
	return fmt.Sprintf("Try: oc-bridge ctl resume --control-port %d", port)
}

func controlPauseHint(port uint16) string {
	return fmt.Sprintf("Try: oc-bridge ctl pause --control-port %d", port)
}
