package bridgecontrol

import "time"

// DefaultServiceID exposes the platform default service identifier.
func DefaultServiceID() string { return defaultServiceID() }

// QueryServiceStatus exposes serviceStatus for the doctor probe.
func QueryServiceStatus(id string) (ServiceStatus, error) {
	status, _, err := serviceStatus(id)
	return status, err
}

// QueryControlStatus asks the bridge's IPC endpoint for its current
// status, without pausing or resuming anything.
func QueryControlStatus(port uint16, timeout time.Duration) (ok, paused bool, message string, err error) {
	resp, err := controlStatus(port, timeout)
	if err != nil {
		return false, false, "", err
	}
	return resp.OK, resp.Paused, resp.Message, nil
}

// ProcessInfo is a minimal, serializable view of a matched bridge process.
type ProcessInfo struct {
	PID  int32
	Name string
}

// ListBridgeProcesses exposes findBridgeProcesses for the doctor probe.
func ListBridgeProcesses() ([]ProcessInfo, error) {
	procs, err := findBridgeProcesses()
	if err != nil {
		return nil, err
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, _ := p.Name()
		out = append(out, ProcessInfo{PID: p.Pid, Name: name})
	}
	return out, nil
}
