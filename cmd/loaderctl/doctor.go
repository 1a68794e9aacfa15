package main

import (
	"fmt"
	"os"
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/config"
	"github.com/petitechose-midi-studio/loader/internal/targets"
)

// runDoctorCommand probes the host environment: discovered targets, the
// bridge's service-manager status, its IPC status, and any live bridge
// processes — without pausing or touching anything.
func runDoctorCommand(args []string) int {
	fs := newFlagSet("doctor")
	controlPort := fs.Uint("bridge-control-port", uint(bridgecontrol.DefaultOptions().ControlPort), "bridge IPC port")
	controlTimeout := fs.Duration("bridge-control-timeout", 2500*time.Millisecond, "bridge IPC timeout")
	serviceID := fs.String("bridge-service-id", "", "bridge service id (defaults to the platform default)")
	noBridgeControl := fs.Bool("no-bridge-control", false, "skip the IPC status probe")
	if err := fs.Parse(args); err != nil {
		return exitUnexpected
	}

	cfg := config.Load()
	id := *serviceID
	if id == "" {
		id = cfg.BridgeServiceID
	}
	if id == "" {
		id = bridgecontrol.DefaultServiceID()
	}

	found, err := targets.Discover()
	if err != nil {
		fmt.Fprintf(os.Stderr, "target discovery failed: %v\n", err)
		return exitUnexpected
	}
	fmt.Printf("targets (%d):\n", len(found))
	for i, t := range found {
		fmt.Printf("  [%d] %s\n", i, t.ID())
	}

	status, err := bridgecontrol.QueryServiceStatus(id)
	if err != nil {
		fmt.Printf("bridge service %q: query failed: %v\n", id, err)
	} else {
		fmt.Printf("bridge service %q: %s\n", id, status)
	}

	if !*noBridgeControl {
		ok, paused, message, err := bridgecontrol.QueryControlStatus(uint16(*controlPort), *controlTimeout)
		if err != nil {
			fmt.Printf("bridge IPC (port %d): unreachable: %v\n", *controlPort, err)
		} else {
			fmt.Printf("bridge IPC (port %d): ok=%v paused=%v %s\n", *controlPort, ok, paused, message)
		}
	}

	procs, err := bridgecontrol.ListBridgeProcesses()
	if err != nil {
		fmt.Printf("bridge processes: query failed: %v\n", err)
	} else if len(procs) == 0 {
		fmt.Println("bridge processes: none running")
	} else {
		fmt.Printf("bridge processes (%d):\n", len(procs))
		for _, p := range procs {
			fmt.Printf("  pid=%d name=%s\n", p.PID, p.Name)
		}
	}

	return exitOK
}
