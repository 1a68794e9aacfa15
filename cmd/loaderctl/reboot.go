package main

import (
	"fmt"
	"os"
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/config"
	"github.com/petitechose-midi-studio/loader/internal/operation"
	"github.com/petitechose-midi-studio/loader/internal/rebootapi"
)

func runRebootCommand(args []string) int {
	fs := newFlagSet("reboot")
	target := fs.String("target", "", "target selector (index, index:N, serial:PORT, halfkay:PATH)")
	waitTimeout := fs.Duration("wait-timeout", 60*time.Second, "deadline waiting for the new bootloader path")
	tui := fs.Bool("tui", false, "render progress with an interactive terminal UI")
	noBridge := fs.Bool("no-bridge", false, "never attempt to pause the bridge")

	if err := fs.Parse(args); err != nil {
		return exitUnexpected
	}

	cfg := config.Load()
	opts := rebootapi.DefaultOptions()
	opts.WaitTimeout = *waitTimeout
	if cfg.BridgeServiceID != "" {
		opts.Bridge.ServiceID = cfg.BridgeServiceID
	}
	if cfg.BridgeControlPort != 0 {
		opts.Bridge.ControlPort = cfg.BridgeControlPort
	}
	if *noBridge {
		opts.Bridge.Method = bridgecontrol.None
	}

	if *tui {
		var rebootErr error
		err := runWithTUI("loaderctl reboot", func(emit operation.Emit) error {
			rebootErr = rebootapi.Reboot(*target, opts, emit)
			return rebootErr
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitCodeFor(rebootErr)
	}

	err := rebootapi.Reboot(*target, opts, printEvent)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitCodeFor(err)
}
