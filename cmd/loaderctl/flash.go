package main

import (
	"fmt"
	"os"
	"time"

	"github.com/petitechose-midi-studio/loader/internal/bridgecontrol"
	"github.com/petitechose-midi-studio/loader/internal/config"
	"github.com/petitechose-midi-studio/loader/internal/flashapi"
	"github.com/petitechose-midi-studio/loader/internal/operation"
)

func runFlashCommand(args []string) int {
	fs := newFlagSet("flash")
	target := fs.String("target", "", "target selector (index, index:N, serial:PORT, halfkay:PATH)")
	noReboot := fs.Bool("no-reboot", false, "skip the final boot report")
	wait := fs.Bool("wait", false, "keep re-discovering until a target appears")
	waitTimeout := fs.Duration("wait-timeout", 60*time.Second, "deadline for --wait and for the post-reboot bootloader wait")
	retries := fs.Int("retries", 3, "retries per block after the first failed write")
	plan := fs.Bool("plan", false, "resolve the selection and print what would be written, without writing")
	tui := fs.Bool("tui", false, "render progress with an interactive terminal UI")
	serialPreference := fs.String("prefer-serial", "", "serial port name to prefer during auto-disambiguation")
	noBridge := fs.Bool("no-bridge", false, "never attempt to pause the bridge")

	if err := fs.Parse(args); err != nil {
		return exitUnexpected
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: loaderctl flash [flags] <hex-file>")
		return exitUnexpected
	}
	hexPath := fs.Arg(0)

	cfg := config.Load()
	opts := flashapi.DefaultOptions()
	opts.NoReboot = *noReboot
	opts.Wait = *wait
	opts.WaitTimeout = *waitTimeout
	opts.Retries = *retries
	opts.Plan = *plan
	if *serialPreference != "" {
		opts.SerialPreference = *serialPreference
	} else {
		opts.SerialPreference = cfg.SerialPort
	}
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
		var plan *flashapi.Plan
		var flashErr error
		err := runWithTUI("loaderctl flash", func(emit operation.Emit) error {
			plan, flashErr = flashapi.Flash(hexPath, opts, *target, emit)
			return flashErr
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		printPlanIfAny(plan)
		return exitCodeFor(flashErr)
	}

	result, err := flashapi.Flash(hexPath, opts, *target, printEvent)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	printPlanIfAny(result)
	return exitCodeFor(err)
}

func printPlanIfAny(plan *flashapi.Plan) {
	if plan == nil {
		return
	}
	fmt.Printf("plan: %d byte(s), %d block(s), needs_serial=%v\n", plan.Bytes, plan.Blocks, plan.NeedsSerial)
	for _, id := range plan.Selected {
		fmt.Printf("  %s\n", id)
	}
}
