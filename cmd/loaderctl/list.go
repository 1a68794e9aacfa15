package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/petitechose-midi-studio/loader/internal/targets"
	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

func runListCommand(args []string) int {
	fs := newFlagSet("list")
	asJSON := fs.Bool("json", false, "emit one JSON object per target line")
	if err := fs.Parse(args); err != nil {
		return exitUnexpected
	}

	found, err := targets.Discover()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUnexpected
	}

	if *asJSON {
		for i, t := range found {
			enc := json.NewEncoder(os.Stdout)
			_ = enc.Encode(targetToMap(i, t))
		}
		return exitOK
	}

	if len(found) == 0 {
		fmt.Printf("no targets found (HalfKay %04X:%04X or matching USB serial)\n", teensy41.VID, teensy41.PIDHalfKay)
		return exitOK
	}
	for i, t := range found {
		if t.Kind == targets.KindHalfKay {
			fmt.Printf("[%d] halfkay %s %04X:%04X\n", i, t.ID(), t.VID, t.PID)
		} else {
			fmt.Printf("[%d] serial  %s %04X:%04X %s\n", i, t.ID(), t.VID, t.PID, t.Product)
		}
	}
	return exitOK
}

func targetToMap(index int, t targets.Target) map[string]any {
	m := map[string]any{
		"index": index,
		"id":    t.ID(),
		"kind":  "serial",
		"vid":   t.VID,
		"pid":   t.PID,
	}
	if t.Kind == targets.KindHalfKay {
		m["kind"] = "halfkay"
		m["path"] = t.Path
	} else {
		m["port_name"] = t.PortName
		m["serial_number"] = t.SerialNumber
		m["manufacturer"] = t.Manufacturer
		m["product"] = t.Product
	}
	return m
}
