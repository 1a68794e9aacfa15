// loaderctl: Teensy 4.1 HalfKay firmware loader
// Copyright (C) 2026
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUnexpected)
	}

	cmd, rest := os.Args[1], os.Args[2:]
	var code int
	switch cmd {
	case "flash":
		code = runFlashCommand(rest)
	case "reboot":
		code = runRebootCommand(rest)
	case "list":
		code = runListCommand(rest)
	case "doctor":
		code = runDoctorCommand(rest)
	case "-h", "--help", "help":
		usage()
		code = exitOK
	default:
		fmt.Fprintf(os.Stderr, "loaderctl: unknown command %q\n", cmd)
		usage()
		code = exitUnexpected
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: loaderctl <flash|reboot|list|doctor> [flags]")
}

// newFlagSet builds a flag.FlagSet that reports errors to stderr without
// exiting the whole process (flag.ExitOnError would bypass our own exit
// code mapping).
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
