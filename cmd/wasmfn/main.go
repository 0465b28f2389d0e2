// Command wasmfn is the introspection/invocation CLI of spec §6: info,
// sig, and run subcommands over a compiled guest module (and its
// optional sibling manifest).
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  wasmfn info <file>")
	fmt.Fprintln(os.Stderr, "  wasmfn sig [--name n] <file>")
	fmt.Fprintln(os.Stderr, "  wasmfn run [--arg v]* [--name n] <file>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "sig":
		err = runSig(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
