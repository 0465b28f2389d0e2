package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

// argList collects repeated --arg flags in order.
type argList []string

func (a *argList) String() string { return strings.Join(*a, ",") }
func (a *argList) Set(s string) error {
	*a = append(*a, s)
	return nil
}

// runRun implements `wasmfn run [--arg v]* [--name n] <file>`: invokes one
// guest function with the given literal arguments and prints its result.
func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	name := fs.String("name", "", "function suffix (empty for the default export)")
	var rawArgs argList
	fs.Var(&rawArgs, "arg", "literal argument (repeatable)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: wasmfn run [--arg v]* [--name n] <file>")
	}

	ctx := context.Background()
	pkg, err := loadPackage(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("Failed to load module: %w", err)
	}
	defer pkg.Close(ctx)

	argVals, err := parseLiterals(rawArgs)
	if err != nil {
		return fmt.Errorf("Failed to parse arguments: %w", err)
	}

	result, err := pkg.ctrl.Invoke(*name, argVals)
	if err != nil {
		return fmt.Errorf("Failed to invoke function: %w", err)
	}

	fmt.Println(formatValue(result))
	return nil
}
