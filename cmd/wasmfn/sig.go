package main

import (
	"context"
	"flag"
	"fmt"
)

// runSig implements `wasmfn sig [--name n] <file>`: prints the signature of
// one guest function, defaulting to the default export.
func runSig(args []string) error {
	fs := flag.NewFlagSet("sig", flag.ExitOnError)
	name := fs.String("name", "", "function suffix (empty for the default export)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: wasmfn sig [--name n] <file>")
	}

	ctx := context.Background()
	pkg, err := loadPackage(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("Failed to load module: %w", err)
	}
	defer pkg.Close(ctx)

	args2, err := pkg.ctrl.Args(*name)
	if err != nil {
		return fmt.Errorf("Failed to collect arguments: %w", err)
	}
	returns, err := pkg.ctrl.Returns(*name)
	if err != nil {
		return fmt.Errorf("Failed to collect return type: %w", err)
	}

	label := *name
	if label == "" {
		label = "<default>"
	}
	fmt.Printf("%s(%s) -> %s\n", label, joinKinds(args2), formatKind(returns))
	return nil
}
