package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/outlandhq/wasmfn/value"
)

// runInfo implements `wasmfn info <file>`: prints organisation/name/version
// (when a manifest was found) then one line per exported function with its
// signature, mirroring the original CLI's info command.
func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: wasmfn info <file>")
	}

	ctx := context.Background()
	pkg, err := loadPackage(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("Failed to load module: %w", err)
	}
	defer pkg.Close(ctx)

	if pkg.manifest != nil {
		m := pkg.manifest
		fmt.Printf("%s/%s@%s\n\n", m.Organisation, m.Name, m.Version)
	}

	names := pkg.ctrl.List()
	sort.Strings(names)
	for _, name := range names {
		args, err := pkg.ctrl.Args(name)
		if err != nil {
			return fmt.Errorf("Failed to collect arguments for function %q: %w", name, err)
		}
		returns, err := pkg.ctrl.Returns(name)
		if err != nil {
			return fmt.Errorf("Failed to collect return type for function %q: %w", name, err)
		}
		label := name
		if label == "" {
			label = "<default>"
		}
		fmt.Printf("- %s(%s) -> %s\n", label, joinKinds(args), formatKind(returns))
	}
	return nil
}

func joinKinds(kinds []value.Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = formatKind(k)
	}
	return strings.Join(parts, ", ")
}
