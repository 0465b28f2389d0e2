package main

import (
	"context"
	"os"
	"strings"

	"github.com/outlandhq/wasmfn/capability"
	"github.com/outlandhq/wasmfn/host"
	"github.com/outlandhq/wasmfn/manifest"
)

// loadedPackage bundles everything a subcommand needs: the parsed
// manifest (nil if none was found alongside the wasm file) and a live
// Controller over the instantiated guest.
type loadedPackage struct {
	manifest *manifest.Manifest
	runtime  *host.Runtime
	ctrl     *host.Controller
}

// loadPackage reads wasmFile and, if present, a sibling manifest named by
// replacing its extension with ".toml" — our stand-in for the bundle file
// format spec.md leaves out of scope (manifest and wasm ship as separate
// files here; the manifest is optional so a bare guest module still runs).
func loadPackage(ctx context.Context, wasmFile string) (*loadedPackage, error) {
	wasmBytes, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, err
	}

	var manifestBytes []byte
	if manifestPath := manifestSibling(wasmFile); manifestPath != "" {
		if b, err := os.ReadFile(manifestPath); err == nil {
			manifestBytes = b
		}
	}

	rt, err := host.NewRuntime(ctx)
	if err != nil {
		return nil, err
	}

	h := capability.NewRecordingHost()
	h.StdoutFunc = func(_ context.Context, s string) error {
		_, err := os.Stdout.WriteString(s)
		return err
	}
	h.StderrFunc = func(_ context.Context, s string) error {
		_, err := os.Stderr.WriteString(s)
		return err
	}

	if manifestBytes != nil {
		m, ctrl, err := manifest.Load(ctx, rt, manifestBytes, wasmBytes, h)
		if err != nil {
			return nil, err
		}
		return &loadedPackage{manifest: m, runtime: rt, ctrl: ctrl}, nil
	}

	if err := rt.InstallCapabilities(ctx, h); err != nil {
		return nil, err
	}
	mod, err := rt.LoadModule(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	ctrl, err := mod.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	return &loadedPackage{runtime: rt, ctrl: ctrl}, nil
}

func (p *loadedPackage) Close(ctx context.Context) {
	if p.ctrl != nil {
		_ = p.ctrl.Close(ctx)
	}
	if p.runtime != nil {
		_ = p.runtime.Close(ctx)
	}
}

func manifestSibling(wasmFile string) string {
	ext := strings.LastIndex(wasmFile, ".")
	if ext < 0 {
		return wasmFile + ".toml"
	}
	return wasmFile[:ext] + ".toml"
}
