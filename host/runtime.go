package host

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/outlandhq/wasmfn/capability"
	"github.com/outlandhq/wasmfn/engine"
	"github.com/outlandhq/wasmfn/errors"
)

// Runtime owns the wazero engine and the capability imports registered
// into it. Create one Runtime per process (or per isolation boundary);
// load as many Modules from it as needed.
type Runtime struct {
	eng *engine.Engine
}

var moduleCounter uint64

// NewRuntime creates a Runtime with a fresh wazero engine.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	eng, err := engine.New(ctx)
	if err != nil {
		return nil, err
	}
	return &Runtime{eng: eng}, nil
}

// Close releases all runtime resources. Every Controller created from
// this Runtime must be closed first.
func (r *Runtime) Close(ctx context.Context) error {
	return r.eng.Close(ctx)
}

// InstallCapabilities registers the guest-importable "env" host functions
// of spec §4.6, backed by h. Call once, before loading any module that
// imports them.
func (r *Runtime) InstallCapabilities(ctx context.Context, h capability.Host) error {
	return capability.Register(ctx, r.eng.Runtime(), h)
}

// LoadModule compiles guest wasm bytes, checking the required allocator
// exports (spec §4.1/§6).
func (r *Runtime) LoadModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := r.eng.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	return &Module{runtime: r, compiled: compiled}, nil
}

// Module is a compiled guest module, ready to be instantiated once per
// concurrent caller.
type Module struct {
	runtime  *Runtime
	compiled *engine.Module
}

// ExportNames lists every raw exported-function name the compiled module
// defines.
func (m *Module) ExportNames() []string {
	return m.compiled.ExportNames()
}

// Instantiate creates a Controller: one running guest instance plus its
// transfer Encoder/Decoder. NOT safe for concurrent use.
func (m *Module) Instantiate(ctx context.Context) (*Controller, error) {
	name := fmt.Sprintf("guest-%d", atomic.AddUint64(&moduleCounter, 1))
	inst, err := m.compiled.Instantiate(ctx, name)
	if err != nil {
		return nil, err
	}
	return newController(m, inst), nil
}

// errNotFound surfaces a missing export as a host-level failure.
func errNotFound(what, name string) error {
	return errors.NotFound(errors.PhaseInvoke, what, name)
}
