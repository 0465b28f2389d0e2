package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/outlandhq/wasmfn/abi"
	"github.com/outlandhq/wasmfn/errors"
)

// Engine owns one wazero runtime. Safe for concurrent use: compile as many
// Modules from it as needed.
type Engine struct {
	runtime wazero.Runtime
}

// New creates an Engine with wazero's default runtime configuration.
func New(ctx context.Context) (*Engine, error) {
	return &Engine{runtime: wazero.NewRuntime(ctx)}, nil
}

// Runtime exposes the underlying wazero.Runtime, so capability shims can
// register host modules on it before a guest module is instantiated.
func (e *Engine) Runtime() wazero.Runtime {
	return e.runtime
}

// Close releases all engine resources. All Instances must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// CompileModule validates and compiles guest wasm bytes, checking for the
// required allocator exports up front (spec §4.1/§6). It does not check
// for any __sr_fnc__ export; a module with zero guest functions is valid
// (e.g. one under test for its allocator alone).
func (e *Engine) CompileModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile guest module", err)
	}

	var missing []string
	hasMemory := false
	hasAlloc := false
	hasFree := false
	for name, exp := range compiled.ExportedMemories() {
		_ = exp
		if name == abi.ExportMemory {
			hasMemory = true
		}
	}
	for name, fn := range compiled.ExportedFunctions() {
		_ = fn
		switch name {
		case abi.ExportAlloc:
			hasAlloc = true
		case abi.ExportFree:
			hasFree = true
		}
	}
	if !hasMemory {
		missing = append(missing, abi.ExportMemory)
	}
	if !hasAlloc {
		missing = append(missing, abi.ExportAlloc)
	}
	if !hasFree {
		missing = append(missing, abi.ExportFree)
	}
	if len(missing) > 0 {
		return nil, &errors.MissingExports{Names: missing}
	}

	return &Module{engine: e, compiled: compiled}, nil
}

// Module is a compiled guest module, ready to be instantiated once per
// concurrent caller.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// ExportNames lists every exported function the compiled module defines
// (memory and other non-function exports are not included);
// host.Controller.List filters these to __sr_fnc__ names.
func (m *Module) ExportNames() []string {
	names := make([]string, 0, len(m.compiled.ExportedFunctions()))
	for name := range m.compiled.ExportedFunctions() {
		names = append(names, name)
	}
	return names
}

// Instantiate creates a fresh Instance. moduleName distinguishes instances
// of the same compiled Module inside one wazero.Runtime (wazero requires
// unique module names); pass "" to let wazero assign an anonymous one.
func (m *Module) Instantiate(ctx context.Context, moduleName string) (*Instance, error) {
	cfg := wazero.NewModuleConfig()
	if moduleName != "" {
		cfg = cfg.WithName(moduleName)
	}
	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Load("instantiate guest module", err)
	}
	return WrapModule(ctx, mod)
}

// WrapModule adapts an already-instantiated guest module into an
// Instance, resolving its memory and alloc/free exports. Used both by
// Module.Instantiate and by host-capability import shims, which receive
// the calling guest's api.Module directly and need the same
// MemoryController to encode/decode their own arguments and results.
func WrapModule(ctx context.Context, mod api.Module) (*Instance, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, &errors.MissingExports{Names: []string{abi.ExportMemory}}
	}
	allocFn := mod.ExportedFunction(abi.ExportAlloc)
	freeFn := mod.ExportedFunction(abi.ExportFree)
	if allocFn == nil || freeFn == nil {
		var missing []string
		if allocFn == nil {
			missing = append(missing, abi.ExportAlloc)
		}
		if freeFn == nil {
			missing = append(missing, abi.ExportFree)
		}
		return nil, &errors.MissingExports{Names: missing}
	}

	return &Instance{
		ctx:     ctx,
		mod:     mod,
		mem:     mem,
		allocFn: allocFn,
		freeFn:  freeFn,
	}, nil
}

// Instance is one running guest instance: its linear memory, allocator
// exports, and the exported functions the host can call. NOT safe for
// concurrent use — one guest instance runs single-threaded (spec §5).
type Instance struct {
	ctx     context.Context
	mod     api.Module
	mem     api.Memory
	allocFn api.Function
	freeFn  api.Function
}

// Close tears down the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}

// ExportedFunction returns the named exported function, or nil if absent.
func (i *Instance) ExportedFunction(name string) api.Function {
	return i.mod.ExportedFunction(name)
}

// Call invokes a zero/one-argument, single-result exported function —
// the shape every __sr_fnc__/__sr_args__/__sr_returns__ export has.
func (i *Instance) Call(fn api.Function, args ...uint64) (uint64, error) {
	results, err := fn.Call(i.ctx, args...)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseInvoke, errors.KindABIMismatch, err, "call guest export")
	}
	if len(results) != 1 {
		return 0, errors.InvalidData(errors.PhaseInvoke, nil, fmt.Sprintf("guest export returned %d results, want 1", len(results)))
	}
	return results[0], nil
}

// Alloc requests len bytes aligned to align from the guest's own
// allocator export, per spec §4.1/§4.2.
func (i *Instance) Alloc(length, align uint32) (uint32, error) {
	results, err := i.allocFn.Call(i.ctx, uint64(length), uint64(align))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseEncode, errors.KindABIMismatch, err, "call guest alloc")
	}
	ret := int32(results[0])
	if ret < 0 {
		return 0, errors.AllocationFailed(errors.PhaseEncode, length, align)
	}
	return uint32(ret), nil
}

// Free releases a block previously returned by Alloc.
func (i *Instance) Free(ptr, length uint32) error {
	results, err := i.freeFn.Call(i.ctx, uint64(ptr), uint64(length))
	if err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindABIMismatch, err, "call guest free")
	}
	if int32(results[0]) != 0 {
		return errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("guest free(%d, %d) reported failure", ptr, length))
	}
	return nil
}

// --- wasmfn.Memory / wasmfn.MemoryController ---

// Read reads length bytes at offset from the guest's linear memory.
func (i *Instance) Read(offset, length uint32) ([]byte, error) {
	data, ok := i.mem.Read(offset, length)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("out-of-bounds read at %d, len %d", offset, length))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write copies data into the guest's linear memory at offset.
func (i *Instance) Write(offset uint32, data []byte) error {
	if !i.mem.Write(offset, data) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("out-of-bounds write at %d, len %d", offset, len(data)))
	}
	return nil
}

func (i *Instance) ReadU8(offset uint32) (uint8, error) {
	v, ok := i.mem.ReadByte(offset)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("out-of-bounds read at %d", offset))
	}
	return v, nil
}

func (i *Instance) ReadU16(offset uint32) (uint16, error) {
	v, ok := i.mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("out-of-bounds read at %d", offset))
	}
	return v, nil
}

func (i *Instance) ReadU32(offset uint32) (uint32, error) {
	v, ok := i.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("out-of-bounds read at %d", offset))
	}
	return v, nil
}

func (i *Instance) ReadU64(offset uint32) (uint64, error) {
	v, ok := i.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.InvalidData(errors.PhaseDecode, nil, fmt.Sprintf("out-of-bounds read at %d", offset))
	}
	return v, nil
}

func (i *Instance) WriteU8(offset uint32, v uint8) error {
	if !i.mem.WriteByte(offset, v) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("out-of-bounds write at %d", offset))
	}
	return nil
}

func (i *Instance) WriteU16(offset uint32, v uint16) error {
	if !i.mem.WriteUint16Le(offset, v) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("out-of-bounds write at %d", offset))
	}
	return nil
}

func (i *Instance) WriteU32(offset uint32, v uint32) error {
	if !i.mem.WriteUint32Le(offset, v) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("out-of-bounds write at %d", offset))
	}
	return nil
}

func (i *Instance) WriteU64(offset uint32, v uint64) error {
	if !i.mem.WriteUint64Le(offset, v) {
		return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("out-of-bounds write at %d", offset))
	}
	return nil
}

// Size reports the current size of linear memory in bytes.
func (i *Instance) Size() uint32 {
	return i.mem.Size()
}
