package host

import (
	"context"
	"sort"

	"github.com/outlandhq/wasmfn/abi"
	"github.com/outlandhq/wasmfn/engine"
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/transfer"
	"github.com/outlandhq/wasmfn/value"
)

// Controller is one running guest instance: its memory, its allocator,
// and the introspection/invocation protocol of spec §4.5. NOT safe for
// concurrent use — one guest instance is single-threaded (spec §5); run
// multiple Controllers (from one Module) for parallelism.
type Controller struct {
	module *Module
	inst   *engine.Instance
	enc    *transfer.Encoder
	dec    *transfer.Decoder
}

func newController(m *Module, inst *engine.Instance) *Controller {
	return &Controller{
		module: m,
		inst:   inst,
		enc:    transfer.NewEncoder(inst),
		dec:    transfer.NewDecoder(inst),
	}
}

// Close tears down the guest instance.
func (c *Controller) Close(ctx context.Context) error {
	return c.inst.Close(ctx)
}

// List scans all exports and returns the suffixes of every __sr_fnc__
// export, i.e. every invokable guest function name (spec §4.5).
func (c *Controller) List() []string {
	var out []string
	for _, name := range c.module.ExportNames() {
		if suffix, ok := abi.IsFuncExport(name); ok {
			out = append(out, suffix)
		}
	}
	sort.Strings(out)
	return out
}

// Args returns the declared argument Kinds of the guest function with the
// given suffix ("" for the default export), by calling its __sr_args__
// export and decoding the TransferredArray<Kind> it returns.
func (c *Controller) Args(name string) ([]value.Kind, error) {
	exportName := abi.ArgsExportName(name)
	fn := c.inst.ExportedFunction(exportName)
	if fn == nil {
		return nil, errNotFound("export", exportName)
	}
	ret, err := c.inst.Call(fn)
	if err != nil {
		return nil, err
	}
	ptr, length, err := c.dec.ReadArrayHeader(uint32(ret))
	if err != nil {
		return nil, err
	}
	return c.dec.KindArray(ptr, length)
}

// Returns returns the declared return Kind of the guest function with the
// given suffix, by calling its __sr_returns__ export.
func (c *Controller) Returns(name string) (value.Kind, error) {
	exportName := abi.ReturnsExportName(name)
	fn := c.inst.ExportedFunction(exportName)
	if fn == nil {
		return value.Kind{}, errNotFound("export", exportName)
	}
	ret, err := c.inst.Call(fn)
	if err != nil {
		return value.Kind{}, err
	}
	return c.dec.Kind(uint32(ret))
}

// Invoke calls the guest function with the given suffix, encoding args as
// a TransferredArray<Value> and decoding the Result<Value> it returns.
// Signature validation is advisory (spec §4.5): Invoke first calls Args
// to verify the supplied argument count, raising InvalidArgs before ever
// crossing the boundary if it disagrees.
func (c *Controller) Invoke(name string, args []value.Value) (value.Value, error) {
	exportName := abi.FuncExportName(name)
	fn := c.inst.ExportedFunction(exportName)
	if fn == nil {
		return value.Value{}, errNotFound("export", exportName)
	}

	if declared, err := c.Args(name); err == nil {
		if len(declared) != len(args) {
			return value.Value{}, errors.InvalidArgs(len(declared), len(args))
		}
	}

	arr, err := c.enc.ValueArray(args)
	if err != nil {
		return value.Value{}, err
	}
	headerPtr, err := c.writeArrayHeader(arr.Ptr, arr.Len)
	if err != nil {
		return value.Value{}, err
	}

	ret, err := c.inst.Call(fn, uint64(headerPtr))
	if err != nil {
		return value.Value{}, err
	}
	return c.dec.Result(uint32(ret))
}

// writeArrayHeader allocates and writes the {ptr, len} header a
// TransferredArray<Value> handle is addressed by — the single u32 the
// __sr_fnc__ export's args parameter expects (spec §4.4).
func (c *Controller) writeArrayHeader(ptr, length uint32) (uint32, error) {
	at, err := c.inst.Alloc(8, 4)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, 8, 4)
	}
	if err := c.inst.WriteU32(at, ptr); err != nil {
		return 0, err
	}
	if err := c.inst.WriteU32(at+4, length); err != nil {
		return 0, err
	}
	return at, nil
}
