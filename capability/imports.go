package capability

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/outlandhq/wasmfn/engine"
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/transfer"
	"github.com/outlandhq/wasmfn/value"
)

// failPtr is the negative-pointer convention of spec §4.3: host-side
// failures are logged here and signaled to the guest as -1.
const failPtr = uint64(0xFFFFFFFF)

// shim adapts a decode/call/encode triple into the raw
// (ctx, api.Module, []uint64) shape wazero's WithGoModuleFunction expects,
// logging and returning -1 on any failure rather than trapping the guest.
func shim(name string, fn func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error)) func(context.Context, api.Module, []uint64) {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		inst, err := engine.WrapModule(ctx, mod)
		if err != nil {
			Logger().Error("wrap caller module", zap.String("import", name), zap.Error(err))
			stack[0] = failPtr
			return
		}
		dec := transfer.NewDecoder(inst)
		enc := transfer.NewEncoder(inst)
		result, err := fn(ctx, dec, enc, stack)
		if err != nil {
			Logger().Error("host import failed", zap.String("import", name), zap.Error(err))
			stack[0] = failPtr
			return
		}
		stack[0] = uint64(result)
	}
}

// resultOf encodes v as Result::Ok(v) — the uniform success shape for
// every import in this package: every V travels through the existing
// Value/Result machinery rather than a distinct wire shape per operation.
func resultOf(enc *transfer.Encoder, v value.Value) (uint32, error) {
	return enc.Result(v, "", false)
}

func okUnit() value.Value { return value.None() }

// kvEntriesToValue represents [KV] as an Object, since KV store keys are
// unique by construction and Object is already {key: Strand, value: Value}
// pairs in key order.
func kvEntriesToValue(entries []transfer.KV) value.Value {
	out := make([]value.Entry, len(entries))
	for i, e := range entries {
		out[i] = value.Entry{Key: e.Key, Value: e.Value}
	}
	v, ok := value.NewObject(out)
	if !ok {
		return value.NewArray(nil)
	}
	return v
}

func strandsToValue(items []string) value.Value {
	out := make([]value.Value, len(items))
	for i, s := range items {
		out[i] = value.Strand(s)
	}
	return value.NewArray(out)
}

func floatsToValue(items []float64) value.Value {
	out := make([]value.Value, len(items))
	for i, f := range items {
		out[i] = value.Float(f)
	}
	return value.NewArray(out)
}

// Register wires every guest-importable host function of spec §4.6 into
// rt's "env" host module, dispatching to h. Must be called before the
// guest module that imports them is instantiated.
func Register(ctx context.Context, rt wazero.Runtime, h Host) error {
	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64

	b := rt.NewHostModuleBuilder("env")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_sql", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		query, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		vars, err := dec.Value(uint32(args[1]))
		if err != nil {
			return 0, err
		}
		v, err := h.SQL(ctx, query.Strand, vars)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, v)
	})), []api.ValueType{i32, i32}, []api.ValueType{i32}).Export("__sr_sql")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_run", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		nameV, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		version, err := decodeOptionStrand(dec, uint32(args[1]))
		if err != nil {
			return 0, err
		}
		argsV, err := dec.Value(uint32(args[2]))
		if err != nil {
			return 0, err
		}
		v, err := h.Run(ctx, nameV.Strand, version, argsV.Array)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, v)
	})), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).Export("__sr_run")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_get", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		key, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		v, err := h.KV().Get(ctx, key.Strand)
		if err != nil {
			return errResult(enc, err)
		}
		if v == nil {
			return resultOf(enc, value.None())
		}
		return resultOf(enc, *v)
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_get")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_set", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		key, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		v, err := dec.Value(uint32(args[1]))
		if err != nil {
			return 0, err
		}
		if err := h.KV().Set(ctx, key.Strand, v); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32, i32}, []api.ValueType{i32}).Export("__sr_kv_set")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_del", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		key, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		if err := h.KV().Del(ctx, key.Strand); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_del")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_exists", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		key, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		ok, err := h.KV().Exists(ctx, key.Strand)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, value.Bool(ok))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_exists")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_del_rng", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		r, err := dec.StrandRange(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		if err := h.KV().DelRange(ctx, r); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_del_rng")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_get_batch", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		ptr, length, err := dec.ReadArrayHeader(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		keys, err := dec.StrandArray(ptr, length)
		if err != nil {
			return 0, err
		}
		vals, err := h.KV().GetBatch(ctx, keys)
		if err != nil {
			return errResult(enc, err)
		}
		out := make([]value.Value, len(vals))
		for i, v := range vals {
			if v == nil {
				out[i] = value.None()
			} else {
				out[i] = *v
			}
		}
		return resultOf(enc, value.NewArray(out))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_get_batch")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_set_batch", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		ptr, length, err := dec.ReadArrayHeader(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		entries, err := dec.KVArray(ptr, length)
		if err != nil {
			return 0, err
		}
		if err := h.KV().SetBatch(ctx, entries); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_set_batch")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_del_batch", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		ptr, length, err := dec.ReadArrayHeader(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		keys, err := dec.StrandArray(ptr, length)
		if err != nil {
			return 0, err
		}
		if err := h.KV().DelBatch(ctx, keys); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_del_batch")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_keys", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		r, err := dec.StrandRange(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		keys, err := h.KV().Keys(ctx, r)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, strandsToValue(keys))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_keys")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_values", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		r, err := dec.StrandRange(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		vals, err := h.KV().Values(ctx, r)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, value.NewArray(vals))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_values")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_entries", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		r, err := dec.StrandRange(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		entries, err := h.KV().Entries(ctx, r)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, kvEntriesToValue(entries))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_entries")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_kv_count", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		r, err := dec.StrandRange(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		count, err := h.KV().Count(ctx, r)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, value.Int(int64(count)))
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_kv_count")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_ml_invoke_model", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		model, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		input, err := dec.Value(uint32(args[1]))
		if err != nil {
			return 0, err
		}
		weight := int64(args[2])
		weightDir, err := dec.Value(uint32(args[3]))
		if err != nil {
			return 0, err
		}
		v, err := h.MLInvokeModel(ctx, model.Strand, input, weight, weightDir.Strand)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, v)
	})), []api.ValueType{i32, i32, i64, i32}, []api.ValueType{i32}).Export("__sr_ml_invoke_model")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_ml_tokenize", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		model, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		input, err := dec.Value(uint32(args[1]))
		if err != nil {
			return 0, err
		}
		toks, err := h.MLTokenize(ctx, model.Strand, input)
		if err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, floatsToValue(toks))
	})), []api.ValueType{i32, i32}, []api.ValueType{i32}).Export("__sr_ml_tokenize")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_stdout", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		s, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		if err := h.Stdout(ctx, s.Strand); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_stdout")

	b.NewFunctionBuilder().WithGoModuleFunction(api.GoModuleFunc(shim("__sr_stderr", func(ctx context.Context, dec *transfer.Decoder, enc *transfer.Encoder, args []uint64) (uint32, error) {
		s, err := dec.Value(uint32(args[0]))
		if err != nil {
			return 0, err
		}
		if err := h.Stderr(ctx, s.Strand); err != nil {
			return errResult(enc, err)
		}
		return resultOf(enc, okUnit())
	})), []api.ValueType{i32}, []api.ValueType{i32}).Export("__sr_stderr")

	_, err := b.Instantiate(ctx)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindHostCallFailed, err, "instantiate env host module")
	}
	return nil
}

// errResult turns a Host-side application error (not a marshal failure)
// into Result::Err(message) rather than the -1 host-failure signal —
// spec §4.3 reserves -1 for marshal/transport faults, not capability
// errors the guest's own Result handling expects to see.
func errResult(enc *transfer.Encoder, err error) (uint32, error) {
	return enc.Result(value.Value{}, err.Error(), true)
}

// decodeOptionStrand decodes Option<Strand> at ptr: an Option<Value> whose
// Some payload is expected to carry tag Strand.
func decodeOptionStrand(dec *transfer.Decoder, ptr uint32) (*string, error) {
	v, err := dec.Option(ptr)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s := v.Strand
	return &s, nil
}
