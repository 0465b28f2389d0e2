package capability

import (
	"context"
	"sync"

	"github.com/outlandhq/wasmfn/value"
)

// Call records one invocation of a Host method, for assertions in tests
// that drive guest fixtures through real host-import calls.
type Call struct {
	Name string
	Args []any
}

// RecordingHost is a Host that records every call it receives and answers
// through the optional per-method hook fields (SQLFunc, RunFunc, ...).
// A method whose hook is unset returns value.None() (nil for MLTokenize)
// and a nil error. Its KV capability is a
// real MemoryKV, since most scenarios (spec §8) exercise KV end-to-end
// rather than stub it.
type RecordingHost struct {
	mu    sync.Mutex
	Calls []Call

	SQLFunc           func(ctx context.Context, query string, vars value.Value) (value.Value, error)
	RunFunc           func(ctx context.Context, name string, version *string, args []value.Value) (value.Value, error)
	MLInvokeModelFunc func(ctx context.Context, model string, input value.Value, weight int64, weightDir string) (value.Value, error)
	MLTokenizeFunc    func(ctx context.Context, model string, input value.Value) ([]float64, error)
	StdoutFunc        func(ctx context.Context, s string) error
	StderrFunc        func(ctx context.Context, s string) error

	kv *MemoryKV
}

// NewRecordingHost creates a RecordingHost with an empty MemoryKV backend.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{kv: NewMemoryKV()}
}

func (r *RecordingHost) record(name string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *RecordingHost) SQL(ctx context.Context, query string, vars value.Value) (value.Value, error) {
	r.record("SQL", query, vars)
	if r.SQLFunc != nil {
		return r.SQLFunc(ctx, query, vars)
	}
	return value.None(), nil
}

func (r *RecordingHost) Run(ctx context.Context, name string, version *string, args []value.Value) (value.Value, error) {
	r.record("Run", name, version, args)
	if r.RunFunc != nil {
		return r.RunFunc(ctx, name, version, args)
	}
	return value.None(), nil
}

func (r *RecordingHost) MLInvokeModel(ctx context.Context, model string, input value.Value, weight int64, weightDir string) (value.Value, error) {
	r.record("MLInvokeModel", model, input, weight, weightDir)
	if r.MLInvokeModelFunc != nil {
		return r.MLInvokeModelFunc(ctx, model, input, weight, weightDir)
	}
	return value.None(), nil
}

func (r *RecordingHost) MLTokenize(ctx context.Context, model string, input value.Value) ([]float64, error) {
	r.record("MLTokenize", model, input)
	if r.MLTokenizeFunc != nil {
		return r.MLTokenizeFunc(ctx, model, input)
	}
	return nil, nil
}

func (r *RecordingHost) Stdout(ctx context.Context, s string) error {
	r.record("Stdout", s)
	if r.StdoutFunc != nil {
		return r.StdoutFunc(ctx, s)
	}
	return nil
}

func (r *RecordingHost) Stderr(ctx context.Context, s string) error {
	r.record("Stderr", s)
	if r.StderrFunc != nil {
		return r.StderrFunc(ctx, s)
	}
	return nil
}

// KV returns the underlying MemoryKV backend.
func (r *RecordingHost) KV() KVStore { return r.kv }
