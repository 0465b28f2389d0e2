package capability

import (
	"context"

	"github.com/outlandhq/wasmfn/transfer"
	"github.com/outlandhq/wasmfn/value"
)

// Host is the pluggable backend behind every guest-importable capability
// of spec §4.6. Concrete semantics (the real SQL engine, ML runtime, …)
// are an embedder's responsibility; this package only owns the marshal
// path to and from it.
type Host interface {
	// SQL executes a query against the host's database, with vars bound
	// as an Object.
	SQL(ctx context.Context, query string, vars value.Value) (value.Value, error)
	// Run invokes another named function (e.g. "fn::user_exists") with
	// positional args, optionally pinned to a version.
	Run(ctx context.Context, name string, version *string, args []value.Value) (value.Value, error)
	// MLInvokeModel runs a model against input, loading the given model
	// revision from weightDir.
	MLInvokeModel(ctx context.Context, model string, input value.Value, weight int64, weightDir string) (value.Value, error)
	// MLTokenize tokenizes input against model, returning raw token ids
	// or embeddings as float64s.
	MLTokenize(ctx context.Context, model string, input value.Value) ([]float64, error)
	// Stdout writes a guest-authored line of output.
	Stdout(ctx context.Context, s string) error
	// Stderr writes a guest-authored diagnostic line.
	Stderr(ctx context.Context, s string) error
	// KV returns the key-value store backend.
	KV() KVStore
}

// KVStore is the host key-value capability of spec §4.6's twelve
// __sr_kv_* imports. Range arguments follow standard
// {Included, Excluded, Unbounded} Bound semantics; keys/values/entries
// return ascending key order and Count(r) == len(Entries(r)).
type KVStore interface {
	Get(ctx context.Context, key string) (*value.Value, error)
	Set(ctx context.Context, key string, v value.Value) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	DelRange(ctx context.Context, r transfer.StrandRange) error
	GetBatch(ctx context.Context, keys []string) ([]*value.Value, error)
	SetBatch(ctx context.Context, entries []transfer.KV) error
	DelBatch(ctx context.Context, keys []string) error
	Keys(ctx context.Context, r transfer.StrandRange) ([]string, error)
	Values(ctx context.Context, r transfer.StrandRange) ([]value.Value, error)
	Entries(ctx context.Context, r transfer.StrandRange) ([]transfer.KV, error)
	Count(ctx context.Context, r transfer.StrandRange) (uint64, error)
}
