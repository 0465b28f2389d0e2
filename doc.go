// Package wasmfn lets a host program execute user-authored code compiled to
// a sandboxed WebAssembly module, and defines the root Memory/Allocator
// abstractions the rest of the module builds on.
//
// # Architecture Overview
//
//	wasmfn/            Root package: Memory, Allocator, MemoryController
//	├── value/          Value and Kind tagged unions (the runtime data model)
//	├── wire/           Fixed in-memory layout for every Value/Kind variant
//	├── transfer/       Encode/decode engine: allocate-copy-handle, decode-free
//	├── abi/            Guest export-name contract (__sr_fnc__ triad rules)
//	├── guestfix/        WAT-sourced guest fixtures implementing the triad, for tests
//	├── engine/         wazero integration: compiles and instantiates guests
//	├── host/           Runtime/Module/Controller: introspection + invocation
//	├── capability/      Guest-importable host capabilities (SQL, run, KV, ML, I/O)
//	├── manifest/        Package manifest parsing and loading
//	├── errors/         Structured error taxonomy
//	├── wat/            WAT text to WASM binary compiler (guest test fixtures)
//	└── cmd/wasmfn/      CLI: info, sig, run
//
// # Quick Start
//
//	rt, err := host.NewRuntime(ctx)
//	defer rt.Close(ctx)
//
//	mod, err := rt.LoadModule(ctx, wasmBytes)
//	inst, err := mod.Instantiate(ctx)
//	defer inst.Close(ctx)
//
//	result, err := inst.Invoke("can_drive", []value.Value{value.Int(18)})
//
// # Value Transfer
//
// The guest and host share only a block of linear memory and a handful of
// numeric exports/imports. Every typed value crossing that boundary is
// allocated, copied, and referenced by a single u32 pointer; the side that
// finishes decoding a pointer is responsible for freeing it (see the
// transfer package). This asymmetric allocator discipline keeps the guest
// as the sole allocator on both sides of the boundary.
//
// # Concurrency
//
// One guest Controller is single-threaded: only one invocation may run at
// a time and it owns the whole of linear memory. Run multiple Controllers
// (from one compiled Module) for parallelism.
package wasmfn
