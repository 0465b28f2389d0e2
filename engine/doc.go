// Package engine wraps wazero to compile and instantiate the fixed,
// hand-rolled guest ABI this module defines (alloc/free plus the
// __sr_fnc__/__sr_args__/__sr_returns__ triad). It has no Component Model,
// asyncify, or WASI layer: the guest is a plain core WebAssembly module,
// and host capabilities are registered as ordinary wazero host functions
// in the "env" namespace.
//
// # Architecture
//
//	Engine    - owns one wazero.Runtime; compiles modules
//	Module    - a compiled module, instantiated per caller
//	Instance  - one running instance: its memory, alloc/free exports, and
//	            an ExportedFunction/Call surface for the host package
//
// Instance is NOT safe for concurrent use: one guest instance is
// single-threaded per spec. Engine and Module may be shared; call
// Module.Instantiate once per concurrent caller.
package engine
