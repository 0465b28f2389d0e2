// Package wat compiles a small subset of WebAssembly Text format into
// binary WASM. It has no knowledge of this repository's guest ABI
// (alloc/free, the __sr_fnc__ triad) — that contract is authored on top of
// it by guestfix, which emits WAT source implementing the triad and hands
// it to wat.Compile to produce the guest modules host/ tests run against.
//
// guestfix only ever generates straight-line WAT for tiny fixtures, never
// hand-authored modules, so this compiler covers exactly the constructs
// those fixtures use rather than the whole text format:
//
// Basic usage:
//
//	wasm, err := wat.Compile(`(module
//		(func (export "add") (param $a i32) (param $b i32) (result i32)
//			(i32.add (local.get $a) (local.get $b))))`)
//
// Supported:
//   - One (memory (export "name") N), with an active (data (i32.const N) "...") segment
//   - Mutable i32 globals with an i32.const initializer
//   - Function imports with i32/i64 params and a single result
//   - Functions with named/positional params, locals, and an (export "name")
//   - i32/i64 const, local/global get/set, i32 add/sub/and/or/xor/eqz,
//     i64 ge_s/ne, i32/i64 load and i32 store (with optional offset=N), call,
//     and if/(result i32)/then/else
//   - Line comments (;; ...)
//
// Not supported: tables, multiple memories, floats, control flow other than
// if/then/else, multi-value returns, and anything else the full text format
// allows but no fixture needs.
package wat
