// Package abi defines the naming and layout contract a guest module must
// honor for its exported functions: the `__sr_fnc__<suffix>` /
// `__sr_args__<suffix>` / `__sr_returns__<suffix>` triad described in
// spec §4.4, plus the two required allocator exports.
//
// Any mechanism that produces exports with these names and behaviors is
// acceptable per spec §9 — a build-time attribute macro, hand-written
// wasm, or (as in this repository's test fixtures) a small WAT generator.
// This package only owns the pure naming rules both ends of that
// mechanism must agree on.
package abi
