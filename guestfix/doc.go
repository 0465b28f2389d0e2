// Package guestfix builds small WAT guest modules, compiled through the
// wat package, that implement the hand-rolled ABI directly: a bump
// allocator plus one __sr_fnc__/__sr_args__/__sr_returns__ triad per
// exported function. Most of each fixture's wire data is laid out once in
// Go (via image) and embedded as a single active data segment, so a
// fixture's function bodies only need to do real work where the scenario
// calls for it (branching on a decoded argument, calling a host import) —
// everything else is a constant pointer into that segment.
//
// These are test fixtures, not a general guest SDK: each one hand-encodes
// the exact shapes its scenario needs rather than a reusable macro
// expansion, and free() never reclaims (a bump allocator is enough for a
// handful of calls in a test).
package guestfix
