// Package transfer implements the allocate-copy-into-guest and
// read-free-from-guest primitives that move value.Value and value.Kind
// across the guest/host memory boundary, parameterized on a
// wasmfn.MemoryController so the same code runs encode/decode from either
// side of the boundary.
//
// Two operations only: Encoder.Value/Encoder.Kind allocate a block, copy a
// value's wire representation into it, and return the top-level pointer.
// Decoder.Value/Decoder.Kind read a pointer's wire representation back
// into a Go value.Value/value.Kind and free every block they touch along
// the way — "the decoder frees" (spec §3 Lifecycles). A decode that fails
// partway returns the error without freeing the blocks that enclose the
// failing element; only the blocks fully read before the failure are freed.
package transfer
