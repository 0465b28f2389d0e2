// Package wire defines the fixed, C-layout-stable in-memory representation
// of every value.Value and value.Kind variant, addressed by a 32-bit
// offset into guest linear memory. It mirrors spec-level shapes such as
// TransferredArray<T>, Option<T>, Result<T> and Range<T> as Go types and
// byte-offset constants; the transfer package does the actual reading and
// writing against a MemoryController.
//
// Layouts are deliberately simple and fixed-width so the same byte-level
// contract can be hand-authored in WebAssembly Text for guest test
// fixtures (see the guestfix package) without a code generator.
package wire
