package wasmfn

// Memory is a view onto a guest's linear memory. It is the one shared
// resource between host and guest: both sides address it with plain u32
// offsets and neither owns a private copy.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer reports the current size of a Memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator routes allocation through the guest's own alloc/free exports.
// Every Alloc must be paired with exactly one Free of the guest allocator,
// per the "decoder frees" rule: whichever side finishes decoding a pointer
// owes the free.
type Allocator interface {
	// Alloc requests len bytes aligned to align (a power of two) and
	// returns the offset, or an error if the guest's allocator refused
	// (corresponds to the guest returning -1).
	Alloc(len, align uint32) (uint32, error)
	// Free releases a block previously returned by Alloc.
	Free(ptr, len uint32) error
}

// MemoryController bundles Memory and Allocator, the pair the transfer
// engine needs to encode into or decode out of one side of the boundary.
type MemoryController interface {
	Memory
	Allocator
}
