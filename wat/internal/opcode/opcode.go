// Package opcode names the binary constants the encoder writes: section
// IDs, value types, and the handful of instruction opcodes guestfix's
// fixtures actually emit. It is not a full WASM core opcode table — only
// the subset this compiler supports.
package opcode

// Section IDs, in the order the binary format requires them to appear.
const (
	SectionType     = 1
	SectionImport   = 2
	SectionFunction = 3
	SectionMemory   = 5
	SectionGlobal   = 6
	SectionExport   = 7
	SectionCode     = 10
	SectionData     = 11
)

// Value types.
const (
	I32 byte = 0x7F
	I64 byte = 0x7E
)

// Type section function-type tag.
const FuncTypeTag byte = 0x60

// Import/export kinds.
const (
	KindFunc   byte = 0x00
	KindMemory byte = 0x02
)

// Global mutability.
const (
	Const byte = 0x00
	Var   byte = 0x01
)

// Instructions. Only the mnemonics guestfix emits get a constant; anything
// else is an encoder error.
const (
	End        byte = 0x0B
	Call       byte = 0x10
	LocalGet   byte = 0x20
	LocalSet   byte = 0x21
	GlobalGet  byte = 0x23
	GlobalSet  byte = 0x24
	I32Load    byte = 0x28
	I64Load    byte = 0x29
	I32Store   byte = 0x36
	I32Const   byte = 0x41
	I64Const   byte = 0x42
	I32Eqz     byte = 0x45
	I64Ne      byte = 0x52
	I64GeS     byte = 0x59
	I32And     byte = 0x71
	I32Or      byte = 0x72
	I32Xor     byte = 0x73
	I32Add     byte = 0x6A
	I32Sub     byte = 0x6B
	If         byte = 0x04
	Else       byte = 0x05
)
