package guestfix

import (
	"fmt"
	"strings"

	"github.com/outlandhq/wasmfn/wat"
)

// imageBase is where every fixture's static data segment starts, leaving
// the first few bytes of linear memory unused (address 0 is never a data
// pointer from this package, which keeps stack traces and off-by-ones
// easier to spot).
const imageBase = 16

// memoryPages is the fixed initial memory size every fixture declares.
// Small, fixed test payloads never need the bump allocator to grow
// memory, so alloc never calls memory.grow.
const memoryPages = 4

const allocFreeWAT = `
  (func $alloc_impl (export "alloc") (param $size i32) (param $align i32) (result i32)
    (local $mask i32)
    (local $ptr i32)
    (local.set $mask (i32.sub (local.get $align) (i32.const 1)))
    (local.set $ptr
      (i32.and
        (i32.add (global.get $bump) (local.get $mask))
        (i32.xor (local.get $mask) (i32.const -1))))
    (global.set $bump (i32.add (local.get $ptr) (local.get $size)))
    (local.get $ptr))

  (func (export "free") (param $ptr i32) (param $size i32) (result i32)
    (i32.const 0))
`

// assembleModule wraps im's static data plus imports/funcs WAT text into
// a complete module and compiles it.
func assembleModule(im *image, imports, funcs string) ([]byte, error) {
	heapBase := align8(im.end())

	var sb strings.Builder
	sb.WriteString("(module\n")
	fmt.Fprintf(&sb, "  (memory (export \"memory\") %d)\n", memoryPages)
	fmt.Fprintf(&sb, "  (global $bump (mut i32) (i32.const %d))\n", heapBase)
	sb.WriteString(im.dataSegment())
	sb.WriteString(imports)
	sb.WriteString(allocFreeWAT)
	sb.WriteString(funcs)
	sb.WriteString(")\n")

	return wat.Compile(sb.String())
}
