package guestfix

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/outlandhq/wasmfn/value"
	"github.com/outlandhq/wasmfn/wire"
)

// image lays out a static byte blob for guest linear memory, mirroring
// transfer.Encoder's wire shapes but computed once here rather than by
// guest instructions at runtime. It gives fixtures constant pointers for
// any output that doesn't depend on the incoming arguments.
type image struct {
	base uint32
	buf  []byte
}

func newImage(base uint32) *image {
	return &image{base: base}
}

func (im *image) alloc(n, align uint32) uint32 {
	for uint32(len(im.buf))%align != 0 {
		im.buf = append(im.buf, 0)
	}
	ptr := im.base + uint32(len(im.buf))
	im.buf = append(im.buf, make([]byte, n)...)
	return ptr
}

func (im *image) putU32(off, v uint32) {
	binary.LittleEndian.PutUint32(im.buf[off-im.base:], v)
}

func (im *image) putU64(off uint32, v uint64) {
	binary.LittleEndian.PutUint64(im.buf[off-im.base:], v)
}

func (im *image) putBytes(off uint32, b []byte) {
	copy(im.buf[off-im.base:], b)
}

// end is the first unused offset, for sizing the heap that follows it.
func (im *image) end() uint32 {
	return im.base + uint32(len(im.buf))
}

// dataSegment renders the whole image as one active WAT data segment.
func (im *image) dataSegment() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  (data (i32.const %d) \"", im.base)
	for _, b := range im.buf {
		fmt.Fprintf(&sb, "\\%02x", b)
	}
	sb.WriteString("\")\n")
	return sb.String()
}

// strand writes raw UTF-8 bytes and returns its TransferredArray<u8>
// {ptr, len}.
func (im *image) strand(s string) (ptr, length uint32) {
	b := []byte(s)
	length = uint32(len(b))
	if length == 0 {
		return 0, 0
	}
	ptr = im.alloc(length, 1)
	im.putBytes(ptr, b)
	return ptr, length
}

// header writes a {ptr, len} TransferredArray header and returns its
// address.
func (im *image) header(ptr, length uint32) uint32 {
	h := im.alloc(wire.SizeTransferredArray, 4)
	im.putU32(h, ptr)
	im.putU32(h+4, length)
	return h
}

// value writes a 24-byte WireValue and returns its address, mirroring
// transfer.Encoder.Value.
func (im *image) value(v value.Value) uint32 {
	ptr := im.alloc(wire.SizeWireValue, wire.AlignWireValue)
	im.writeValueInto(ptr, v)
	return ptr
}

func (im *image) writeValueInto(ptr uint32, v value.Value) {
	im.putU32(ptr+wire.ValueTagOffset, uint32(v.Tag))
	payload := ptr + wire.ValuePayloadOffset
	switch v.Tag {
	case value.TagNone, value.TagNull:
		// no payload
	case value.TagBool:
		b := uint32(0)
		if v.Bool {
			b = 1
		}
		im.putU32(payload+wire.ValueBoolOffset, b)
	case value.TagInt:
		im.putU64(payload+wire.ValueIntOffset, uint64(v.Int))
	case value.TagFloat:
		im.putU64(payload+wire.ValueFloatOffset, math.Float64bits(v.Float))
	case value.TagStrand:
		p, l := im.strand(v.Strand)
		im.putU32(payload+wire.ValueStrandPtrOffset, p)
		im.putU32(payload+wire.ValueStrandLenOffset, l)
	case value.TagArray:
		elems := im.valueArrayBlock(v.Array)
		im.putU32(payload+wire.ValueArrayPtrOffset, elems)
		im.putU32(payload+wire.ValueArrayLenOffset, uint32(len(v.Array)))
	case value.TagObject:
		elems := im.objectBlock(v.Object)
		im.putU32(payload+wire.ValueObjectPtrOffset, elems)
		im.putU32(payload+wire.ValueObjectLenOffset, uint32(len(v.Object)))
	default:
		panic(fmt.Sprintf("guestfix: unsupported value tag %v in static image", v.Tag))
	}
}

func (im *image) valueArrayBlock(items []value.Value) uint32 {
	if len(items) == 0 {
		return 0
	}
	base := im.alloc(uint32(len(items))*wire.SizeWireValue, wire.AlignWireValue)
	for i, it := range items {
		im.writeValueInto(base+uint32(i)*wire.SizeWireValue, it)
	}
	return base
}

func (im *image) objectBlock(entries []value.Entry) uint32 {
	if len(entries) == 0 {
		return 0
	}
	base := im.alloc(uint32(len(entries))*wire.SizeKeyValuePair, wire.AlignWireValue)
	for i, e := range entries {
		off := base + uint32(i)*wire.SizeKeyValuePair
		p, l := im.strand(e.Key)
		im.putU32(off+wire.KVPairKeyPtrOffset, p)
		im.putU32(off+wire.KVPairKeyLenOffset, l)
		im.writeValueInto(off+wire.KVPairValueOffset, e.Value)
	}
	return base
}

// kind writes a 16-byte WireKind and returns its address, mirroring
// transfer.Encoder.Kind.
func (im *image) kind(k value.Kind) uint32 {
	ptr := im.alloc(wire.SizeWireKind, wire.AlignWireKind)
	im.writeKindInto(ptr, k)
	return ptr
}

func (im *image) writeKindInto(ptr uint32, k value.Kind) {
	im.putU32(ptr+wire.KindTagOffset, uint32(k.Tag))
	payload := ptr + wire.KindPayloadOffset
	switch k.Tag {
	case value.KindLiteral:
		reprPtr := im.literalRepr(*k.Literal)
		im.putU32(payload+wire.KindReprPtrOffset, reprPtr)
	case value.KindOption:
		inner := im.kind(*k.Option)
		im.putU32(payload+wire.KindReprPtrOffset, inner)
	case value.KindSet, value.KindArray:
		reprPtr := im.setArrayRepr(k)
		im.putU32(payload+wire.KindReprPtrOffset, reprPtr)
	default:
		// simple kinds carry no payload
	}
}

func (im *image) kindArrayBlock(kinds []value.Kind) uint32 {
	if len(kinds) == 0 {
		return 0
	}
	base := im.alloc(uint32(len(kinds))*wire.SizeWireKind, wire.AlignWireKind)
	for i, k := range kinds {
		im.writeKindInto(base+uint32(i)*wire.SizeWireKind, k)
	}
	return base
}

func (im *image) setArrayRepr(k value.Kind) uint32 {
	ptr := im.alloc(wire.SizeWireSetArrayRepr, wire.AlignWireKind)
	im.writeKindInto(ptr+wire.SetArrayElemOffset, *k.Elem)
	has := uint32(0)
	if k.Length != nil {
		has = 1
	}
	im.putU32(ptr+wire.SetArrayHasLengthOffset, has)
	length := uint64(0)
	if k.Length != nil {
		length = *k.Length
	}
	im.putU64(ptr+wire.SetArrayLengthOffset, length)
	return ptr
}

func (im *image) literalRepr(lit value.Literal) uint32 {
	ptr := im.alloc(wire.SizeWireLiteralRepr, wire.AlignWireKind)
	im.putU32(ptr+wire.LiteralTagOffset, uint32(lit.Tag))
	switch lit.Tag {
	case value.LiteralArray:
		p := im.kindArrayBlock(lit.Array)
		im.putU32(ptr+wire.LiteralArrayPtrOffset, p)
		im.putU32(ptr+wire.LiteralArrayLenOffset, uint32(len(lit.Array)))
	case value.LiteralBool:
		b := uint32(0)
		if lit.Bool {
			b = 1
		}
		im.putU32(ptr+wire.LiteralBoolOffset, b)
	case value.LiteralString:
		p, l := im.strand(lit.String)
		im.putU32(ptr+wire.LiteralStringPtrOffset, p)
		im.putU32(ptr+wire.LiteralStringLenOffset, l)
	default:
		panic("guestfix: unsupported literal tag in static image")
	}
	return ptr
}

// kindArray writes a TransferredArray<Kind> and returns its header
// address — the shape __sr_args__<suffix> returns.
func (im *image) kindArray(kinds []value.Kind) uint32 {
	p := im.kindArrayBlock(kinds)
	return im.header(p, uint32(len(kinds)))
}

// resultOk writes a 32-byte Result<Value>::Ok(v) block.
func (im *image) resultOk(v value.Value) uint32 {
	ptr := im.alloc(wire.SizeWireOptionOrResult, wire.AlignWireValue)
	im.putU32(ptr, wire.ResultOk)
	im.writeValueInto(ptr+wire.SizeTransferredArray, v)
	return ptr
}

// resultErr writes a 32-byte Result<Value>::Err(message) block.
func (im *image) resultErr(msg string) uint32 {
	ptr := im.alloc(wire.SizeWireOptionOrResult, wire.AlignWireValue)
	im.putU32(ptr, wire.ResultErr)
	im.writeValueInto(ptr+wire.SizeTransferredArray, value.Strand(msg))
	return ptr
}

func align8(x uint32) uint32 {
	return (x + 7) &^ 7
}
