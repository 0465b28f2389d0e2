package transfer

import (
	"math"

	"github.com/outlandhq/wasmfn"
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/value"
	"github.com/outlandhq/wasmfn/wire"
)

// Encoder allocates into and writes through a MemoryController, producing
// the pointers the guest/host boundary passes by value.
type Encoder struct {
	mc wasmfn.MemoryController
}

// NewEncoder wraps a MemoryController for encoding.
func NewEncoder(mc wasmfn.MemoryController) *Encoder {
	return &Encoder{mc: mc}
}

// bytes allocates len(b) bytes aligned to 1 and copies b into it,
// returning a TransferredArray<u8> handle.
func (e *Encoder) bytes(b []byte) (wire.TransferredArray[byte], error) {
	if len(b) == 0 {
		return wire.TransferredArray[byte]{Ptr: 0, Len: 0}, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(b)), 1)
	if err != nil {
		return wire.TransferredArray[byte]{}, errors.AllocationFailed(errors.PhaseEncode, uint32(len(b)), 1)
	}
	if err := e.mc.Write(ptr, b); err != nil {
		return wire.TransferredArray[byte]{}, errors.Wrap(errors.PhaseEncode, errors.KindAllocation, err, "write byte block")
	}
	return wire.TransferredArray[byte]{Ptr: ptr, Len: uint32(len(b))}, nil
}

func (e *Encoder) strand(s string) (wire.TransferredArray[byte], error) {
	return e.bytes([]byte(s))
}

// Value allocates a 24-byte WireValue block for v, writes its
// discriminant and payload (recursively encoding nested values), and
// returns the block's offset.
func (e *Encoder) Value(v value.Value) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireValue, wire.AlignWireValue)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireValue, wire.AlignWireValue)
	}
	if err := e.writeValueInto(ptr, v); err != nil {
		return 0, err
	}
	return ptr, nil
}

// writeValueInto writes v's wire representation into an already-allocated
// 24-byte block at ptr (used both for top-level Values and for Value
// payloads embedded inline, such as Object entries and Thing.ID).
func (e *Encoder) writeValueInto(ptr uint32, v value.Value) error {
	if err := e.mc.WriteU32(ptr+wire.ValueTagOffset, uint32(v.Tag)); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindAllocation, err, "write value tag")
	}
	payload := ptr + wire.ValuePayloadOffset

	switch v.Tag {
	case value.TagNone, value.TagNull:
		return nil
	case value.TagBool:
		b := uint32(0)
		if v.Bool {
			b = 1
		}
		return e.mc.WriteU32(payload+wire.ValueBoolOffset, b)
	case value.TagInt:
		return e.mc.WriteU64(payload+wire.ValueIntOffset, uint64(v.Int))
	case value.TagFloat:
		return e.mc.WriteU64(payload+wire.ValueFloatOffset, math.Float64bits(v.Float))
	case value.TagStrand:
		arr, err := e.strand(v.Strand)
		if err != nil {
			return err
		}
		return e.writeTransferredArray(payload+wire.ValueStrandPtrOffset, arr.Ptr, arr.Len)
	case value.TagBytes:
		arr, err := e.bytes(v.Bytes)
		if err != nil {
			return err
		}
		return e.writeTransferredArray(payload+wire.ValueStrandPtrOffset, arr.Ptr, arr.Len)
	case value.TagDuration:
		if err := e.mc.WriteU64(payload+wire.ValueDurSecondsOffset, uint64(v.Duration.Seconds)); err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.ValueDurNanosOffset, v.Duration.Nanos)
	case value.TagDatetime:
		if err := e.mc.WriteU64(payload+wire.ValueDurSecondsOffset, uint64(v.Datetime.Seconds)); err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.ValueDurNanosOffset, v.Datetime.Nanos)
	case value.TagUuid:
		return e.mc.Write(payload+wire.ValueUuidOffset, v.Uuid[:])
	case value.TagArray:
		arrPtr, arrLen, err := e.valueArrayBlock(v.Array)
		if err != nil {
			return err
		}
		return e.writeTransferredArray(payload+wire.ValueArrayPtrOffset, arrPtr, arrLen)
	case value.TagObject:
		objPtr, objLen, err := e.objectBlock(v.Object)
		if err != nil {
			return err
		}
		return e.writeTransferredArray(payload+wire.ValueObjectPtrOffset, objPtr, objLen)
	case value.TagThing:
		thingPtr, err := e.thingBlock(v.Thing)
		if err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.ValueThingPtrOffset, thingPtr)
	default:
		return errors.Unsupported(errors.PhaseEncode, "value tag "+v.Tag.String())
	}
}

func (e *Encoder) writeTransferredArray(at, ptr, length uint32) error {
	if err := e.mc.WriteU32(at, ptr); err != nil {
		return err
	}
	return e.mc.WriteU32(at+4, length)
}

// valueArrayBlock allocates len(items)*SizeWireValue bytes and writes each
// element's inline WireValue representation.
func (e *Encoder) valueArrayBlock(items []value.Value) (uint32, uint32, error) {
	if len(items) == 0 {
		return 0, 0, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(items))*wire.SizeWireValue, wire.AlignWireValue)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseEncode, uint32(len(items))*wire.SizeWireValue, wire.AlignWireValue)
	}
	for i, item := range items {
		if err := e.writeValueInto(ptr+uint32(i)*wire.SizeWireValue, item); err != nil {
			return 0, 0, err
		}
	}
	return ptr, uint32(len(items)), nil
}

// objectBlock allocates an array of KeyValuePair and writes each entry.
func (e *Encoder) objectBlock(entries []value.Entry) (uint32, uint32, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(entries))*wire.SizeKeyValuePair, wire.AlignWireValue)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseEncode, uint32(len(entries))*wire.SizeKeyValuePair, wire.AlignWireValue)
	}
	for i, entry := range entries {
		base := ptr + uint32(i)*wire.SizeKeyValuePair
		keyArr, err := e.strand(entry.Key)
		if err != nil {
			return 0, 0, err
		}
		if err := e.writeTransferredArray(base+wire.KVPairKeyPtrOffset, keyArr.Ptr, keyArr.Len); err != nil {
			return 0, 0, err
		}
		if err := e.writeValueInto(base+wire.KVPairValueOffset, entry.Value); err != nil {
			return 0, 0, err
		}
	}
	return ptr, uint32(len(entries)), nil
}

// thingBlock allocates a WireThing and writes the table Strand and nested
// ID WireValue.
func (e *Encoder) thingBlock(t *value.Thing) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireThing, wire.AlignWireValue)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireThing, wire.AlignWireValue)
	}
	tableArr, err := e.strand(t.Table)
	if err != nil {
		return 0, err
	}
	if err := e.writeTransferredArray(ptr+wire.ThingTablePtrOffset, tableArr.Ptr, tableArr.Len); err != nil {
		return 0, err
	}
	if err := e.writeValueInto(ptr+wire.ThingIDOffset, t.ID); err != nil {
		return 0, err
	}
	return ptr, nil
}

// ValueArray encodes a TransferredArray<Value> (used for function
// arguments and other bare lists of Values) and returns its {ptr, len}.
func (e *Encoder) ValueArray(items []value.Value) (wire.TransferredArray[value.Value], error) {
	ptr, length, err := e.valueArrayBlock(items)
	if err != nil {
		return wire.TransferredArray[value.Value]{}, err
	}
	return wire.TransferredArray[value.Value]{Ptr: ptr, Len: length}, nil
}

// Option encodes Option<Value>: { tag: u32, payload: WireValue }.
func (e *Encoder) Option(v *value.Value) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireOptionOrResult, wire.AlignWireValue)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireOptionOrResult, wire.AlignWireValue)
	}
	if v == nil {
		if err := e.mc.WriteU32(ptr, wire.OptionNone); err != nil {
			return 0, err
		}
		return ptr, nil
	}
	if err := e.mc.WriteU32(ptr, wire.OptionSome); err != nil {
		return 0, err
	}
	if err := e.writeValueInto(ptr+wire.SizeTransferredArray, *v); err != nil {
		return 0, err
	}
	return ptr, nil
}

// Result encodes Result<Value>: Ok(v) or Err(message).
func (e *Encoder) Result(v value.Value, errMsg string, isErr bool) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireOptionOrResult, wire.AlignWireValue)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireOptionOrResult, wire.AlignWireValue)
	}
	if isErr {
		if err := e.mc.WriteU32(ptr, wire.ResultErr); err != nil {
			return 0, err
		}
		return ptr, e.writeValueInto(ptr+wire.SizeTransferredArray, value.Strand(errMsg))
	}
	if err := e.mc.WriteU32(ptr, wire.ResultOk); err != nil {
		return 0, err
	}
	return ptr, e.writeValueInto(ptr+wire.SizeTransferredArray, v)
}
