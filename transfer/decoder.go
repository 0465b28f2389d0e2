package transfer

import (
	"math"
	"unicode/utf8"

	"github.com/outlandhq/wasmfn"
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/value"
	"github.com/outlandhq/wasmfn/wire"
)

// Decoder reads through and frees blocks in a MemoryController, the
// inverse of Encoder. Every Decoder method that reads an allocation frees
// it before returning, per "the decoder frees" (spec §3 Lifecycles). A
// decode that fails partway returns the error at once: byte blocks fully
// read before the failure have been freed, but the enclosing blocks (the
// element array, the top-level WireValue or Kind block) are not.
type Decoder struct {
	mc wasmfn.MemoryController
}

// NewDecoder wraps a MemoryController for decoding.
func NewDecoder(mc wasmfn.MemoryController) *Decoder {
	return &Decoder{mc: mc}
}

func (d *Decoder) freeBytes(ptr, length uint32) {
	if length == 0 {
		return
	}
	_ = d.mc.Free(ptr, length)
}

func (d *Decoder) bytes(ptr, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	b, err := d.mc.Read(ptr, length)
	if err != nil {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "read byte block: "+err.Error())
	}
	out := make([]byte, len(b))
	copy(out, b)
	d.freeBytes(ptr, length)
	return out, nil
}

func (d *Decoder) strand(ptr, length uint32, path []string) (string, error) {
	b, err := d.bytes(ptr, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, path, b)
	}
	return string(b), nil
}

// Value reads, reconstructs, and frees the value.Value at ptr (both the
// top-level 24-byte block and everything it references).
func (d *Decoder) Value(ptr uint32) (value.Value, error) {
	v, err := d.readValueFrom(ptr, nil)
	if err != nil {
		return value.Value{}, err
	}
	d.freeBytes(ptr, wire.SizeWireValue)
	return v, nil
}

// readValueFrom reads a WireValue's contents at ptr WITHOUT freeing the
// ptr block itself (the caller owns that, since inline embeddings like
// Object entries and Array elements are freed as part of their containing
// block, not individually).
func (d *Decoder) readValueFrom(ptr uint32, path []string) (value.Value, error) {
	tag, err := d.mc.ReadU32(ptr + wire.ValueTagOffset)
	if err != nil {
		return value.Value{}, errors.InvalidData(errors.PhaseDecode, path, "read value tag: "+err.Error())
	}
	payload := ptr + wire.ValuePayloadOffset
	t := value.Tag(tag)

	switch t {
	case value.TagNone:
		return value.None(), nil
	case value.TagNull:
		return value.Null(), nil
	case value.TagBool:
		b, err := d.mc.ReadU32(payload + wire.ValueBoolOffset)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil
	case value.TagInt:
		i, err := d.mc.ReadU64(payload + wire.ValueIntOffset)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(int64(i)), nil
	case value.TagFloat:
		bits, err := d.mc.ReadU64(payload + wire.ValueFloatOffset)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(math.Float64frombits(bits)), nil
	case value.TagStrand:
		p, l, err := d.readTransferredArray(payload + wire.ValueStrandPtrOffset)
		if err != nil {
			return value.Value{}, err
		}
		s, err := d.strand(p, l, path)
		if err != nil {
			return value.Value{}, err
		}
		return value.Value{Tag: value.TagStrand, Strand: s}, nil
	case value.TagBytes:
		p, l, err := d.readTransferredArray(payload + wire.ValueStrandPtrOffset)
		if err != nil {
			return value.Value{}, err
		}
		b, err := d.bytes(p, l)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBytes(b), nil
	case value.TagDuration:
		sec, nanos, err := d.readSecondsNanos(payload)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDuration(sec, nanos), nil
	case value.TagDatetime:
		sec, nanos, err := d.readSecondsNanos(payload)
		if err != nil {
			return value.Value{}, err
		}
		dt := value.Datetime{Seconds: sec, Nanos: nanos}
		if !dt.Valid() {
			return value.Value{}, errors.DatetimeOutOfRange(path, sec, nanos)
		}
		return value.NewDatetime(sec, nanos), nil
	case value.TagUuid:
		b, err := d.mc.Read(payload+wire.ValueUuidOffset, 16)
		if err != nil {
			return value.Value{}, err
		}
		var u [16]byte
		copy(u[:], b)
		return value.NewUuid(u), nil
	case value.TagArray:
		p, l, err := d.readTransferredArray(payload + wire.ValueArrayPtrOffset)
		if err != nil {
			return value.Value{}, err
		}
		items, err := d.valueArray(p, l, path)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewArray(items), nil
	case value.TagObject:
		p, l, err := d.readTransferredArray(payload + wire.ValueObjectPtrOffset)
		if err != nil {
			return value.Value{}, err
		}
		entries, err := d.objectEntries(p, l, path)
		if err != nil {
			return value.Value{}, err
		}
		v, ok := value.NewObject(entries)
		if !ok {
			return value.Value{}, errors.InvalidData(errors.PhaseDecode, path, "object keys not unique")
		}
		return v, nil
	case value.TagThing:
		thingPtr, err := d.mc.ReadU32(payload + wire.ValueThingPtrOffset)
		if err != nil {
			return value.Value{}, err
		}
		return d.thing(thingPtr, path)
	default:
		return value.Value{}, errors.InvalidDiscriminant(errors.PhaseDecode, path, tag, uint32(value.TagThing))
	}
}

func (d *Decoder) readSecondsNanos(payload uint32) (int64, uint32, error) {
	sec, err := d.mc.ReadU64(payload + wire.ValueDurSecondsOffset)
	if err != nil {
		return 0, 0, err
	}
	nanos, err := d.mc.ReadU32(payload + wire.ValueDurNanosOffset)
	if err != nil {
		return 0, 0, err
	}
	return int64(sec), nanos, nil
}

// ReadArrayHeader reads the {ptr, len} header of a TransferredArray<T> at
// the given offset and frees the 8-byte header block itself — the caller
// still owes a free for the backing elements once it has decoded them
// (e.g. via KindArray or ValueArray). Used to decode the top-level pointer
// __sr_args__ and several host-capability imports return.
func (d *Decoder) ReadArrayHeader(at uint32) (ptr, length uint32, err error) {
	ptr, length, err = d.readTransferredArray(at)
	if err != nil {
		return 0, 0, err
	}
	d.freeBytes(at, wire.SizeTransferredArray)
	return ptr, length, nil
}

func (d *Decoder) readTransferredArray(at uint32) (uint32, uint32, error) {
	ptr, err := d.mc.ReadU32(at)
	if err != nil {
		return 0, 0, err
	}
	length, err := d.mc.ReadU32(at + 4)
	if err != nil {
		return 0, 0, err
	}
	return ptr, length, nil
}

func (d *Decoder) valueArray(ptr, length uint32, path []string) ([]value.Value, error) {
	if length == 0 {
		return nil, nil
	}
	items := make([]value.Value, length)
	for i := uint32(0); i < length; i++ {
		elemPtr := ptr + i*wire.SizeWireValue
		v, err := d.readValueFrom(elemPtr, path)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	d.freeBytes(ptr, length*wire.SizeWireValue)
	return items, nil
}

func (d *Decoder) objectEntries(ptr, length uint32, path []string) ([]value.Entry, error) {
	if length == 0 {
		return nil, nil
	}
	entries := make([]value.Entry, length)
	for i := uint32(0); i < length; i++ {
		base := ptr + i*wire.SizeKeyValuePair
		kp, kl, err := d.readTransferredArray(base + wire.KVPairKeyPtrOffset)
		if err != nil {
			return nil, err
		}
		key, err := d.strand(kp, kl, path)
		if err != nil {
			return nil, err
		}
		v, err := d.readValueFrom(base+wire.KVPairValueOffset, append(path, key))
		if err != nil {
			return nil, err
		}
		entries[i] = value.Entry{Key: key, Value: v}
	}
	d.freeBytes(ptr, length*wire.SizeKeyValuePair)
	return entries, nil
}

func (d *Decoder) thing(ptr uint32, path []string) (value.Value, error) {
	tp, tl, err := d.readTransferredArray(ptr + wire.ThingTablePtrOffset)
	if err != nil {
		return value.Value{}, err
	}
	table, err := d.strand(tp, tl, path)
	if err != nil {
		return value.Value{}, err
	}
	id, err := d.readValueFrom(ptr+wire.ThingIDOffset, path)
	if err != nil {
		return value.Value{}, err
	}
	d.freeBytes(ptr, wire.SizeWireThing)
	v, ok := value.NewThing(table, id)
	if !ok {
		return value.Value{}, errors.InvalidData(errors.PhaseDecode, path, "thing id has unsupported kind")
	}
	return v, nil
}

// ValueArray decodes a TransferredArray<Value> at the given {ptr, len}.
func (d *Decoder) ValueArray(ptr, length uint32) ([]value.Value, error) {
	return d.valueArray(ptr, length, nil)
}

// Option decodes Option<Value>: { tag: u32, payload: WireValue }.
func (d *Decoder) Option(ptr uint32) (*value.Value, error) {
	tag, err := d.mc.ReadU32(ptr)
	if err != nil {
		return nil, err
	}
	if tag == wire.OptionNone {
		d.freeBytes(ptr, wire.SizeWireOptionOrResult)
		return nil, nil
	}
	v, err := d.readValueFrom(ptr+wire.SizeTransferredArray, nil)
	if err != nil {
		return nil, err
	}
	d.freeBytes(ptr, wire.SizeWireOptionOrResult)
	return &v, nil
}

// Result decodes Result<Value>: Ok(v) or Err(message), surfacing Err as a
// GuestCallFailed error carrying the message.
func (d *Decoder) Result(ptr uint32) (value.Value, error) {
	tag, err := d.mc.ReadU32(ptr)
	if err != nil {
		return value.Value{}, err
	}
	v, err := d.readValueFrom(ptr+wire.SizeTransferredArray, nil)
	if err != nil {
		return value.Value{}, err
	}
	d.freeBytes(ptr, wire.SizeWireOptionOrResult)
	if tag == wire.ResultErr {
		msg := v.Strand
		return value.Value{}, errors.GuestCallFailed("invoke", msg)
	}
	return v, nil
}
