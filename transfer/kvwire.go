package transfer

import (
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/value"
	"github.com/outlandhq/wasmfn/wire"
)

// KV is one key/value pair exchanged with the host's KV capability
// (spec §4.6). Its wire layout is identical to an Object entry
// (wire.KeyValuePair): { key: Strand, value: Value }.
type KV struct {
	Key   string
	Value value.Value
}

// KVArray encodes a TransferredArray<KV>, the shape of __sr_kv_set_batch's
// entries argument. (The __sr_kv_entries result travels as an Object
// Value instead.)
func (e *Encoder) KVArray(items []KV) (wire.TransferredArray[KV], error) {
	if len(items) == 0 {
		return wire.TransferredArray[KV]{}, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(items))*wire.SizeKeyValuePair, wire.AlignWireValue)
	if err != nil {
		return wire.TransferredArray[KV]{}, errors.AllocationFailed(errors.PhaseEncode, uint32(len(items))*wire.SizeKeyValuePair, wire.AlignWireValue)
	}
	for i, kv := range items {
		at := ptr + uint32(i)*wire.SizeKeyValuePair
		arr, err := e.strand(kv.Key)
		if err != nil {
			return wire.TransferredArray[KV]{}, err
		}
		if err := e.writeTransferredArray(at+wire.KVPairKeyPtrOffset, arr.Ptr, arr.Len); err != nil {
			return wire.TransferredArray[KV]{}, err
		}
		if err := e.writeValueInto(at+wire.KVPairValueOffset, kv.Value); err != nil {
			return wire.TransferredArray[KV]{}, err
		}
	}
	return wire.TransferredArray[KV]{Ptr: ptr, Len: uint32(len(items))}, nil
}

// KVArray decodes a TransferredArray<KV> at the given {ptr, len}.
func (d *Decoder) KVArray(ptr, length uint32) ([]KV, error) {
	if length == 0 {
		return nil, nil
	}
	out := make([]KV, length)
	for i := uint32(0); i < length; i++ {
		at := ptr + i*wire.SizeKeyValuePair
		kp, kl, err := d.readTransferredArray(at + wire.KVPairKeyPtrOffset)
		if err != nil {
			return nil, err
		}
		key, err := d.strand(kp, kl, nil)
		if err != nil {
			return nil, err
		}
		v, err := d.readValueFrom(at+wire.KVPairValueOffset, nil)
		if err != nil {
			return nil, err
		}
		out[i] = KV{Key: key, Value: v}
	}
	d.freeBytes(ptr, length*wire.SizeKeyValuePair)
	return out, nil
}

// StrandArray encodes a TransferredArray<Strand>, the shape of
// __sr_kv_get_batch/__sr_kv_del_batch's keys argument. (The __sr_kv_keys
// result travels as an Array Value instead.)
func (e *Encoder) StrandArray(items []string) (wire.TransferredArray[string], error) {
	if len(items) == 0 {
		return wire.TransferredArray[string]{}, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(items))*wire.SizeTransferredArray, 4)
	if err != nil {
		return wire.TransferredArray[string]{}, errors.AllocationFailed(errors.PhaseEncode, uint32(len(items))*wire.SizeTransferredArray, 4)
	}
	for i, s := range items {
		arr, err := e.strand(s)
		if err != nil {
			return wire.TransferredArray[string]{}, err
		}
		if err := e.writeTransferredArray(ptr+uint32(i)*wire.SizeTransferredArray, arr.Ptr, arr.Len); err != nil {
			return wire.TransferredArray[string]{}, err
		}
	}
	return wire.TransferredArray[string]{Ptr: ptr, Len: uint32(len(items))}, nil
}

// StrandArray decodes a TransferredArray<Strand> at the given {ptr, len}.
func (d *Decoder) StrandArray(ptr, length uint32) ([]string, error) {
	if length == 0 {
		return nil, nil
	}
	out := make([]string, length)
	for i := uint32(0); i < length; i++ {
		p, l, err := d.readTransferredArray(ptr + i*wire.SizeTransferredArray)
		if err != nil {
			return nil, err
		}
		s, err := d.strand(p, l, nil)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	d.freeBytes(ptr, length*wire.SizeTransferredArray)
	return out, nil
}

// BoundKind discriminates a StrandBound's variant, per spec §3's
// Bound<T> ∈ {Unbounded, Included(T), Excluded(T)}.
type BoundKind uint32

const (
	BoundUnbounded BoundKind = BoundKind(wire.BoundUnbounded)
	BoundIncluded  BoundKind = BoundKind(wire.BoundIncluded)
	BoundExcluded  BoundKind = BoundKind(wire.BoundExcluded)
)

// StrandBound is a Bound<Strand>: one endpoint of a StrandRange.
type StrandBound struct {
	Kind  BoundKind
	Value string // meaningful only when Kind != BoundUnbounded
}

// StrandRange is Range<Strand>, the argument shape of every ranged KV
// capability (spec §4.6's kv_del_rng/keys/values/entries/count).
type StrandRange struct {
	Start StrandBound
	End   StrandBound
}

func (e *Encoder) writeBound(at uint32, b StrandBound) error {
	if err := e.mc.WriteU32(at, uint32(b.Kind)); err != nil {
		return err
	}
	if b.Kind == BoundUnbounded {
		return nil
	}
	arr, err := e.strand(b.Value)
	if err != nil {
		return err
	}
	return e.writeTransferredArray(at+wire.SizeTransferredArray, arr.Ptr, arr.Len)
}

// StrandRange allocates and writes a Range<Strand> block and returns its
// offset.
func (e *Encoder) StrandRange(r StrandRange) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeRangeStrand, 4)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeRangeStrand, 4)
	}
	if err := e.writeBound(ptr, r.Start); err != nil {
		return 0, err
	}
	if err := e.writeBound(ptr+wire.SizeBoundStrand, r.End); err != nil {
		return 0, err
	}
	return ptr, nil
}

func (d *Decoder) readBound(at uint32) (StrandBound, error) {
	tag, err := d.mc.ReadU32(at)
	if err != nil {
		return StrandBound{}, err
	}
	kind := BoundKind(tag)
	if kind == BoundUnbounded {
		return StrandBound{Kind: BoundUnbounded}, nil
	}
	p, l, err := d.readTransferredArray(at + wire.SizeTransferredArray)
	if err != nil {
		return StrandBound{}, err
	}
	s, err := d.strand(p, l, nil)
	if err != nil {
		return StrandBound{}, err
	}
	return StrandBound{Kind: kind, Value: s}, nil
}

// StrandRange decodes and frees a Range<Strand> at ptr.
func (d *Decoder) StrandRange(ptr uint32) (StrandRange, error) {
	start, err := d.readBound(ptr)
	if err != nil {
		return StrandRange{}, err
	}
	end, err := d.readBound(ptr + wire.SizeBoundStrand)
	if err != nil {
		return StrandRange{}, err
	}
	d.freeBytes(ptr, wire.SizeRangeStrand)
	return StrandRange{Start: start, End: end}, nil
}
