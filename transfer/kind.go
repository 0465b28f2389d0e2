package transfer

import (
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/value"
	"github.com/outlandhq/wasmfn/wire"
)

// Kind allocates a 16-byte WireKind block for k and returns its offset.
func (e *Encoder) Kind(k value.Kind) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireKind, wire.AlignWireKind)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireKind, wire.AlignWireKind)
	}
	if err := e.writeKindInto(ptr, k); err != nil {
		return 0, err
	}
	return ptr, nil
}

func (e *Encoder) writeKindInto(ptr uint32, k value.Kind) error {
	if err := e.mc.WriteU32(ptr+wire.KindTagOffset, uint32(k.Tag)); err != nil {
		return err
	}
	payload := ptr + wire.KindPayloadOffset

	switch k.Tag {
	case value.KindRecord:
		return e.writeStringList(payload, k.Tables)
	case value.KindGeometry:
		return e.writeStringList(payload, k.GeometryTags)
	case value.KindOption:
		inner, err := e.Kind(*k.Option)
		if err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.KindReprPtrOffset, inner)
	case value.KindEither:
		p, l, err := e.kindArrayBlock(k.Either)
		if err != nil {
			return err
		}
		return e.writeTransferredArray(payload+wire.KindListPtrOffset, p, l)
	case value.KindSet, value.KindArray:
		reprPtr, err := e.setArrayRepr(k)
		if err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.KindReprPtrOffset, reprPtr)
	case value.KindFunction:
		reprPtr, err := e.functionRepr(k.Function)
		if err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.KindReprPtrOffset, reprPtr)
	case value.KindLiteral:
		reprPtr, err := e.literalRepr(k.Literal)
		if err != nil {
			return err
		}
		return e.mc.WriteU32(payload+wire.KindReprPtrOffset, reprPtr)
	default:
		return nil // simple kinds carry no payload
	}
}

func (e *Encoder) writeStringList(at uint32, items []string) error {
	if len(items) == 0 {
		return e.writeTransferredArray(at+wire.KindListPtrOffset, 0, 0)
	}
	ptr, err := e.mc.Alloc(uint32(len(items))*wire.SizeTransferredArray, 4)
	if err != nil {
		return errors.AllocationFailed(errors.PhaseEncode, uint32(len(items))*wire.SizeTransferredArray, 4)
	}
	for i, s := range items {
		arr, err := e.strand(s)
		if err != nil {
			return err
		}
		if err := e.writeTransferredArray(ptr+uint32(i)*wire.SizeTransferredArray, arr.Ptr, arr.Len); err != nil {
			return err
		}
	}
	return e.writeTransferredArray(at+wire.KindListPtrOffset, ptr, uint32(len(items)))
}

// KindArray encodes a TransferredArray<Kind> (used for an exported
// function's declared argument Kinds) and returns its {ptr, len}.
func (e *Encoder) KindArray(kinds []value.Kind) (wire.TransferredArray[value.Kind], error) {
	ptr, length, err := e.kindArrayBlock(kinds)
	if err != nil {
		return wire.TransferredArray[value.Kind]{}, err
	}
	return wire.TransferredArray[value.Kind]{Ptr: ptr, Len: length}, nil
}

func (e *Encoder) kindArrayBlock(kinds []value.Kind) (uint32, uint32, error) {
	if len(kinds) == 0 {
		return 0, 0, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(kinds))*wire.SizeWireKind, wire.AlignWireKind)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseEncode, uint32(len(kinds))*wire.SizeWireKind, wire.AlignWireKind)
	}
	for i, kk := range kinds {
		if err := e.writeKindInto(ptr+uint32(i)*wire.SizeWireKind, kk); err != nil {
			return 0, 0, err
		}
	}
	return ptr, uint32(len(kinds)), nil
}

func (e *Encoder) setArrayRepr(k value.Kind) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireSetArrayRepr, wire.AlignWireKind)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireSetArrayRepr, wire.AlignWireKind)
	}
	if err := e.writeKindInto(ptr+wire.SetArrayElemOffset, *k.Elem); err != nil {
		return 0, err
	}
	has := uint32(0)
	if k.Length != nil {
		has = 1
	}
	if err := e.mc.WriteU32(ptr+wire.SetArrayHasLengthOffset, has); err != nil {
		return 0, err
	}
	length := uint64(0)
	if k.Length != nil {
		length = *k.Length
	}
	if err := e.mc.WriteU64(ptr+wire.SetArrayLengthOffset, length); err != nil {
		return 0, err
	}
	return ptr, nil
}

func (e *Encoder) functionRepr(sig *value.FunctionSig) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireFunctionRepr, wire.AlignWireKind)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireFunctionRepr, wire.AlignWireKind)
	}
	hasArgs := uint32(0)
	var argsPtr, argsLen uint32
	if sig.Args != nil {
		hasArgs = 1
		argsPtr, argsLen, err = e.kindArrayBlock(*sig.Args)
		if err != nil {
			return 0, err
		}
	}
	if err := e.mc.WriteU32(ptr+wire.FunctionHasArgsOffset, hasArgs); err != nil {
		return 0, err
	}
	if err := e.writeTransferredArray(ptr+wire.FunctionArgsPtrOffset, argsPtr, argsLen); err != nil {
		return 0, err
	}
	hasReturns := uint32(0)
	if sig.Returns != nil {
		hasReturns = 1
	}
	if err := e.mc.WriteU32(ptr+wire.FunctionHasReturnsOffset, hasReturns); err != nil {
		return 0, err
	}
	if sig.Returns != nil {
		if err := e.writeKindInto(ptr+wire.FunctionReturnsOffset, *sig.Returns); err != nil {
			return 0, err
		}
	}
	return ptr, nil
}

func (e *Encoder) literalRepr(lit *value.Literal) (uint32, error) {
	ptr, err := e.mc.Alloc(wire.SizeWireLiteralRepr, wire.AlignWireKind)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseEncode, wire.SizeWireLiteralRepr, wire.AlignWireKind)
	}
	if err := e.mc.WriteU32(ptr+wire.LiteralTagOffset, uint32(lit.Tag)); err != nil {
		return 0, err
	}
	switch lit.Tag {
	case value.LiteralString:
		arr, err := e.strand(lit.String)
		if err != nil {
			return 0, err
		}
		if err := e.writeTransferredArray(ptr+wire.LiteralStringPtrOffset, arr.Ptr, arr.Len); err != nil {
			return 0, err
		}
	case value.LiteralNumber:
		if err := e.writeValueInto(ptr+wire.LiteralNumberOffset, lit.Number); err != nil {
			return 0, err
		}
	case value.LiteralDuration:
		if err := e.mc.WriteU64(ptr+wire.LiteralDurSecOffset, uint64(lit.Duration.Seconds)); err != nil {
			return 0, err
		}
		if err := e.mc.WriteU32(ptr+wire.LiteralDurNanosOffset, lit.Duration.Nanos); err != nil {
			return 0, err
		}
	case value.LiteralBool:
		b := uint32(0)
		if lit.Bool {
			b = 1
		}
		if err := e.mc.WriteU32(ptr+wire.LiteralBoolOffset, b); err != nil {
			return 0, err
		}
	case value.LiteralArray:
		p, l, err := e.kindArrayBlock(lit.Array)
		if err != nil {
			return 0, err
		}
		if err := e.writeTransferredArray(ptr+wire.LiteralArrayPtrOffset, p, l); err != nil {
			return 0, err
		}
	case value.LiteralObject:
		p, l, err := e.kindEntryBlock(lit.Object)
		if err != nil {
			return 0, err
		}
		if err := e.writeTransferredArray(ptr+wire.LiteralObjectPtrOffset, p, l); err != nil {
			return 0, err
		}
	case value.LiteralDiscriminatedObject:
		keyArr, err := e.strand(lit.DiscKey)
		if err != nil {
			return 0, err
		}
		if err := e.writeTransferredArray(ptr+wire.LiteralDiscKeyPtrOffset, keyArr.Ptr, keyArr.Len); err != nil {
			return 0, err
		}
		p, l, err := e.kindArrayBlock(lit.DiscVars)
		if err != nil {
			return 0, err
		}
		if err := e.writeTransferredArray(ptr+wire.LiteralDiscVarsPtrOffset, p, l); err != nil {
			return 0, err
		}
	default:
		return 0, errors.Unsupported(errors.PhaseEncode, "literal tag")
	}
	return ptr, nil
}

func (e *Encoder) kindEntryBlock(entries []value.KindEntry) (uint32, uint32, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}
	ptr, err := e.mc.Alloc(uint32(len(entries))*wire.SizeWireKindEntry, wire.AlignWireKind)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseEncode, uint32(len(entries))*wire.SizeWireKindEntry, wire.AlignWireKind)
	}
	for i, entry := range entries {
		base := ptr + uint32(i)*wire.SizeWireKindEntry
		keyArr, err := e.strand(entry.Key)
		if err != nil {
			return 0, 0, err
		}
		if err := e.writeTransferredArray(base+wire.KindEntryKeyPtrOffset, keyArr.Ptr, keyArr.Len); err != nil {
			return 0, 0, err
		}
		if err := e.writeKindInto(base+wire.KindEntryKindOffset, entry.Kind); err != nil {
			return 0, 0, err
		}
	}
	return ptr, uint32(len(entries)), nil
}

// Kind reads, reconstructs and frees the value.Kind at ptr.
func (d *Decoder) Kind(ptr uint32) (value.Kind, error) {
	k, err := d.readKindFrom(ptr)
	if err != nil {
		return value.Kind{}, err
	}
	d.freeBytes(ptr, wire.SizeWireKind)
	return k, nil
}

func (d *Decoder) readKindFrom(ptr uint32) (value.Kind, error) {
	tag, err := d.mc.ReadU32(ptr + wire.KindTagOffset)
	if err != nil {
		return value.Kind{}, err
	}
	payload := ptr + wire.KindPayloadOffset
	t := value.KindTag(tag)

	switch t {
	case value.KindRecord:
		tables, err := d.readStringList(payload)
		if err != nil {
			return value.Kind{}, err
		}
		return value.NewRecord(tables), nil
	case value.KindGeometry:
		tags, err := d.readStringList(payload)
		if err != nil {
			return value.Kind{}, err
		}
		return value.NewGeometry(tags), nil
	case value.KindOption:
		innerPtr, err := d.mc.ReadU32(payload + wire.KindReprPtrOffset)
		if err != nil {
			return value.Kind{}, err
		}
		inner, err := d.Kind(innerPtr)
		if err != nil {
			return value.Kind{}, err
		}
		return value.NewOption(inner), nil
	case value.KindEither:
		p, l, err := d.readTransferredArray(payload + wire.KindListPtrOffset)
		if err != nil {
			return value.Kind{}, err
		}
		kinds, err := d.kindArray(p, l)
		if err != nil {
			return value.Kind{}, err
		}
		return value.NewEither(kinds), nil
	case value.KindSet, value.KindArray:
		reprPtr, err := d.mc.ReadU32(payload + wire.KindReprPtrOffset)
		if err != nil {
			return value.Kind{}, err
		}
		elem, length, err := d.setArrayRepr(reprPtr)
		if err != nil {
			return value.Kind{}, err
		}
		if t == value.KindSet {
			return value.NewSet(elem, length), nil
		}
		return value.NewArrayKind(elem, length), nil
	case value.KindFunction:
		reprPtr, err := d.mc.ReadU32(payload + wire.KindReprPtrOffset)
		if err != nil {
			return value.Kind{}, err
		}
		sig, err := d.functionRepr(reprPtr)
		if err != nil {
			return value.Kind{}, err
		}
		return value.Kind{Tag: value.KindFunction, Function: sig}, nil
	case value.KindLiteral:
		reprPtr, err := d.mc.ReadU32(payload + wire.KindReprPtrOffset)
		if err != nil {
			return value.Kind{}, err
		}
		lit, err := d.literalRepr(reprPtr)
		if err != nil {
			return value.Kind{}, err
		}
		return value.NewLiteral(*lit), nil
	default:
		if tag > uint32(value.KindLiteral) {
			return value.Kind{}, errors.InvalidDiscriminant(errors.PhaseDecode, nil, tag, uint32(value.KindLiteral))
		}
		return value.Simple(t), nil
	}
}

func (d *Decoder) readStringList(payload uint32) ([]string, error) {
	ptr, length, err := d.readTransferredArray(payload + wire.KindListPtrOffset)
	if err != nil {
		return nil, err
	}
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

// KindArray decodes a TransferredArray<Kind> at the given {ptr, len} —
// the shape __sr_args__<suffix> returns.
func (d *Decoder) KindArray(ptr, length uint32) ([]value.Kind, error) {
	return d.kindArray(ptr, length)
}

func (d *Decoder) kindArray(ptr, length uint32) ([]value.Kind, error) {
	if length == 0 {
		return nil, nil
	}
	out := make([]value.Kind, length)
	for i := uint32(0); i < length; i++ {
		k, err := d.readKindFrom(ptr + i*wire.SizeWireKind)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	d.freeBytes(ptr, length*wire.SizeWireKind)
	return out, nil
}

func (d *Decoder) setArrayRepr(ptr uint32) (value.Kind, *uint64, error) {
	elem, err := d.readKindFrom(ptr + wire.SetArrayElemOffset)
	if err != nil {
		return value.Kind{}, nil, err
	}
	has, err := d.mc.ReadU32(ptr + wire.SetArrayHasLengthOffset)
	if err != nil {
		return value.Kind{}, nil, err
	}
	var length *uint64
	if has != 0 {
		l, err := d.mc.ReadU64(ptr + wire.SetArrayLengthOffset)
		if err != nil {
			return value.Kind{}, nil, err
		}
		length = &l
	}
	d.freeBytes(ptr, wire.SizeWireSetArrayRepr)
	return elem, length, nil
}

func (d *Decoder) functionRepr(ptr uint32) (*value.FunctionSig, error) {
	hasArgs, err := d.mc.ReadU32(ptr + wire.FunctionHasArgsOffset)
	if err != nil {
		return nil, err
	}
	argsPtr, argsLen, err := d.readTransferredArray(ptr + wire.FunctionArgsPtrOffset)
	if err != nil {
		return nil, err
	}
	var argsList *[]value.Kind
	if hasArgs != 0 {
		kinds, err := d.kindArray(argsPtr, argsLen)
		if err != nil {
			return nil, err
		}
		argsList = &kinds
	}
	hasReturns, err := d.mc.ReadU32(ptr + wire.FunctionHasReturnsOffset)
	if err != nil {
		return nil, err
	}
	var returns *value.Kind
	if hasReturns != 0 {
		r, err := d.readKindFrom(ptr + wire.FunctionReturnsOffset)
		if err != nil {
			return nil, err
		}
		returns = &r
	}
	d.freeBytes(ptr, wire.SizeWireFunctionRepr)
	return &value.FunctionSig{Args: argsList, Returns: returns}, nil
}

func (d *Decoder) literalRepr(ptr uint32) (*value.Literal, error) {
	tag, err := d.mc.ReadU32(ptr + wire.LiteralTagOffset)
	if err != nil {
		return nil, err
	}
	lit := &value.Literal{Tag: value.LiteralTag(tag)}
	switch lit.Tag {
	case value.LiteralString:
		p, l, err := d.readTransferredArray(ptr + wire.LiteralStringPtrOffset)
		if err != nil {
			return nil, err
		}
		s, err := d.strand(p, l, nil)
		if err != nil {
			return nil, err
		}
		lit.String = s
	case value.LiteralNumber:
		v, err := d.readValueFrom(ptr+wire.LiteralNumberOffset, nil)
		if err != nil {
			return nil, err
		}
		lit.Number = v
	case value.LiteralDuration:
		sec, err := d.mc.ReadU64(ptr + wire.LiteralDurSecOffset)
		if err != nil {
			return nil, err
		}
		nanos, err := d.mc.ReadU32(ptr + wire.LiteralDurNanosOffset)
		if err != nil {
			return nil, err
		}
		lit.Duration = value.Duration{Seconds: int64(sec), Nanos: nanos}
	case value.LiteralBool:
		b, err := d.mc.ReadU32(ptr + wire.LiteralBoolOffset)
		if err != nil {
			return nil, err
		}
		lit.Bool = b != 0
	case value.LiteralArray:
		p, l, err := d.readTransferredArray(ptr + wire.LiteralArrayPtrOffset)
		if err != nil {
			return nil, err
		}
		kinds, err := d.kindArray(p, l)
		if err != nil {
			return nil, err
		}
		lit.Array = kinds
	case value.LiteralObject:
		p, l, err := d.readTransferredArray(ptr + wire.LiteralObjectPtrOffset)
		if err != nil {
			return nil, err
		}
		entries, err := d.kindEntries(p, l)
		if err != nil {
			return nil, err
		}
		lit.Object = entries
	case value.LiteralDiscriminatedObject:
		kp, kl, err := d.readTransferredArray(ptr + wire.LiteralDiscKeyPtrOffset)
		if err != nil {
			return nil, err
		}
		key, err := d.strand(kp, kl, nil)
		if err != nil {
			return nil, err
		}
		vp, vl, err := d.readTransferredArray(ptr + wire.LiteralDiscVarsPtrOffset)
		if err != nil {
			return nil, err
		}
		vars, err := d.kindArray(vp, vl)
		if err != nil {
			return nil, err
		}
		lit.DiscKey = key
		lit.DiscVars = vars
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "literal tag")
	}
	d.freeBytes(ptr, wire.SizeWireLiteralRepr)
	return lit, nil
}

func (d *Decoder) kindEntries(ptr, length uint32) ([]value.KindEntry, error) {
	if length == 0 {
		return nil, nil
	}
	out := make([]value.KindEntry, length)
	for i := uint32(0); i < length; i++ {
		base := ptr + i*wire.SizeWireKindEntry
		kp, kl, err := d.readTransferredArray(base + wire.KindEntryKeyPtrOffset)
		if err != nil {
			return nil, err
		}
		key, err := d.strand(kp, kl, nil)
		if err != nil {
			return nil, err
		}
		k, err := d.readKindFrom(base + wire.KindEntryKindOffset)
		if err != nil {
			return nil, err
		}
		out[i] = value.KindEntry{Key: key, Kind: k}
	}
	d.freeBytes(ptr, length*wire.SizeWireKindEntry)
	return out, nil
}
