package wire

// TransferredArray is the host-side handle for a `{ ptr: u32, len: u32 }`
// block in guest memory: len counts T elements starting at ptr. It carries
// no behavior of its own — encode/decode logic lives in the transfer
// package — but gives call sites a typed handle instead of two bare u32s.
type TransferredArray[T any] struct {
	Ptr uint32
	Len uint32
}

// SizeTransferredArray is the wire size of any TransferredArray<T>: two
// packed u32 fields regardless of T.
const SizeTransferredArray = 8

// Option tags, per spec §3: `{ tag: u32 (0=None,1=Some), payload: T }`.
const (
	OptionNone uint32 = 0
	OptionSome uint32 = 1
)

// Result tags, per spec §3: `{ tag: u32 (0=Ok,1=Err), payload: T | Strand }`.
const (
	ResultOk  uint32 = 0
	ResultErr uint32 = 1
)

// SizeWireOptionOrResult is the wire size of Option<Value> and
// Result<Value>: a u32 tag padded to AlignWireValue, followed by one
// inline WireValue payload. The tag occupies the first 4 bytes of the
// SizeTransferredArray-sized header slot so the payload starts 8-byte
// aligned.
const SizeWireOptionOrResult = SizeTransferredArray + SizeWireValue

// Bound tags for Range<T> = { start: Bound<T>, end: Bound<T> }.
const (
	BoundUnbounded uint32 = 0
	BoundIncluded  uint32 = 1
	BoundExcluded  uint32 = 2
)

// SizeBoundStrand is the wire size of a Bound<T> where T is itself at most
// SizeWireValue-payload sized; we fix T to Strand (8 bytes) for the KV
// range operations, the only Range<T> the spec actually transfers.
const SizeBoundStrand = 4 /* tag */ + 4 /* pad */ + SizeTransferredArray // tag, pad, Strand payload

// SizeRangeStrand is the wire size of Range<Strand>: two Bound<Strand>.
const SizeRangeStrand = 2 * SizeBoundStrand

// WireValue is the fixed 24-byte layout of a transferred value.Value:
// a u32 discriminant (padded to 8-byte alignment) followed by a 16-byte
// payload slot, sized to the largest variant (Uuid's 16 raw bytes, or
// Duration/Datetime's seconds+nanos padded to 16).
const (
	ValueTagOffset     = 0
	ValuePayloadOffset = 8
	SizeWireValue      = 24
	AlignWireValue     = 8
)

// Payload sub-layouts within WireValue's 16-byte payload slot, all
// relative to ValuePayloadOffset.
const (
	ValueBoolOffset        = 0 // u32, 0 or 1
	ValueIntOffset         = 0 // i64
	ValueFloatOffset       = 0 // f64
	ValueArrayPtrOffset    = 0 // TransferredArray<WireValue>: ptr@0, len@4
	ValueArrayLenOffset    = 4
	ValueObjectPtrOffset   = 0 // TransferredArray<WireKeyValuePair>: ptr@0, len@4
	ValueObjectLenOffset   = 4
	ValueStrandPtrOffset   = 0 // TransferredArray<u8>: ptr@0, len@4
	ValueStrandLenOffset   = 4
	ValueDurSecondsOffset  = 0 // i64
	ValueDurNanosOffset    = 8 // u32
	ValueUuidOffset        = 0 // 16 raw bytes
	ValueThingPtrOffset    = 0 // u32 pointer to a heap WireThing
)

// WireThing is the heap layout referenced by a Thing-tagged WireValue's
// payload pointer: a Strand (table name) followed by a nested WireValue
// restricted to Int/Strand/Array/Object (never another Thing).
const (
	ThingTablePtrOffset = 0 // TransferredArray<u8>: ptr@0, len@4
	ThingTableLenOffset = 4
	ThingIDOffset       = 8 // WireValue, 24 bytes
	SizeWireThing       = ThingIDOffset + SizeWireValue
)

// KeyValuePair = { key: Strand, value: Value }, the element type of an
// Object's TransferredArray.
const (
	KVPairKeyPtrOffset = 0 // TransferredArray<u8>: ptr@0, len@4
	KVPairKeyLenOffset = 4
	KVPairValueOffset  = 8 // WireValue, 24 bytes
	SizeKeyValuePair   = KVPairValueOffset + SizeWireValue
)

// WireKind is the fixed 16-byte layout of a transferred value.Kind: a u32
// discriminant followed by an 8-byte payload slot. Non-recursive payloads
// (Record/Geometry table lists, a nested Either list) fit directly;
// recursive shapes (Option, Set, Array, Function, Literal) store a pointer
// to a heap-allocated Repr struct in the first 4 bytes of the payload.
const (
	KindTagOffset     = 0
	KindPayloadOffset = 8
	SizeWireKind      = 16
	AlignWireKind     = 8
)

const (
	KindListPtrOffset = 0 // TransferredArray<Strand> or TransferredArray<WireKind>: ptr@0, len@4
	KindListLenOffset = 4
	KindReprPtrOffset = 0 // u32 pointer to a heap Repr, for recursive Kinds
)

// WireSetArrayRepr is the heap layout for Set(inner, length?) and
// Array(inner, length?): the element Kind embedded inline, then an
// optional-length tag and value.
const (
	SetArrayElemOffset      = 0  // WireKind, 16 bytes
	SetArrayHasLengthOffset = 16 // u32
	SetArrayLengthOffset    = 24 // u64 (8-byte aligned)
	SizeWireSetArrayRepr    = 32
)

// WireFunctionRepr is the heap layout for Function(args?, returns?).
const (
	FunctionHasArgsOffset    = 0  // u32
	FunctionArgsPtrOffset    = 4  // TransferredArray<WireKind>: ptr@4, len@8
	FunctionArgsLenOffset    = 8
	FunctionHasReturnsOffset = 12 // u32
	FunctionReturnsOffset    = 16 // WireKind, 16 bytes
	SizeWireFunctionRepr     = 32
)

// WireLiteralRepr is the heap layout for every Literal payload shape. Only
// the fields relevant to Tag are meaningful; the repr is one fixed struct
// rather than a per-tag union to keep the byte contract simple.
const (
	LiteralTagOffset        = 0  // u32
	LiteralStringPtrOffset  = 8  // TransferredArray<u8>: ptr@8, len@12
	LiteralStringLenOffset  = 12
	LiteralNumberOffset     = 16 // WireValue, 24 bytes (16..40)
	LiteralDurSecOffset     = 40 // i64
	LiteralDurNanosOffset   = 48 // u32
	LiteralBoolOffset       = 52 // u32
	LiteralArrayPtrOffset   = 56 // TransferredArray<WireKind>: ptr@56, len@60
	LiteralArrayLenOffset   = 60
	LiteralObjectPtrOffset  = 64 // TransferredArray<WireKindEntry>: ptr@64, len@68
	LiteralObjectLenOffset  = 68
	LiteralDiscKeyPtrOffset = 72 // TransferredArray<u8>: ptr@72, len@76
	LiteralDiscKeyLenOffset = 76
	LiteralDiscVarsPtrOffset = 80 // TransferredArray<WireKind>: ptr@80, len@84
	LiteralDiscVarsLenOffset = 84
	SizeWireLiteralRepr      = 88
)

// WireKindEntry is the element type of a Literal object shape's
// TransferredArray: { key: Strand, kind: Kind }.
const (
	KindEntryKeyPtrOffset = 0 // TransferredArray<u8>: ptr@0, len@4
	KindEntryKeyLenOffset = 4
	KindEntryKindOffset   = 8 // WireKind, 16 bytes
	SizeWireKindEntry     = KindEntryKindOffset + SizeWireKind
)
