package value

import (
	"math"
	"sort"
	"unicode/utf8"
)

// Tag discriminates the variant held by a Value.
type Tag uint32

const (
	TagNone Tag = iota
	TagNull
	TagBool
	TagInt
	TagFloat
	TagStrand
	TagDuration
	TagDatetime
	TagUuid
	TagBytes
	TagArray
	TagObject
	TagThing
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagStrand:
		return "strand"
	case TagDuration:
		return "duration"
	case TagDatetime:
		return "datetime"
	case TagUuid:
		return "uuid"
	case TagBytes:
		return "bytes"
	case TagArray:
		return "array"
	case TagObject:
		return "object"
	case TagThing:
		return "thing"
	default:
		return "unknown"
	}
}

// Duration is a (seconds, nanoseconds) span, independent of any wall clock.
type Duration struct {
	Seconds int64
	Nanos   uint32
}

// Datetime is a (seconds, nanoseconds) instant since the Unix epoch.
type Datetime struct {
	Seconds int64
	Nanos   uint32
}

// Bounds of a reconstructible Datetime, in seconds since the Unix epoch:
// -262143-01-01T00:00:00Z through +262142-12-31T23:59:59Z.
const (
	minDatetimeSeconds = -8_334_601_228_800
	maxDatetimeSeconds = 8_210_266_876_799
)

// Valid reports whether the instant reconstructs to a real point in time:
// nanos must be a fraction of a second and seconds must lie within
// [minDatetimeSeconds, maxDatetimeSeconds].
func (d Datetime) Valid() bool {
	return d.Nanos < 1_000_000_000 &&
		d.Seconds >= minDatetimeSeconds && d.Seconds <= maxDatetimeSeconds
}

// Entry is one key/value pair of an Object, in declaration order.
type Entry struct {
	Key   string
	Value Value
}

// Thing is a table-plus-identifier record reference. ID must hold one of
// Int, Strand, Array or Object — never another Thing.
type Thing struct {
	Table string
	ID    Value
}

// Value is the tagged union of every runtime value that can cross the
// guest/host boundary. Only the fields relevant to Tag are meaningful.
type Value struct {
	Tag      Tag
	Bool     bool
	Int      int64
	Float    float64
	Strand   string
	Duration Duration
	Datetime Datetime
	Uuid     [16]byte
	Bytes    []byte
	Array    []Value
	Object   []Entry
	Thing    *Thing
}

// None constructs the None value (absence, as distinct from Null).
func None() Value { return Value{Tag: TagNone} }

// Null constructs the Null value.
func Null() Value { return Value{Tag: TagNull} }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{Tag: TagBool, Bool: b} }

// Int constructs a signed 64-bit integer value.
func Int(i int64) Value { return Value{Tag: TagInt, Int: i} }

// Float constructs a 64-bit floating point value.
func Float(f float64) Value { return Value{Tag: TagFloat, Float: f} }

// Strand constructs a UTF-8 string value. Panics if s is not valid UTF-8;
// callers that parse untrusted bytes should validate with utf8.ValidString
// first and surface an errors.InvalidUTF8 instead.
func Strand(s string) Value {
	if !utf8.ValidString(s) {
		panic("value: Strand requires valid UTF-8")
	}
	return Value{Tag: TagStrand, Strand: s}
}

// NewDuration constructs a Duration value.
func NewDuration(seconds int64, nanos uint32) Value {
	return Value{Tag: TagDuration, Duration: Duration{Seconds: seconds, Nanos: nanos}}
}

// NewDatetime constructs a Datetime value. The caller is responsible for
// checking Valid(); decoders should reject invalid instants explicitly.
func NewDatetime(seconds int64, nanos uint32) Value {
	return Value{Tag: TagDatetime, Datetime: Datetime{Seconds: seconds, Nanos: nanos}}
}

// NewUuid constructs a Uuid value from 16 raw bytes.
func NewUuid(b [16]byte) Value { return Value{Tag: TagUuid, Uuid: b} }

// NewBytes constructs a Bytes value.
func NewBytes(b []byte) Value { return Value{Tag: TagBytes, Bytes: b} }

// NewArray constructs an Array value.
func NewArray(items []Value) Value { return Value{Tag: TagArray, Array: items} }

// NewObject constructs an Object value from unordered entries, sorting by
// key and rejecting duplicates. Returns false if any key repeats.
func NewObject(entries []Entry) (Value, bool) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return Value{}, false
		}
	}
	return Value{Tag: TagObject, Object: sorted}, true
}

// NewThing constructs a Thing value. id must be Int, Strand, Array or
// Object; returns false otherwise.
func NewThing(table string, id Value) (Value, bool) {
	switch id.Tag {
	case TagInt, TagStrand, TagArray, TagObject:
	default:
		return Value{}, false
	}
	return Value{Tag: TagThing, Thing: &Thing{Table: table, ID: id}}, true
}

// Equal compares two values for semantic equality. Float comparison is
// bitwise (NaN equals NaN, +0 does not equal -0) per spec.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagNone, TagNull:
		return true
	case TagBool:
		return a.Bool == b.Bool
	case TagInt:
		return a.Int == b.Int
	case TagFloat:
		return floatBits(a.Float) == floatBits(b.Float)
	case TagStrand:
		return a.Strand == b.Strand
	case TagDuration:
		return a.Duration == b.Duration
	case TagDatetime:
		return a.Datetime == b.Datetime
	case TagUuid:
		return a.Uuid == b.Uuid
	case TagBytes:
		return bytesEqual(a.Bytes, b.Bytes)
	case TagArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case TagObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		for i := range a.Object {
			if a.Object[i].Key != b.Object[i].Key || !Equal(a.Object[i].Value, b.Object[i].Value) {
				return false
			}
		}
		return true
	case TagThing:
		if a.Thing == nil || b.Thing == nil {
			return a.Thing == b.Thing
		}
		return a.Thing.Table == b.Thing.Table && Equal(a.Thing.ID, b.Thing.ID)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// floatBits exposes the bit pattern so NaN compares equal to NaN, matching
// the spec's "equality follows bitwise" rule rather than IEEE-754 semantics.
func floatBits(f float64) uint64 {
	return math.Float64bits(f)
}
