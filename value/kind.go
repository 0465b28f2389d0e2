package value

// KindTag discriminates the variant held by a Kind.
type KindTag uint32

const (
	KindAny KindTag = iota
	KindNull
	KindBool
	KindBytes
	KindDatetime
	KindDecimal
	KindDuration
	KindFloat
	KindInt
	KindNumber
	KindObject
	KindPoint
	KindString
	KindUuid
	KindRegex
	KindRecord
	KindGeometry
	KindOption
	KindEither
	KindSet
	KindArray
	KindFunction
	KindRange
	KindLiteral
)

func (t KindTag) String() string {
	names := [...]string{
		"any", "null", "bool", "bytes", "datetime", "decimal", "duration",
		"float", "int", "number", "object", "point", "string", "uuid",
		"regex", "record", "geometry", "option", "either", "set", "array",
		"function", "range", "literal",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// LiteralTag discriminates the payload of a Literal Kind.
type LiteralTag uint32

const (
	LiteralString LiteralTag = iota
	LiteralNumber
	LiteralDuration
	LiteralBool
	LiteralArray
	LiteralObject
	LiteralDiscriminatedObject
)

// Literal is the payload of KindLiteral.
type Literal struct {
	Tag LiteralTag

	String   string
	Number   Value // TagInt or TagFloat
	Duration Duration
	Bool     bool
	Array    []Kind          // LiteralArray: heterogeneous tuple shape
	Object   []KindEntry     // LiteralObject: ordered key -> Kind
	DiscKey  string          // LiteralDiscriminatedObject: discriminant field name
	DiscVars []Kind          // LiteralDiscriminatedObject: candidate shapes, each typically KindObject/LiteralObject
}

// KindEntry is one key/Kind pair of a Literal object shape, in declaration
// order (mirrors value.Entry).
type KindEntry struct {
	Key  string
	Kind Kind
}

// FunctionSig is the payload of KindFunction: both the argument list and
// the return Kind are optional (nil means "unspecified").
type FunctionSig struct {
	Args    *[]Kind
	Returns *Kind
}

// Kind is the type descriptor that accompanies a Value. Like Value it is a
// tagged struct; composite variants reference nested Kinds through
// pointers/slices to keep the zero value usable for the simple variants.
type Kind struct {
	Tag KindTag

	// Record: accepted table names. Empty means "any table".
	Tables []string
	// Geometry: accepted geometry discriminators. Empty means "any".
	GeometryTags []string
	// Option: the wrapped Kind.
	Option *Kind
	// Either: the candidate Kinds.
	Either []Kind
	// Set/Array: element Kind and an optional fixed length.
	Elem   *Kind
	Length *uint64
	// Function: signature.
	Function *FunctionSig
	// Literal: payload.
	Literal *Literal
}

// Simple constructs a Kind with no payload (Any, Null, Bool, Bytes,
// Datetime, Decimal, Duration, Float, Int, Number, Object, Point, String,
// Uuid, Regex, Range).
func Simple(tag KindTag) Kind { return Kind{Tag: tag} }

// NewRecord constructs a Record Kind. An empty tables list means "any
// table is accepted".
func NewRecord(tables []string) Kind { return Kind{Tag: KindRecord, Tables: tables} }

// NewGeometry constructs a Geometry Kind.
func NewGeometry(tags []string) Kind { return Kind{Tag: KindGeometry, GeometryTags: tags} }

// NewOption constructs an Option(inner) Kind. Option(Option(X)) is
// representable (not rejected) per spec §3, though discouraged.
func NewOption(inner Kind) Kind { return Kind{Tag: KindOption, Option: &inner} }

// NewEither constructs an Either(variants) Kind.
func NewEither(variants []Kind) Kind { return Kind{Tag: KindEither, Either: variants} }

// NewSet constructs a Set(inner, length?) Kind.
func NewSet(inner Kind, length *uint64) Kind {
	return Kind{Tag: KindSet, Elem: &inner, Length: length}
}

// NewArrayKind constructs an Array(inner, length?) Kind.
func NewArrayKind(inner Kind, length *uint64) Kind {
	return Kind{Tag: KindArray, Elem: &inner, Length: length}
}

// NewFunction constructs a Function(args?, returns?) Kind.
func NewFunction(args *[]Kind, returns *Kind) Kind {
	return Kind{Tag: KindFunction, Function: &FunctionSig{Args: args, Returns: returns}}
}

// NewLiteral constructs a Literal Kind from an already-built Literal.
func NewLiteral(lit Literal) Kind { return Kind{Tag: KindLiteral, Literal: &lit} }

// EqualKind compares two Kinds structurally.
func EqualKind(a, b Kind) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case KindRecord:
		return stringsEqual(a.Tables, b.Tables)
	case KindGeometry:
		return stringsEqual(a.GeometryTags, b.GeometryTags)
	case KindOption:
		return equalKindPtr(a.Option, b.Option)
	case KindEither:
		return equalKindSlice(a.Either, b.Either)
	case KindSet, KindArray:
		if !equalKindPtr(a.Elem, b.Elem) {
			return false
		}
		return equalLengthPtr(a.Length, b.Length)
	case KindFunction:
		return equalFunctionSig(a.Function, b.Function)
	case KindLiteral:
		return equalLiteral(a.Literal, b.Literal)
	default:
		return true
	}
}

func stringsEqual(a, b []string) bool {
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

func equalKindPtr(a, b *Kind) bool {
	if a == nil || b == nil {
		return a == b
	}
	return EqualKind(*a, *b)
}

func equalLengthPtr(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalKindSlice(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualKind(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalFunctionSig(a, b *FunctionSig) bool {
	if a == nil || b == nil {
		return a == b
	}
	if (a.Args == nil) != (b.Args == nil) {
		return false
	}
	if a.Args != nil && !equalKindSlice(*a.Args, *b.Args) {
		return false
	}
	return equalKindPtr(a.Returns, b.Returns)
}

func equalLiteral(a, b *Literal) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case LiteralString:
		return a.String == b.String
	case LiteralNumber:
		return Equal(a.Number, b.Number)
	case LiteralDuration:
		return a.Duration == b.Duration
	case LiteralBool:
		return a.Bool == b.Bool
	case LiteralArray:
		return equalKindSlice(a.Array, b.Array)
	case LiteralObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		for i := range a.Object {
			if a.Object[i].Key != b.Object[i].Key || !EqualKind(a.Object[i].Kind, b.Object[i].Kind) {
				return false
			}
		}
		return true
	case LiteralDiscriminatedObject:
		return a.DiscKey == b.DiscKey && equalKindSlice(a.DiscVars, b.DiscVars)
	default:
		return true
	}
}

// KindOf returns the Kind that classifies v's runtime shape. Composite
// Kinds (Option, Literal, Record discriminators) cannot be inferred from a
// bare Value and are never returned here; this only derives the leaf Kind.
func KindOf(v Value) Kind {
	switch v.Tag {
	case TagNone, TagNull:
		return Simple(KindNull)
	case TagBool:
		return Simple(KindBool)
	case TagInt:
		return Simple(KindInt)
	case TagFloat:
		return Simple(KindFloat)
	case TagStrand:
		return Simple(KindString)
	case TagDuration:
		return Simple(KindDuration)
	case TagDatetime:
		return Simple(KindDatetime)
	case TagUuid:
		return Simple(KindUuid)
	case TagBytes:
		return Simple(KindBytes)
	case TagArray:
		return Kind{Tag: KindArray}
	case TagObject:
		return Simple(KindObject)
	case TagThing:
		return NewRecord(nil)
	default:
		return Simple(KindAny)
	}
}
