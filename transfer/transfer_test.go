package transfer

import (
	"testing"

	"github.com/outlandhq/wasmfn/value"
)

func roundtripValue(t *testing.T, v value.Value) value.Value {
	t.Helper()
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	ptr, err := enc.Value(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(mem)
	got, err := dec.Value(ptr)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireNoLeaks(t, mem)
	return got
}

func TestValueRoundtrip(t *testing.T) {
	obj, _ := value.NewObject([]value.Entry{{Key: "a", Value: value.Int(1)}, {Key: "b", Value: value.Strand("x")}})
	thing, _ := value.NewThing("person", value.Int(7))

	tests := []struct {
		name string
		v    value.Value
	}{
		{"none", value.None()},
		{"null", value.Null()},
		{"bool", value.Bool(true)},
		{"int", value.Int(-42)},
		{"float", value.Float(3.5)},
		{"strand ascii", value.Strand("hello")},
		{"strand multibyte", value.Strand("héllo 世界")},
		{"empty strand", value.Strand("")},
		{"duration", value.NewDuration(10, 500)},
		{"datetime zero", value.NewDatetime(0, 0)},
		{"uuid", value.NewUuid([16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})},
		{"bytes", value.NewBytes([]byte{0xde, 0xad, 0xbe, 0xef})},
		{"empty bytes", value.NewBytes(nil)},
		{"array", value.NewArray([]value.Value{value.Int(1), value.Strand("x"), value.Bool(false)})},
		{"empty array", value.NewArray(nil)},
		{"object", obj},
		{"thing", thing},
		{"nested array of objects", value.NewArray([]value.Value{obj, obj})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundtripValue(t, tt.v)
			if !value.Equal(got, tt.v) {
				t.Errorf("roundtrip mismatch: got %+v, want %+v", got, tt.v)
			}
		})
	}
}

func TestValueRoundtripIdempotentDistinctAllocations(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	v := value.Strand("same")

	p1, err := enc.Value(v)
	if err != nil {
		t.Fatalf("encode 1: %v", err)
	}
	p2, err := enc.Value(v)
	if err != nil {
		t.Fatalf("encode 2: %v", err)
	}
	if p1 == p2 {
		t.Fatal("two encodes of the same value must not alias")
	}

	dec := NewDecoder(mem)
	v1, err := dec.Value(p1)
	if err != nil {
		t.Fatalf("decode 1: %v", err)
	}
	v2, err := dec.Value(p2)
	if err != nil {
		t.Fatalf("decode 2: %v", err)
	}
	if !value.Equal(v1, v2) {
		t.Error("decoded values should be semantically identical")
	}
	requireNoLeaks(t, mem)
}

func TestNoneVsNullDistinctOverWire(t *testing.T) {
	none := roundtripValue(t, value.None())
	null := roundtripValue(t, value.Null())
	if value.Equal(none, null) {
		t.Error("None and Null must remain distinct after roundtrip")
	}
}

func TestDatetimeOutOfRangeRejected(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	// Construct directly, bypassing NewDatetime's caller responsibility,
	// to exercise the decoder's validation.
	bad := value.Value{Tag: value.TagDatetime, Datetime: value.Datetime{Seconds: 1 << 62, Nanos: 1_000_000_000}}
	ptr, err := enc.Value(bad)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(mem)
	if _, err := dec.Value(ptr); err == nil {
		t.Error("expected decode to reject out-of-range datetime")
	}
}

func TestStrandInvalidUTF8Rejected(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	ptr, err := enc.bytes([]byte{0xff, 0xfe})
	if err != nil {
		t.Fatalf("encode raw bytes: %v", err)
	}
	// Hand-build a Strand-tagged WireValue pointing at invalid UTF-8.
	vPtr, err := mem.Alloc(24, 8)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	_ = mem.WriteU32(vPtr, uint32(value.TagStrand))
	_ = mem.WriteU32(vPtr+8, ptr.Ptr)
	_ = mem.WriteU32(vPtr+12, ptr.Len)

	dec := NewDecoder(mem)
	if _, err := dec.Value(vPtr); err == nil {
		t.Error("expected decode to reject invalid UTF-8 in a Strand")
	}
}

func roundtripKind(t *testing.T, k value.Kind) value.Kind {
	t.Helper()
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	ptr, err := enc.Kind(k)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(mem)
	got, err := dec.Kind(ptr)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireNoLeaks(t, mem)
	return got
}

func TestKindRoundtrip(t *testing.T) {
	length3 := uint64(3)
	args := []value.Kind{value.Simple(value.KindInt), value.Simple(value.KindBool)}
	ret := value.Simple(value.KindString)

	tests := []struct {
		name string
		k    value.Kind
	}{
		{"simple int", value.Simple(value.KindInt)},
		{"record any", value.NewRecord(nil)},
		{"record named", value.NewRecord([]string{"user", "post"})},
		{"geometry", value.NewGeometry([]string{"point", "polygon"})},
		{"option", value.NewOption(value.Simple(value.KindString))},
		{"option of option", value.NewOption(value.NewOption(value.Simple(value.KindBool)))},
		{"either", value.NewEither([]value.Kind{value.Simple(value.KindInt), value.Simple(value.KindString)})},
		{"set with length", value.NewSet(value.Simple(value.KindInt), &length3)},
		{"array no length", value.NewArrayKind(value.Simple(value.KindString), nil)},
		{"function", value.NewFunction(&args, &ret)},
		{"function bare", value.NewFunction(nil, nil)},
		{"literal array tuple", value.NewLiteral(value.Literal{Tag: value.LiteralArray, Array: []value.Kind{value.Simple(value.KindString), value.Simple(value.KindInt)}})},
		{"literal string", value.NewLiteral(value.Literal{Tag: value.LiteralString, String: "draft"})},
		{"literal object", value.NewLiteral(value.Literal{Tag: value.LiteralObject, Object: []value.KindEntry{{Key: "name", Kind: value.Simple(value.KindString)}}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundtripKind(t, tt.k)
			if !value.EqualKind(got, tt.k) {
				t.Errorf("roundtrip mismatch: got %+v, want %+v", got, tt.k)
			}
		})
	}
}

func TestValueArrayTransfer(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	items := []value.Value{value.Int(1), value.Strand("two"), value.Bool(true)}
	arr, err := enc.ValueArray(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec := NewDecoder(mem)
	got, err := dec.ValueArray(arr.Ptr, arr.Len)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(items))
	}
	for i := range items {
		if !value.Equal(got[i], items[i]) {
			t.Errorf("item %d mismatch: got %+v want %+v", i, got[i], items[i])
		}
	}
	requireNoLeaks(t, mem)
}

func TestOptionRoundtrip(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	dec := NewDecoder(mem)

	somePtr, err := enc.Option(ptrTo(value.Int(42)))
	if err != nil {
		t.Fatalf("encode some: %v", err)
	}
	some, err := dec.Option(somePtr)
	if err != nil {
		t.Fatalf("decode some: %v", err)
	}
	if some == nil || !value.Equal(*some, value.Int(42)) {
		t.Errorf("expected Some(42), got %v", some)
	}

	nonePtr, err := enc.Option(nil)
	if err != nil {
		t.Fatalf("encode none: %v", err)
	}
	none, err := dec.Option(nonePtr)
	if err != nil {
		t.Fatalf("decode none: %v", err)
	}
	if none != nil {
		t.Errorf("expected None, got %v", *none)
	}
	requireNoLeaks(t, mem)
}

func TestResultOkAndErr(t *testing.T) {
	mem := newFakeMemory()
	enc := NewEncoder(mem)
	dec := NewDecoder(mem)

	okPtr, err := enc.Result(value.Bool(true), "", false)
	if err != nil {
		t.Fatalf("encode ok: %v", err)
	}
	ok, err := dec.Result(okPtr)
	if err != nil {
		t.Fatalf("decode ok: %v", err)
	}
	if !value.Equal(ok, value.Bool(true)) {
		t.Errorf("expected Ok(true), got %+v", ok)
	}

	errPtr, encErr := enc.Result(value.Value{}, "Division by zero", true)
	if encErr != nil {
		t.Fatalf("encode err: %v", encErr)
	}
	_, decErr := dec.Result(errPtr)
	if decErr == nil {
		t.Fatal("expected decode to surface Err")
	}
	if got := decErr.Error(); !containsSuffix(got, "Division by zero") {
		t.Errorf("error message %q should end with the guest message", got)
	}
	requireNoLeaks(t, mem)
}

func ptrTo(v value.Value) *value.Value { return &v }

func containsSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
