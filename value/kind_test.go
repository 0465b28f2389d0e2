package value

import "testing"

func TestEqualKindSimple(t *testing.T) {
	if !EqualKind(Simple(KindInt), Simple(KindInt)) {
		t.Error("same simple kind should be equal")
	}
	if EqualKind(Simple(KindInt), Simple(KindFloat)) {
		t.Error("different simple kinds should not be equal")
	}
}

func TestEqualKindOption(t *testing.T) {
	a := NewOption(Simple(KindString))
	b := NewOption(Simple(KindString))
	c := NewOption(Simple(KindInt))
	if !EqualKind(a, b) {
		t.Error("identical options should be equal")
	}
	if EqualKind(a, c) {
		t.Error("different inner kinds should not be equal")
	}
}

func TestOptionOfOptionRepresentable(t *testing.T) {
	// Per spec §3, Option(Option(X)) is discouraged but representable.
	nested := NewOption(NewOption(Simple(KindBool)))
	if nested.Tag != KindOption || nested.Option.Tag != KindOption {
		t.Fatal("nested Option must construct without rejection")
	}
}

func TestEqualKindArrayWithLength(t *testing.T) {
	l3 := uint64(3)
	l4 := uint64(4)
	a := NewArrayKind(Simple(KindInt), &l3)
	b := NewArrayKind(Simple(KindInt), &l3)
	c := NewArrayKind(Simple(KindInt), &l4)
	d := NewArrayKind(Simple(KindInt), nil)
	if !EqualKind(a, b) {
		t.Error("same element kind and length should be equal")
	}
	if EqualKind(a, c) {
		t.Error("different lengths should not be equal")
	}
	if EqualKind(a, d) {
		t.Error("nil vs set length should not be equal")
	}
}

func TestEqualKindFunction(t *testing.T) {
	args := []Kind{Simple(KindInt), Simple(KindBool)}
	ret := Simple(KindString)
	a := NewFunction(&args, &ret)
	b := NewFunction(&args, &ret)
	if !EqualKind(a, b) {
		t.Error("identical function signatures should be equal")
	}
	c := NewFunction(nil, nil)
	if EqualKind(a, c) {
		t.Error("differing function signatures should not be equal")
	}
}

func TestLiteralArrayIsHeterogeneousTuple(t *testing.T) {
	lit := NewLiteral(Literal{Tag: LiteralArray, Array: []Kind{Simple(KindString), Simple(KindInt)}})
	if lit.Literal.Tag != LiteralArray || len(lit.Literal.Array) != 2 {
		t.Fatal("literal array shape not preserved")
	}
}

func TestKindOfLeafVariants(t *testing.T) {
	tests := []struct {
		v    Value
		want KindTag
	}{
		{None(), KindNull},
		{Null(), KindNull},
		{Bool(true), KindBool},
		{Int(1), KindInt},
		{Float(1), KindFloat},
		{Strand("x"), KindString},
		{NewBytes([]byte{1}), KindBytes},
		{NewUuid([16]byte{}), KindUuid},
	}
	for _, tt := range tests {
		if got := KindOf(tt.v); got.Tag != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.v.Tag, got.Tag, tt.want)
		}
	}
}

func TestRecordEmptyTablesMeansAny(t *testing.T) {
	r := NewRecord(nil)
	if len(r.Tables) != 0 {
		t.Fatal("expected empty tables list")
	}
	if !EqualKind(r, NewRecord(nil)) {
		t.Error("two any-table records should be equal")
	}
}
