package value

import (
	"math"
	"testing"
)

func TestNoneNullDistinct(t *testing.T) {
	if Equal(None(), Null()) {
		t.Fatal("None and Null must not be equal")
	}
	if None().Tag == Null().Tag {
		t.Fatal("None and Null must carry distinct tags")
	}
}

func TestEqualPrimitives(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int equal", Int(7), Int(7), true},
		{"int differ", Int(7), Int(8), false},
		{"bool equal", Bool(true), Bool(true), true},
		{"strand equal", Strand("hi"), Strand("hi"), true},
		{"strand differ", Strand("hi"), Strand("bye"), false},
		{"float nan equals nan", Float(math.NaN()), Float(math.NaN()), true},
		{"float zero signs differ", Float(0), Float(math.Copysign(0, -1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatetimeValid(t *testing.T) {
	if !(Datetime{Seconds: 0, Nanos: 0}).Valid() {
		t.Error("(0, 0) should be valid")
	}
	if (Datetime{Seconds: math.MaxInt64, Nanos: 1_000_000_000}).Valid() {
		t.Error("nanos >= 1e9 should be invalid")
	}
}

func TestNewObjectOrdersAndRejectsDuplicates(t *testing.T) {
	obj, ok := NewObject([]Entry{
		{Key: "b", Value: Int(2)},
		{Key: "a", Value: Int(1)},
	})
	if !ok {
		t.Fatal("expected success")
	}
	if obj.Object[0].Key != "a" || obj.Object[1].Key != "b" {
		t.Errorf("keys not sorted: %+v", obj.Object)
	}

	_, ok = NewObject([]Entry{{Key: "a", Value: Int(1)}, {Key: "a", Value: Int(2)}})
	if ok {
		t.Error("expected duplicate key to be rejected")
	}
}

func TestEmptyArrayAndObjectRoundtripEqual(t *testing.T) {
	a1 := NewArray(nil)
	a2 := NewArray([]Value{})
	if !Equal(a1, a2) {
		t.Error("empty arrays should compare equal")
	}

	o1, ok := NewObject(nil)
	if !ok {
		t.Fatal("empty object should construct")
	}
	o2, ok := NewObject([]Entry{})
	if !ok {
		t.Fatal("empty object should construct")
	}
	if !Equal(o1, o2) {
		t.Error("empty objects should compare equal")
	}
}

func TestNewThingRejectsNestedThing(t *testing.T) {
	inner, ok := NewThing("a", Int(1))
	if !ok {
		t.Fatal("expected valid thing")
	}
	if _, ok := NewThing("b", inner); ok {
		t.Error("Thing.ID must not accept another Thing")
	}
}

func TestNewThingAcceptsIDVariants(t *testing.T) {
	for _, id := range []Value{Int(1), Strand("x"), NewArray([]Value{Int(1)})} {
		if _, ok := NewThing("t", id); !ok {
			t.Errorf("Thing should accept %v as id", id.Tag)
		}
	}
	if _, ok := NewThing("t", Bool(true)); ok {
		t.Error("Thing should reject Bool as id")
	}
}

func TestArrayAndObjectEquality(t *testing.T) {
	a1 := NewArray([]Value{Int(1), Strand("x")})
	a2 := NewArray([]Value{Int(1), Strand("x")})
	a3 := NewArray([]Value{Int(1), Strand("y")})
	if !Equal(a1, a2) {
		t.Error("identical arrays should be equal")
	}
	if Equal(a1, a3) {
		t.Error("different arrays should not be equal")
	}
}
