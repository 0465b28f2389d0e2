package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseDecode,
				Kind:     KindUnexpectedType,
				Path:     []string{"user", "address", "zip"},
				GoType:   "string",
				WireKind: "number",
				Detail:   "cannot convert",
			},
			contains: []string{"[decode]", "unexpected_type", "user.address.zip", "string", "number", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindLayoutViolation,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindUnexpectedType,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindUnexpectedType}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindUnexpectedType}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseEncode, Kind: KindUnexpectedType}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindUnexpectedType).
		Path("user", "name").
		GoType("string").
		WireKind("number").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindUnexpectedType {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnexpectedType)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.WireKind != "number" {
		t.Errorf("WireKind = %v, want 'number'", err.WireKind)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnexpectedType", func(t *testing.T) {
		err := UnexpectedType([]string{"field"}, "int", "strand")
		if err.Kind != KindUnexpectedType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnexpectedType)
		}
		if err.GoType != "int" || err.WireKind != "strand" {
			t.Errorf("GoType=%v WireKind=%v", err.GoType, err.WireKind)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		data := []byte{0xff, 0xfe}
		err := InvalidUTF8(PhaseDecode, []string{"str"}, data)
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
	})

	t.Run("DatetimeOutOfRange", func(t *testing.T) {
		err := DatetimeOutOfRange([]string{"ts"}, 1<<62, 0)
		if err.Kind != KindDatetimeRange {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDatetimeRange)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseEncode, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !containsSubstring(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("InvalidDiscriminant", func(t *testing.T) {
		err := InvalidDiscriminant(PhaseDecode, []string{"variant"}, 5, 3)
		if err.Kind != KindInvalidDiscrim {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidDiscrim)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseEncode, "recursive resource types")
		if err.Kind != KindUnsupportedKind {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedKind)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseEncode, []string{"ptr"}, "*User")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
		if err.GoType != "*User" {
			t.Errorf("GoType = %v, want '*User'", err.GoType)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "u8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseInvoke, "function", "can_drive")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		err := InvalidArgs(2, 1)
		if err.Kind != KindInvalidArgs {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArgs)
		}
	})

	t.Run("HostCallFailed", func(t *testing.T) {
		err := HostCallFailed("kv.get", errors.New("backend unavailable"))
		if err.Kind != KindHostCallFailed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindHostCallFailed)
		}
		if !containsSubstring(err.Detail, "kv.get") {
			t.Errorf("Detail = %v, should contain capability name", err.Detail)
		}
	})

	t.Run("GuestCallFailed", func(t *testing.T) {
		err := GuestCallFailed("can_drive", "age must be positive")
		if err.Kind != KindGuestCallFailed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindGuestCallFailed)
		}
	})
}

func TestMissingExports(t *testing.T) {
	err := &MissingExports{Names: []string{"memory", "alloc", "free"}}
	msg := err.Error()
	if !containsSubstring(msg, "memory") || !containsSubstring(msg, "alloc") || !containsSubstring(msg, "free") {
		t.Errorf("error should list all missing exports, got: %s", msg)
	}
	if !errors.Is(err, &MissingExports{}) {
		t.Error("errors.Is should match MissingExports")
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
