package wat

import (
	"strings"
	"testing"
)

// readULEB decodes one ULEB128 value starting at b[0], returning its value,
// the number of bytes consumed, and whether b held a complete encoding.
func readULEB(b []byte) (v uint64, n int, ok bool) {
	var shift uint
	for i, c := range b {
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, true
		}
		shift += 7
	}
	return 0, 0, false
}

// sections walks a compiled module's section framing, failing the test if
// the binary doesn't start with the wasm magic/version, if any section's
// declared length doesn't exactly fit the remaining bytes, if section IDs
// aren't in the strictly increasing order the format requires, or if any
// byte is left over once the last section ends. It returns the section IDs
// seen, in order.
func sections(t *testing.T, bin []byte) []byte {
	t.Helper()
	if len(bin) < 8 {
		t.Fatalf("module too short: %d bytes", len(bin))
	}
	if string(bin[:4]) != "\x00asm" {
		t.Fatalf("bad magic: % x", bin[:4])
	}
	if string(bin[4:8]) != "\x01\x00\x00\x00" {
		t.Fatalf("bad version: % x", bin[4:8])
	}

	var ids []byte
	pos := 8
	lastID := -1
	for pos < len(bin) {
		id := bin[pos]
		pos++
		length, n, ok := readULEB(bin[pos:])
		if !ok {
			t.Fatalf("truncated section length after id %d", id)
		}
		pos += n
		if pos+int(length) > len(bin) {
			t.Fatalf("section %d declares length %d but only %d bytes remain", id, length, len(bin)-pos)
		}
		if int(id) <= lastID {
			t.Fatalf("section id %d out of order after %d", id, lastID)
		}
		lastID = int(id)
		ids = append(ids, id)
		pos += int(length)
	}
	if pos != len(bin) {
		t.Fatalf("%d trailing bytes after last section", len(bin)-pos)
	}
	return ids
}

func hasID(ids []byte, id byte) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestCompileEmptyModule(t *testing.T) {
	bin, err := Compile("(module)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(bin) != 8 {
		t.Fatalf("expected an 8-byte header with no sections, got %d bytes", len(bin))
	}
	sections(t, bin)
}

func TestCompileSectionFraming(t *testing.T) {
	const src = `(module
  (memory (export "memory") 1)
  (global $bump (mut i32) (i32.const 16))
  (data (i32.const 0) "\01\02")
  (import "env" "host_fn" (func $host_fn (param i32) (result i32)))
  (func (export "run") (param $x i32) (result i32)
    (call $host_fn (local.get $x))))`

	bin, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ids := sections(t, bin)

	// Type(1), Import(2), Function(3), Memory(5), Global(6), Export(7),
	// Code(10), Data(11) — every section this module should produce,
	// exactly once each, and in ascending order (checked by sections()).
	want := []byte{1, 2, 3, 5, 6, 7, 10, 11}
	if len(ids) != len(want) {
		t.Fatalf("got sections %v, want %v", ids, want)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("section %d: got id %d, want %d", i, ids[i], id)
		}
	}
}

func TestCompileConstructCoverage(t *testing.T) {
	tests := []struct {
		name    string
		wat     string
		wantIDs []byte
	}{
		{
			name:    "memory_and_data",
			wat:     `(module (memory (export "memory") 2) (data (i32.const 0) "\68\69"))`,
			wantIDs: []byte{5, 11},
		},
		{
			name:    "mutable_global",
			wat:     `(module (global $g (mut i32) (i32.const 42)))`,
			wantIDs: []byte{6},
		},
		{
			name: "arithmetic_and_bitwise",
			wat: `(module (func (export "f") (param $a i32) (param $b i32) (result i32)
				(i32.xor (i32.and (local.get $a) (local.get $b)) (i32.or (i32.add (local.get $a) (local.get $b)) (i32.sub (local.get $a) (local.get $b))))))`,
			wantIDs: []byte{1, 3, 7, 10},
		},
		{
			name: "comparisons",
			wat: `(module (func (export "f") (param $a i64) (result i32)
				(i32.eqz (i64.ge_s (local.get $a) (i64.const 0)))))`,
			wantIDs: []byte{1, 3, 7, 10},
		},
		{
			name: "ne",
			wat: `(module (func (export "f") (param $a i64) (param $b i64) (result i32)
				(i64.ne (local.get $a) (local.get $b))))`,
			wantIDs: []byte{1, 3, 7, 10},
		},
		{
			name: "load_store_with_offset",
			wat: `(module (memory 1) (func (export "f") (param $p i32) (result i32)
				(i32.store offset=4 (local.get $p) (i32.const 1))
				(i64.load offset=8 (local.get $p))
				(i32.load (local.get $p))))`,
			wantIDs: []byte{1, 3, 5, 7, 10},
		},
		{
			name: "if_then_else",
			wat: `(module (func (export "f") (param $c i32) (result i32)
				(if (result i32) (local.get $c)
					(then (i32.const 1))
					(else (i32.const 0)))))`,
			wantIDs: []byte{1, 3, 7, 10},
		},
		{
			name: "call_import",
			wat: `(module
				(import "env" "sum" (func $sum (param i32 i32) (result i32)))
				(func (export "f") (param $a i32) (param $b i32) (result i32)
					(call $sum (local.get $a) (local.get $b))))`,
			wantIDs: []byte{1, 2, 3, 7, 10},
		},
		{
			name: "positional_locals",
			wat:  `(module (func (export "add") (param i32 i32) (result i32) (i32.add (local.get 0) (local.get 1))))`,
			wantIDs: []byte{1, 3, 7, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, err := Compile(tt.wat)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			ids := sections(t, bin)
			for _, want := range tt.wantIDs {
				if !hasID(ids, want) {
					t.Errorf("section %d missing from %v", want, ids)
				}
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name, wat, wantErr string
	}{
		{"not_a_module", "(func)", "top-level form must be (module ...)"},
		{"unclosed_paren", "(module", "unexpected end of input"},
		{"trailing_input", "(module) (module)", "unexpected trailing input"},
		{"unknown_top_level_form", `(module (table 1 funcref))`, "unsupported module-level form"},
		{"unknown_instruction", "(module (func (bogus)))", "unsupported instruction"},
		{"unknown_value_type", "(module (func (param $x f32)))", "unsupported value type"},
		{"unknown_call_target", "(module (func (call $missing)))", "call to unknown function"},
		{"unknown_local", "(module (func (local.get $missing)))", "unknown identifier"},
		{"named_param_extra_type", "(module (func (param $x i32 i32)))", "must declare exactly one type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.wat)
			if err == nil {
				t.Fatal("expected an error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
