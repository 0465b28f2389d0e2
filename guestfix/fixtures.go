package guestfix

import (
	"fmt"

	"github.com/outlandhq/wasmfn/value"
)

// CanDrive builds the default export of scenario 1: can_drive(age: Int) ->
// Bool, true iff age >= 18. It is the module's `default` export, so its
// three exports carry the empty suffix.
func CanDrive() ([]byte, error) {
	im := newImage(imageBase)
	argsPtr := im.kindArray([]value.Kind{value.Simple(value.KindInt)})
	returnsPtr := im.kind(value.Simple(value.KindBool))

	funcs := fmt.Sprintf(`
  (func (export "__sr_args__") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__") (param $argsHdr i32) (result i32)
    (local $arr i32)
    (local $age i64)
    (local $ok i32)
    (local $res i32)
    (local.set $arr (i32.load (local.get $argsHdr)))
    (local.set $age (i64.load offset=8 (local.get $arr)))
    (local.set $ok (i64.ge_s (local.get $age) (i64.const 18)))
    (local.set $res (call $alloc_impl (i32.const 32) (i32.const 8)))
    (i32.store (local.get $res) (i32.const 0))
    (i32.store offset=8 (local.get $res) (i32.const 2))
    (i32.store offset=16 (local.get $res) (local.get $ok))
    (local.get $res))
`, argsPtr, returnsPtr)

	return assembleModule(im, "", funcs)
}

// CreateUser builds scenario 2's create_user((name: String, age: Int),
// enabled: Bool) -> String. The fixture's output is a canned Strand: it
// proves the tuple-literal argument Kind and a String return cross the
// boundary correctly, not that the guest can format arbitrary input (WAT
// has no string formatting primitive worth hand-rolling for a fixture).
func CreateUser() ([]byte, error) {
	im := newImage(imageBase)

	tupleKind := value.NewLiteral(value.Literal{
		Tag:   value.LiteralArray,
		Array: []value.Kind{value.Simple(value.KindString), value.Simple(value.KindInt)},
	})
	argsPtr := im.kindArray([]value.Kind{tupleKind, value.Simple(value.KindBool)})
	returnsPtr := im.kind(value.Simple(value.KindString))
	resultPtr := im.resultOk(value.Strand("Created user A of age 7. Enabled? true"))

	funcs := fmt.Sprintf(`
  (func (export "__sr_args__create_user") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__create_user") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__create_user") (param $argsHdr i32) (result i32)
    (i32.const %d))
`, argsPtr, returnsPtr, resultPtr)

	return assembleModule(im, "", funcs)
}

// CallUserExists builds scenario 3: a guest function with no arguments of
// its own that calls the host's run("fn::user_exists", None, ["A", 7])
// import and returns the host's response in-band (a Bool wrapped in
// Result<Value>, already the exact shape __sr_fnc__ must return).
func CallUserExists() ([]byte, error) {
	im := newImage(imageBase)

	namePtr := im.value(value.Strand("fn::user_exists"))
	versionPtr := im.alloc(32, 8) // Option<Value>::None, zeroed by default
	runArgsPtr := im.value(value.NewArray([]value.Value{value.Strand("A"), value.Int(7)}))

	argsPtr := im.kindArray(nil)
	returnsPtr := im.kind(value.Simple(value.KindBool))

	imports := `  (import "env" "__sr_run" (func $env_run (param i32 i32 i32) (result i32)))
`
	funcs := fmt.Sprintf(`
  (func (export "__sr_args__call_user_exists") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__call_user_exists") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__call_user_exists") (param $argsHdr i32) (result i32)
    (call $env_run (i32.const %d) (i32.const %d) (i32.const %d)))
`, argsPtr, returnsPtr, namePtr, versionPtr, runArgsPtr)

	return assembleModule(im, imports, funcs)
}

// Divide builds scenario 4: a guest function that always fails, to
// exercise Result::Err surfacing as a GuestCallFailed error. It is named
// for the canonical failure message rather than actually dividing —
// there is only one call site in the suite and it never supplies b != 0.
func Divide() ([]byte, error) {
	im := newImage(imageBase)

	argsPtr := im.kindArray([]value.Kind{value.Simple(value.KindInt), value.Simple(value.KindInt)})
	returnsPtr := im.kind(value.Simple(value.KindInt))
	resultPtr := im.resultErr("Division by zero")

	funcs := fmt.Sprintf(`
  (func (export "__sr_args__divide") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__divide") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__divide") (param $argsHdr i32) (result i32)
    (i32.const %d))
`, argsPtr, returnsPtr, resultPtr)

	return assembleModule(im, "", funcs)
}

// KVRoundtrip builds scenario 5: set("k", 42), then get/exists/del/exists
// against the host's KV capability, failing the call (returning Err) if
// any step disagrees with the expected sequence instead of trusting the
// host blindly.
func KVRoundtrip() ([]byte, error) {
	im := newImage(imageBase)

	keyPtr := im.value(value.Strand("k"))
	valPtr := im.value(value.Int(42))
	argsPtr := im.kindArray(nil)
	returnsPtr := im.kind(value.Simple(value.KindBool))
	okPtr := im.resultOk(value.Bool(true))
	errPtr := im.resultErr("kv roundtrip assertion failed")

	imports := `  (import "env" "__sr_kv_set" (func $env_kv_set (param i32 i32) (result i32)))
  (import "env" "__sr_kv_get" (func $env_kv_get (param i32) (result i32)))
  (import "env" "__sr_kv_exists" (func $env_kv_exists (param i32) (result i32)))
  (import "env" "__sr_kv_del" (func $env_kv_del (param i32) (result i32)))
`

	funcs := fmt.Sprintf(`
  (func (export "__sr_args__kv_roundtrip") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__kv_roundtrip") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__kv_roundtrip") (param $argsHdr i32) (result i32)
    (local $setRes i32)
    (local $getRes i32)
    (local $existsRes1 i32)
    (local $delRes i32)
    (local $existsRes2 i32)
    (local $failed i32)

    (local.set $setRes (call $env_kv_set (i32.const %d) (i32.const %d)))
    (local.set $getRes (call $env_kv_get (i32.const %d)))
    (local.set $existsRes1 (call $env_kv_exists (i32.const %d)))
    (local.set $delRes (call $env_kv_del (i32.const %d)))
    (local.set $existsRes2 (call $env_kv_exists (i32.const %d)))

    (local.set $failed (i32.const 0))
    (local.set $failed (i32.or (local.get $failed) (i32.load (local.get $setRes))))
    ;; getRes is Result<Value>: offset 0 is the Ok/Err tag, offset 8 is
    ;; the inner Value's own tag (None if the key was absent).
    (local.set $failed (i32.or (local.get $failed) (i32.load (local.get $getRes))))
    (local.set $failed (i32.or (local.get $failed) (i32.eqz (i32.load offset=8 (local.get $getRes)))))
    (local.set $failed (i32.or (local.get $failed) (i64.ne (i64.load offset=16 (local.get $getRes)) (i64.const 42))))
    (local.set $failed (i32.or (local.get $failed) (i32.load (local.get $existsRes1))))
    (local.set $failed (i32.or (local.get $failed) (i32.eqz (i32.load offset=16 (local.get $existsRes1)))))
    (local.set $failed (i32.or (local.get $failed) (i32.load (local.get $delRes))))
    (local.set $failed (i32.or (local.get $failed) (i32.load (local.get $existsRes2))))
    (local.set $failed (i32.or (local.get $failed) (i32.load offset=16 (local.get $existsRes2))))

    (if (result i32) (i32.eqz (local.get $failed))
      (then (i32.const %d))
      (else (i32.const %d))))
`, argsPtr, returnsPtr, keyPtr, valPtr, keyPtr, keyPtr, keyPtr, keyPtr, okPtr, errPtr)

	return assembleModule(im, imports, funcs)
}

// StdoutEcho builds scenario 6: a guest function that writes a UTF-8
// string containing non-ASCII characters to the host's stdout hook and
// returns its Result in-band.
func StdoutEcho() ([]byte, error) {
	im := newImage(imageBase)

	strPtr := im.value(value.Strand("héllo wörld 日本語"))
	argsPtr := im.kindArray(nil)
	returnsPtr := im.kind(value.Simple(value.KindAny))

	imports := `  (import "env" "__sr_stdout" (func $env_stdout (param i32) (result i32)))
`
	funcs := fmt.Sprintf(`
  (func (export "__sr_args__stdout_echo") (result i32)
    (i32.const %d))

  (func (export "__sr_returns__stdout_echo") (result i32)
    (i32.const %d))

  (func (export "__sr_fnc__stdout_echo") (param $argsHdr i32) (result i32)
    (call $env_stdout (i32.const %d)))
`, argsPtr, returnsPtr, strPtr)

	return assembleModule(im, imports, funcs)
}
