package host_test

import (
	"context"
	"strings"
	"testing"

	"github.com/outlandhq/wasmfn/capability"
	"github.com/outlandhq/wasmfn/guestfix"
	"github.com/outlandhq/wasmfn/host"
	"github.com/outlandhq/wasmfn/value"
)

// newTestController loads wasmBytes against a fresh Runtime backed by rh
// and registers cleanup for both.
func newTestController(t *testing.T, wasmBytes []byte, rh *capability.RecordingHost) *host.Controller {
	t.Helper()
	ctx := context.Background()

	rt, err := host.NewRuntime(ctx)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if err := rt.InstallCapabilities(ctx, rh); err != nil {
		t.Fatalf("InstallCapabilities: %v", err)
	}
	mod, err := rt.LoadModule(ctx, wasmBytes)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	ctrl, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	t.Cleanup(func() {
		ctrl.Close(ctx)
		rt.Close(ctx)
	})
	return ctrl
}

func hasCall(rh *capability.RecordingHost, name string) bool {
	for _, c := range rh.Calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Scenario 1: can_drive(age: Int) -> Bool, the default export.
func TestCanDrive(t *testing.T) {
	wasmBytes, err := guestfix.CanDrive()
	if err != nil {
		t.Fatalf("CanDrive: %v", err)
	}
	ctrl := newTestController(t, wasmBytes, capability.NewRecordingHost())

	args, err := ctrl.Args("")
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	if len(args) != 1 || args[0].Tag != value.KindInt {
		t.Fatalf("Args = %v, want [Int]", args)
	}
	returns, err := ctrl.Returns("")
	if err != nil {
		t.Fatalf("Returns: %v", err)
	}
	if returns.Tag != value.KindBool {
		t.Fatalf("Returns = %v, want Bool", returns)
	}

	got, err := ctrl.Invoke("", []value.Value{value.Int(18)})
	if err != nil {
		t.Fatalf("Invoke(18): %v", err)
	}
	if !value.Equal(got, value.Bool(true)) {
		t.Errorf("Invoke(18) = %v, want true", got)
	}

	got, err = ctrl.Invoke("", []value.Value{value.Int(17)})
	if err != nil {
		t.Fatalf("Invoke(17): %v", err)
	}
	if !value.Equal(got, value.Bool(false)) {
		t.Errorf("Invoke(17) = %v, want false", got)
	}

	if _, err := ctrl.Invoke("", nil); err == nil {
		t.Fatal("Invoke() with no args: want InvalidArgs error")
	}
}

// Scenario 2: create_user((name: String, age: Int), enabled: Bool) -> String.
func TestCreateUser(t *testing.T) {
	wasmBytes, err := guestfix.CreateUser()
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	ctrl := newTestController(t, wasmBytes, capability.NewRecordingHost())

	tuple := value.NewArray([]value.Value{value.Strand("A"), value.Int(7)})
	got, err := ctrl.Invoke("create_user", []value.Value{tuple, value.Bool(true)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := value.Strand("Created user A of age 7. Enabled? true")
	if !value.Equal(got, want) {
		t.Errorf("Invoke = %v, want %v", got, want)
	}
}

// Scenario 3: a guest function that calls the host's run() import and
// returns the response in-band.
func TestCallUserExists(t *testing.T) {
	wasmBytes, err := guestfix.CallUserExists()
	if err != nil {
		t.Fatalf("CallUserExists: %v", err)
	}
	rh := capability.NewRecordingHost()
	rh.RunFunc = func(ctx context.Context, name string, version *string, args []value.Value) (value.Value, error) {
		if name != "fn::user_exists" {
			t.Errorf("Run name = %q, want fn::user_exists", name)
		}
		if version != nil {
			t.Errorf("Run version = %v, want nil", version)
		}
		want := value.NewArray([]value.Value{value.Strand("A"), value.Int(7)})
		if !value.Equal(value.NewArray(args), want) {
			t.Errorf("Run args = %v, want %v", args, want)
		}
		return value.Bool(true), nil
	}
	ctrl := newTestController(t, wasmBytes, rh)

	got, err := ctrl.Invoke("call_user_exists", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !value.Equal(got, value.Bool(true)) {
		t.Errorf("Invoke = %v, want true", got)
	}
	if !hasCall(rh, "Run") {
		t.Error("host Run was never called")
	}
}

// Scenario 4: a guest function that always returns Err, surfaced as a
// GuestCallFailed error.
func TestDivideFails(t *testing.T) {
	wasmBytes, err := guestfix.Divide()
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	ctrl := newTestController(t, wasmBytes, capability.NewRecordingHost())

	_, err = ctrl.Invoke("divide", []value.Value{value.Int(4), value.Int(0)})
	if err == nil {
		t.Fatal("Invoke: want error")
	}
	if !strings.HasSuffix(err.Error(), "Division by zero") {
		t.Errorf("Invoke error = %q, want suffix %q", err.Error(), "Division by zero")
	}
}

// Scenario 5: set/get/exists/del/exists against the host KV capability.
func TestKVRoundtrip(t *testing.T) {
	wasmBytes, err := guestfix.KVRoundtrip()
	if err != nil {
		t.Fatalf("KVRoundtrip: %v", err)
	}
	rh := capability.NewRecordingHost()
	ctrl := newTestController(t, wasmBytes, rh)

	got, err := ctrl.Invoke("kv_roundtrip", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !value.Equal(got, value.Bool(true)) {
		t.Errorf("Invoke = %v, want true", got)
	}

	exists, err := rh.KV().Exists(context.Background(), "k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("key \"k\" still present after the guest's own del")
	}
}

// Scenario 6: a guest function writing a non-ASCII UTF-8 string to stdout.
func TestStdoutEcho(t *testing.T) {
	wasmBytes, err := guestfix.StdoutEcho()
	if err != nil {
		t.Fatalf("StdoutEcho: %v", err)
	}
	rh := capability.NewRecordingHost()
	var got string
	rh.StdoutFunc = func(ctx context.Context, s string) error {
		got = s
		return nil
	}
	ctrl := newTestController(t, wasmBytes, rh)

	if _, err := ctrl.Invoke("stdout_echo", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := "héllo wörld 日本語"
	if got != want {
		t.Errorf("Stdout received %q, want %q", got, want)
	}
}
