package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred.
type Phase string

const (
	PhaseEncode   Phase = "encode"   // Go value to guest memory
	PhaseDecode   Phase = "decode"   // guest memory to Go value
	PhaseGuest    Phase = "guest"    // user function execution inside the guest
	PhaseHost     Phase = "host"     // host-capability backend execution
	PhaseLoad     Phase = "load"     // manifest/module loading
	PhaseInvoke   Phase = "invoke"   // host-side invocation plumbing
	PhaseCLI      Phase = "cli"      // command-line surface
	PhaseValidate Phase = "validate" // signature / data validation
)

// Kind categorizes the error. ABI mismatches and layout violations are
// fatal programming-bug conditions; the rest are expected runtime
// conditions that can travel in-band as a Result.
type Kind string

const (
	KindABIMismatch     Kind = "abi_mismatch"
	KindLayoutViolation Kind = "layout_violation"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindDatetimeRange   Kind = "datetime_out_of_range"
	KindInvalidArgs     Kind = "invalid_args"
	KindUnexpectedType  Kind = "unexpected_type"
	KindHostCallFailed  Kind = "host_call_failed"
	KindGuestCallFailed Kind = "guest_call_failed"
	KindUnsupportedKind Kind = "unsupported_kind"
	KindAllocation      Kind = "allocation"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidDiscrim  Kind = "invalid_discriminant"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindOverflow        Kind = "overflow"
	KindNilPointer      Kind = "nil_pointer"
)

// Error is the structured error type used throughout the module.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	WireKind string
	Detail   string
	Path     []string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.WireKind != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.WireKind != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Kind ")
			b.WriteString(e.WireKind)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("Kind ")
			b.WriteString(e.WireKind)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WireKind != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

func (b *Builder) WireKind(k string) *Builder {
	b.err.WireKind = k
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// InvalidArgs builds the error raised when a guest invocation supplies the
// wrong number of arguments.
func InvalidArgs(expected, got int) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvalidArgs,
		Detail: fmt.Sprintf("expected %d argument(s), got %d", expected, got),
		Value:  got,
	}
}

// UnexpectedType builds a type-mismatch error for a Value encountered where
// a different Kind was expected.
func UnexpectedType(path []string, got, expected string) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Kind:     KindUnexpectedType,
		Path:     path,
		GoType:   got,
		WireKind: expected,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error for a Strand.
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// DatetimeOutOfRange creates an error for a (seconds, nanos) pair that does
// not reconstruct to a real instant.
func DatetimeOutOfRange(path []string, seconds int64, nanos uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDatetimeRange,
		Path:   path,
		Detail: fmt.Sprintf("(%d, %d) is not a valid instant", seconds, nanos),
	}
}

// AllocationFailed creates an allocator-refused error.
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// OutOfBounds creates an out-of-bounds error for a TransferredArray or
// array index.
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidDiscriminant creates an invalid-tag error for a Value/Kind union.
func InvalidDiscriminant(phase Phase, path []string, disc, maxValid uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidDiscrim,
		Path:   path,
		Detail: fmt.Sprintf("discriminant %d out of range (max %d)", disc, maxValid),
		Value:  disc,
	}
}

// Unsupported creates an unsupported-Kind error at the transfer boundary.
func Unsupported(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindUnsupportedKind, Detail: what}
}

// NilPointer creates a nil/zero pointer error.
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{Phase: phase, Kind: KindNilPointer, Path: path, GoType: goType, Detail: "nil pointer"}
}

// Overflow creates a numeric overflow error.
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		WireKind: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// InvalidData is a generic decode/layout violation error.
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindLayoutViolation, Path: path, Detail: detail}
}

// Wrap wraps an existing error with additional context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}

// NotFound creates a not-found error (export, function, key).
func NotFound(phase Phase, what, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: fmt.Sprintf("%s %q not found", what, name)}
}

// InvalidInput creates an invalid-input error.
func InvalidInput(phase Phase, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Phase: phase, Kind: KindInvalidInput, Detail: detail}
}

// HostCallFailed wraps a backend error raised while servicing a guest
// capability import (SQL, run, KV, ML, I/O).
func HostCallFailed(capability string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindHostCallFailed,
		Detail: fmt.Sprintf("%s: %s", capability, cause.Error()),
		Cause:  cause,
	}
}

// GuestCallFailed wraps the Err(message) a guest function returned.
func GuestCallFailed(fn, message string) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindGuestCallFailed,
		Detail: fmt.Sprintf("%s: %s", fn, message),
	}
}

// MissingExports describes the exports a loaded module is required to have
// but does not (memory, alloc, free, or a named __sr_fnc__ export).
type MissingExports struct {
	Names []string
}

func (e *MissingExports) Error() string {
	return fmt.Sprintf("missing required export(s): %s", strings.Join(e.Names, ", "))
}

func (e *MissingExports) Is(target error) bool {
	_, ok := target.(*MissingExports)
	return ok
}

// Load creates a module/manifest loading error.
func Load(detail string, cause error) *Error {
	return &Error{Phase: PhaseLoad, Kind: KindABIMismatch, Detail: detail, Cause: cause}
}

// ParseFailed creates a parsing error (WAT, manifest, CLI literal).
func ParseFailed(what string, cause error) *Error {
	return &Error{Phase: PhaseLoad, Kind: KindInvalidInput, Detail: fmt.Sprintf("parse %s", what), Cause: cause}
}
