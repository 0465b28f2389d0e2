// Package errors provides structured error types for the wasmfn module.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type carries rich context: a field path,
// Go/wire type names, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnexpectedType).
//		Path("user", "age").
//		GoType("string").
//		WireKind("number").
//		Detail("cannot convert string to number").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedType(path, "string", "number")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
