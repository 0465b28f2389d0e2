// Package host owns one guest instance and implements the introspection
// and invocation protocol of spec §4.5: List, Args, Returns, and Invoke.
//
// A Runtime owns the wazero engine and the capability imports registered
// into it; a Module is one compiled guest; a Controller is one running
// instance of that module, created per concurrent caller. Controller is
// NOT safe for concurrent use — one guest instance is single-threaded.
package host
