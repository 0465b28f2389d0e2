// Package capability implements the guest-importable host functions of
// spec §4.6: SQL, named-function run, the twelve KV operations, ML
// inference, and stdout/stderr logging.
//
// Register wires every import into a wazero "env" host module. Each shim
// decodes its already-encoded arguments through the transfer package
// (using the calling guest's own memory and allocator, wrapped via
// engine.WrapModule), delegates to a pluggable Host backend, and encodes
// a Result<V> — or returns -1 on a host-side failure, which it has
// already logged (spec §4.3's negative-pointer convention).
//
// Host is an interface so embedders can swap backends: MemoryKV is the
// in-memory, range-ordered KV store this repository ships; a test
// harness can instead record calls (see RecordingHost).
package capability
