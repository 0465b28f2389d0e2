// Package manifest loads a guest package's descriptor: organisation, name,
// and semantic version, plus the ABI version it was built against. It
// validates the paired wasm module's required exports and constructs a
// host.Controller from the two.
//
// The manifest is TOML-encoded (github.com/BurntSushi/toml), following the
// file-naming convention <organisation>-<name>-<version>.<ext>. Version
// comparison and ABI compatibility checks use
// github.com/coreos/go-semver/semver. Out of scope: the archive/bundle file
// format itself — Load accepts already-separated manifest and wasm bytes,
// the seam a real CLI or package fetcher would drive.
package manifest
