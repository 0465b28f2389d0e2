package manifest

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/coreos/go-semver/semver"

	"github.com/outlandhq/wasmfn/capability"
	"github.com/outlandhq/wasmfn/errors"
	"github.com/outlandhq/wasmfn/host"
)

// ABIVersion is the wire-layout version this build implements (spec §3
// invariant: "layouts are stable across releases of a given ABI version").
// A manifest whose ABIVersion field is set and does not match this is
// rejected before the guest module is ever instantiated.
const ABIVersion = "1.0.0"

// Manifest is a package's descriptor: organisation, name, semver version,
// and the capability flags it declares it needs (spec §6's "Package
// manifest" — "text-keyed configuration with at minimum organisation,
// name, version").
type Manifest struct {
	Organisation string   `toml:"organisation"`
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	ABIVersion   string   `toml:"abi_version"`
	Capabilities []string `toml:"capabilities"`
}

// Parse decodes TOML-encoded manifest bytes and validates required fields
// and version syntax.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Load("parse manifest", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that organisation, name and version are present and that
// version (and ABIVersion, if set) parse as semver.
func (m *Manifest) Validate() error {
	if m.Organisation == "" {
		return errors.InvalidInput(errors.PhaseLoad, "manifest missing organisation")
	}
	if m.Name == "" {
		return errors.InvalidInput(errors.PhaseLoad, "manifest missing name")
	}
	if m.Version == "" {
		return errors.InvalidInput(errors.PhaseLoad, "manifest missing version")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return errors.Load(fmt.Sprintf("manifest version %q", m.Version), err)
	}
	if m.ABIVersion != "" {
		if _, err := semver.NewVersion(m.ABIVersion); err != nil {
			return errors.Load(fmt.Sprintf("manifest abi_version %q", m.ABIVersion), err)
		}
	}
	return nil
}

// CheckABI rejects a manifest whose declared ABIVersion's major component
// does not match this build's ABIVersion — the "incompatible ABI version"
// failure mode of spec §6. A manifest that omits abi_version is accepted
// (older manifests predating the field).
func (m *Manifest) CheckABI() error {
	if m.ABIVersion == "" {
		return nil
	}
	have := semver.New(ABIVersion)
	want := semver.New(m.ABIVersion)
	if have.Major != want.Major {
		return errors.Load(fmt.Sprintf("ABI version %s incompatible with runtime ABI %s", m.ABIVersion, ABIVersion), nil)
	}
	return nil
}

// FileName returns the canonical bundle file name for m, per spec §6:
// "<organisation>-<name>-<version>.<ext>".
func (m *Manifest) FileName(ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", m.Organisation, m.Name, m.Version, ext)
}

// HasCapability reports whether m declares the named capability flag.
func (m *Manifest) HasCapability(name string) bool {
	for _, c := range m.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Load parses manifestBytes, validates it against this build's ABI,
// installs h's capabilities on rt, compiles wasmBytes, and instantiates
// the result — the full package-loader pipeline of spec §6.
func Load(ctx context.Context, rt *host.Runtime, manifestBytes, wasmBytes []byte, h capability.Host) (*Manifest, *host.Controller, error) {
	m, err := Parse(manifestBytes)
	if err != nil {
		return nil, nil, err
	}
	if err := m.CheckABI(); err != nil {
		return nil, nil, err
	}
	if err := rt.InstallCapabilities(ctx, h); err != nil {
		return nil, nil, err
	}
	mod, err := rt.LoadModule(ctx, wasmBytes)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := mod.Instantiate(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m, ctrl, nil
}
