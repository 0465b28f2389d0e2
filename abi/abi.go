package abi

import (
	"regexp"

	"github.com/outlandhq/wasmfn/errors"
)

// Required allocator exports, per spec §4.1 / §6.
const (
	ExportMemory = "memory"
	ExportAlloc  = "alloc"
	ExportFree   = "free"
)

// Export name prefixes, per spec §4.4 / §6.
const (
	PrefixFunc    = "__sr_fnc__"
	PrefixArgs    = "__sr_args__"
	PrefixReturns = "__sr_returns__"
)

var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// ValidateName checks a macro `name = "..."` argument against spec §4.4's
// rule: values must match [A-Za-z0-9_]+ (non-empty). The empty suffix is
// reserved for the `default` attribute, not a user-chosen name.
func ValidateName(name string) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseLoad, "export name must not be empty")
	}
	if !suffixPattern.MatchString(name) {
		return errors.InvalidInput(errors.PhaseLoad, "export name %q must match [A-Za-z0-9_]+", name)
	}
	return nil
}

// ExportSuffix computes the suffix the macro would emit for a function
// named fnIdent, an optional `name = "..."` argument, and whether
// `default` was specified. default takes precedence and yields "".
func ExportSuffix(fnIdent, nameArg string, isDefault bool) (string, error) {
	if isDefault {
		return "", nil
	}
	if nameArg != "" {
		if err := ValidateName(nameArg); err != nil {
			return "", err
		}
		return nameArg, nil
	}
	if err := ValidateName(fnIdent); err != nil {
		return "", err
	}
	return fnIdent, nil
}

// FuncExportName, ArgsExportName and ReturnsExportName build the three
// concrete export names the macro emits for a given suffix (spec §4.4).
func FuncExportName(suffix string) string    { return PrefixFunc + suffix }
func ArgsExportName(suffix string) string    { return PrefixArgs + suffix }
func ReturnsExportName(suffix string) string { return PrefixReturns + suffix }

// IsFuncExport reports whether name is a `__sr_fnc__` export and, if so,
// returns its suffix.
func IsFuncExport(name string) (suffix string, ok bool) {
	if len(name) < len(PrefixFunc) || name[:len(PrefixFunc)] != PrefixFunc {
		return "", false
	}
	return name[len(PrefixFunc):], true
}
