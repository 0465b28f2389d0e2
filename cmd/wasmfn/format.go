package main

import (
	"fmt"
	"strings"

	"github.com/outlandhq/wasmfn/value"
)

// formatKind renders a Kind the way the CLI prints signatures (spec §6's
// "info"/"sig" output): a short type name, composite shapes spelled out
// recursively.
func formatKind(k value.Kind) string {
	switch k.Tag {
	case value.KindOption:
		return "option<" + formatKind(*k.Option) + ">"
	case value.KindEither:
		parts := make([]string, len(k.Either))
		for i, e := range k.Either {
			parts[i] = formatKind(e)
		}
		return strings.Join(parts, " | ")
	case value.KindSet:
		return "set<" + formatKind(*k.Elem) + ">"
	case value.KindArray:
		if k.Elem == nil {
			return "array"
		}
		return "array<" + formatKind(*k.Elem) + ">"
	case value.KindRecord:
		if len(k.Tables) == 0 {
			return "record"
		}
		return "record<" + strings.Join(k.Tables, " | ") + ">"
	case value.KindGeometry:
		if len(k.GeometryTags) == 0 {
			return "geometry"
		}
		return "geometry<" + strings.Join(k.GeometryTags, " | ") + ">"
	case value.KindFunction:
		return "function"
	case value.KindLiteral:
		return "literal"
	default:
		return k.Tag.String()
	}
}

// formatValue renders a Value for the "run" subcommand's result line.
func formatValue(v value.Value) string {
	switch v.Tag {
	case value.TagNone:
		return "NONE"
	case value.TagNull:
		return "NULL"
	case value.TagBool:
		return fmt.Sprintf("%t", v.Bool)
	case value.TagInt:
		return fmt.Sprintf("%d", v.Int)
	case value.TagFloat:
		return fmt.Sprintf("%g", v.Float)
	case value.TagStrand:
		return fmt.Sprintf("%q", v.Strand)
	case value.TagDuration:
		return fmt.Sprintf("%ds%dns", v.Duration.Seconds, v.Duration.Nanos)
	case value.TagDatetime:
		return fmt.Sprintf("%ds%dns", v.Datetime.Seconds, v.Datetime.Nanos)
	case value.TagUuid:
		return fmt.Sprintf("%x", v.Uuid)
	case value.TagBytes:
		return fmt.Sprintf("bytes(%d)", len(v.Bytes))
	case value.TagArray:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.TagObject:
		parts := make([]string, len(v.Object))
		for i, e := range v.Object {
			parts[i] = fmt.Sprintf("%s: %s", e.Key, formatValue(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case value.TagThing:
		return fmt.Sprintf("%s:%s", v.Thing.Table, formatValue(v.Thing.ID))
	default:
		return "<?>"
	}
}
