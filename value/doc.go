// Package value implements the runtime data model shared by guest and host:
// Value, a tagged union of every type that can cross the memory boundary,
// and Kind, the type descriptor that accompanies it.
//
// Both types are plain Go structs with a discriminant field and the fields
// relevant to that discriminant populated; unused fields are left zero.
// This mirrors a tagged union without needing an interface-per-variant, and
// keeps construction, equality, and wire transfer (see the wire and
// transfer packages) working off one concrete type each.
package value
