// Package zonetable renders compiled zones into a static source table.
//
// Collect gathers (name, zoneinfo) records from a compiled zoneinfo tree,
// silently leaving out names that are not regular files. Encode sorts the
// records and renders them through a Dialect: a provenance header carrying
// the source release and the entry count, one literal per zone, and a footer.
//
// Zone data is written as an escaped byte literal. Printable ASCII other than
// the quote and the backslash is kept as is and every other byte becomes a
// \xHH escape, so any byte sequence maps to exactly one literal and back.
package zonetable
