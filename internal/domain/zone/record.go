package zone

import (
	"slices"
	"strings"
)

// Record is a single compiled zone.
type Record struct {
	// Name is the canonical IANA zone identifier, e.g. "Europe/Berlin".
	Name string
	// Data is the compiled zoneinfo blob for the zone. It may hold any byte value.
	Data []byte
}

// Sorted returns a copy of records ordered by the raw bytes of Name.
// The sort is stable, so records with equal names keep their relative order.
func Sorted(records []Record) []Record {
	sorted := slices.Clone(records)

	slices.SortStableFunc(sorted, func(a, b Record) int {
		return strings.Compare(a.Name, b.Name)
	})

	return sorted
}

// FirstDuplicate returns the first name that appears twice in records sorted by Sorted.
func FirstDuplicate(sorted []Record) (string, bool) {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return sorted[i].Name, true
		}
	}

	return "", false
}
