package zonetable

import (
	"errors"
	"fmt"

	"github.com/oshokin/tzpack/internal/domain/zone"
)

var (
	// ErrDuplicateZone is returned when two records share a name.
	ErrDuplicateZone = errors.New("duplicate zone name")
	// ErrInvalidZoneName is returned for names that cannot be written inside a quoted literal
	// or that point outside the zoneinfo tree.
	ErrInvalidZoneName = errors.New("invalid zone name")
	// ErrCountMismatch is returned when the rendered entries differ from the declared count.
	ErrCountMismatch = errors.New("zone table entry count mismatch")
	// errNoDialect is returned when Encode is called without a dialect.
	errNoDialect = errors.New("dialect is not set")
)

// Table is a rendered zone table.
type Table struct {
	// Source is the rendered file contents.
	Source []byte
	// Count is the number of zone entries in Source.
	Count int
}

// Encode sorts records by name and renders them with the dialect.
// version is the IANA release the zoneinfo was compiled from; it appears in the header.
func Encode(records []zone.Record, version string, dialect Dialect) (*Table, error) {
	if dialect == nil {
		return nil, errNoDialect
	}

	sorted := zone.Sorted(records)

	if name, found := zone.FirstDuplicate(sorted); found {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateZone, name)
	}

	size := 512
	for _, record := range sorted {
		if err := ValidateName(record.Name); err != nil {
			return nil, err
		}

		size += len(record.Name) + 2*len(record.Data) + 64
	}

	declared := len(sorted)
	source := dialect.AppendHeader(make([]byte, 0, size), version, declared)

	// An entry counts only if the dialect actually wrote something for it.
	emitted := 0
	for _, record := range sorted {
		before := len(source)

		source = dialect.AppendEntry(source, record)
		if len(source) > before {
			emitted++
		}
	}

	if emitted != declared {
		return nil, fmt.Errorf("%w: declared %d, emitted %d", ErrCountMismatch, declared, emitted)
	}

	source = dialect.AppendFooter(source)

	return &Table{
		Source: source,
		Count:  emitted,
	}, nil
}

// ValidateName checks that a zone name can be written verbatim inside a quoted literal:
// it must be non-empty printable ASCII without quote or backslash characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidZoneName)
	}

	for i := range len(name) {
		if !isLiteral(name[i]) {
			return fmt.Errorf("%w: %q: byte 0x%02x at offset %d", ErrInvalidZoneName, name, name[i], i)
		}
	}

	return nil
}
