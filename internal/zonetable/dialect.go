package zonetable

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"

	"github.com/oshokin/tzpack/internal/domain/zone"
)

const (
	// FormatRust renders the table as the src/data.rs module of the tzdata crate.
	FormatRust = "rust"
	// FormatGo renders the table as a Go source file.
	FormatGo = "go"

	// DefaultGoPackage is the package clause used by the Go dialect when none is configured.
	DefaultGoPackage = "tzdata"
)

var (
	// ErrUnknownFormat is returned for output formats without a dialect.
	ErrUnknownFormat = errors.New("unknown output format")
	// errBadGoPackage is returned when the Go package clause is not an identifier.
	errBadGoPackage = errors.New("go package name is not a valid identifier")
)

// Dialect renders the three parts of a zone table. Names passed to AppendEntry
// have already been validated, and data is escaped with AppendEscaped.
type Dialect interface {
	// Name returns the format name, e.g. "rust".
	Name() string
	// AppendHeader appends the provenance comment and the array declaration.
	AppendHeader(dst []byte, version string, count int) []byte
	// AppendEntry appends a single zone literal. Every entry writes at least one byte.
	AppendEntry(dst []byte, record zone.Record) []byte
	// AppendFooter closes the array declaration.
	AppendFooter(dst []byte) []byte
}

// NewDialect returns the dialect for a format name.
// goPackage is only used by FormatGo; an empty value selects DefaultGoPackage.
//
//nolint:ireturn // Callers pick the dialect at runtime.
func NewDialect(format, goPackage string) (Dialect, error) {
	switch format {
	case FormatRust, "":
		return rustDialect{}, nil
	case FormatGo:
		if goPackage == "" {
			goPackage = DefaultGoPackage
		}

		if !token.IsIdentifier(goPackage) {
			return nil, fmt.Errorf("%w: %q", errBadGoPackage, goPackage)
		}

		return goDialect{pkg: goPackage}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// rustDialect produces the MAPPINGS constant of the tzdata crate.
type rustDialect struct{}

func (rustDialect) Name() string {
	return FormatRust
}

func (rustDialect) AppendHeader(dst []byte, version string, count int) []byte {
	dst = append(dst, "// This file is automatically generated\n"...)
	dst = append(dst, "// Please do not touch it.\n"...)
	dst = append(dst, "// The data in this file corresponds to the IANA database version "...)
	dst = append(dst, version...)
	dst = append(dst, "\n\nuse crate::ZoneEntry;\n\npub const MAPPINGS: [ZoneEntry; "...)
	dst = strconv.AppendInt(dst, int64(count), 10)

	return append(dst, "] = [\n"...)
}

func (rustDialect) AppendEntry(dst []byte, record zone.Record) []byte {
	dst = append(dst, `    ZoneEntry { zone: "`...)
	dst = append(dst, record.Name...)
	dst = append(dst, `", data: b"`...)
	dst = AppendEscaped(dst, record.Data)

	return append(dst, "\" },\n"...)
}

func (rustDialect) AppendFooter(dst []byte) []byte {
	return append(dst, "\n];\n"...)
}

// goDialect produces a Go file declaring a fixed-size Mappings array.
type goDialect struct {
	pkg string
}

func (goDialect) Name() string {
	return FormatGo
}

func (d goDialect) AppendHeader(dst []byte, version string, count int) []byte {
	dst = append(dst, "// Code generated by tzpack. DO NOT EDIT.\n"...)
	dst = append(dst, "// The data in this file corresponds to the IANA database version "...)
	dst = append(dst, version...)
	dst = append(dst, "\n\npackage "...)
	dst = append(dst, d.pkg...)
	dst = append(dst, "\n\nvar Mappings = ["...)
	dst = strconv.AppendInt(dst, int64(count), 10)

	return append(dst, "]ZoneEntry{\n"...)
}

func (goDialect) AppendEntry(dst []byte, record zone.Record) []byte {
	dst = append(dst, "\t{Zone: \""...)
	dst = append(dst, record.Name...)
	dst = append(dst, `", Data: "`...)
	dst = AppendEscaped(dst, record.Data)

	return append(dst, "\"},\n"...)
}

func (goDialect) AppendFooter(dst []byte) []byte {
	return append(dst, "}\n"...)
}
