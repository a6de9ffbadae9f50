package tzversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PackageVersion is the (year, patch) pair rendered as "year.patch".
type PackageVersion struct {
	// Year is the four-digit release year.
	Year int
	// Patch is the 1-based position of the release within the year.
	Patch int
}

// ErrInvalidPackageVersion is returned when a stored package version cannot be parsed.
var ErrInvalidPackageVersion = errors.New("invalid package version")

// String renders the version as "year.patch".
func (v PackageVersion) String() string {
	return strconv.Itoa(v.Year) + "." + strconv.Itoa(v.Patch)
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after other.
func (v PackageVersion) Compare(other PackageVersion) int {
	switch {
	case v.Year < other.Year:
		return -1
	case v.Year > other.Year:
		return 1
	case v.Patch < other.Patch:
		return -1
	case v.Patch > other.Patch:
		return 1
	default:
		return 0
	}
}

// Less reports whether v sorts strictly before other.
func (v PackageVersion) Less(other PackageVersion) bool {
	return v.Compare(other) < 0
}

// IANA renders the release identifier the version was derived from, e.g. "2020za".
func (v PackageVersion) IANA() (string, error) {
	letters, err := Letters(v.Patch)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%04d%s", v.Year, letters), nil
}

// ParsePackageVersion parses the output of PackageVersion.String.
// Surrounding whitespace, including a trailing newline, is ignored.
func ParsePackageVersion(s string) (PackageVersion, error) {
	s = strings.TrimSpace(s)

	yearPart, patchPart, found := strings.Cut(s, ".")
	if !found {
		return PackageVersion{}, fmt.Errorf("%w: %q", ErrInvalidPackageVersion, s)
	}

	year, err := parseNonNegative(yearPart)
	if err != nil {
		return PackageVersion{}, fmt.Errorf("%w: %q: year: %w", ErrInvalidPackageVersion, s, err)
	}

	patch, err := parseNonNegative(patchPart)
	if err != nil {
		return PackageVersion{}, fmt.Errorf("%w: %q: patch: %w", ErrInvalidPackageVersion, s, err)
	}

	if patch < 1 {
		return PackageVersion{}, fmt.Errorf("%w: %q: patch must be positive", ErrInvalidPackageVersion, s)
	}

	return PackageVersion{Year: year, Patch: patch}, nil
}

// parseNonNegative accepts only plain decimal digits, so "+1", "-1" and "1.2" are rejected.
func parseNonNegative(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty number")
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("unexpected character %q", s[i])
		}
	}

	return strconv.Atoi(s)
}
