package tzversion

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// yearDigits is the length of the year prefix of an IANA release.
	yearDigits = 4
	// alphabetSize is the number of letters a release suffix position can take.
	alphabetSize = 26
	// rolloverLetter is the only letter allowed before the last one in a suffix.
	rolloverLetter = 'z'
)

// ErrInvalidVersionFormat is returned for strings that are not IANA release identifiers.
var ErrInvalidVersionFormat = errors.New("invalid IANA version format")

// FromIANA translates an IANA release identifier into a package version.
//
//	2020a   -> 2020.1
//	2020z   -> 2020.26
//	2020za  -> 2020.27
//	2020zz  -> 2020.52
//	2020zza -> 2020.53
func FromIANA(iana string) (PackageVersion, error) {
	if len(iana) <= yearDigits {
		return PackageVersion{}, fmt.Errorf(
			"%w: must be YYYY followed by letters in [a-z], found: %q", ErrInvalidVersionFormat, iana)
	}

	yearPart, letters := iana[:yearDigits], iana[yearDigits:]

	for i := range len(yearPart) {
		if yearPart[i] < '0' || yearPart[i] > '9' {
			return PackageVersion{}, fmt.Errorf(
				"%w: must be YYYY followed by letters in [a-z], found: %q", ErrInvalidVersionFormat, iana)
		}
	}

	for i := range len(letters) {
		if letters[i] < 'a' || letters[i] > 'z' {
			return PackageVersion{}, fmt.Errorf(
				"%w: must be YYYY followed by letters in [a-z], found: %q", ErrInvalidVersionFormat, iana)
		}
	}

	// Since 1996 every release is a year followed by a through z, then za through zz,
	// then zza through zzz, and so on.
	last := len(letters) - 1
	if strings.Trim(letters[:last], string(rolloverLetter)) != "" {
		return PackageVersion{}, fmt.Errorf(
			"%w: only the last letter may differ from %q, found: %q", ErrInvalidVersionFormat, rolloverLetter, iana)
	}

	if last > (math.MaxInt-alphabetSize)/alphabetSize {
		return PackageVersion{}, fmt.Errorf("%w: letter suffix too long: %d letters", ErrInvalidVersionFormat, len(letters))
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return PackageVersion{}, fmt.Errorf("%w: %w", ErrInvalidVersionFormat, err)
	}

	finalValue := int(letters[last]-'a') + 1

	return PackageVersion{
		Year:  year,
		Patch: alphabetSize*last + finalValue,
	}, nil
}

// Letters returns the release suffix for a patch number; it is the inverse of
// the suffix folding done by FromIANA.
func Letters(patch int) (string, error) {
	if patch < 1 {
		return "", fmt.Errorf("%w: patch must be positive, got %d", ErrInvalidPackageVersion, patch)
	}

	rollovers, index := (patch-1)/alphabetSize, (patch-1)%alphabetSize

	var builder strings.Builder

	builder.Grow(rollovers + 1)

	for range rollovers {
		builder.WriteByte(rolloverLetter)
	}

	builder.WriteByte(byte('a' + index))

	return builder.String(), nil
}
