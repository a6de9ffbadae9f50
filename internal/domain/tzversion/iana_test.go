package tzversion

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFromIANA_WorkedValues checks the rollover encoding of the letter suffix.
func TestFromIANA_WorkedValues(t *testing.T) {
	t.Parallel()

	cases := map[string]PackageVersion{
		"2020a":   {Year: 2020, Patch: 1},
		"2020b":   {Year: 2020, Patch: 2},
		"2020z":   {Year: 2020, Patch: 26},
		"2020za":  {Year: 2020, Patch: 27},
		"2020zb":  {Year: 2020, Patch: 28},
		"2020zz":  {Year: 2020, Patch: 52},
		"2020zza": {Year: 2020, Patch: 53},
		"1996l":   {Year: 1996, Patch: 12},
		"0001a":   {Year: 1, Patch: 1},
	}
	for in, want := range cases {
		got, err := FromIANA(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

// TestFromIANA_Rejects verifies malformed identifiers fail with ErrInvalidVersionFormat.
func TestFromIANA_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"202a",
		"2020",
		"2020az",
		"2020zaz",
		"2020A",
		"2020a1",
		"20x0a",
		"2020-a",
		" 2020a",
		"2020a\n",
	} {
		_, err := FromIANA(in)
		require.ErrorIs(t, err, ErrInvalidVersionFormat, "%q", in)
	}
}

// TestFromIANA_PositivePatch checks year and patch for every single and double letter suffix.
func TestFromIANA_PositivePatch(t *testing.T) {
	t.Parallel()

	for year := 1990; year <= 2030; year += 5 {
		for c := 'a'; c <= 'z'; c++ {
			for _, suffix := range []string{string(c), "z" + string(c), "zz" + string(c)} {
				in := strconv.Itoa(year) + suffix

				got, err := FromIANA(in)
				require.NoError(t, err, in)
				require.Equal(t, year, got.Year, in)
				require.Positive(t, got.Patch, in)
			}
		}
	}
}

// TestLetters_RoundTrip ensures Letters inverts the suffix folding of FromIANA.
func TestLetters_RoundTrip(t *testing.T) {
	t.Parallel()

	for patch := 1; patch <= 26*5; patch++ {
		letters, err := Letters(patch)
		require.NoError(t, err)

		got, err := FromIANA("2024" + letters)
		require.NoError(t, err)
		require.Equal(t, patch, got.Patch)
	}

	letters, err := Letters(53)
	require.NoError(t, err)
	require.Equal(t, "zza", letters)

	_, err = Letters(0)
	require.ErrorIs(t, err, ErrInvalidPackageVersion)
}

// TestPackageVersion_IANA renders release identifiers back from package versions.
func TestPackageVersion_IANA(t *testing.T) {
	t.Parallel()

	got, err := PackageVersion{Year: 2020, Patch: 27}.IANA()
	require.NoError(t, err)
	require.Equal(t, "2020za", got)

	_, err = PackageVersion{Year: 2020}.IANA()
	require.Error(t, err)
}
