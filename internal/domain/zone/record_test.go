package zone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSorted verifies byte-order sorting, stability and that the input is not mutated.
func TestSorted(t *testing.T) {
	t.Parallel()

	in := []Record{
		{Name: "Europe/Berlin", Data: []byte("1")},
		{Name: "America/New_York"},
		{Name: "UTC"},
		{Name: "Europe/Berlin", Data: []byte("2")},
		{Name: "America/Argentina/Buenos_Aires"},
		{Name: "Etc/GMT+1"},
		{Name: "Etc/GMT-1"},
	}

	got := Sorted(in)

	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}

	require.Equal(t, []string{
		"America/Argentina/Buenos_Aires",
		"America/New_York",
		"Etc/GMT+1",
		"Etc/GMT-1",
		"Europe/Berlin",
		"Europe/Berlin",
		"UTC",
	}, names)
	require.Equal(t, []byte("1"), got[4].Data)
	require.Equal(t, []byte("2"), got[5].Data)
	require.Equal(t, "Europe/Berlin", in[0].Name)

	dup, found := FirstDuplicate(got)
	require.True(t, found)
	require.Equal(t, "Europe/Berlin", dup)

	_, found = FirstDuplicate(got[:4])
	require.False(t, found)
}
