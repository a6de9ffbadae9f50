package zonetable

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tzpack/internal/domain/zone"
)

// writeZone creates a zoneinfo file under dir for the slash-separated name.
func writeZone(t *testing.T, dir, name string, data []byte) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// TestCollect_FiltersNonFiles verifies missing names and directories are left out silently.
func TestCollect_FiltersNonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeZone(t, dir, "Europe/Berlin", []byte("berlin"))
	writeZone(t, dir, "UTC", []byte("utc"))
	writeZone(t, dir, "America/Argentina/Salta", []byte("salta"))

	names := []string{
		"UTC",
		"Europe/Berlin",
		"Europe",
		"America/Argentina",
		"America/Argentina/Salta",
		"Missing/Zone",
		"",
		" UTC ",
		"posixrules",
	}

	records, err := Collect(context.Background(), dir, names)
	require.NoError(t, err)
	require.Equal(t, []zone.Record{
		{Name: "America/Argentina/Salta", Data: []byte("salta")},
		{Name: "Europe/Berlin", Data: []byte("berlin")},
		{Name: "UTC", Data: []byte("utc")},
	}, records)

	table, err := Encode(records, "2024b", mustDialect(t, FormatRust))
	require.NoError(t, err)
	require.Equal(t, 3, table.Count)
}

// TestCollect_FollowsLinks checks links to files are packed and dangling links are skipped.
func TestCollect_FollowsLinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeZone(t, dir, "Etc/UTC", []byte("utc"))

	if err := os.Symlink(filepath.Join(dir, "Etc", "UTC"), filepath.Join(dir, "UTC")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "Dangling")))

	records, err := Collect(context.Background(), dir, []string{"UTC", "Etc/UTC", "Dangling"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Etc/UTC", records[0].Name)
	require.Equal(t, "UTC", records[1].Name)
	require.Equal(t, []byte("utc"), records[1].Data)
}

// TestCollect_RejectsEscapingNames ensures names cannot point outside the tree.
func TestCollect_RejectsEscapingNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../etc/passwd", "/etc/passwd", "Europe/../../x"} {
		_, err := Collect(context.Background(), t.TempDir(), []string{name})
		require.ErrorIs(t, err, ErrInvalidZoneName, name)
	}
}
