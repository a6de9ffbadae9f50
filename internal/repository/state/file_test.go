package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tzpack/internal/domain/tzversion"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing marker.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "VERSION"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, LoadLast(context.Background(), repo))
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns the same version.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "VERSION")
	repo := NewFileRepository(file)

	want := tzversion.PackageVersion{Year: 2024, Patch: 2}
	require.NoError(t, repo.Save(context.Background(), want))

	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "2024.2", string(contents))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	last := LoadLast(context.Background(), repo)
	require.NotNil(t, last)
	require.Equal(t, want, *last)
}

// TestLoadLast_Malformed checks that a corrupt marker counts as no state.
func TestLoadLast_Malformed(t *testing.T) {
	t.Parallel()

	for _, contents := range []string{"", "garbage", "2024", "2024.b", "2024.1.1"} {
		file := filepath.Join(t.TempDir(), "VERSION")
		require.NoError(t, os.WriteFile(file, []byte(contents), 0o644))

		repo := NewFileRepository(file)

		_, err := repo.Load(context.Background())
		require.ErrorIs(t, err, tzversion.ErrInvalidPackageVersion, "%q", contents)
		require.Nil(t, LoadLast(context.Background(), repo), "%q", contents)
	}
}

// TestFileRepository_TrailingNewline accepts markers written by other tools.
func TestFileRepository_TrailingNewline(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "VERSION")
	require.NoError(t, os.WriteFile(file, []byte("2021.1\n"), 0o644))

	got, err := NewFileRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, tzversion.PackageVersion{Year: 2021, Patch: 1}, got)
}
