package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner imitates the tzcode Makefile: install writes zoneinfo files below DESTDIR.
type fakeRunner struct {
	calls     [][]string
	zoneNames string
	failOn    string
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{dir, name}, args...))

	target := args[len(args)-1]
	if target == f.failOn {
		return nil, errors.New("exit status 2")
	}

	switch target {
	case "install":
		destDir := strings.TrimPrefix(args[0], "DESTDIR=")
		zoneinfo := filepath.Join(destDir, "usr", "share", "zoneinfo")

		if err := os.MkdirAll(filepath.Join(zoneinfo, "Europe"), 0o755); err != nil {
			return nil, err
		}

		if err := os.WriteFile(filepath.Join(zoneinfo, "Europe", "Berlin"), []byte("TZif"), 0o644); err != nil {
			return nil, err
		}

		return []byte("installed\n"), nil
	case "zonenames":
		return []byte(f.zoneNames), nil
	default:
		return nil, errors.New("unexpected target " + target)
	}
}

// TestBuild runs both make targets and moves the compiled tree into place.
func TestBuild(t *testing.T) {
	t.Parallel()

	versionDir := t.TempDir()
	treeDir := filepath.Join(versionDir, "tzdb")
	require.NoError(t, os.MkdirAll(treeDir, 0o755))

	// A stale tree from a previous run must be replaced.
	require.NoError(t, os.MkdirAll(filepath.Join(versionDir, "zoneinfo", "Stale"), 0o755))

	runner := &fakeRunner{zoneNames: "Europe/Berlin\n  Europe\n\nEurope/Berlin\n"}
	builder := &Builder{Runner: runner}

	result, err := builder.Build(context.Background(), treeDir)
	require.NoError(t, err)
	require.Equal(t, []string{"Europe/Berlin", "Europe", "Europe/Berlin"}, result.ZoneNames)
	require.Equal(t, filepath.Join(versionDir, "zoneinfo"), result.ZoneinfoDir)

	data, err := os.ReadFile(filepath.Join(result.ZoneinfoDir, "Europe", "Berlin"))
	require.NoError(t, err)
	require.Equal(t, "TZif", string(data))

	_, err = os.Stat(filepath.Join(result.ZoneinfoDir, "Stale"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Len(t, runner.calls, 2)
	require.Equal(t, treeDir, runner.calls[0][0])
	require.Equal(t, "make", runner.calls[0][1])
	require.Equal(t, []string{"POSIXRULES=-", "ZFLAGS=-b slim", "install"}, runner.calls[0][3:])
	require.Equal(t, []string{treeDir, "make", "zonenames"}, runner.calls[1])

	entries, err := os.ReadDir(versionDir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "the scratch install root must be removed")
}

// TestBuild_Failure wraps make failures in ErrBuild.
func TestBuild_Failure(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"install", "zonenames"} {
		treeDir := filepath.Join(t.TempDir(), "tzdb")
		require.NoError(t, os.MkdirAll(treeDir, 0o755))

		_, err := (&Builder{Runner: &fakeRunner{failOn: target}}).Build(context.Background(), treeDir)
		require.ErrorIs(t, err, ErrBuild, target)
		require.ErrorContains(t, err, "make "+target)
	}
}

// TestExecRunner reports command failures with their error output.
func TestExecRunner(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	out, err := ExecRunner{}.Run(context.Background(), t.TempDir(), "/bin/sh", "-c", "echo zones")
	require.NoError(t, err)
	require.Equal(t, "zones\n", string(out))

	_, err = ExecRunner{}.Run(context.Background(), t.TempDir(), "/bin/sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	require.ErrorContains(t, err, "boom")
}

// TestParseZoneNames drops blank lines and surrounding whitespace.
func TestParseZoneNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"Africa/Abidjan", "UTC"}, ParseZoneNames([]byte("Africa/Abidjan\r\n\n  UTC  \n")))
	require.Empty(t, ParseZoneNames(nil))
}
