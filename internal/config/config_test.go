package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	cfg = Default()
	cfg.ReleaseURL = "ftp://ftp.iana.org/tz/releases"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.LatestURL = "not a url"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.LogLevel = "chatty"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.DataFile = ""
	require.Error(t, Validate(cfg))

	// Manifest is optional and other empty fields fall back to defaults.
	cfg = &Config{
		DataFile:    "src/data.rs",
		VersionFile: "VERSION",
	}
	require.NoError(t, Validate(cfg))
	require.Empty(t, cfg.ManifestFile)
	require.Equal(t, DefaultFormat, cfg.Format)
	require.Equal(t, DefaultWorkDir, cfg.WorkDir)
	require.Equal(t, DefaultReleaseURL, cfg.ReleaseURL)
}

// TestValidate_ExpandsHome verifies "~" in paths resolves to the home directory.
func TestValidate_ExpandsHome(t *testing.T) {
	t.Parallel()

	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	cfg := Default()
	cfg.WorkDir = "~/tzpack-work"
	require.NoError(t, Validate(cfg))
	require.Equal(t, filepath.Join(home, "tzpack-work"), cfg.WorkDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tzpack.yaml")

	cfg := Default()
	cfg.Format = "go"
	cfg.GoPackage = "zoneinfo"
	cfg.DataFile = "zoneinfo/data.go"
	cfg.ManifestFile = ""
	cfg.Timeout = 30 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

// TestLoad_PartialFileKeepsDefaults checks unset keys keep their default values.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tzpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: go\nlog_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "go", cfg.Format)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, DefaultReleaseURL, cfg.ReleaseURL)
	require.Equal(t, DefaultVersionFile, cfg.VersionFile)
}

// TestLoad_MissingExplicitFile ensures an explicitly named file must exist.
func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
