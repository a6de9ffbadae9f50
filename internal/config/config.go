package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/tzpack/internal/logger"
)

// Config holds the settings of a packaging run.
type Config struct {
	// ReleaseURL is the base URL holding tzdata<v>.tar.gz and tzcode<v>.tar.gz.
	ReleaseURL string `yaml:"release_url"`
	// LatestURL points at the tarball of the most recent tzdata release.
	LatestURL string `yaml:"latest_url"`
	// WorkDir is where tarballs are downloaded, unpacked and built.
	WorkDir string `yaml:"work_dir"`
	// DataFile is the generated zone table.
	DataFile string `yaml:"data_file"`
	// VersionFile is the version marker holding the last packaged version.
	VersionFile string `yaml:"version_file"`
	// ManifestFile is the package manifest whose version field is updated.
	// An empty value disables the update.
	ManifestFile string `yaml:"manifest_file"`
	// Format selects the zone table dialect ("rust" or "go").
	Format string `yaml:"format"`
	// GoPackage is the package clause of the "go" format.
	GoPackage string `yaml:"go_package"`
	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of log messages.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "tzpack.yaml"

	// DefaultReleaseURL is the IANA release directory.
	DefaultReleaseURL = "https://data.iana.org/time-zones/releases"

	// DefaultLatestURL is the IANA link to the newest tzdata tarball.
	DefaultLatestURL = "https://www.iana.org/time-zones/repository/tzdata-latest.tar.gz"

	// DefaultWorkDir is the staging directory, relative to the current directory.
	DefaultWorkDir = "tmp"

	// DefaultDataFile is the generated zone table of the tzdata crate.
	DefaultDataFile = "src/data.rs"

	// DefaultVersionFile is the version marker.
	DefaultVersionFile = "VERSION"

	// DefaultManifestFile is the crate manifest.
	DefaultManifestFile = "Cargo.toml"

	// DefaultFormat is the zone table dialect.
	DefaultFormat = "rust"

	// DefaultTimeout bounds HTTP requests. Release tarballs are a few hundred kilobytes.
	DefaultTimeout = 5 * time.Minute

	// DefaultLogLevel is the minimum log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the permission of files written by tzpack.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadLogLevel is returned for unknown log levels.
	errBadLogLevel = errors.New("unknown log level")
	// errEmptyPath is returned when a required output path is empty.
	errEmptyPath = errors.New("path must not be empty")
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		ReleaseURL:   DefaultReleaseURL,
		LatestURL:    DefaultLatestURL,
		WorkDir:      DefaultWorkDir,
		DataFile:     DefaultDataFile,
		VersionFile:  DefaultVersionFile,
		ManifestFile: DefaultManifestFile,
		Format:       DefaultFormat,
		Timeout:      DefaultTimeout,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads configuration from path, fills unset fields with defaults and validates it.
// A missing file at the default path yields the defaults; any other missing file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) && !explicit {
		cfg := Default()

		return cfg, Validate(cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks cfg, fills empty optional fields with defaults and expands "~" in paths.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = DefaultReleaseURL
	}

	if cfg.LatestURL == "" {
		cfg.LatestURL = DefaultLatestURL
	}

	for name, raw := range map[string]string{"release_url": cfg.ReleaseURL, "latest_url": cfg.LatestURL} {
		u, err := url.ParseRequestURI(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}

		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid %s: unsupported scheme %q", name, u.Scheme)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.LogLevel)
	}

	for _, field := range []struct {
		name     string
		value    *string
		optional bool
	}{
		{name: "work_dir", value: &cfg.WorkDir},
		{name: "data_file", value: &cfg.DataFile},
		{name: "version_file", value: &cfg.VersionFile},
		{name: "manifest_file", value: &cfg.ManifestFile, optional: true},
	} {
		if *field.value == "" {
			if field.optional {
				continue
			}

			return fmt.Errorf("%s: %w", field.name, errEmptyPath)
		}

		expanded, err := homedir.Expand(*field.value)
		if err != nil {
			return fmt.Errorf("expand %s: %w", field.name, err)
		}

		*field.value = filepath.Clean(expanded)
	}

	return nil
}
