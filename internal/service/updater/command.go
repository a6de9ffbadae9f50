package updater

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"

	"github.com/oshokin/tzpack/internal/atomicfile"
	"github.com/oshokin/tzpack/internal/build"
	"github.com/oshokin/tzpack/internal/config"
	"github.com/oshokin/tzpack/internal/fetch"
	"github.com/oshokin/tzpack/internal/logger"
	"github.com/oshokin/tzpack/internal/repository/manifest"
	"github.com/oshokin/tzpack/internal/repository/state"
	"github.com/oshokin/tzpack/internal/runlock"
	"github.com/oshokin/tzpack/internal/zonetable"
)

// ErrSourceDirWithoutVersion is returned when a source directory is given without a version.
var ErrSourceDirWithoutVersion = errors.New("source directory requires an explicit version")

// Fetcher obtains release tarballs. fetch.Client implements it.
type Fetcher interface {
	// Latest resolves the newest upstream release.
	Latest(ctx context.Context, workDir string) (string, error)
	// Download stores the tarballs of a release in the work directory and returns their paths.
	Download(ctx context.Context, workDir, version string) ([]string, error)
}

// Builder compiles an unpacked release. build.Builder implements it.
type Builder interface {
	Build(ctx context.Context, treeDir string) (*build.Result, error)
}

// Options are inputs accepted by the packaging entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Version is an explicit IANA release, e.g. "2024b". Empty means the latest release.
	Version string
	// SourceDir holds local tarballs of Version. Empty means download.
	SourceDir string
	// WorkDir overrides the configured work directory.
	WorkDir string
	// Format overrides the configured zone table dialect.
	Format string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Fetcher overrides the IANA client built from the configuration.
	Fetcher Fetcher
	// Builder overrides the make-based builder.
	Builder Builder
}

// runner holds everything a single packaging run needs.
type runner struct {
	cfg      *config.Config
	opts     *Options
	dialect  zonetable.Dialect
	fetcher  Fetcher
	builder  Builder
	state    state.Repository
	manifest *manifest.FileRepository
	dataFile string
}

// Run executes a packaging run and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "tzpack")

	r, err := newRunner(opts)
	if err != nil {
		logger.ErrorKV(ctx, "Invalid settings", "error", err)
		return err
	}

	lock, err := runlock.Acquire(ctx, r.cfg.WorkDir)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to start", "error", err)
		return err
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Unable to release the run lock", "error", releaseErr)
		}
	}()

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Packaging failed", "error", err)
		return err
	}

	return nil
}

// newRunner loads the configuration, applies the overrides and builds the collaborators.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil {
		opts = &Options{}
	}

	releaseVersion := strings.TrimSpace(opts.Version)
	sourceDir := strings.TrimSpace(opts.SourceDir)

	if sourceDir != "" && releaseVersion == "" {
		return nil, ErrSourceDirWithoutVersion
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	// Validate has already rejected unknown levels.
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	dialect, err := zonetable.NewDialect(cfg.Format, cfg.GoPackage)
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:      cfg,
		opts:     &Options{Version: releaseVersion, SourceDir: sourceDir},
		dialect:  dialect,
		fetcher:  opts.Fetcher,
		builder:  opts.Builder,
		state:    state.NewFileRepository(cfg.VersionFile),
		dataFile: cfg.DataFile,
	}

	if r.fetcher == nil {
		r.fetcher = &fetch.Client{
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
			ReleaseURL: cfg.ReleaseURL,
			LatestURL:  cfg.LatestURL,
		}
	}

	if r.builder == nil {
		r.builder = &build.Builder{}
	}

	if cfg.ManifestFile != "" {
		r.manifest = manifest.NewFileRepository(cfg.ManifestFile)
	}

	return r, nil
}

// loadConfig reads the settings file and applies the command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.WorkDir != "" {
		cfg.WorkDir = opts.WorkDir
	}

	if opts.Format != "" {
		cfg.Format = opts.Format
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run executes the pipeline: resolve, decide, fetch, unpack, build, encode, write.
func (r *runner) run(ctx context.Context) error {
	release, err := r.resolveRelease(ctx)
	if err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "release", release)

	decision, err := Plan(release, state.LoadLast(ctx, r.state))
	if err != nil {
		return err
	}

	if decision.Skip {
		logger.InfoKV(ctx, "The packaged version is already the newest, nothing to do",
			"candidate", decision.Candidate.String(),
			"last", decision.Last.String())

		return nil
	}

	logger.InfoKV(ctx, "Packaging a new version", "version", decision.Candidate.String())

	tarballs, err := r.obtainTarballs(ctx, release)
	if err != nil {
		return err
	}

	treeDir := fetch.TreeDir(r.cfg.WorkDir, release)
	if err = fetch.Unpack(ctx, tarballs, treeDir); err != nil {
		return err
	}

	result, err := r.builder.Build(ctx, treeDir)
	if err != nil {
		return err
	}

	records, err := zonetable.Collect(ctx, result.ZoneinfoDir, result.ZoneNames)
	if err != nil {
		return err
	}

	currentManifest, err := r.loadManifest(ctx)
	if err != nil {
		return err
	}

	artifacts, err := Package(decision, records, r.dialect, currentManifest)
	if err != nil {
		return err
	}

	return r.write(ctx, artifacts)
}

// resolveRelease returns the explicit release or asks the fetcher for the latest one.
func (r *runner) resolveRelease(ctx context.Context) (string, error) {
	if r.opts.Version != "" {
		return r.opts.Version, nil
	}

	return r.fetcher.Latest(ctx, r.cfg.WorkDir)
}

// obtainTarballs copies local tarballs or downloads them, and logs their digests.
func (r *runner) obtainTarballs(ctx context.Context, release string) ([]string, error) {
	var (
		tarballs []string
		err      error
	)

	if r.opts.SourceDir != "" {
		tarballs, err = fetch.CopyLocal(ctx, r.opts.SourceDir, r.cfg.WorkDir, release)
	} else {
		tarballs, err = r.fetcher.Download(ctx, r.cfg.WorkDir, release)
	}

	if err != nil {
		return nil, err
	}

	for _, tarball := range tarballs {
		if err = logTarball(ctx, tarball); err != nil {
			return nil, err
		}
	}

	return tarballs, nil
}

// logTarball logs the size and digest of a staged tarball.
func logTarball(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", fetch.ErrFetch, path, err)
	}

	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", fetch.ErrFetch, path, err)
	}

	sum, err := digest.FromReader(file)
	if err != nil {
		return fmt.Errorf("%w: digest %s: %w", fetch.ErrFetch, path, err)
	}

	logger.InfoKV(ctx, "Tarball staged",
		"path", path,
		"size", humanize.Bytes(uint64(info.Size())), //nolint:gosec // File sizes are never negative.
		"digest", sum.String())

	return nil
}

// loadManifest returns the current manifest, or nil when no manifest is maintained.
func (r *runner) loadManifest(ctx context.Context) ([]byte, error) {
	if r.manifest == nil {
		return nil, nil
	}

	contents, err := r.manifest.Load(ctx)
	if err != nil {
		return nil, err
	}

	return contents, nil
}

// write persists the table, then the manifest, then the version marker.
// The marker is the commit point: it only changes once every other output is in place,
// so a failed run is repeated instead of being skipped.
func (r *runner) write(ctx context.Context, artifacts *Artifacts) error {
	source := artifacts.Table.Source

	if err := atomicfile.WriteFile(r.dataFile, source, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write zone table %s: %w", r.dataFile, err)
	}

	logger.InfoKV(ctx, "Zone table written",
		"path", r.dataFile,
		"format", r.dialect.Name(),
		"zones", artifacts.Table.Count,
		"size", humanize.Bytes(uint64(len(source))),
		"digest", digest.FromBytes(source).String())

	if r.manifest != nil && artifacts.Manifest != nil {
		if err := r.manifest.Save(ctx, artifacts.Manifest); err != nil {
			return fmt.Errorf("write manifest %s: %w", r.manifest.Path(), err)
		}

		logger.InfoKV(ctx, "Manifest updated", "path", r.manifest.Path())
	}

	if err := r.state.Save(ctx, artifacts.Version); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}

	logger.InfoKV(ctx, "Packaging completed", "version", artifacts.Version.String())

	return nil
}
