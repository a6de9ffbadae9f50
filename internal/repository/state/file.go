package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/tzpack/internal/atomicfile"
	"github.com/oshokin/tzpack/internal/config"
	"github.com/oshokin/tzpack/internal/domain/tzversion"
	"github.com/oshokin/tzpack/internal/logger"
)

// Repository defines persistence operations for the last packaged version.
type Repository interface {
	Load(ctx context.Context) (tzversion.PackageVersion, error)
	Save(ctx context.Context, version tzversion.PackageVersion) error
}

// FileRepository stores the version marker as plain text on disk.
type FileRepository struct {
	// path is the filesystem location of the version marker.
	path string
	// mu serializes access to the marker file.
	mu sync.Mutex
}

// ErrNotFound is returned when the version marker does not exist yet.
var ErrNotFound = errors.New("version marker not found")

// NewFileRepository creates a repository for the marker at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the marker file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and parses the marker.
// Parse failures wrap tzversion.ErrInvalidPackageVersion.
func (r *FileRepository) Load(_ context.Context) (tzversion.PackageVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tzversion.PackageVersion{}, ErrNotFound
		}

		return tzversion.PackageVersion{}, fmt.Errorf("read version marker: %w", err)
	}

	version, err := tzversion.ParsePackageVersion(string(contents))
	if err != nil {
		return tzversion.PackageVersion{}, fmt.Errorf("decode version marker: %w", err)
	}

	return version, nil
}

// Save replaces the marker atomically.
func (r *FileRepository) Save(_ context.Context, version tzversion.PackageVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := atomicfile.WriteFile(r.path, marshal(version), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}

	return nil
}

// marshal renders the marker contents for version: "year.patch" without a trailing newline.
func marshal(version tzversion.PackageVersion) []byte {
	return []byte(version.String())
}

// LoadLast returns the last packaged version, or nil when there is none.
// A missing, unreadable or malformed marker is treated as no state, so the
// pipeline packages the candidate instead of skipping it.
func LoadLast(ctx context.Context, repo Repository) *tzversion.PackageVersion {
	version, err := repo.Load(ctx)
	if err == nil {
		return &version
	}

	if errors.Is(err, ErrNotFound) {
		logger.Info(ctx, "No version marker found, treating the release as new")
	} else {
		logger.WarnKV(ctx, "Ignoring unusable version marker", "error", err)
	}

	return nil
}
