package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/oshokin/tzpack/internal/atomicfile"
	"github.com/oshokin/tzpack/internal/config"
	"github.com/oshokin/tzpack/internal/domain/tzversion"
)

// ErrVersionFieldNotFound is returned when the manifest has no version line to rewrite.
var ErrVersionFieldNotFound = errors.New("manifest version field not found")

// versionField matches the crate version line; the leading "1." is the major version
// of the crate, followed by the package version.
var versionField = regexp.MustCompile(`(?m)^version = "1\.\d{4,}\.\d+"`)

// SetVersion returns a copy of contents with the first version field set to version.
func SetVersion(contents []byte, version tzversion.PackageVersion) ([]byte, error) {
	loc := versionField.FindIndex(contents)
	if loc == nil {
		return nil, ErrVersionFieldNotFound
	}

	replacement := fmt.Appendf(nil, `version = "1.%s"`, version)

	updated := make([]byte, 0, len(contents)-(loc[1]-loc[0])+len(replacement))
	updated = append(updated, contents[:loc[0]]...)
	updated = append(updated, replacement...)
	updated = append(updated, contents[loc[1]:]...)

	return updated, nil
}

// FileRepository reads and replaces a manifest on disk.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
}

// NewFileRepository creates a repository for the manifest at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: filepath.Clean(path)}
}

// Path returns the location of the manifest.
func (r *FileRepository) Path() string {
	return r.path
}

// Load returns the manifest contents.
func (r *FileRepository) Load(_ context.Context) ([]byte, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return contents, nil
}

// Save replaces the manifest atomically.
func (r *FileRepository) Save(_ context.Context, contents []byte) error {
	if err := atomicfile.WriteFile(r.path, contents, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
