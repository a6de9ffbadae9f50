package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/oshokin/tzpack/internal/logger"
)

// CopyLocal stages the tarballs of a release from sourceDir and returns their paths.
// Unlike Download, staged copies are always overwritten, since the local tarballs
// are usually being patched between runs.
func CopyLocal(ctx context.Context, sourceDir, workDir, version string) ([]string, error) {
	targetDir := DownloadDir(workDir, version)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrFetch, targetDir, err)
	}

	locations := make([]string, 0, 2)

	for _, name := range TarballNames(version) {
		source := filepath.Join(sourceDir, name)
		location := filepath.Join(targetDir, name)

		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}

		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrFetch, source)
		}

		if _, err = os.Stat(location); err == nil {
			logger.InfoKV(ctx, "Tarball exists, overwriting", "path", location)
		}

		if err = cp.Copy(source, location); err != nil {
			return nil, fmt.Errorf("%w: copy %s: %w", ErrFetch, source, err)
		}

		locations = append(locations, location)
	}

	return locations, nil
}
