package zonetable

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oshokin/tzpack/internal/domain/zone"
	"github.com/oshokin/tzpack/internal/logger"
)

// Collect reads the compiled zoneinfo file of every name from dir.
//
// Names are trimmed, deduplicated and sorted. A name whose path is not a
// regular file (it is missing, a directory, or a dangling link) is left out
// without error; the upstream name list carries such entries. Symbolic links
// to regular files are followed.
func Collect(ctx context.Context, dir string, names []string) ([]zone.Record, error) {
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			unique = append(unique, name)
		}
	}

	slices.Sort(unique)
	unique = slices.Compact(unique)

	records := make([]zone.Record, 0, len(unique))

	for _, name := range unique {
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return nil, fmt.Errorf("%w: %q escapes the zoneinfo directory", ErrInvalidZoneName, name)
		}

		path := filepath.Join(dir, filepath.FromSlash(name))

		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.DebugKV(ctx, "Skipping zone without file", "zone", name)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("stat zone %q: %w", name, err)
		}

		if !info.Mode().IsRegular() {
			logger.DebugKV(ctx, "Skipping zone that is not a regular file", "zone", name, "mode", info.Mode().String())
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read zone %q: %w", name, err)
		}

		records = append(records, zone.Record{Name: name, Data: data})
	}

	return records, nil
}
