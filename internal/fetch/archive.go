package fetch

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/oshokin/tzpack/internal/logger"
)

const (
	// versionFilename is the name of the version file in a tzdata archive.
	versionFilename = "version"
	// tzdbDirName is the unpacked source tree inside a version directory.
	tzdbDirName = "tzdb"
)

// errNoVersion is returned when an archive lacks a usable version file.
var errNoVersion = errors.New("no version file found")

// TreeDir returns the directory the tarballs of a release are unpacked into.
func TreeDir(workDir, version string) string {
	return filepath.Join(workDir, version, tzdbDirName)
}

// ReadVersion returns the trimmed contents of the version file of a gzip-compressed
// tzdata tarball.
func ReadVersion(r io.Reader) (string, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: read gzip: %w", ErrFetch, err)
	}

	defer func() {
		_ = gunzip.Close()
	}()

	tr := tar.NewReader(gunzip)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %w", ErrFetch, errNoVersion)
		}

		if err != nil {
			return "", fmt.Errorf("%w: read tar: %w", ErrFetch, err)
		}

		if header.Typeflag != tar.TypeReg || filepath.Clean(header.Name) != versionFilename {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return "", fmt.Errorf("%w: read version file: %w", ErrFetch, err)
		}

		version := strings.TrimSpace(string(data))
		if version == "" {
			return "", fmt.Errorf("%w: empty version file", ErrFetch)
		}

		return version, nil
	}
}

// Unpack extracts the tarballs into target, which is removed and recreated first.
func Unpack(ctx context.Context, tarballs []string, target string) error {
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrFetch, target, err)
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFetch, target, err)
	}

	for _, tarball := range tarballs {
		logger.InfoKV(ctx, "Unpacking tarball", "tarball", tarball, "target", target)

		if err := unpackFile(ctx, tarball, target); err != nil {
			return err
		}
	}

	return nil
}

// unpackFile extracts a single gzip-compressed tarball into target.
func unpackFile(ctx context.Context, tarball, target string) error {
	f, err := os.Open(filepath.Clean(tarball))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	defer func() {
		_ = f.Close()
	}()

	gunzip, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: read gzip %s: %w", ErrFetch, tarball, err)
	}

	defer func() {
		_ = gunzip.Close()
	}()

	tr := tar.NewReader(gunzip)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: read tar %s: %w", ErrFetch, tarball, err)
		}

		if err = extractEntry(ctx, tr, header, target); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFetch, tarball, err)
		}
	}
}

// extractEntry writes one archive entry below target.
// Only directories and regular files are extracted; tzdb archives contain nothing else.
func extractEntry(ctx context.Context, r io.Reader, header *tar.Header, target string) error {
	name := filepath.FromSlash(header.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("entry %q escapes the target directory", header.Name)
	}

	path := filepath.Join(target, name)

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(path, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		mode := header.FileInfo().Mode().Perm() | 0o600

		out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return err
		}

		if _, err = io.Copy(out, r); err != nil {
			_ = out.Close()
			return fmt.Errorf("extract %q: %w", header.Name, err)
		}

		return out.Close()
	default:
		logger.DebugKV(ctx, "Skipping archive entry", "entry", header.Name, "type", string(header.Typeflag))
		return nil
	}
}
