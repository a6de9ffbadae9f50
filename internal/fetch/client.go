package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/oshokin/tzpack/internal/domain/tzversion"
	"github.com/oshokin/tzpack/internal/logger"
)

const (
	// tzdataPrefix starts the file name of data tarballs.
	tzdataPrefix = "tzdata"
	// tzcodePrefix starts the file name of code tarballs.
	tzcodePrefix = "tzcode"
	// tarballSuffix ends every release tarball name.
	tarballSuffix = ".tar.gz"
	// downloadDirName is the staging directory for tarballs inside a version directory.
	downloadDirName = "download"
	// stagingPattern names partially written downloads.
	stagingPattern = ".download-*"
)

var (
	// ErrFetch wraps every failure to obtain or unpack a release.
	ErrFetch = errors.New("fetch release")
	// errBadHTTPStatus is returned for responses other than 200 OK.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// Client downloads releases from the IANA data server.
// The zero value is not usable: ReleaseURL and LatestURL must be set.
type Client struct {
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	//
	// Tests replace it with a client whose http.RoundTripper returns canned responses.
	HTTPClient *http.Client
	// ReleaseURL is the directory holding tzdata<v>.tar.gz and tzcode<v>.tar.gz.
	ReleaseURL string
	// LatestURL is the tarball of the newest tzdata release.
	LatestURL string
}

// httpClient returns the http.Client used by the client.
func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}

	return c.HTTPClient
}

// TarballNames returns the tzdata and tzcode tarball names of a release, in that order.
func TarballNames(version string) []string {
	return []string{
		tzdataPrefix + version + tarballSuffix,
		tzcodePrefix + version + tarballSuffix,
	}
}

// DownloadDir returns the staging directory for the tarballs of a release.
func DownloadDir(workDir, version string) string {
	return filepath.Join(workDir, version, downloadDirName)
}

// Latest resolves the newest release by downloading the latest tzdata tarball
// and reading its version file. The tarball is kept in the download directory
// so that Download does not fetch it again.
func (c *Client) Latest(ctx context.Context, workDir string) (string, error) {
	logger.InfoKV(ctx, "Resolving the latest release", "url", c.LatestURL)

	body, err := c.get(ctx, c.LatestURL)
	if err != nil {
		return "", err
	}

	defer closeBody(body)

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %w", ErrFetch, c.LatestURL, err)
	}

	version, err := ReadVersion(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	if _, err = tzversion.FromIANA(version); err != nil {
		return "", fmt.Errorf("%w: latest release: %w", ErrFetch, err)
	}

	target := filepath.Join(DownloadDir(workDir, version), TarballNames(version)[0])
	if err = writeStaged(target, bytes.NewReader(data)); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Resolved the latest release", "version", version)

	return version, nil
}

// Download fetches the tarballs of a release into its download directory and
// returns their paths. Tarballs already present are reused.
func (c *Client) Download(ctx context.Context, workDir, version string) ([]string, error) {
	targetDir := DownloadDir(workDir, version)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrFetch, targetDir, err)
	}

	locations := make([]string, 0, 2)

	for _, name := range TarballNames(version) {
		location := filepath.Join(targetDir, name)
		locations = append(locations, location)

		if _, err := os.Stat(location); err == nil {
			logger.InfoKV(ctx, "Tarball already exists, skipping", "path", location)
			continue
		}

		fileURL, err := url.JoinPath(c.ReleaseURL, name)
		if err != nil {
			return nil, fmt.Errorf("%w: join URL: %w", ErrFetch, err)
		}

		logger.InfoKV(ctx, "Downloading tarball", "file", name, "url", fileURL)

		if err = c.downloadTo(ctx, fileURL, location); err != nil {
			return nil, err
		}
	}

	return locations, nil
}

// downloadTo streams the resource at rawURL into target.
func (c *Client) downloadTo(ctx context.Context, rawURL, target string) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}

	defer closeBody(body)

	return writeStaged(target, body)
}

// get issues a GET request and returns the body of a 200 OK response.
// The caller must close the returned body.
func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request for %q: %w", ErrFetch, rawURL, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %q: %w", ErrFetch, rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		closeBody(resp.Body)

		return nil, fmt.Errorf("%w: GET %q: %s: %w", ErrFetch, rawURL, resp.Status, errBadHTTPStatus)
	}

	return resp.Body, nil
}

// closeBody drains and closes a response body so the connection can be reused.
func closeBody(body io.ReadCloser) {
	if body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// writeStaged copies r into a temporary file next to target and renames it into place,
// so an interrupted download never leaves a truncated tarball behind.
func writeStaged(target string, r io.Reader) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrFetch, dir, err)
	}

	tmp, err := os.CreateTemp(dir, stagingPattern)
	if err != nil {
		return fmt.Errorf("%w: stage %s: %w", ErrFetch, target, err)
	}

	tmpPath := tmp.Name()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("%w: write %s: %w", ErrFetch, target, err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("%w: write %s: %w", ErrFetch, target, err)
	}

	if err = os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("%w: rename %s: %w", ErrFetch, target, err)
	}

	return nil
}
