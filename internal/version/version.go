package version

import "fmt"

var (
	// Version is the release of tzpack itself, not of the packaged tzdb.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time.
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the version string.
func Short() string {
	return Version
}

// Full returns the version together with the commit and the build time.
func Full() string {
	return fmt.Sprintf("tzpack %s (commit %s, built at %s)", Version, Commit, BuildTime)
}
