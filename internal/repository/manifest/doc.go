// Package manifest updates the version field of the package manifest.
//
// Only the first line of the form `version = "1.YYYY.N"` is rewritten; every
// other byte of the manifest is preserved.
package manifest
