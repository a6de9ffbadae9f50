// Package atomicfile replaces files in one step.
//
// New contents are staged next to the target, verified against their
// SHA-512 checksum and renamed over it by go-update, so readers observe
// either the old or the new file and never a partial write.
package atomicfile
