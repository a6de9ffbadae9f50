// Package tzversion translates IANA time zone database release identifiers
// into the numeric package versions used by the generated data crate.
//
// An IANA release is a four-digit year followed by a letter sequence that
// rolls over as a, b, ..., z, za, zb, ..., zz, zza, and so on. The package
// version keeps the year and folds the letters into a positive patch number
// so that releases sort numerically.
//
// ShouldSkip decides whether a candidate release has already been packaged.
package tzversion
