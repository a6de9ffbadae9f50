package tzversion

// ShouldSkip reports whether a candidate release needs no packaging because
// the last recorded version is the same or newer.
// A nil last version means nothing was packaged yet, so the candidate is never skipped.
func ShouldSkip(candidate PackageVersion, last *PackageVersion) bool {
	if last == nil {
		return false
	}

	return !last.Less(candidate)
}
