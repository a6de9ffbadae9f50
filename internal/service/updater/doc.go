// Package updater drives a tzpack run.
//
// Run resolves the release, consults the version marker, fetches and builds
// the release, encodes the zone table and writes the table, the version marker
// and the manifest. The decision and packaging steps (Plan and Package) are
// pure: the last packaged version and the current manifest are passed in and
// the new artifacts are returned, so nothing is written until every output
// has been computed.
package updater
