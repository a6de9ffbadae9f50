// Package state persists the last packaged version.
//
// The FileRepository reads and writes the version marker, a one-line
// "year.patch" text file, and exposes a Repository interface that the
// updater service depends on.
package state
