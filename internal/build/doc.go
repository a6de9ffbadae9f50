// Package build compiles an unpacked tzdb tree with the upstream Makefile.
//
// Builder runs `make install` into a scratch DESTDIR with slim zoneinfo
// output and no posixrules file, asks `make zonenames` for the zone list, and
// moves the installed zoneinfo tree next to the source tree. Every failure is
// wrapped in ErrBuild.
package build
