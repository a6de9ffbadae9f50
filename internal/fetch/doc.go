// Package fetch obtains IANA time zone database releases.
//
// Releases come from the [IANA data server] or from a local directory of
// tarballs, which is useful when building against a locally patched tzdb.
// Tarballs are staged under <work dir>/<version>/download and unpacked into
// <work dir>/<version>/tzdb.
//
// Every failure is wrapped in ErrFetch. Requests are not retried.
//
// [IANA data server]: https://www.iana.org/time-zones
package fetch
