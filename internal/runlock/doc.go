// Package runlock keeps two tzpack runs from sharing a work directory.
//
// The lock is a marker file holding the owner's process ID. A marker whose
// process no longer exists is stale and is taken over.
package runlock
