package updater

import (
	"errors"
	"fmt"

	"github.com/oshokin/tzpack/internal/domain/tzversion"
	"github.com/oshokin/tzpack/internal/domain/zone"
	"github.com/oshokin/tzpack/internal/repository/manifest"
	"github.com/oshokin/tzpack/internal/zonetable"
)

var errNoDecision = errors.New("decision is not set")

// Decision is the outcome of comparing a release with the last packaged version.
type Decision struct {
	// Release is the IANA release identifier, e.g. "2024b".
	Release string
	// Candidate is the package version of Release.
	Candidate tzversion.PackageVersion
	// Last is the last packaged version, nil when nothing was packaged yet.
	Last *tzversion.PackageVersion
	// Skip is set when Last is the same as or newer than Candidate.
	Skip bool
}

// Artifacts are the outputs of a packaging run.
type Artifacts struct {
	// Version is the package version being published.
	Version tzversion.PackageVersion
	// Table is the rendered zone table.
	Table *zonetable.Table
	// Manifest is the updated manifest, nil when no manifest is maintained.
	Manifest []byte
}

// Plan translates the release and decides whether it needs packaging.
func Plan(release string, last *tzversion.PackageVersion) (*Decision, error) {
	candidate, err := tzversion.FromIANA(release)
	if err != nil {
		return nil, err
	}

	return &Decision{
		Release:   release,
		Candidate: candidate,
		Last:      last,
		Skip:      tzversion.ShouldSkip(candidate, last),
	}, nil
}

// Package renders every output of a run from the decision, the compiled zones
// and the current manifest. A nil manifest means no manifest is maintained.
func Package(
	decision *Decision,
	records []zone.Record,
	dialect zonetable.Dialect,
	currentManifest []byte,
) (*Artifacts, error) {
	if decision == nil {
		return nil, errNoDecision
	}

	table, err := zonetable.Encode(records, decision.Release, dialect)
	if err != nil {
		return nil, fmt.Errorf("encode zone table for %s: %w", decision.Release, err)
	}

	artifacts := &Artifacts{
		Version: decision.Candidate,
		Table:   table,
	}

	if currentManifest != nil {
		artifacts.Manifest, err = manifest.SetVersion(currentManifest, decision.Candidate)
		if err != nil {
			return nil, err
		}
	}

	return artifacts, nil
}
