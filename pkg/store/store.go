// Package store defines the capability interface for the durable local
// cache of commits, tags and derived versions. Backends are interchangeable:
// orchestration code depends only on this interface, never on a concrete
// adapter.
package store

import (
	"context"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
)

// NotFoundError is returned when a keyed entity does not exist in the store.
// It is distinct from an operational failure.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.Key
}

// Store persists repository history with idempotent upsert semantics:
// re-adding an entity with identical content leaves the store observably
// unchanged, re-adding with different content replaces the old value
// entirely. Commit, Tag and Version are keyed by SHA, Ref and Name.
//
// Max lookups return (nil, nil) when the store is empty; Get lookups return
// a NotFoundError for missing keys.
type Store interface {
	// AddCommit upserts a commit by SHA.
	AddCommit(ctx context.Context, commit *history.Commit) error
	// GetCommit retrieves one commit by SHA.
	GetCommit(ctx context.Context, sha string) (*history.Commit, error)
	// GetCommits retrieves the commits matching the given SHAs, in the
	// order the SHAs are listed. Unknown SHAs are skipped.
	GetCommits(ctx context.Context, shas []string) ([]*history.Commit, error)
	// CommitExists reports whether a commit is present.
	CommitExists(ctx context.Context, sha string) (bool, error)
	// NewestCommit returns the commit with the latest resolved date.
	NewestCommit(ctx context.Context) (*history.Commit, error)

	// AddTag upserts a tag by Ref.
	AddTag(ctx context.Context, tag *history.Tag) error
	// GetTag retrieves one tag by ref.
	GetTag(ctx context.Context, ref string) (*history.Tag, error)
	// TagExists reports whether a tag is present.
	TagExists(ctx context.Context, ref string) (bool, error)
	// MaxTag returns the tag with the highest version-ordered name.
	MaxTag(ctx context.Context) (*history.Tag, error)
	// Tags lists every stored tag.
	Tags(ctx context.Context) ([]*history.Tag, error)

	// AddVersion upserts a version by Name, snapshotting its commit list
	// as SHA references.
	AddVersion(ctx context.Context, version *history.Version) error
	// GetVersion retrieves one version by name, expanding its commit SHAs
	// into full commits from the commit store.
	GetVersion(ctx context.Context, name string) (*history.Version, error)
	// VersionExists reports whether a version is present.
	VersionExists(ctx context.Context, name string) (bool, error)
	// MaxVersion returns the version with the highest version-ordered
	// name, expanded like GetVersion.
	MaxVersion(ctx context.Context) (*history.Version, error)
	// VersionCount returns the number of stored versions.
	VersionCount(ctx context.Context) (int, error)
	// Versions lists every stored version, expanded like GetVersion.
	Versions(ctx context.Context) ([]*history.Version, error)

	// Contributors lists every contributor observed on stored commits and
	// tags, deduplicated by email.
	Contributors(ctx context.Context) ([]history.Contributor, error)

	// Close releases the backend's resources.
	Close() error
}

// MaxTagName picks the highest tag name under numeric semantic-version
// ordering, falling back to string comparison for non-semver names.
// Lexicographic-only ordering breaks across digit widths (v9 vs v10), so
// every backend routes its MaxTag through here.
func MaxTagName(names []string) string {
	return maxName(names)
}

// MaxVersionName picks the highest version name, same ordering as
// MaxTagName.
func MaxVersionName(names []string) string {
	return maxName(names)
}

func maxName(names []string) string {
	best := ""
	for i, name := range names {
		if i == 0 || semver.CompareNames(name, best) > 0 {
			best = name
		}
	}
	return best
}

// SnapshotCommitSHAs fixes a version's commit list as SHA references before
// persistence. When the version carries expanded commits they win; otherwise
// an existing SHA snapshot is kept.
func SnapshotCommitSHAs(v *history.Version) []string {
	if len(v.Commits) > 0 {
		shas := make([]string, len(v.Commits))
		for i, c := range v.Commits {
			shas[i] = c.SHA
		}
		return shas
	}
	return v.CommitSHAs
}
