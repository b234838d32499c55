// Package history holds the typed entities mined from a git repository:
// contributors, commits, tags and the derived versions that group them.
package history

import (
	"regexp"
	"time"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/semver"
)

// Role names a contributor's relationship to a commit or tag.
type Role string

const (
	RoleAuthor    Role = "Author"
	RoleCommitter Role = "Committer"
	RoleTagger    Role = "Tagger"
)

// Roles lists every contributor role in precedence order.
var Roles = []Role{RoleAuthor, RoleCommitter, RoleTagger}

// Contributor is a name/email pair embedded by value in commit and tag
// role maps. It has no identity of its own beyond the email.
type Contributor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsEmpty reports whether both fields are blank.
func (c Contributor) IsEmpty() bool {
	return c.Name == "" && c.Email == ""
}

// Commit is one commit as fetched from the repository. Immutable once
// fetched: the classification may be re-derived but the SHA never changes.
type Commit struct {
	SHA              string                   `json:"sha"`
	Subject          string                   `json:"subject"`
	Body             string                   `json:"body"`
	Contributors     map[Role]Contributor     `json:"contributors"`
	ContributorDates map[Role]time.Time       `json:"contributorDates"`
	Conventional     *conventional.Commit     `json:"conventionalCommit"`
}

// NewCommit returns a Commit with initialized role maps.
func NewCommit() *Commit {
	return &Commit{
		Contributors:     make(map[Role]Contributor),
		ContributorDates: make(map[Role]time.Time),
	}
}

// IsConventional reports whether classification produced a usable summary.
func (c *Commit) IsConventional() bool {
	return c.Conventional != nil && !c.Conventional.IsEmpty()
}

// Date resolves the commit's timestamp: author date, falling back to
// committer date, then the zero time.
func (c *Commit) Date() time.Time {
	if d, ok := c.ContributorDates[RoleAuthor]; ok {
		return d
	}
	if d, ok := c.ContributorDates[RoleCommitter]; ok {
		return d
	}
	return time.Time{}
}

func (c *Commit) String() string {
	return c.Subject + "\n\n" + c.Body
}

var semverTagPattern = regexp.MustCompile(`^v[0-9]+\.[0-9]+\.[0-9]+`)

// Tag is one tag ref as fetched from the repository, annotated or
// lightweight, together with the commit it peels to.
type Tag struct {
	Ref              string               `json:"ref"`
	SHA              string               `json:"sha"`
	Name             string               `json:"name"`
	Commit           *Commit              `json:"commit"`
	Subject          string               `json:"subject"`
	Body             string               `json:"body"`
	Contributors     map[Role]Contributor `json:"contributors"`
	ContributorDates map[Role]time.Time   `json:"contributorDates"`
}

// NewTag returns a Tag with initialized role maps.
func NewTag() *Tag {
	return &Tag{
		Contributors:     make(map[Role]Contributor),
		ContributorDates: make(map[Role]time.Time),
	}
}

// IsSemanticVersionTag reports whether the tag name starts with a strict
// v{major}.{minor}.{patch} triple.
func (t *Tag) IsSemanticVersionTag() bool {
	return semverTagPattern.MatchString(t.Name)
}

// Date resolves the tag's timestamp: tagger date, falling back to author
// then committer date, then the zero time.
func (t *Tag) Date() time.Time {
	for _, role := range []Role{RoleTagger, RoleAuthor, RoleCommitter} {
		if d, ok := t.ContributorDates[role]; ok {
			return d
		}
	}
	return time.Time{}
}

func (t *Tag) String() string {
	return t.Name
}

// Version groups the commits released under one semantic-version tag, or the
// in-progress next version when Tag is nil. Commits are persisted by SHA
// reference and expanded against the commit store on read.
type Version struct {
	Name        string           `json:"name"`
	SemVer      semver.Version   `json:"semanticVersion"`
	Tag         *Tag             `json:"tag"`
	CommitSHAs  []string         `json:"commitSHAs"`
	Commits     []*Commit        `json:"-"`
	ReleaseDate time.Time        `json:"releaseDate"`
	Notes       map[int64]string `json:"notes"`
}

// NewVersion builds a Version for a semantic-version tag, resolving its
// name, numeric components and release date from the tag.
func NewVersion(tag *Tag) *Version {
	v := &Version{
		Tag:   tag,
		Notes: make(map[int64]string),
	}
	if tag != nil {
		v.Name = tag.Name
		if sv, err := semver.Parse(tag.Name); err == nil {
			v.SemVer = sv
		}
	}
	v.ReleaseDate = v.ResolveReleaseDate()
	return v
}

// ResolveReleaseDate picks the version's release timestamp: the tag's
// tagger, author or committer date, else the newest commit date, else now.
func (v *Version) ResolveReleaseDate() time.Time {
	if v.Tag != nil {
		for _, role := range []Role{RoleTagger, RoleAuthor, RoleCommitter} {
			if d, ok := v.Tag.ContributorDates[role]; ok {
				return d
			}
		}
	}
	var newest time.Time
	for _, c := range v.Commits {
		if d := c.Date(); d.After(newest) {
			newest = d
		}
	}
	if !newest.IsZero() {
		return newest
	}
	return time.Now().UTC()
}

// CommitStats counts the version's commits by classification: one bucket per
// commit type, plus "BreakingChange" and "NonConventionalCommit".
func (v *Version) CommitStats() map[string]int {
	stats := map[string]int{"BreakingChange": 0, "NonConventionalCommit": 0}
	for _, t := range conventional.Types {
		stats[string(t)] = 0
	}
	for _, c := range v.Commits {
		if !c.IsConventional() {
			stats["NonConventionalCommit"]++
			continue
		}
		stats[string(c.Conventional.Type)]++
		if c.Conventional.IsBreakingChange() {
			stats["BreakingChange"]++
		}
	}
	return stats
}

func (v *Version) String() string {
	return v.SemVer.String()
}
