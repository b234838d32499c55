// Package jsonfile is the flat-document Store: one JSON document per
// collection under a data directory. Every mutation rewrites the affected
// document in full, which keeps the files trivially inspectable and
// hand-editable at the cost of write amplification that is irrelevant at
// repository-history scale.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
)

const (
	contributorsFile = "contributors.json"
	commitsFile      = "commits.json"
	tagsFile         = "tags.json"
	versionsFile     = "versions.json"
)

// Store persists each collection as one JSON array document. All collections
// are loaded at open and held in memory; reads never touch the disk again.
type Store struct {
	mu  sync.RWMutex
	dir string

	commits      []*history.Commit
	tags         []*history.Tag
	versions     []*history.Version
	contributors []history.Contributor
}

var _ store.Store = (*Store)(nil)

// Open loads the JSON documents under dir, creating the directory when it
// does not exist. Missing documents read as empty collections.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("jsonfile: data directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{dir: dir}
	if err := s.load(contributorsFile, &s.contributors); err != nil {
		return nil, err
	}
	if err := s.load(commitsFile, &s.commits); err != nil {
		return nil, err
	}
	if err := s.load(tagsFile, &s.tags); err != nil {
		return nil, err
	}
	if err := s.load(versionsFile, &s.versions); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the data directory the store reads and writes.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) AddCommit(_ context.Context, commit *history.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits = upsert(s.commits, commit, func(c *history.Commit) string { return c.SHA })
	if err := s.save(commitsFile, s.commits); err != nil {
		return err
	}
	return s.recordContributors(commit.Contributors)
}

func (s *Store) GetCommit(_ context.Context, sha string) (*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.commits {
		if c.SHA == sha {
			return c, nil
		}
	}
	return nil, store.NotFoundError{Kind: "commit", Key: sha}
}

func (s *Store) GetCommits(_ context.Context, shas []string) ([]*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupCommits(shas), nil
}

func (s *Store) CommitExists(_ context.Context, sha string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.commits {
		if c.SHA == sha {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) NewestCommit(_ context.Context) (*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *history.Commit
	for _, c := range s.commits {
		if newest == nil || c.Date().After(newest.Date()) {
			newest = c
		}
	}
	return newest, nil
}

func (s *Store) AddTag(_ context.Context, tag *history.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = upsert(s.tags, tag, func(t *history.Tag) string { return t.Ref })
	if err := s.save(tagsFile, s.tags); err != nil {
		return err
	}
	return s.recordContributors(tag.Contributors)
}

func (s *Store) GetTag(_ context.Context, ref string) (*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.Ref == ref {
			return t, nil
		}
	}
	return nil, store.NotFoundError{Kind: "tag", Key: ref}
}

func (s *Store) TagExists(_ context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.Ref == ref {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MaxTag(_ context.Context) (*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.tags) == 0 {
		return nil, nil
	}
	names := make([]string, len(s.tags))
	for i, t := range s.tags {
		names[i] = t.Name
	}
	max := store.MaxTagName(names)
	for _, t := range s.tags {
		if t.Name == max {
			return t, nil
		}
	}
	return nil, nil
}

func (s *Store) Tags(_ context.Context) ([]*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]*history.Tag, len(s.tags))
	copy(tags, s.tags)
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *Store) AddVersion(_ context.Context, version *history.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *version
	stored.CommitSHAs = store.SnapshotCommitSHAs(version)
	stored.Commits = nil
	s.versions = upsert(s.versions, &stored, func(v *history.Version) string { return v.Name })
	return s.save(versionsFile, s.versions)
}

func (s *Store) GetVersion(_ context.Context, name string) (*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.versions {
		if v.Name == name {
			return s.expand(v), nil
		}
	}
	return nil, store.NotFoundError{Kind: "version", Key: name}
}

func (s *Store) VersionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.versions {
		if v.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MaxVersion(_ context.Context) (*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.versions) == 0 {
		return nil, nil
	}
	names := make([]string, len(s.versions))
	for i, v := range s.versions {
		names[i] = v.Name
	}
	max := store.MaxVersionName(names)
	for _, v := range s.versions {
		if v.Name == max {
			return s.expand(v), nil
		}
	}
	return nil, nil
}

func (s *Store) VersionCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions), nil
}

func (s *Store) Versions(_ context.Context) ([]*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make([]*history.Version, len(s.versions))
	for i, v := range s.versions {
		versions[i] = s.expand(v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i].SemVer, versions[j].SemVer) < 0
	})
	return versions, nil
}

func (s *Store) Contributors(_ context.Context) ([]history.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contributors := make([]history.Contributor, len(s.contributors))
	copy(contributors, s.contributors)
	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].Email < contributors[j].Email
	})
	return contributors, nil
}

func (s *Store) Close() error {
	return nil
}

// upsert replaces a keyed element by removing any existing entry and
// appending the new one, preserving the document's append order otherwise.
func upsert[T any](list []*T, item *T, key func(*T) string) []*T {
	k := key(item)
	out := make([]*T, 0, len(list)+1)
	for _, existing := range list {
		if key(existing) != k {
			out = append(out, existing)
		}
	}
	return append(out, item)
}

func (s *Store) expand(version *history.Version) *history.Version {
	out := *version
	out.Commits = s.lookupCommits(version.CommitSHAs)
	return &out
}

func (s *Store) lookupCommits(shas []string) []*history.Commit {
	bySHA := make(map[string]*history.Commit, len(s.commits))
	for _, c := range s.commits {
		bySHA[c.SHA] = c
	}
	commits := make([]*history.Commit, 0, len(shas))
	for _, sha := range shas {
		if c, ok := bySHA[sha]; ok {
			commits = append(commits, c)
		}
	}
	return commits
}

// recordContributors merges new contributors into the document, keyed by
// email. Callers must hold the write lock.
func (s *Store) recordContributors(m map[history.Role]history.Contributor) error {
	changed := false
	for _, c := range m {
		if c.IsEmpty() {
			continue
		}
		found := false
		for i, existing := range s.contributors {
			if existing.Email == c.Email {
				if existing != c {
					s.contributors[i] = c
					changed = true
				}
				found = true
				break
			}
		}
		if !found {
			s.contributors = append(s.contributors, c)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(contributorsFile, s.contributors)
}

func (s *Store) load(name string, dst any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Store) save(name string, src any) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
