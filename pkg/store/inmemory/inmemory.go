// Package inmemory is the map-backed Store used by tests and ephemeral
// runs. Nothing survives Close.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
)

// Store keeps all history in process memory behind a single RWMutex.
type Store struct {
	mu           sync.RWMutex
	commits      map[string]*history.Commit
	tags         map[string]*history.Tag
	versions     map[string]*history.Version
	contributors map[string]history.Contributor
}

var _ store.Store = (*Store)(nil)

// New builds an empty in-memory store.
func New() *Store {
	return &Store{
		commits:      make(map[string]*history.Commit),
		tags:         make(map[string]*history.Tag),
		versions:     make(map[string]*history.Version),
		contributors: make(map[string]history.Contributor),
	}
}

func (s *Store) AddCommit(_ context.Context, commit *history.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[commit.SHA] = commit
	s.recordContributors(commit.Contributors)
	return nil
}

func (s *Store) GetCommit(_ context.Context, sha string) (*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	commit, ok := s.commits[sha]
	if !ok {
		return nil, store.NotFoundError{Kind: "commit", Key: sha}
	}
	return commit, nil
}

func (s *Store) GetCommits(_ context.Context, shas []string) ([]*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	commits := make([]*history.Commit, 0, len(shas))
	for _, sha := range shas {
		if commit, ok := s.commits[sha]; ok {
			commits = append(commits, commit)
		}
	}
	return commits, nil
}

func (s *Store) CommitExists(_ context.Context, sha string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.commits[sha]
	return ok, nil
}

func (s *Store) NewestCommit(_ context.Context) (*history.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *history.Commit
	for _, commit := range s.commits {
		if newest == nil || commit.Date().After(newest.Date()) {
			newest = commit
		}
	}
	return newest, nil
}

func (s *Store) AddTag(_ context.Context, tag *history.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag.Ref] = tag
	s.recordContributors(tag.Contributors)
	return nil
}

func (s *Store) GetTag(_ context.Context, ref string) (*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.tags[ref]
	if !ok {
		return nil, store.NotFoundError{Kind: "tag", Key: ref}
	}
	return tag, nil
}

func (s *Store) TagExists(_ context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tags[ref]
	return ok, nil
}

func (s *Store) MaxTag(_ context.Context) (*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tags))
	byName := make(map[string]*history.Tag, len(s.tags))
	for _, tag := range s.tags {
		names = append(names, tag.Name)
		byName[tag.Name] = tag
	}
	if len(names) == 0 {
		return nil, nil
	}
	return byName[store.MaxTagName(names)], nil
}

func (s *Store) Tags(_ context.Context) ([]*history.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]*history.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *Store) AddVersion(_ context.Context, version *history.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *version
	stored.CommitSHAs = store.SnapshotCommitSHAs(version)
	stored.Commits = nil
	s.versions[stored.Name] = &stored
	return nil
}

func (s *Store) GetVersion(_ context.Context, name string) (*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	version, ok := s.versions[name]
	if !ok {
		return nil, store.NotFoundError{Kind: "version", Key: name}
	}
	return s.expand(version), nil
}

func (s *Store) VersionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.versions[name]
	return ok, nil
}

func (s *Store) MaxVersion(_ context.Context) (*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return s.expand(s.versions[store.MaxVersionName(names)]), nil
}

func (s *Store) VersionCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions), nil
}

func (s *Store) Versions(_ context.Context) ([]*history.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := make([]*history.Version, 0, len(s.versions))
	for _, version := range s.versions {
		versions = append(versions, s.expand(version))
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i].SemVer, versions[j].SemVer) < 0
	})
	return versions, nil
}

func (s *Store) Contributors(_ context.Context) ([]history.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contributors := make([]history.Contributor, 0, len(s.contributors))
	for _, c := range s.contributors {
		contributors = append(contributors, c)
	}
	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].Email < contributors[j].Email
	})
	return contributors, nil
}

func (s *Store) Close() error {
	return nil
}

// expand re-hydrates a version's commit list from the commit map. Callers
// must hold at least the read lock.
func (s *Store) expand(version *history.Version) *history.Version {
	out := *version
	out.Commits = make([]*history.Commit, 0, len(version.CommitSHAs))
	for _, sha := range version.CommitSHAs {
		if commit, ok := s.commits[sha]; ok {
			out.Commits = append(out.Commits, commit)
		}
	}
	return &out
}

func (s *Store) recordContributors(m map[history.Role]history.Contributor) {
	for _, c := range m {
		if !c.IsEmpty() {
			s.contributors[c.Email] = c
		}
	}
}
