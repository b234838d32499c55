// Package release orchestrates the sync/derive/release pipeline: it pulls
// history out of git into the store, partitions commits into tagged
// versions, derives the next semantic version from unreleased commits and
// drives the commit/tag/push finalization sequence.
package release

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/gitcli"
	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
)

// History is the slice of repository operations the engine needs. It is
// satisfied by *gitcli.Runner and faked in tests.
type History interface {
	Verify(ctx context.Context) error
	SetPruneTags(ctx context.Context) error
	Fetch(ctx context.Context, includeTags bool) error
	CurrentBranch(ctx context.Context) (string, error)
	RemoteOriginURL(ctx context.Context) string

	ListAllTags(ctx context.Context) ([]gitcli.TagLine, error)
	ListAllCommits(ctx context.Context) ([]gitcli.CommitLine, error)
	GetCommit(ctx context.Context, sha string) (*history.Commit, error)
	GetTag(ctx context.Context, refOrName string) (*history.Tag, error)
	FirstCommit(ctx context.Context) (*history.Commit, error)
	CommitsBetween(ctx context.Context, fromSHA, toRef string) ([]*history.Commit, error)
	CommitsSince(ctx context.Context, fromSHA string) ([]*history.Commit, error)
	AllCommits(ctx context.Context) ([]*history.Commit, error)

	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) (*history.Commit, error)
	CreateAnnotatedTag(ctx context.Context, name, commitSHA, message string) (*history.Tag, error)
	Push(ctx context.Context) error
	PushTag(ctx context.Context, name string) error
}

// Engine drives one run of the pipeline. Runs are single-threaded and
// synchronous; resumability comes from the store's idempotent upserts.
type Engine struct {
	git   History
	store store.Store
	log   *slog.Logger
	runID uuid.UUID
}

// NewEngine builds an Engine with a fresh run identifier.
func NewEngine(git History, st store.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		git:   git,
		store: st,
		log:   log,
		runID: uuid.New(),
	}
}

// RunID returns this engine's run identifier.
func (e *Engine) RunID() string {
	return e.runID.String()
}

// SyncResult summarizes one Sync run.
type SyncResult struct {
	RunID        string
	Branch       string
	CommitsAdded int
	TagsAdded    int
	CommitCount  int
	TagCount     int
	VersionCount int
	MaxVersion   string
}

// Sync pulls tags and commits the store does not know yet, then partitions
// the tagged history into versions. Safe to re-run at any time.
func (e *Engine) Sync(ctx context.Context) (*SyncResult, error) {
	if err := e.git.Verify(ctx); err != nil {
		return nil, err
	}

	log := e.log.With("run", e.runID.String())
	res := &SyncResult{RunID: e.runID.String()}

	if branch, err := e.git.CurrentBranch(ctx); err == nil {
		res.Branch = branch
	}

	if err := e.git.SetPruneTags(ctx); err != nil {
		log.Warn("could not enable tag pruning", "error", err)
	}
	if err := e.git.Fetch(ctx, true); err != nil {
		log.Warn("fetch failed, continuing with local refs", "error", err)
	}

	added, err := e.syncCommits(ctx, log)
	if err != nil {
		return nil, err
	}
	res.CommitsAdded = added
	res.CommitCount, res.TagCount = added, 0

	tagsAdded, err := e.syncTags(ctx, log)
	if err != nil {
		return nil, err
	}
	res.TagsAdded = tagsAdded

	if err := e.syncVersions(ctx, log); err != nil {
		return nil, err
	}

	tags, err := e.store.Tags(ctx)
	if err != nil {
		return nil, err
	}
	res.TagCount = len(tags)

	lines, err := e.git.ListAllCommits(ctx)
	if err != nil {
		return nil, err
	}
	res.CommitCount = len(lines)

	if res.VersionCount, err = e.store.VersionCount(ctx); err != nil {
		return nil, err
	}
	if maxVersion, err := e.store.MaxVersion(ctx); err == nil && maxVersion != nil {
		res.MaxVersion = maxVersion.Name
	}

	log.Info("sync complete",
		"commitsAdded", res.CommitsAdded,
		"tagsAdded", res.TagsAdded,
		"versions", res.VersionCount)
	return res, nil
}

// syncCommits persists every commit the store does not know yet.
func (e *Engine) syncCommits(ctx context.Context, log *slog.Logger) (int, error) {
	lines, err := e.git.ListAllCommits(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, line := range lines {
		exists, err := e.store.CommitExists(ctx, line.SHA)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		commit, err := e.git.GetCommit(ctx, line.SHA)
		if err != nil {
			return added, fmt.Errorf("fetching commit %s: %w", line.SHA, err)
		}
		if err := e.store.AddCommit(ctx, commit); err != nil {
			return added, err
		}
		added++
	}
	log.Debug("commits synced", "total", len(lines), "added", added)
	return added, nil
}

// syncTags persists every tag the store does not know yet.
func (e *Engine) syncTags(ctx context.Context, log *slog.Logger) (int, error) {
	lines, err := e.git.ListAllTags(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, line := range lines {
		exists, err := e.store.TagExists(ctx, line.Ref)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		tag, err := e.git.GetTag(ctx, line.Ref)
		if err != nil {
			return added, fmt.Errorf("fetching tag %s: %w", line.Ref, err)
		}
		if tag.Commit != nil {
			if err := e.store.AddCommit(ctx, tag.Commit); err != nil {
				return added, err
			}
		}
		if err := e.store.AddTag(ctx, tag); err != nil {
			return added, err
		}
		added++
	}
	log.Debug("tags synced", "total", len(lines), "added", added)
	return added, nil
}

// syncVersions partitions tagged history into versions: the first semantic
// version tag owns the root commit through its own commit, every later tag
// owns the commits after the previous tag through its own.
func (e *Engine) syncVersions(ctx context.Context, log *slog.Logger) error {
	tags, err := e.store.Tags(ctx)
	if err != nil {
		return err
	}

	var semverTags []*history.Tag
	for _, t := range tags {
		if t.IsSemanticVersionTag() && t.Commit != nil {
			semverTags = append(semverTags, t)
		}
	}
	if len(semverTags) == 0 {
		return nil
	}
	sort.Slice(semverTags, func(i, j int) bool {
		return semver.CompareNames(semverTags[i].Name, semverTags[j].Name) < 0
	})

	root, err := e.git.FirstCommit(ctx)
	if err != nil {
		return err
	}

	var prev *history.Tag
	for _, tag := range semverTags {
		exists, err := e.store.VersionExists(ctx, tag.Name)
		if err != nil {
			return err
		}
		if exists {
			prev = tag
			continue
		}

		commits, err := e.versionCommits(ctx, prev, tag, root)
		if err != nil {
			return err
		}

		v := history.NewVersion(tag)
		v.Commits = commits
		v.ReleaseDate = v.ResolveReleaseDate()
		for _, c := range commits {
			if err := e.store.AddCommit(ctx, c); err != nil {
				return err
			}
		}
		if err := e.store.AddVersion(ctx, v); err != nil {
			return err
		}
		log.Debug("version persisted", "version", v.Name, "commits", len(commits))
		prev = tag
	}
	return nil
}

// versionCommits resolves the commit range one tagged version owns. The
// first version includes the root commit; later versions start just after
// the previous tag's commit. Every version includes its own tag's commit.
func (e *Engine) versionCommits(ctx context.Context, prev, tag *history.Tag, root *history.Commit) ([]*history.Commit, error) {
	if prev == nil {
		if root != nil && tag.Commit.SHA == root.SHA {
			return []*history.Commit{root}, nil
		}
		commits, err := e.git.CommitsBetween(ctx, root.SHA, tag.Name)
		if err != nil {
			return nil, err
		}
		commits = ensureOldest(commits, root)
		return ensureNewest(commits, tag.Commit), nil
	}

	commits, err := e.git.CommitsBetween(ctx, prev.Commit.SHA, tag.Name)
	if err != nil {
		return nil, err
	}
	return ensureNewest(commits, tag.Commit), nil
}

// ensureNewest prepends c when the newest-first list does not contain it.
func ensureNewest(commits []*history.Commit, c *history.Commit) []*history.Commit {
	if c == nil || containsSHA(commits, c.SHA) {
		return commits
	}
	return append([]*history.Commit{c}, commits...)
}

// ensureOldest appends c when the newest-first list does not contain it.
func ensureOldest(commits []*history.Commit, c *history.Commit) []*history.Commit {
	if c == nil || containsSHA(commits, c.SHA) {
		return commits
	}
	return append(commits, c)
}

func containsSHA(commits []*history.Commit, sha string) bool {
	for _, c := range commits {
		if c.SHA == sha {
			return true
		}
	}
	return false
}

// Derivation is the outcome of Derive: the unreleased commits and the next
// version they add up to. Next is nil when there is nothing to release.
type Derivation struct {
	Current *history.Version
	Next    *history.Version
	Element semver.Element
	Stats   map[string]int
	Commits []*history.Commit
}

// Derive computes the next version from the commits after the newest
// released tag. With no prior version the whole history becomes v1.0.0.
func (e *Engine) Derive(ctx context.Context) (*Derivation, error) {
	current, err := e.store.MaxVersion(ctx)
	if err != nil {
		return nil, err
	}

	if current == nil || current.Tag == nil || current.Tag.Commit == nil {
		return e.deriveFirst(ctx)
	}

	commits, err := e.git.CommitsSince(ctx, current.Tag.Commit.SHA)
	if err != nil {
		return nil, err
	}
	d := &Derivation{Current: current, Commits: commits}
	if len(commits) == 0 {
		return d, nil
	}

	pending := &history.Version{Commits: commits}
	d.Stats = pending.CommitStats()
	switch {
	case d.Stats["BreakingChange"] > 0:
		d.Element = semver.Major
	case d.Stats[string(conventional.TypeFeat)] > 0:
		d.Element = semver.Minor
	default:
		d.Element = semver.Patch
	}

	next := current.SemVer.Bump(d.Element)
	d.Next = &history.Version{
		Name:    next.Name,
		SemVer:  next,
		Commits: commits,
		Notes:   make(map[int64]string),
	}
	d.Next.ReleaseDate = d.Next.ResolveReleaseDate()

	e.log.Info("derived next version",
		"run", e.runID.String(),
		"current", current.Name,
		"next", next.Name,
		"bump", d.Element.String(),
		"commits", len(commits))
	return d, nil
}

// deriveFirst bootstraps v1.0.0 from the entire history.
func (e *Engine) deriveFirst(ctx context.Context) (*Derivation, error) {
	commits, err := e.git.AllCommits(ctx)
	if err != nil {
		return nil, err
	}
	d := &Derivation{Commits: commits}
	if len(commits) == 0 {
		return d, nil
	}

	pending := &history.Version{Commits: commits}
	d.Stats = pending.CommitStats()
	d.Element = semver.Major

	first := semver.New(1, 0, 0)
	d.Next = &history.Version{
		Name:    first.Name,
		SemVer:  first,
		Commits: commits,
		Notes:   make(map[int64]string),
	}
	d.Next.ReleaseDate = d.Next.ResolveReleaseDate()

	e.log.Info("no released version found, bootstrapping",
		"run", e.runID.String(),
		"next", first.Name,
		"commits", len(commits))
	return d, nil
}

// ReleaseMessage renders the conventional commit message used for the
// release commit and tag of a version.
func ReleaseMessage(name string) string {
	cc := &conventional.Commit{
		Type:    conventional.TypeChangelog,
		Scope:   conventional.NoScope,
		Summary: "release " + name,
	}
	return cc.Subject()
}

// Release finalizes a derived version: stage, commit, tag, push. Each step
// runs exactly once and the first failure aborts the sequence; a partially
// finalized release is repaired by the operator, never auto-retried.
func (e *Engine) Release(ctx context.Context, d *Derivation) (*history.Version, error) {
	if d == nil || d.Next == nil {
		return nil, fmt.Errorf("nothing to release")
	}
	log := e.log.With("run", e.runID.String(), "version", d.Next.Name)
	message := ReleaseMessage(d.Next.Name)

	if err := e.git.StageAll(ctx); err != nil {
		return nil, fmt.Errorf("staging changes: %w", err)
	}
	log.Debug("staged changes")

	head, err := e.git.Commit(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("creating release commit: %w", err)
	}
	log.Debug("created release commit", "sha", head.SHA)

	tag, err := e.git.CreateAnnotatedTag(ctx, d.Next.Name, head.SHA, message)
	if err != nil {
		return nil, fmt.Errorf("tagging %s: %w", d.Next.Name, err)
	}
	log.Debug("created tag", "ref", tag.Ref)

	d.Next.Commits = ensureNewest(d.Next.Commits, head)
	d.Next.Tag = tag
	d.Next.ReleaseDate = d.Next.ResolveReleaseDate()

	if err := e.store.AddCommit(ctx, head); err != nil {
		return nil, err
	}
	if err := e.store.AddTag(ctx, tag); err != nil {
		return nil, err
	}
	if err := e.store.AddVersion(ctx, d.Next); err != nil {
		return nil, err
	}

	if err := e.git.Push(ctx); err != nil {
		return nil, fmt.Errorf("pushing branch: %w", err)
	}
	if err := e.git.PushTag(ctx, d.Next.Name); err != nil {
		return nil, fmt.Errorf("pushing tag %s: %w", d.Next.Name, err)
	}

	log.Info("release finalized")
	return d.Next, nil
}
