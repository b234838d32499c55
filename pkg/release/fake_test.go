package release_test

import (
	"context"
	"fmt"
	"time"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/gitcli"
	"github.com/relogdev/relog/pkg/history"
)

// fakeHistory is a scripted repository: a newest-first commit list and a set
// of tags, with mutation calls recorded instead of executed.
type fakeHistory struct {
	commits []*history.Commit
	tags    []*history.Tag
	branch  string
	origin  string

	staged     bool
	pushed     bool
	pushedTags []string
	headSeq    int
}

func (f *fakeHistory) Verify(context.Context) error       { return nil }
func (f *fakeHistory) SetPruneTags(context.Context) error { return nil }
func (f *fakeHistory) Fetch(context.Context, bool) error  { return nil }

func (f *fakeHistory) CurrentBranch(context.Context) (string, error) { return f.branch, nil }
func (f *fakeHistory) RemoteOriginURL(context.Context) string        { return f.origin }

func (f *fakeHistory) ListAllTags(context.Context) ([]gitcli.TagLine, error) {
	lines := make([]gitcli.TagLine, len(f.tags))
	for i, t := range f.tags {
		lines[i] = gitcli.TagLine{TagSHA: t.SHA, Ref: t.Ref, CommitSHA: t.Commit.SHA}
	}
	return lines, nil
}

func (f *fakeHistory) ListAllCommits(context.Context) ([]gitcli.CommitLine, error) {
	lines := make([]gitcli.CommitLine, len(f.commits))
	for i, c := range f.commits {
		lines[i] = gitcli.CommitLine{SHA: c.SHA, AuthorDate: c.Date()}
	}
	return lines, nil
}

func (f *fakeHistory) GetCommit(_ context.Context, sha string) (*history.Commit, error) {
	for _, c := range f.commits {
		if c.SHA == sha {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown commit %s", sha)
}

func (f *fakeHistory) GetTag(_ context.Context, refOrName string) (*history.Tag, error) {
	for _, t := range f.tags {
		if t.Ref == refOrName || t.Name == refOrName {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown tag %s", refOrName)
}

func (f *fakeHistory) FirstCommit(context.Context) (*history.Commit, error) {
	if len(f.commits) == 0 {
		return nil, fmt.Errorf("empty repository")
	}
	return f.commits[len(f.commits)-1], nil
}

// CommitsBetween returns the commits after from (exclusive) through to
// (inclusive), newest first, like the underlying log range query.
func (f *fakeHistory) CommitsBetween(ctx context.Context, fromSHA, toRef string) ([]*history.Commit, error) {
	toSHA := toRef
	if tag, err := f.GetTag(ctx, toRef); err == nil {
		toSHA = tag.Commit.SHA
	}
	var out []*history.Commit
	collecting := false
	for _, c := range f.commits {
		if c.SHA == toSHA {
			collecting = true
		}
		if c.SHA == fromSHA {
			break
		}
		if collecting {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeHistory) CommitsSince(_ context.Context, fromSHA string) ([]*history.Commit, error) {
	var out []*history.Commit
	for _, c := range f.commits {
		if c.SHA == fromSHA {
			return out, nil
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeHistory) AllCommits(context.Context) ([]*history.Commit, error) {
	return f.commits, nil
}

func (f *fakeHistory) StageAll(context.Context) error {
	f.staged = true
	return nil
}

func (f *fakeHistory) Commit(_ context.Context, message string) (*history.Commit, error) {
	f.headSeq++
	head := newFakeCommit(fmt.Sprintf("head%d", f.headSeq), message,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.headSeq)*time.Minute))
	f.commits = append([]*history.Commit{head}, f.commits...)
	return head, nil
}

func (f *fakeHistory) CreateAnnotatedTag(ctx context.Context, name, commitSHA, message string) (*history.Tag, error) {
	commit, err := f.GetCommit(ctx, commitSHA)
	if err != nil {
		return nil, err
	}
	t := history.NewTag()
	t.Ref = "refs/tags/" + name
	t.Name = name
	t.SHA = "tag-" + name
	t.Commit = commit
	t.Subject = message
	t.ContributorDates[history.RoleTagger] = commit.Date()
	f.tags = append(f.tags, t)
	return t, nil
}

func (f *fakeHistory) Push(context.Context) error { f.pushed = true; return nil }

func (f *fakeHistory) PushTag(_ context.Context, name string) error {
	f.pushedTags = append(f.pushedTags, name)
	return nil
}

func newFakeCommit(sha, subject string, date time.Time) *history.Commit {
	c := history.NewCommit()
	c.SHA = sha
	c.Subject = subject
	c.Contributors[history.RoleAuthor] = history.Contributor{Name: "Jane", Email: "jane@example.com"}
	c.ContributorDates[history.RoleAuthor] = date
	c.ContributorDates[history.RoleCommitter] = date
	c.Conventional = conventional.Parse(subject, "")
	return c
}

func newFakeTag(name string, commit *history.Commit) *history.Tag {
	t := history.NewTag()
	t.Ref = "refs/tags/" + name
	t.Name = name
	t.SHA = "tag-" + name
	t.Commit = commit
	t.Subject = name
	t.ContributorDates[history.RoleTagger] = commit.Date().Add(time.Minute)
	return t
}
