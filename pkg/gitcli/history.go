package gitcli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relogdev/relog/pkg/history"
)

// TagLine is one row of the cheap all-tags listing: the tag object, its ref,
// and the commit it peels to.
type TagLine struct {
	TagSHA    string
	Ref       string
	CommitSHA string
}

// CommitLine is one row of the cheap all-commits listing.
type CommitLine struct {
	SHA        string
	AuthorDate time.Time
	CommitDate time.Time
}

// ListAllTags lists every tag ref with its peeled commit SHA. Annotated tags
// are resolved to the commit they point at.
func (r *Runner) ListAllTags(ctx context.Context) ([]TagLine, error) {
	res, err := r.Execute(ctx, "show-ref", "--tags")
	if err != nil {
		// show-ref exits 1 when the repository has no tags at all.
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 && res != nil && len(res.Lines) == 0 {
			return nil, nil
		}
		return nil, err
	}

	var tags []TagLine
	for _, line := range res.Lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		tl := TagLine{TagSHA: fields[0], Ref: fields[1]}
		peeled, err := r.Execute(ctx, "rev-parse", fields[1]+"^{commit}")
		if err != nil {
			return nil, fmt.Errorf("peeling %s: %w", fields[1], err)
		}
		tl.CommitSHA = firstLine(peeled)
		tags = append(tags, tl)
	}
	return tags, nil
}

// ListAllCommits lists every commit SHA with author and committer dates, in
// the reverse-chronological order of the full-history log.
func (r *Runner) ListAllCommits(ctx context.Context) ([]CommitLine, error) {
	res, err := r.Execute(ctx, "log", `--pretty=format:%H %aI %cI`)
	if err != nil {
		return nil, err
	}

	var commits []CommitLine
	for _, line := range res.Lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		cl := CommitLine{SHA: fields[0]}
		if d, err := time.Parse(time.RFC3339, fields[1]); err == nil {
			cl.AuthorDate = d
		}
		if d, err := time.Parse(time.RFC3339, fields[2]); err == nil {
			cl.CommitDate = d
		}
		commits = append(commits, cl)
	}
	return commits, nil
}

// GetCommit fetches one commit's full metadata through the structured
// record query.
func (r *Runner) GetCommit(ctx context.Context, sha string) (*history.Commit, error) {
	res, err := r.Execute(ctx, "show", sha, "--quiet", commitPretty)
	if err != nil {
		return nil, err
	}
	commits, err := parseCommitRecords(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", sha, err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("commit %s: no record in git output", sha)
	}
	return commits[len(commits)-1], nil
}

// GetTag fetches one tag's full metadata and peels it to the commit it
// points at, fetching that commit recursively. Lightweight and annotated
// tags both peel through rev-list.
func (r *Runner) GetTag(ctx context.Context, refOrName string) (*history.Tag, error) {
	ref := refOrName
	if !strings.HasPrefix(ref, "refs/tags/") {
		ref = "refs/tags/" + ref
	}
	res, err := r.Execute(ctx, "for-each-ref", ref, tagFormat)
	if err != nil {
		return nil, err
	}
	tags, _, err := parseTagRecords(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("tag %s: %w", refOrName, err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("tag %s: no record in git output", refOrName)
	}

	tag := tags[len(tags)-1]
	peeled, err := r.Execute(ctx, "rev-list", "-n", "1", tag.SHA)
	if err != nil {
		return nil, fmt.Errorf("peeling tag %s: %w", tag.Name, err)
	}
	if commitSHA := firstLine(peeled); commitSHA != "" {
		commit, err := r.GetCommit(ctx, commitSHA)
		if err != nil {
			return nil, err
		}
		tag.Commit = commit
	}
	return tag, nil
}

// FirstCommit fetches the repository's root commit.
func (r *Runner) FirstCommit(ctx context.Context) (*history.Commit, error) {
	res, err := r.Execute(ctx, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return nil, err
	}
	sha := lastLine(res)
	if sha == "" {
		return nil, fmt.Errorf("no root commit found")
	}
	return r.GetCommit(ctx, sha)
}

// CommitsBetween fetches every commit after fromSHA (exclusive) through
// toRef (inclusive), newest first. The sequence is re-fetched on every call.
func (r *Runner) CommitsBetween(ctx context.Context, fromSHA, toRef string) ([]*history.Commit, error) {
	return r.commitsFromLog(ctx, fromSHA+"..."+toRef+"^")
}

// CommitsSince fetches every commit strictly after fromSHA through the
// current head, newest first.
func (r *Runner) CommitsSince(ctx context.Context, fromSHA string) ([]*history.Commit, error) {
	return r.commitsFromLog(ctx, fromSHA+"...HEAD")
}

// AllCommits fetches the entire commit history, newest first.
func (r *Runner) AllCommits(ctx context.Context) ([]*history.Commit, error) {
	return r.commitsFromLog(ctx, "")
}

// commitsFromLog lists the SHAs matched by a log range and fetches each
// commit's full record one at a time.
func (r *Runner) commitsFromLog(ctx context.Context, logRange string) ([]*history.Commit, error) {
	args := []string{"log"}
	if logRange != "" {
		args = append(args, logRange)
	}
	args = append(args, "--oneline", `--pretty=tformat:%H`)
	res, err := r.Execute(ctx, args...)
	if err != nil {
		return nil, err
	}

	var commits []*history.Commit
	for _, line := range res.Lines {
		sha := strings.TrimSpace(line)
		if sha == "" {
			continue
		}
		commit, err := r.GetCommit(ctx, sha)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Runner) CurrentBranch(ctx context.Context) (string, error) {
	res, err := r.Execute(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := lastLine(res)
	if branch == "" {
		return "", fmt.Errorf("no branch name in git output")
	}
	return branch, nil
}

// ListAllBranches lists local and remote branch names, skipping symbolic
// "->" pointers.
func (r *Runner) ListAllBranches(ctx context.Context) ([]string, error) {
	res, err := r.Execute(ctx, "branch", "-a", "--list")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range res.Lines {
		clean := strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if clean != "" && !strings.Contains(clean, "->") {
			branches = append(branches, clean)
		}
	}
	return branches, nil
}

// BranchExists reports whether the named branch resolves to a revision.
func (r *Runner) BranchExists(ctx context.Context, branch string) (bool, error) {
	if branch == "" {
		return false, fmt.Errorf("branch name cannot be empty")
	}
	_, err := r.Execute(ctx, "rev-parse", "--verify", branch)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoteOriginURL returns the configured remote's URL, or "" when none is set.
func (r *Runner) RemoteOriginURL(ctx context.Context) string {
	res, err := r.Execute(ctx, "config", "remote."+r.remote+".url")
	if err != nil {
		return ""
	}
	return lastLine(res)
}
