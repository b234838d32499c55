package gitcli

import (
	"context"
	"fmt"
	"strings"

	"github.com/relogdev/relog/pkg/history"
)

// StageAll stages every change in the working tree.
func (r *Runner) StageAll(ctx context.Context) error {
	_, err := r.Execute(ctx, "add", "*")
	return err
}

// Commit records the staged changes. Multi-line messages are split into
// repeated -m segments so each line survives as its own message paragraph.
// The new head commit is fetched and returned.
func (r *Runner) Commit(ctx context.Context, message string) (*history.Commit, error) {
	args := []string{"commit"}
	for _, line := range strings.Split(message, "\n") {
		if line == "" {
			continue
		}
		args = append(args, "-m", line)
	}
	if _, err := r.Execute(ctx, args...); err != nil {
		return nil, err
	}

	res, err := r.Execute(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	sha := lastLine(res)
	if sha == "" {
		return nil, fmt.Errorf("commit created but HEAD could not be resolved")
	}
	return r.GetCommit(ctx, sha)
}

// CreateAnnotatedTag creates an annotated tag on the given commit and returns
// the freshly fetched tag. Pushing the tag is a separate step.
func (r *Runner) CreateAnnotatedTag(ctx context.Context, name, commitSHA, message string) (*history.Tag, error) {
	if _, err := r.Execute(ctx, "tag", "--annotate", name, commitSHA, "--message", message); err != nil {
		return nil, err
	}
	return r.GetTag(ctx, name)
}

// Push pushes the current branch upstream.
func (r *Runner) Push(ctx context.Context) error {
	_, err := r.Execute(ctx, "push")
	return err
}

// PushTag pushes one tag ref to the configured remote.
func (r *Runner) PushTag(ctx context.Context, name string) error {
	_, err := r.Execute(ctx, "push", r.remote, "refs/tags/"+name)
	return err
}

// Fetch fetches from the default remote, optionally including tags.
func (r *Runner) Fetch(ctx context.Context, includeTags bool) error {
	args := []string{"fetch"}
	if includeTags {
		args = append(args, "--tags")
	}
	_, err := r.Execute(ctx, args...)
	return err
}

// Pull pulls the current branch with tags.
func (r *Runner) Pull(ctx context.Context) error {
	_, err := r.Execute(ctx, "pull", "--tags")
	return err
}

// SetPruneTags configures fetch to prune deleted remote tags.
func (r *Runner) SetPruneTags(ctx context.Context) error {
	_, err := r.Execute(ctx, "config", "fetch.pruneTags", "true")
	return err
}

// CheckoutBranch checks out the named branch, creating it when it does not
// exist, and optionally sets its tracked remote.
func (r *Runner) CheckoutBranch(ctx context.Context, branch, trackedRemote string) error {
	exists, err := r.BranchExists(ctx, branch)
	if err != nil {
		return err
	}
	args := []string{"checkout", "-b", branch}
	if exists {
		args = []string{"checkout", branch}
	}
	if _, err := r.Execute(ctx, args...); err != nil {
		return err
	}
	if trackedRemote != "" {
		if _, err := r.Execute(ctx, "branch", "-u", trackedRemote); err != nil {
			return err
		}
	}
	return nil
}
