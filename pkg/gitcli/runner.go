// Package gitcli is the subprocess gateway to the git executable. It runs
// git in an explicitly configured repository directory, normalizes its
// line-oriented output, and parses the structured XML-tagged records used
// for commit and tag detail queries.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrNotARepository is returned when the configured directory is not inside
// a git working tree. Every higher-level query fails fast with it.
var ErrNotARepository = errors.New("not a git repository")

// CommandError reports a git invocation that exited non-zero. It is distinct
// from "no matching output" so callers can tell a failed subprocess from an
// empty result.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: exit %d: %s", strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Result is the captured output of one git invocation. Lines holds stdout
// split on any mix of CR/LF delimiters with empty lines collapsed, so
// callers receive a clean ordered sequence.
type Result struct {
	Stdout string
	Stderr string
	Lines  []string
}

// Runner invokes git as a subprocess in a fixed repository directory. The
// directory is threaded in at construction, never read from process-global
// state.
type Runner struct {
	dir    string
	remote string
	log    *slog.Logger
}

// NewRunner builds a Runner for the given repository directory.
func NewRunner(dir string, log *slog.Logger) (*Runner, error) {
	if dir == "" {
		return nil, errors.New("gitcli: repository directory cannot be empty")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{dir: dir, remote: "origin", log: log}, nil
}

// Dir returns the repository directory the runner operates in.
func (r *Runner) Dir() string {
	return r.dir
}

// SetRemote changes the remote tags are pushed to and the origin URL is read
// from. Empty names are ignored.
func (r *Runner) SetRemote(remote string) {
	if remote != "" {
		r.remote = remote
	}
}

// Verify confirms the runner's directory is inside a git working tree.
func (r *Runner) Verify(ctx context.Context) error {
	if !r.IsRepository(ctx) {
		return fmt.Errorf("%w: %s", ErrNotARepository, r.dir)
	}
	return nil
}

// IsRepository reports whether the directory is inside a git working tree.
func (r *Runner) IsRepository(ctx context.Context) bool {
	res, err := r.Execute(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	for _, line := range res.Lines {
		if line == "true" {
			return true
		}
	}
	return false
}

// IsRepository reports whether dir is inside a git working tree.
func IsRepository(ctx context.Context, dir string) bool {
	r, err := NewRunner(dir, nil)
	if err != nil {
		return false
	}
	return r.IsRepository(ctx)
}

// Execute runs git with the given arguments in the repository directory,
// capturing stdout and stderr. A non-zero exit yields a *CommandError
// alongside the captured Result. Before/after debug lines are emitted for
// observability; they are best-effort and never block the call.
func (r *Runner) Execute(ctx context.Context, args ...string) (*Result, error) {
	command := "git " + strings.Join(args, " ")
	r.log.Debug("executing", "dir", r.dir, "command", command)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Lines:  SplitLines(stdout.String()),
	}
	r.log.Debug("executed", "dir", r.dir, "command", command)

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		return res, fmt.Errorf("running %s: %w", command, runErr)
	}
	return res, nil
}

// SplitLines normalizes CR and LF sequences to single delimiters and splits
// text into its non-empty lines.
func SplitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// firstLine returns the first line of a result, or "" when there is none.
func firstLine(res *Result) string {
	if res == nil || len(res.Lines) == 0 {
		return ""
	}
	return strings.TrimSpace(res.Lines[0])
}

// lastLine returns the last non-empty line of a result, or "".
func lastLine(res *Result) string {
	if res == nil || len(res.Lines) == 0 {
		return ""
	}
	return strings.TrimSpace(res.Lines[len(res.Lines)-1])
}
