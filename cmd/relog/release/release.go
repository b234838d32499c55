// Package releasecmder provides the `relog release` CLI command.
package releasecmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/cmd/relog/workspace"
	"github.com/relogdev/relog/pkg/changelog"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/release"
	"github.com/relogdev/relog/pkg/store"
)

const releaseLongDesc string = `Cut the next release.

Syncs git history, derives the next semantic version from the unreleased
commits, regenerates the changelog including the new version, then stages,
commits, tags and pushes. The tag message carries the release summary.

The derived version is shown for confirmation before anything is written
to the repository; pass --yes to skip the prompt.

Examples:
  relog release
  relog release --yes`

const releaseShortDesc string = "Commit, tag and push the next version"

type releaseCommander struct {
	backend       string
	sqlitePath    string
	postgresDSN   string
	branch        string
	remote        string
	changelogFile string
	commitLink    string
	referenceLink string
	yes           bool
}

// NewReleaseCmd creates the release cobra command.
func NewReleaseCmd() *cobra.Command {
	cmder := &releaseCommander{}

	cmd := &cobra.Command{
		Use:   "release",
		Short: releaseShortDesc,
		Long:  releaseLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagBranch, &cmder.branch)
	config.AddStringFlag(cmd, config.Flags, config.FlagRemote, &cmder.remote)
	config.AddStringFlag(cmd, config.Flags, config.FlagChangelogFile, &cmder.changelogFile)
	config.AddStringFlag(cmd, config.Flags, config.FlagCommitLink, &cmder.commitLink)
	config.AddStringFlag(cmd, config.Flags, config.FlagReferenceLink, &cmder.referenceLink)
	cmd.Flags().BoolVarP(&cmder.yes, "yes", "y", false, "Release without confirmation")

	return cmd
}

func (c *releaseCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagBackend, config.FlagSQLitePath, config.FlagPostgresDSN,
		config.FlagBranch, config.FlagRemote,
		config.FlagChangelogFile, config.FlagCommitLink, config.FlagReferenceLink)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := ensureBranch(ctx, ws); err != nil {
		return err
	}

	st, err := ws.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	engine := ws.Engine(st)

	var d *release.Derivation
	if err := cliui.Step(os.Stdout, "Syncing git history", func() error {
		if _, err := engine.Sync(ctx); err != nil {
			return err
		}
		var deriveErr error
		d, deriveErr = engine.Derive(ctx)
		return deriveErr
	}); err != nil {
		return err
	}

	if d.Next == nil {
		if d.Current != nil {
			fmt.Printf("\n  %s Nothing to release. %s is up to date.\n\n",
				cliui.DimStyle.Render("●"), cliui.VersionStyle.Render(d.Current.Name))
		} else {
			fmt.Printf("\n  %s Nothing to release. No commits found.\n\n", cliui.DimStyle.Render("●"))
		}
		return nil
	}

	current := "<none>"
	if d.Current != nil {
		current = d.Current.Name
	}
	fmt.Printf("\n  %s %s %s %s %s\n\n",
		cliui.KeyStyle.Render("Release:"),
		current,
		cliui.DimStyle.Render("→"),
		cliui.VersionStyle.Render(d.Next.Name),
		cliui.DimStyle.Render(fmt.Sprintf("(%s bump, %d commits)", d.Element, len(d.Commits))))

	if !c.yes && !cliui.Confirm(os.Stdout, os.Stdin, fmt.Sprintf("  Release %s?", d.Next.Name)) {
		fmt.Printf("\n  %s Release aborted.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}
	fmt.Println()

	if err := cliui.Step(os.Stdout, "Writing changelog", func() error {
		return c.writeChangelog(ctx, ws, st, d)
	}); err != nil {
		return err
	}

	var released string
	if err := cliui.Step(os.Stdout, "Committing, tagging and pushing", func() error {
		v, err := engine.Release(ctx, d)
		if err != nil {
			return err
		}
		released = v.Name
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Released %s\n\n", cliui.SuccessMark, cliui.VersionStyle.Render(released))
	return nil
}

// ensureBranch moves the working tree onto the configured release branch
// before anything is derived or pushed.
func ensureBranch(ctx context.Context, ws *workspace.Workspace) error {
	branch := ws.Cfg.Repo.DefaultBranch
	if branch == "" {
		return nil
	}

	runner := ws.Runner()
	if err := runner.Verify(ctx); err != nil {
		return err
	}
	current, err := runner.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}

	if err := runner.CheckoutBranch(ctx, branch, ""); err != nil {
		return fmt.Errorf("checking out release branch %s: %w", branch, err)
	}
	fmt.Printf("\n  %s Switched to branch %s\n", cliui.SuccessMark, cliui.NameStyle.Render(branch))
	return nil
}

// writeChangelog regenerates the changelog with the derived version on top
// so the release commit carries it.
func (c *releaseCommander) writeChangelog(ctx context.Context, ws *workspace.Workspace, st store.Store, d *release.Derivation) error {
	versions, err := st.Versions(ctx)
	if err != nil {
		return err
	}
	versions = append(versions, d.Next)

	templatesDir, err := ws.Dotdir.TemplatesDir()
	if err != nil {
		return err
	}
	if err := changelog.EnsureTemplates(templatesDir); err != nil {
		return err
	}
	set, err := changelog.LoadTemplates(templatesDir)
	if err != nil {
		return err
	}

	origin := ws.Runner().RemoteOriginURL(ctx)
	links := changelog.NewLinks(origin, ws.Cfg.Changelog.CommitLink, ws.Cfg.Changelog.ReferenceLink)
	renderer := changelog.NewRenderer(set, links)

	content, err := renderer.RenderAll(versions)
	if err != nil {
		return err
	}

	versionsDir, err := ws.Dotdir.VersionsDir()
	if err != nil {
		return err
	}
	if err := renderer.WriteVersionFiles(versionsDir, versions); err != nil {
		return err
	}

	file := ws.Cfg.Changelog.File
	if file == "" {
		file = "CHANGELOG.md"
	}
	root, err := ws.Dotdir.Root()
	if err != nil {
		return err
	}
	if err := changelog.WriteChangelog(filepath.Join(ws.RepoDir, file), content); err != nil {
		return err
	}
	return changelog.WriteChangelog(filepath.Join(root, file), content)
}
