// Package changelogcmder provides the `relog changelog` CLI command.
package changelogcmder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/cmd/relog/workspace"
	"github.com/relogdev/relog/pkg/changelog"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/history"
)

const changelogLongDesc string = `Render the changelog from the stored versions.

Writes one markdown file per version into .relog/versions/ and the
concatenated changelog to the repository root. The markdown is assembled
from the template pieces in .relog/templates/, so the output can be
restyled by editing them.

With --pending, the version the unreleased commits add up to is included
at the top. With --preview, the changelog is rendered to the terminal
instead of written to disk.

Examples:
  relog changelog
  relog changelog --pending
  relog changelog --preview`

const changelogShortDesc string = "Render the changelog from stored versions"

type changelogCommander struct {
	backend       string
	sqlitePath    string
	postgresDSN   string
	changelogFile string
	commitLink    string
	referenceLink string
	pending       bool
	preview       bool
}

// NewChangelogCmd creates the changelog cobra command.
func NewChangelogCmd() *cobra.Command {
	cmder := &changelogCommander{}

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: changelogShortDesc,
		Long:  changelogLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagChangelogFile, &cmder.changelogFile)
	config.AddStringFlag(cmd, config.Flags, config.FlagCommitLink, &cmder.commitLink)
	config.AddStringFlag(cmd, config.Flags, config.FlagReferenceLink, &cmder.referenceLink)
	cmd.Flags().BoolVar(&cmder.pending, "pending", false, "Include the unreleased next version")
	cmd.Flags().BoolVar(&cmder.preview, "preview", false, "Render to the terminal instead of writing files")

	return cmd
}

func (c *changelogCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagBackend, config.FlagSQLitePath, config.FlagPostgresDSN,
		config.FlagChangelogFile, config.FlagCommitLink, config.FlagReferenceLink)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := ws.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	engine := ws.Engine(st)
	if _, err := engine.Sync(ctx); err != nil {
		return err
	}

	versions, err := st.Versions(ctx)
	if err != nil {
		return err
	}

	if c.pending {
		d, err := engine.Derive(ctx)
		if err != nil {
			return err
		}
		if d.Next != nil {
			versions = append(versions, d.Next)
		}
	}

	if len(versions) == 0 {
		fmt.Printf("  %s No versions to render. Tag a release or run with --pending.\n",
			cliui.DimStyle.Render("●"))
		return nil
	}

	renderer, err := newRenderer(ctx, ws)
	if err != nil {
		return err
	}

	content, err := renderer.RenderAll(versions)
	if err != nil {
		return err
	}

	if c.preview {
		rendered, err := cliui.RenderMarkdown(content)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	}

	return writeOutput(ws, renderer, versions, content)
}

// newRenderer assembles the renderer from the workspace templates and the
// repository's remote origin.
func newRenderer(ctx context.Context, ws *workspace.Workspace) (*changelog.Renderer, error) {
	templatesDir, err := ws.Dotdir.TemplatesDir()
	if err != nil {
		return nil, err
	}
	if err := changelog.EnsureTemplates(templatesDir); err != nil {
		return nil, err
	}
	set, err := changelog.LoadTemplates(templatesDir)
	if err != nil {
		return nil, err
	}

	origin := ws.Runner().RemoteOriginURL(ctx)
	links := changelog.NewLinks(origin, ws.Cfg.Changelog.CommitLink, ws.Cfg.Changelog.ReferenceLink)
	return changelog.NewRenderer(set, links), nil
}

func writeOutput(ws *workspace.Workspace, renderer *changelog.Renderer, versions []*history.Version, content string) error {
	versionsDir, err := ws.Dotdir.VersionsDir()
	if err != nil {
		return err
	}
	if err := renderer.WriteVersionFiles(versionsDir, versions); err != nil {
		return err
	}

	root, err := ws.Dotdir.Root()
	if err != nil {
		return err
	}

	file := ws.Cfg.Changelog.File
	if file == "" {
		file = "CHANGELOG.md"
	}
	target := filepath.Join(ws.RepoDir, file)
	if err := changelog.WriteChangelog(target, content); err != nil {
		return err
	}
	if err := changelog.WriteChangelog(filepath.Join(root, file), content); err != nil {
		return err
	}

	fmt.Printf("  %s Wrote %s %s\n", cliui.SuccessMark, target,
		cliui.DimStyle.Render(fmt.Sprintf("(%d versions)", len(versions))))
	return nil
}
