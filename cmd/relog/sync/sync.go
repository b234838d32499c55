// Package synccmder provides the `relog sync` CLI command.
package synccmder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/cmd/relog/workspace"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/dotdir"
	"github.com/relogdev/relog/pkg/release"
)

const syncLongDesc string = `Mirror the repository's git history into the local store.

Fetches from the remote, walks every commit and tag the store does not know
yet, and partitions the tagged history into versions. Syncing is idempotent
and safe to run at any time.

Examples:
  relog sync
  relog sync --pull
  relog sync --backend json`

const syncShortDesc string = "Mirror git history into the local store"

type syncCommander struct {
	backend     string
	sqlitePath  string
	postgresDSN string
	pull        bool
}

// NewSyncCmd creates the sync cobra command.
func NewSyncCmd() *cobra.Command {
	cmder := &syncCommander{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: syncShortDesc,
		Long:  syncLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	cmd.Flags().BoolVar(&cmder.pull, "pull", false, "Pull the current branch with tags before syncing")

	return cmd
}

func (c *syncCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagBackend, config.FlagSQLitePath, config.FlagPostgresDSN)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if c.pull {
		if err := ws.Runner().Pull(ctx); err != nil {
			return fmt.Errorf("pulling: %w", err)
		}
	}

	st, err := ws.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	var result *release.SyncResult
	if err := cliui.Step(os.Stdout, "Syncing git history", func() error {
		var runErr error
		result, runErr = ws.Engine(st).Sync(ctx)
		return runErr
	}); err != nil {
		return err
	}

	if err := saveState(ctx, ws, result); err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Commits: "),
		fmt.Sprintf("%d (%d new)", result.CommitCount, result.CommitsAdded))
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Tags:    "),
		fmt.Sprintf("%d (%d new)", result.TagCount, result.TagsAdded))
	fmt.Printf("  %s %d\n", cliui.KeyStyle.Render("Versions:"), result.VersionCount)
	if result.MaxVersion != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Latest:  "), cliui.VersionStyle.Render(result.MaxVersion))
	}
	fmt.Println()
	return nil
}

func saveState(_ context.Context, ws *workspace.Workspace, result *release.SyncResult) error {
	state := &dotdir.SyncState{
		RunID:       result.RunID,
		SyncedAt:    time.Now().UTC(),
		Branch:      result.Branch,
		MaxVersion:  result.MaxVersion,
		CommitCount: result.CommitCount,
		TagCount:    result.TagCount,
	}
	if err := ws.Dotdir.SaveSyncState(state); err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}
