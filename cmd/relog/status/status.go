// Package statuscmder provides the status command for displaying the state
// of the repository's history store.
package statuscmder

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/cmd/relog/workspace"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
)

const statusLongDesc string = `Show the state of the repository's history store.

Displays the repository, branch and remote, the totals held in the store,
the newest released version and the commits waiting for the next release.

Examples:
  relog status`

const statusShortDesc string = "Show repository and store state"

type statusCommander struct {
	backend     string
	sqlitePath  string
	postgresDSN string
}

// NewStatusCmd creates the status cobra command.
func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagBackend, config.FlagSQLitePath, config.FlagPostgresDSN)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner := ws.Runner()
	if err := runner.Verify(ctx); err != nil {
		return err
	}

	repoName := filepath.Base(runner.Dir())
	if abs, err := filepath.Abs(runner.Dir()); err == nil {
		repoName = filepath.Base(abs)
	}
	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Repository:"), cliui.NameStyle.Render(repoName))

	if branch, err := runner.CurrentBranch(ctx); err == nil {
		line := branch
		if branches, err := runner.ListAllBranches(ctx); err == nil && len(branches) > 1 {
			line = fmt.Sprintf("%s %s", branch, cliui.DimStyle.Render(fmt.Sprintf("(%d branches)", len(branches))))
		}
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Branch:    "), line)
	}
	if origin := runner.RemoteOriginURL(ctx); origin != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Origin:    "), cliui.DimStyle.Render(origin))
	}

	state, err := ws.Dotdir.LoadSyncState()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Printf("\n  %s Never synced. Run %s first.\n\n",
			cliui.DimStyle.Render("●"), cliui.ValueStyle.Render("relog sync"))
		return nil
	}
	fmt.Printf("  %s %s %s\n", cliui.KeyStyle.Render("Last sync: "),
		state.SyncedAt.Local().Format("2006-01-02 15:04:05"),
		cliui.DimStyle.Render("run "+state.RunID))

	st, err := ws.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	tags, err := st.Tags(ctx)
	if err != nil {
		return err
	}
	versionCount, err := st.VersionCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\n  %s %d commits, %d tags, %d versions\n",
		cliui.KeyStyle.Render("Store:     "), state.CommitCount, len(tags), versionCount)

	d, err := ws.Engine(st).Derive(ctx)
	if err != nil {
		return err
	}
	if d.Current != nil {
		fmt.Printf("  %s %s %s\n", cliui.KeyStyle.Render("Released:  "),
			cliui.VersionStyle.Render(d.Current.Name),
			cliui.DimStyle.Render(d.Current.ReleaseDate.Format("2006-01-02")))
	}

	if d.Next == nil {
		fmt.Printf("  %s up to date\n\n", cliui.KeyStyle.Render("Pending:   "))
		return nil
	}

	fmt.Printf("  %s %d commits %s\n\n", cliui.KeyStyle.Render("Pending:   "),
		len(d.Commits),
		cliui.DimStyle.Render(fmt.Sprintf("→ %s (%s bump)", d.Next.Name, d.Element)))

	for _, line := range statCloud(d.Stats) {
		fmt.Printf("    %s\n", line)
	}
	if len(d.Stats) > 0 {
		fmt.Println()
	}
	return nil
}

// statCloud renders the non-zero commit type counts, largest first.
func statCloud(stats map[string]int) []string {
	type stat struct {
		name  string
		count int
	}
	ordered := make([]stat, 0, len(stats))
	for name, count := range stats {
		if count > 0 {
			ordered = append(ordered, stat{name, count})
		}
	}
	if len(ordered) == 0 {
		return nil
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].name < ordered[j].name
	})

	lines := make([]string, len(ordered))
	for i, s := range ordered {
		lines[i] = fmt.Sprintf("%s %s", cliui.DimStyle.Render(fmt.Sprintf("%3d", s.count)), s.name)
	}
	return lines
}
