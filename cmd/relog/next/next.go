// Package nextcmder provides the `relog next` CLI command.
package nextcmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/cmd/relog/workspace"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/release"
)

const nextLongDesc string = `Show the version the unreleased commits add up to.

Classifies the commits after the newest released tag: a breaking change
bumps the major version, a feat bumps the minor version, anything else
bumps the patch version. With no released version yet, the entire history
becomes v1.0.0.

Examples:
  relog next
  relog next --quiet`

const nextShortDesc string = "Show the next semantic version"

type nextCommander struct {
	backend     string
	sqlitePath  string
	postgresDSN string
	quiet       bool
}

// NewNextCmd creates the next cobra command.
func NewNextCmd() *cobra.Command {
	cmder := &nextCommander{}

	cmd := &cobra.Command{
		Use:   "next",
		Short: nextShortDesc,
		Long:  nextLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the next version name")

	return cmd
}

func (c *nextCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagBackend, config.FlagSQLitePath, config.FlagPostgresDSN)
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

	d, err := engine.Derive(ctx)
	if err != nil {
		return err
	}

	if d.Next == nil {
		if c.quiet {
			return nil
		}
		if d.Current != nil {
			fmt.Printf("  %s Nothing to release. %s is up to date.\n",
				cliui.DimStyle.Render("●"), cliui.VersionStyle.Render(d.Current.Name))
		} else {
			fmt.Printf("  %s No commits found.\n", cliui.DimStyle.Render("●"))
		}
		return nil
	}

	if c.quiet {
		fmt.Println(d.Next.Name)
		return nil
	}

	printDerivation(d)
	return nil
}

func printDerivation(d *release.Derivation) {
	current := "<none>"
	if d.Current != nil {
		current = d.Current.Name
	}

	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Current:"), cliui.Accent(current))
	fmt.Printf("  %s %s %s\n", cliui.KeyStyle.Render("Next:   "),
		cliui.VersionStyle.Render(d.Next.Name),
		cliui.DimStyle.Render(fmt.Sprintf("(%s bump, %d commits)", d.Element, len(d.Commits))))

	if len(d.Stats) > 0 {
		fmt.Println()
		for _, line := range statLines(d.Stats) {
			fmt.Printf("    %s\n", line)
		}
	}
	fmt.Println()
}

// statLines renders commit type counts in descending count order.
func statLines(stats map[string]int) []string {
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
