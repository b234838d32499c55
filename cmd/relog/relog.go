// Package relogcmder assembles the root relog command and its subcommands.
package relogcmder

import (
	changelogcmder "github.com/relogdev/relog/cmd/relog/changelog"
	configcmder "github.com/relogdev/relog/cmd/relog/config"
	initcmder "github.com/relogdev/relog/cmd/relog/init"
	nextcmder "github.com/relogdev/relog/cmd/relog/next"
	releasecmder "github.com/relogdev/relog/cmd/relog/release"
	statuscmder "github.com/relogdev/relog/cmd/relog/status"
	synccmder "github.com/relogdev/relog/cmd/relog/sync"
	"github.com/spf13/cobra"
)

const relogLongDesc string = `Relog derives semantic versions and changelogs from git history.

Commits written in the Conventional Commits style are mined from the
repository, classified, and rolled up into versions:
  relog sync         Mirror git history into the local store
  relog next         Show the version the unreleased commits add up to
  relog changelog    Render the changelog from stored versions
  relog release      Commit, tag and push the next version`

const relogShortDesc string = "Relog - semantic versions from git history"

func NewRelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relog",
		Short: relogShortDesc,
		Long:  relogLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("repo", "r", ".", "Path of the git repository to operate on")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(synccmder.NewSyncCmd())
	cmd.AddCommand(nextcmder.NewNextCmd())
	cmd.AddCommand(changelogcmder.NewChangelogCmd())
	cmd.AddCommand(releasecmder.NewReleaseCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
