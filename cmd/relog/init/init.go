// Package initcmder provides the init command for initializing a .relog/
// workspace in a repository.
package initcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relogdev/relog/pkg/changelog"
	"github.com/relogdev/relog/pkg/cliui"
	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/dotdir"
)

const initLongDesc string = `Initialize a .relog/ workspace in the repository.

Creates the .relog/ directory holding the history store, the changelog
templates and the rendered version files. The default templates are copied
in so they can be edited; existing templates are never overwritten.

With --preset, a config.toml preconfigured for the named git host's link
style is written as well.

Examples:
  relog init
  relog init --preset github`

const initShortDesc string = "Initialize a .relog/ workspace"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repoDir, _ := cmd.Flags().GetString("repo")
			return runInit(repoDir, preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Write a config preset for a git host (github, azure)")

	return cmd
}

func runInit(repoDir, preset string) error {
	ddm := dotdir.NewManager(repoDir)
	existed := ddm.Exists()

	root, err := ddm.Root()
	if err != nil {
		return err
	}
	if _, err := ddm.DataDir(); err != nil {
		return err
	}
	if _, err := ddm.VersionsDir(); err != nil {
		return err
	}

	templatesDir, err := ddm.TemplatesDir()
	if err != nil {
		return err
	}
	if err := changelog.EnsureTemplates(templatesDir); err != nil {
		return fmt.Errorf("copying default templates: %w", err)
	}

	if preset != "" {
		cfg, err := config.PresetConfig(preset)
		if err != nil {
			return fmt.Errorf("%w\n\nValid presets: %s", err, strings.Join(config.ValidPresetNames(), ", "))
		}
		cfger, err := config.NewConfiger(repoDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfger.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("  %s Wrote %s config to %s\n", cliui.SuccessMark, preset, cfger.GetTarget())
	}

	if existed {
		fmt.Printf("  %s Workspace already initialized: %s\n", cliui.SuccessMark, root)
		return nil
	}
	fmt.Printf("  %s Initialized workspace: %s\n", cliui.SuccessMark, root)
	return nil
}
