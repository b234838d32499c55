// Package configcmder provides the config command for managing persistent
// relog configuration stored in the .relog/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent relog configuration.

Configuration is stored as config.toml in the .relog/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.backend, storage.sqlite_path, storage.postgres_dsn,
  repo.default_branch, repo.remote,
  changelog.file, changelog.commit_link, changelog.reference_link

Use subcommands to get, set, or list configuration values:
  relog config set <key> <value>    Set a configuration value
  relog config get <key>            Get a configuration value
  relog config list                 List all configuration values

Examples:
  relog config set storage.backend postgres
  relog config set changelog.commit_link "{origin}/commit/{sha}"
  relog config get storage.backend
  relog config list`

const configShortDesc string = "Manage persistent relog configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
