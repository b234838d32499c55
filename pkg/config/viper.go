package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/relogdev/relog/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file from
// the repository's .relog/ directory, and binds environment variables with
// the RELOG_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RELOG_STORAGE_BACKEND, RELOG_REPO_REMOTE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(repoDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery in the .relog/ workspace.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager(repoDir)
	root, err := ddm.Root()
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(root)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: RELOG_STORAGE_BACKEND, RELOG_CHANGELOG_FILE, etc.
	v.SetEnvPrefix("RELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Repo
	v.SetDefault("repo.default_branch", d.Repo.DefaultBranch)
	v.SetDefault("repo.remote", d.Repo.Remote)

	// Changelog
	v.SetDefault("changelog.file", d.Changelog.File)
	v.SetDefault("changelog.commit_link", d.Changelog.CommitLink)
	v.SetDefault("changelog.reference_link", d.Changelog.ReferenceLink)
}
