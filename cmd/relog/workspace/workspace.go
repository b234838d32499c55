// Package workspace resolves everything a relog command needs to run
// against one repository: the merged configuration, the logger, the
// .relog/ directory manager, the git runner and the history store.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relogdev/relog/pkg/config"
	"github.com/relogdev/relog/pkg/dotdir"
	"github.com/relogdev/relog/pkg/gitcli"
	"github.com/relogdev/relog/pkg/logger"
	"github.com/relogdev/relog/pkg/release"
	"github.com/relogdev/relog/pkg/store"
	"github.com/relogdev/relog/pkg/store/jsonfile"
	"github.com/relogdev/relog/pkg/store/postgres"
	"github.com/relogdev/relog/pkg/store/sqlite"
)

// Workspace bundles the per-repository runtime a command operates on.
type Workspace struct {
	RepoDir string
	Cfg     *config.Config
	Viper   *viper.Viper
	Log     *slog.Logger
	Dotdir  *dotdir.Manager

	git *gitcli.Runner
}

// Load reads the root command's persistent flags, initializes viper for the
// target repository and assembles the workspace. flagKeys names the config
// registry flags the calling command registered; they are bound into viper
// so flag values win over environment and file values.
func Load(cmd *cobra.Command, flagKeys ...string) (*Workspace, error) {
	repoDir, _ := cmd.Flags().GetString("repo")
	if strings.TrimSpace(repoDir) == "" {
		repoDir = "."
	}

	v, err := config.InitViper(repoDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg := configFromViper(v)

	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.New(
		logger.WithDebug(debug),
		logger.WithSource(debug),
		logger.WithPretty(true),
	)

	runner, err := gitcli.NewRunner(repoDir, log)
	if err != nil {
		return nil, err
	}
	runner.SetRemote(cfg.Repo.Remote)

	return &Workspace{
		RepoDir: repoDir,
		Cfg:     cfg,
		Viper:   v,
		Log:     log,
		Dotdir:  dotdir.NewManager(repoDir),
		git:     runner,
	}, nil
}

// configFromViper materializes a Config from the merged viper state so every
// command sees one struct regardless of where each value came from.
func configFromViper(v *viper.Viper) *config.Config {
	return &config.Config{
		Version: v.GetInt("version"),
		Storage: config.StorageConfig{
			Backend:     v.GetString("storage.backend"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Repo: config.RepoConfig{
			DefaultBranch: v.GetString("repo.default_branch"),
			Remote:        v.GetString("repo.remote"),
		},
		Changelog: config.ChangelogConfig{
			File:          v.GetString("changelog.file"),
			CommitLink:    v.GetString("changelog.commit_link"),
			ReferenceLink: v.GetString("changelog.reference_link"),
		},
	}
}

// OpenStore opens the history store named by the storage backend config.
// The caller owns the returned store and must Close it.
func (w *Workspace) OpenStore(ctx context.Context) (store.Store, error) {
	backend := strings.ToLower(strings.TrimSpace(w.Cfg.Storage.Backend))
	switch backend {
	case "", "sqlite":
		path := w.Cfg.Storage.SQLitePath
		if path == "" {
			var err error
			path, err = w.Dotdir.DatabasePath()
			if err != nil {
				return nil, err
			}
		}
		return sqlite.Open(ctx, path)

	case "json":
		dir, err := w.Dotdir.DataDir()
		if err != nil {
			return nil, err
		}
		return jsonfile.Open(dir)

	case "postgres":
		dsn := w.Cfg.Storage.PostgresDSN
		if dsn == "" {
			return nil, fmt.Errorf("storage backend is postgres but storage.postgres_dsn is not set")
		}
		return postgres.Open(ctx, dsn)

	default:
		return nil, fmt.Errorf("unknown storage backend %q (available: sqlite, json, postgres)", backend)
	}
}

// Runner returns the git runner for the workspace repository.
func (w *Workspace) Runner() *gitcli.Runner {
	return w.git
}

// Engine returns a release engine over the given store.
func (w *Workspace) Engine(st store.Store) *release.Engine {
	return release.NewEngine(w.git, st, w.Log)
}
