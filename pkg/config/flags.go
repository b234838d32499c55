package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --backend
// on "relog sync", "relog changelog" and "relog release").
type Flag struct {
	// Name is the long flag name (e.g. "backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.backend").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag and BindRegisteredFlags to
// avoid typos or drift from one command to another.
const (
	FlagBackend       = "backend"
	FlagSQLitePath    = "sqlite-path"
	FlagPostgresDSN   = "postgres-dsn"
	FlagBranch        = "branch"
	FlagRemote        = "remote"
	FlagChangelogFile = "changelog-file"
	FlagCommitLink    = "commit-link"
	FlagReferenceLink = "reference-link"
)

// Flags is the shared registry used by the relog commands.
var Flags = FlagSet{
	FlagBackend:       {Name: "backend", Shorthand: "b", ViperKey: "storage.backend", Description: "History store backend (sqlite, json, postgres)"},
	FlagSQLitePath:    {Name: "sqlite-path", ViperKey: "storage.sqlite_path", Description: "Path of the SQLite database file"},
	FlagPostgresDSN:   {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagBranch:        {Name: "branch", ViperKey: "repo.default_branch", Description: "Branch releases are cut from"},
	FlagRemote:        {Name: "remote", ViperKey: "repo.remote", Description: "Remote releases are pushed to"},
	FlagChangelogFile: {Name: "changelog-file", ViperKey: "changelog.file", Description: "Changelog file written at the repository root"},
	FlagCommitLink:    {Name: "commit-link", ViperKey: "changelog.commit_link", Description: "Commit link template ({origin}, {sha})"},
	FlagReferenceLink: {Name: "reference-link", ViperKey: "changelog.reference_link", Description: "Work item link template ({origin}, {ref})"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}
