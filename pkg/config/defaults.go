package config

const (
	defaultBackend       = "sqlite"
	defaultBranch        = "main"
	defaultRemote        = "origin"
	defaultChangelogFile = "CHANGELOG.md"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Backend: defaultBackend,
		},
		Repo: RepoConfig{
			DefaultBranch: defaultBranch,
			Remote:        defaultRemote,
		},
		Changelog: ChangelogConfig{
			File: defaultChangelogFile,
		},
	}
}
