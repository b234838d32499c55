package config

// Config represents the persistent relog configuration stored as config.toml
// in the .relog/ directory. The TOML layout uses sections for logical
// grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Repo      RepoConfig      `toml:"repo"`
	Changelog ChangelogConfig `toml:"changelog"`
}

// StorageConfig selects and parameterizes the history store backend.
type StorageConfig struct {
	// Backend is one of "sqlite", "json" or "postgres".
	Backend string `toml:"backend,omitempty"`

	// SQLitePath overrides the default .relog/relog.db location.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// PostgresDSN is the connection string used when Backend is "postgres".
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// RepoConfig holds the git repository settings.
type RepoConfig struct {
	// DefaultBranch is the branch releases are cut from.
	DefaultBranch string `toml:"default_branch,omitempty"`

	// Remote is the remote releases are pushed to.
	Remote string `toml:"remote,omitempty"`
}

// ChangelogConfig holds changelog rendering settings. The link templates
// expand {origin}, {sha} and {ref} placeholders.
type ChangelogConfig struct {
	File          string `toml:"file,omitempty"`
	CommitLink    string `toml:"commit_link,omitempty"`
	ReferenceLink string `toml:"reference_link,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on
// *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.backend": {
		get: func(c *Config) string { return c.Storage.Backend },
		set: func(c *Config, v string) error { c.Storage.Backend = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"repo.default_branch": {
		get: func(c *Config) string { return c.Repo.DefaultBranch },
		set: func(c *Config, v string) error { c.Repo.DefaultBranch = v; return nil },
	},
	"repo.remote": {
		get: func(c *Config) string { return c.Repo.Remote },
		set: func(c *Config, v string) error { c.Repo.Remote = v; return nil },
	},
	"changelog.file": {
		get: func(c *Config) string { return c.Changelog.File },
		set: func(c *Config, v string) error { c.Changelog.File = v; return nil },
	},
	"changelog.commit_link": {
		get: func(c *Config) string { return c.Changelog.CommitLink },
		set: func(c *Config, v string) error { c.Changelog.CommitLink = v; return nil },
	},
	"changelog.reference_link": {
		get: func(c *Config) string { return c.Changelog.ReferenceLink },
		set: func(c *Config, v string) error { c.Changelog.ReferenceLink = v; return nil },
	},
}
