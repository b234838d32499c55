package relational

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. Statements are idempotent
// so Migrate is safe to run on every open.
func (d *DB) Migrate(ctx context.Context) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.dialect == Postgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS contributors (
			id %s,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS commits (
			id %s,
			sha TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT ''
		)`, pk),
		`CREATE TABLE IF NOT EXISTS commit_contributors (
			commit_id BIGINT NOT NULL REFERENCES commits(id) ON DELETE CASCADE,
			contributor_id BIGINT REFERENCES contributors(id),
			role TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			UNIQUE (commit_id, role)
		)`,
		`CREATE TABLE IF NOT EXISTS conventional_commits (
			commit_id BIGINT NOT NULL UNIQUE REFERENCES commits(id) ON DELETE CASCADE,
			type TEXT NOT NULL DEFAULT '',
			scope TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			breaking_change TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS commit_references (
			commit_id BIGINT NOT NULL REFERENCES commits(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			UNIQUE (commit_id, seq)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tags (
			id %s,
			ref TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			sha TEXT NOT NULL,
			commit_sha TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT ''
		)`, pk),
		`CREATE TABLE IF NOT EXISTS tag_contributors (
			tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			contributor_id BIGINT REFERENCES contributors(id),
			role TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			UNIQUE (tag_id, role)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS versions (
			id %s,
			name TEXT NOT NULL UNIQUE,
			major BIGINT NOT NULL,
			minor BIGINT NOT NULL,
			patch BIGINT NOT NULL,
			tag_ref TEXT NOT NULL DEFAULT '',
			release_date TEXT NOT NULL DEFAULT ''
		)`, pk),
		`CREATE TABLE IF NOT EXISTS version_commits (
			version_id BIGINT NOT NULL REFERENCES versions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			commit_sha TEXT NOT NULL,
			UNIQUE (version_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS version_notes (
			version_id BIGINT NOT NULL REFERENCES versions(id) ON DELETE CASCADE,
			seq BIGINT NOT NULL,
			markdown TEXT NOT NULL,
			UNIQUE (version_id, seq)
		)`,
	}

	for _, stmt := range statements {
		if err := d.exec(ctx, nil, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}
