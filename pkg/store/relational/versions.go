package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/semver"
	"github.com/relogdev/relog/pkg/store"
)

// AddVersion upserts a version by name. The commit list is snapshotted as
// ordered SHA references; the commits themselves live in the commit tables.
func (d *DB) AddVersion(ctx context.Context, version *history.Version) error {
	shas := store.SnapshotCommitSHAs(version)
	tagRef := ""
	if version.Tag != nil {
		tagRef = version.Tag.Ref
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if err := d.exec(ctx, tx, `DELETE FROM versions WHERE name = ?`, version.Name); err != nil {
			return err
		}
		if err := d.exec(ctx, tx,
			`INSERT INTO versions (name, major, minor, patch, tag_ref, release_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			version.Name, version.SemVer.Major, version.SemVer.Minor, version.SemVer.Patch,
			tagRef, formatDate(version.ReleaseDate)); err != nil {
			return err
		}

		var versionID int64
		if err := d.queryRow(ctx, tx, `SELECT id FROM versions WHERE name = ?`, version.Name).Scan(&versionID); err != nil {
			return fmt.Errorf("resolving version id: %w", err)
		}

		for i, sha := range shas {
			if err := d.exec(ctx, tx,
				`INSERT INTO version_commits (version_id, seq, commit_sha) VALUES (?, ?, ?)`,
				versionID, i, sha); err != nil {
				return err
			}
		}
		for seq, markdown := range version.Notes {
			if err := d.exec(ctx, tx,
				`INSERT INTO version_notes (version_id, seq, markdown) VALUES (?, ?, ?)`,
				versionID, seq, markdown); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetVersion retrieves one version by name, expanding its commit SHAs
// against the commit tables and re-attaching its tag when stored.
func (d *DB) GetVersion(ctx context.Context, name string) (*history.Version, error) {
	var versionID int64
	var major, minor, patch uint64
	var tagRef, releaseDate string
	v := &history.Version{Notes: make(map[int64]string)}
	err := d.queryRow(ctx, nil,
		`SELECT id, name, major, minor, patch, tag_ref, release_date FROM versions WHERE name = ?`, name).
		Scan(&versionID, &v.Name, &major, &minor, &patch, &tagRef, &releaseDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundError{Kind: "version", Key: name}
	}
	if err != nil {
		return nil, fmt.Errorf("loading version %s: %w", name, err)
	}
	v.SemVer = semver.New(major, minor, patch)
	v.ReleaseDate = parseDate(releaseDate)

	rows, err := d.query(ctx,
		`SELECT commit_sha FROM version_commits WHERE version_id = ? ORDER BY seq`, versionID)
	if err != nil {
		return nil, err
	}
	if v.CommitSHAs, err = scanStrings(rows); err != nil {
		return nil, err
	}
	if v.Commits, err = d.GetCommits(ctx, v.CommitSHAs); err != nil {
		return nil, err
	}

	noteRows, err := d.query(ctx,
		`SELECT seq, markdown FROM version_notes WHERE version_id = ?`, versionID)
	if err != nil {
		return nil, err
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var seq int64
		var markdown string
		if err := noteRows.Scan(&seq, &markdown); err != nil {
			return nil, err
		}
		v.Notes[seq] = markdown
	}
	if err := noteRows.Err(); err != nil {
		return nil, err
	}

	if tagRef != "" {
		tag, err := d.GetTag(ctx, tagRef)
		if err != nil {
			var notFound store.NotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		} else {
			v.Tag = tag
		}
	}
	return v, nil
}

// VersionExists reports whether a version row is present.
func (d *DB) VersionExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.queryRow(ctx, nil, `SELECT COUNT(*) FROM versions WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking version %s: %w", name, err)
	}
	return count > 0, nil
}

// MaxVersion returns the version with the highest version-ordered name, or
// (nil, nil) when no versions are stored.
func (d *DB) MaxVersion(ctx context.Context) (*history.Version, error) {
	rows, err := d.query(ctx, `SELECT name FROM versions`)
	if err != nil {
		return nil, err
	}
	names, err := scanStrings(rows)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return d.GetVersion(ctx, store.MaxVersionName(names))
}

// VersionCount returns the number of stored versions.
func (d *DB) VersionCount(ctx context.Context) (int, error) {
	var count int
	err := d.queryRow(ctx, nil, `SELECT COUNT(*) FROM versions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting versions: %w", err)
	}
	return count, nil
}

// Versions lists every stored version in ascending numeric order.
func (d *DB) Versions(ctx context.Context) ([]*history.Version, error) {
	rows, err := d.query(ctx, `SELECT name FROM versions ORDER BY major, minor, patch`)
	if err != nil {
		return nil, err
	}
	names, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}

	versions := make([]*history.Version, 0, len(names))
	for _, name := range names {
		v, err := d.GetVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}
