package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/store"
)

// AddTag upserts a tag by ref, replacing the existing row and its role rows.
// The peeled commit is persisted by SHA only; AddCommit owns the commit
// graph.
func (d *DB) AddTag(ctx context.Context, tag *history.Tag) error {
	commitSHA := ""
	if tag.Commit != nil {
		commitSHA = tag.Commit.SHA
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if err := d.exec(ctx, tx, `DELETE FROM tags WHERE ref = ?`, tag.Ref); err != nil {
			return err
		}
		if err := d.exec(ctx, tx,
			`INSERT INTO tags (ref, name, sha, commit_sha, subject, body) VALUES (?, ?, ?, ?, ?, ?)`,
			tag.Ref, tag.Name, tag.SHA, commitSHA, tag.Subject, tag.Body); err != nil {
			return err
		}

		var tagID int64
		if err := d.queryRow(ctx, tx, `SELECT id FROM tags WHERE ref = ?`, tag.Ref).Scan(&tagID); err != nil {
			return fmt.Errorf("resolving tag id: %w", err)
		}
		return d.insertRoleRows(ctx, tx, "tag_contributors", "tag_id", tagID,
			tag.Contributors, tag.ContributorDates)
	})
}

// GetTag retrieves one tag by ref, re-attaching its peeled commit when the
// commit store knows it.
func (d *DB) GetTag(ctx context.Context, ref string) (*history.Tag, error) {
	var tagID int64
	var commitSHA string
	t := history.NewTag()
	err := d.queryRow(ctx, nil,
		`SELECT id, ref, name, sha, commit_sha, subject, body FROM tags WHERE ref = ?`, ref).
		Scan(&tagID, &t.Ref, &t.Name, &t.SHA, &commitSHA, &t.Subject, &t.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundError{Kind: "tag", Key: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("loading tag %s: %w", ref, err)
	}

	if err := d.loadRoleRows(ctx, "tag_contributors", "tag_id", tagID,
		t.Contributors, t.ContributorDates); err != nil {
		return nil, err
	}

	if commitSHA != "" {
		commit, err := d.GetCommit(ctx, commitSHA)
		if err != nil {
			var notFound store.NotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		} else {
			t.Commit = commit
		}
	}
	return t, nil
}

// TagExists reports whether a tag row is present.
func (d *DB) TagExists(ctx context.Context, ref string) (bool, error) {
	var count int
	err := d.queryRow(ctx, nil, `SELECT COUNT(*) FROM tags WHERE ref = ?`, ref).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking tag %s: %w", ref, err)
	}
	return count > 0, nil
}

// MaxTag returns the tag with the highest version-ordered name, or
// (nil, nil) when no tags are stored.
func (d *DB) MaxTag(ctx context.Context) (*history.Tag, error) {
	names, refsByName, err := d.tagNames(ctx)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return d.GetTag(ctx, refsByName[store.MaxTagName(names)])
}

// Tags lists every stored tag ordered by name.
func (d *DB) Tags(ctx context.Context) ([]*history.Tag, error) {
	rows, err := d.query(ctx, `SELECT ref FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	refs, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}

	tags := make([]*history.Tag, 0, len(refs))
	for _, ref := range refs {
		t, err := d.GetTag(ctx, ref)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (d *DB) tagNames(ctx context.Context) ([]string, map[string]string, error) {
	rows, err := d.query(ctx, `SELECT name, ref FROM tags`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var names []string
	refsByName := make(map[string]string)
	for rows.Next() {
		var name, ref string
		if err := rows.Scan(&name, &ref); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		refsByName[name] = ref
	}
	return names, refsByName, rows.Err()
}

// scanStrings drains a single-column string result set.
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
