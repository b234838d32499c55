package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/relogdev/relog/pkg/conventional"
	"github.com/relogdev/relog/pkg/history"
	"github.com/relogdev/relog/pkg/store"
)

// AddCommit upserts a commit by deleting any existing row and re-inserting
// the full graph. The cascade on child tables makes delete-then-insert a
// whole-entity replace.
func (d *DB) AddCommit(ctx context.Context, commit *history.Commit) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if err := d.exec(ctx, tx, `DELETE FROM commits WHERE sha = ?`, commit.SHA); err != nil {
			return err
		}
		if err := d.exec(ctx, tx,
			`INSERT INTO commits (sha, subject, body) VALUES (?, ?, ?)`,
			commit.SHA, commit.Subject, commit.Body); err != nil {
			return err
		}

		var commitID int64
		if err := d.queryRow(ctx, tx, `SELECT id FROM commits WHERE sha = ?`, commit.SHA).Scan(&commitID); err != nil {
			return fmt.Errorf("resolving commit id: %w", err)
		}

		if err := d.insertRoleRows(ctx, tx, "commit_contributors", "commit_id", commitID,
			commit.Contributors, commit.ContributorDates); err != nil {
			return err
		}
		return d.insertConventional(ctx, tx, commitID, commit.Conventional)
	})
}

func (d *DB) insertConventional(ctx context.Context, tx *sql.Tx, commitID int64, cc *conventional.Commit) error {
	if cc == nil {
		return nil
	}
	if err := d.exec(ctx, tx,
		`INSERT INTO conventional_commits (commit_id, type, scope, summary, description, breaking_change)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		commitID, string(cc.Type), cc.Scope, cc.Summary, cc.Description, cc.BreakingChange); err != nil {
		return err
	}
	for i, ref := range cc.References {
		if err := d.exec(ctx, tx,
			`INSERT INTO commit_references (commit_id, seq, text) VALUES (?, ?, ?)`,
			commitID, i, ref); err != nil {
			return err
		}
	}
	return nil
}

// GetCommit retrieves one commit with its contributors and classification.
func (d *DB) GetCommit(ctx context.Context, sha string) (*history.Commit, error) {
	var commitID int64
	c := history.NewCommit()
	err := d.queryRow(ctx, nil,
		`SELECT id, sha, subject, body FROM commits WHERE sha = ?`, sha).
		Scan(&commitID, &c.SHA, &c.Subject, &c.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundError{Kind: "commit", Key: sha}
	}
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", sha, err)
	}

	if err := d.loadRoleRows(ctx, "commit_contributors", "commit_id", commitID,
		c.Contributors, c.ContributorDates); err != nil {
		return nil, err
	}
	cc, err := d.loadConventional(ctx, commitID)
	if err != nil {
		return nil, err
	}
	c.Conventional = cc
	return c, nil
}

func (d *DB) loadConventional(ctx context.Context, commitID int64) (*conventional.Commit, error) {
	var typeName string
	cc := &conventional.Commit{}
	err := d.queryRow(ctx, nil,
		`SELECT type, scope, summary, description, breaking_change
		 FROM conventional_commits WHERE commit_id = ?`, commitID).
		Scan(&typeName, &cc.Scope, &cc.Summary, &cc.Description, &cc.BreakingChange)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading classification: %w", err)
	}
	cc.Type = conventional.CommitType(typeName)

	rows, err := d.query(ctx,
		`SELECT text FROM commit_references WHERE commit_id = ? ORDER BY seq`, commitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		cc.References = append(cc.References, ref)
	}
	return cc, rows.Err()
}

// GetCommits retrieves the commits matching the given SHAs in order,
// skipping SHAs the store does not know.
func (d *DB) GetCommits(ctx context.Context, shas []string) ([]*history.Commit, error) {
	commits := make([]*history.Commit, 0, len(shas))
	for _, sha := range shas {
		c, err := d.GetCommit(ctx, sha)
		if err != nil {
			var notFound store.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// CommitExists reports whether a commit row is present.
func (d *DB) CommitExists(ctx context.Context, sha string) (bool, error) {
	var count int
	err := d.queryRow(ctx, nil, `SELECT COUNT(*) FROM commits WHERE sha = ?`, sha).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking commit %s: %w", sha, err)
	}
	return count > 0, nil
}

// NewestCommit returns the commit with the latest contributor date, or
// (nil, nil) when no commits are stored. The stored date text is UTC
// RFC 3339 so lexicographic DESC is chronological DESC.
func (d *DB) NewestCommit(ctx context.Context) (*history.Commit, error) {
	var sha string
	err := d.queryRow(ctx, nil,
		`SELECT cm.sha FROM commits cm
		 JOIN commit_contributors cc ON cc.commit_id = cm.id
		 WHERE cc.date <> ''
		 ORDER BY cc.date DESC LIMIT 1`).Scan(&sha)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding newest commit: %w", err)
	}
	return d.GetCommit(ctx, sha)
}
