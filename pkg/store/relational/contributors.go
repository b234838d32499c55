package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/relogdev/relog/pkg/history"
)

// upsertContributor inserts or refreshes a contributor keyed by email and
// returns its row id.
func (d *DB) upsertContributor(ctx context.Context, tx *sql.Tx, c history.Contributor) (int64, error) {
	if err := d.exec(ctx, tx,
		`INSERT INTO contributors (name, email) VALUES (?, ?)
		 ON CONFLICT (email) DO UPDATE SET name = excluded.name`,
		c.Name, c.Email); err != nil {
		return 0, err
	}
	var id int64
	if err := d.queryRow(ctx, tx, `SELECT id FROM contributors WHERE email = ?`, c.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolving contributor id: %w", err)
	}
	return id, nil
}

// insertRoleRows writes one row per contributor role into a role table
// (commit_contributors or tag_contributors), upserting contributors by email
// as it goes. A role with only a date keeps the date under a NULL
// contributor.
func (d *DB) insertRoleRows(ctx context.Context, tx *sql.Tx, table, ownerColumn string, ownerID int64,
	contributors map[history.Role]history.Contributor, dates map[history.Role]time.Time) error {
	for _, role := range history.Roles {
		contributor, hasContributor := contributors[role]
		date, hasDate := dates[role]
		if !hasContributor && !hasDate {
			continue
		}

		contributorID := sql.NullInt64{}
		if hasContributor && !contributor.IsEmpty() {
			id, err := d.upsertContributor(ctx, tx, contributor)
			if err != nil {
				return err
			}
			contributorID = sql.NullInt64{Int64: id, Valid: true}
		}

		query := fmt.Sprintf(
			`INSERT INTO %s (%s, contributor_id, role, date) VALUES (?, ?, ?, ?)`,
			table, ownerColumn)
		if err := d.exec(ctx, tx, query, ownerID, contributorID, string(role), formatDate(date)); err != nil {
			return err
		}
	}
	return nil
}

// loadRoleRows fills the role maps of a commit or tag from its role table.
func (d *DB) loadRoleRows(ctx context.Context, table, ownerColumn string, ownerID int64,
	contributors map[history.Role]history.Contributor, dates map[history.Role]time.Time) error {
	query := fmt.Sprintf(
		`SELECT rr.role, rr.date, COALESCE(c.name, ''), COALESCE(c.email, '')
		 FROM %s rr
		 LEFT JOIN contributors c ON c.id = rr.contributor_id
		 WHERE rr.%s = ?`, table, ownerColumn)
	rows, err := d.query(ctx, query, ownerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var role, date, name, email string
		if err := rows.Scan(&role, &date, &name, &email); err != nil {
			return err
		}
		c := history.Contributor{Name: name, Email: email}
		if !c.IsEmpty() {
			contributors[history.Role(role)] = c
		}
		if d := parseDate(date); !d.IsZero() {
			dates[history.Role(role)] = d
		}
	}
	return rows.Err()
}

// Contributors lists every contributor row, ordered by email.
func (d *DB) Contributors(ctx context.Context) ([]history.Contributor, error) {
	rows, err := d.query(ctx, `SELECT name, email FROM contributors ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributors []history.Contributor
	for rows.Next() {
		var c history.Contributor
		if err := rows.Scan(&c.Name, &c.Email); err != nil {
			return nil, err
		}
		contributors = append(contributors, c)
	}
	return contributors, rows.Err()
}
