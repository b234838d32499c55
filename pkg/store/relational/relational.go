// Package relational is the SQL core shared by the sqlite and postgres
// Store adapters. It speaks plain database/sql over a normalized schema;
// the adapters contribute only the driver, the DSN and the dialect flag.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relogdev/relog/pkg/store"
)

// Dialect selects the SQL flavor the core renders.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// dateLayout is the stored timestamp rendering. Times are normalized to UTC
// at second precision so the text sorts chronologically.
const dateLayout = time.RFC3339

// DB implements store.Store over a database/sql handle.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*DB)(nil)

// New wraps an open database handle. Callers run Migrate before first use.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{db: db, dialect: dialect}
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to the dialect's numbered form.
func (d *DB) rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, d.rebind(query), args...)
	} else {
		_, err = d.db.ExecContext(ctx, d.rebind(query), args...)
	}
	if err != nil {
		return fmt.Errorf("executing %q: %w", query, err)
	}
	return nil
}

func (d *DB) queryRow(ctx context.Context, tx *sql.Tx, query string, args ...any) *sql.Row {
	if tx != nil {
		return tx.QueryRowContext(ctx, d.rebind(query), args...)
	}
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", query, err)
	}
	return rows, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func parseDate(text string) time.Time {
	if text == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}
	}
	return t
}
