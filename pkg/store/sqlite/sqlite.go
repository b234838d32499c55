// Package sqlite opens the relational Store over an embedded SQLite
// database, the default durable backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relogdev/relog/pkg/store/relational"
)

// Store is the SQLite-backed history store.
type Store struct {
	*relational.DB
}

// Open opens (and creates if needed) the database at path and runs the
// schema migration. Pass ":memory:" for an ephemeral database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: database path cannot be empty")
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// SQLite serializes writers anyway; a single pooled connection also keeps
	// an in-memory database alive across calls.
	db.SetMaxOpenConns(1)

	d := relational.New(db, relational.SQLite)
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: d}, nil
}
