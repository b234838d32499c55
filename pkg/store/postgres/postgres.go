// Package postgres opens the relational Store over a PostgreSQL database
// for teams sharing one history store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/relogdev/relog/pkg/store/relational"
)

// Store is the PostgreSQL-backed history store.
type Store struct {
	*relational.DB
}

// Open connects to the database named by dsn, verifies the connection and
// runs the schema migration.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: connection string cannot be empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	d := relational.New(db, relational.Postgres)
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: d}, nil
}
