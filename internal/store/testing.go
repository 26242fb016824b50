package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NewTestDB creates a DB for testing backed by an in-memory SQLite
// database. This is only intended for use in tests.
func NewTestDB() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return newDB(db), nil
}
