// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quietmindco/engram/pkg/storage"
	"github.com/quietmindco/engram/pkg/storage/sqldriver"
)

// SQLiteDriver implements the storage interfaces using SQLite.
type SQLiteDriver struct {
	*sqldriver.SQLDriver
}

// NewSQLiteDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer anyway, and a lone pooled connection
	// keeps PRAGMAs and :memory: databases stable across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	drv, err := sqldriver.New(db, sqldriver.DialectSQLite)
	if err != nil {
		return nil, err
	}

	return &SQLiteDriver{SQLDriver: drv}, nil
}

// Ensure SQLiteDriver implements the storage interfaces
var (
	_ storage.Driver         = (*SQLiteDriver)(nil)
	_ storage.LearningStore  = (*SQLiteDriver)(nil)
	_ storage.ChallengeStore = (*SQLiteDriver)(nil)
)
