// Package db is the sqlite persistence layer for trips, their raw recording
// streams, and the roughness profiles computed from them.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB

	// path is the filesystem location the database was opened from, kept so
	// debug surfaces can name the actual file rather than a default.
	path string
}

// NewDB opens (creating if necessary) the sqlite database at path and brings
// its schema up to date via the embedded migrations.
func NewDB(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Open opens the database without touching the schema. Use NewDB unless you
// are driving migrations yourself (e.g. the migrate CLI subcommands).
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers (profile fetches, admin SQL) from blocking bulk
	// fix/sample ingestion.
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the filesystem path the database was opened from.
func (db *DB) Path() string {
	return db.path
}
