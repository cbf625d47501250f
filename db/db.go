// ABOUTME: Database connection management and initialization
// ABOUTME: Handles opening SQLite database with WAL mode at XDG path
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/store"
)

// ErrNotFound is returned when an id does not resolve to a row.
var ErrNotFound = models.ErrNotFound

func OpenDatabase(path string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for SQLite (avoid database locked errors)
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// NewSet wires every repository over one connection.
func NewSet(db *sql.DB) store.Set {
	return store.Set{
		People:  NewPersonRepository(db),
		Actions: NewActionRepository(db),
		Inbox:   NewInboxRepository(db),
		Catalog: NewCatalogRepository(db),
	}
}
