package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lexicon_terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS training_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			label TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS spam_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			logged_at TEXT NOT NULL,
			text TEXT NOT NULL
		)`,
	},
	insertTerm: `INSERT OR IGNORE INTO lexicon_terms (term) VALUES (?)`,
}

// NewSQLiteStore opens (creating if needed) the SQLite database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection serializes writers inside the process
	db.SetMaxOpenConns(1)

	return newSQLStore(db, sqliteDialect, logger)
}
