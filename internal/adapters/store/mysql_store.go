package store

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS lexicon_terms (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			term VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
			UNIQUE KEY uq_lexicon_term (term)
		)`,
		`CREATE TABLE IF NOT EXISTS training_samples (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			text MEDIUMTEXT NOT NULL,
			label VARCHAR(8) NOT NULL,
			INDEX idx_label (label)
		)`,
		`CREATE TABLE IF NOT EXISTS spam_log (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			logged_at VARCHAR(19) NOT NULL,
			text MEDIUMTEXT NOT NULL
		)`,
	},
	insertTerm: `INSERT IGNORE INTO lexicon_terms (term) VALUES (?)`,
}

// NewMySQLStore connects to MySQL and creates the tables if needed
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, mysqlDialect, logger)
}
