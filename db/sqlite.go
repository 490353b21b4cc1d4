package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}

// InitializeSchema creates all the necessary tables if they don't exist
func InitializeSchema(db *sql.DB) error {
	// Create swap table: one row per detected ISP transition
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS swap (
		id TEXT PRIMARY KEY,
		isp TEXT NOT NULL,
		ip TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create swap table: %w", err)
	}

	// Create gateway_log table: one row per probe interval
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS gateway_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create gateway_log table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_swap_isp_active ON swap(isp, active)`)
	if err != nil {
		return fmt.Errorf("failed to create swap index: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_gateway_log_created_at ON gateway_log(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create gateway_log index: %w", err)
	}

	return nil
}
