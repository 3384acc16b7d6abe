package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are embedded rather than loaded from disk so the server
// ships as a single binary.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_trips",
		SQL: `
			CREATE TABLE IF NOT EXISTS trips (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				original_id INTEGER DEFAULT 0,
				start_timestamp INTEGER NOT NULL,
				end_timestamp INTEGER NOT NULL,
				duration INTEGER NOT NULL,
				trip REAL NOT NULL,
				electricity REAL NOT NULL,
				efficiency REAL,
				start_datetime TEXT NOT NULL,
				end_datetime TEXT NOT NULL,
				file_hash TEXT NOT NULL,
				uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(start_timestamp, end_timestamp, trip)
			);
			CREATE INDEX IF NOT EXISTS idx_trips_start_timestamp ON trips(start_timestamp);
			CREATE INDEX IF NOT EXISTS idx_trips_start_datetime ON trips(start_datetime);
		`,
	},
	{
		Version: 2,
		Name:    "create_uploaded_files",
		SQL: `
			CREATE TABLE IF NOT EXISTS uploaded_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filename TEXT NOT NULL,
				file_hash TEXT NOT NULL UNIQUE,
				upload_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				trips_added INTEGER NOT NULL DEFAULT 0
			);
		`,
	},
}

// Migrate applies all pending migrations to the given handle.
func Migrate(h *sql.DB) error {
	if err := initMigrationsTable(h); err != nil {
		return err
	}

	applied, err := appliedMigrations(h)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		err := TransactionOn(h, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO migrations (version, name) VALUES (?, ?)",
				m.Version, m.Name,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(h *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := h.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(h *sql.DB) (map[int]bool, error) {
	rows, err := h.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
