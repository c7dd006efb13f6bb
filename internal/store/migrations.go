package store

import "fmt"

// schema holds one entry per schema version. Entry i upgrades a database
// at user_version i to i+1; existing entries must never change.
var schema = [][]string{
	{
		// calibration values as key-value pairs
		`CREATE TABLE settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE exports (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			format TEXT NOT NULL CHECK(format IN ('png', 'webp')),
			path TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			solids INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// plugin actions run after session events
		`CREATE TABLE hooks (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX idx_exports_created_at ON exports(created_at)`,
		`CREATE INDEX idx_hooks_event ON hooks(event)`,
	},
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(schema)

// version returns the database's PRAGMA user_version.
func (s *Store) version() (int, error) {
	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// migrate applies every schema step above the current user_version, each
// in its own transaction.
func (s *Store) migrate() error {
	current, err := s.version()
	if err != nil {
		return err
	}
	if current > len(schema) {
		return fmt.Errorf("database version %d is newer than this build (%d)", current, len(schema))
	}

	for v := current; v < len(schema); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range schema[v] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("step %d: %w", v+1, err)
			}
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
