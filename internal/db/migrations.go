package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order. Fresh installs get the
// full schema from SchemaSQL; migrations exist for databases created before
// a schema change.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_source_event_to_workflows",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_attempt_to_agent_executions",
		Up:      migrationV2,
	},
}

// RunMigrations applies any migrations newer than the recorded version.
func RunMigrations(db *sql.DB) error {
	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(db); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// currentVersion returns the highest applied migration version.
func currentVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		// Fresh install: the schema already matches the latest migration.
		latest := 0
		for _, m := range migrations {
			if m.Version > latest {
				latest = m.Version
			}
		}
		for _, m := range migrations {
			if _, err := db.Exec("INSERT OR IGNORE INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
				return 0, fmt.Errorf("failed to record baseline migration: %w", err)
			}
		}
		return latest, nil
	}
	return int(version.Int64), nil
}

// migrationV1 adds the source_event column for source-control event metadata.
func migrationV1(db *sql.DB) error {
	if columnExists(db, "workflows", "source_event") {
		return nil
	}
	_, err := db.Exec("ALTER TABLE workflows ADD COLUMN source_event TEXT")
	return err
}

// migrationV2 adds the per-pass attempt counter to agent executions.
func migrationV2(db *sql.DB) error {
	if columnExists(db, "agent_executions", "attempt") {
		return nil
	}
	_, err := db.Exec("ALTER TABLE agent_executions ADD COLUMN attempt INTEGER NOT NULL DEFAULT 1")
	return err
}

// columnExists checks whether a table already has a column.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
