package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// Tests load it through GetSchemaSQL() so repository code and schema cannot
// drift apart: a column missing here fails the tests with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Per-stage tile status records
CREATE TABLE IF NOT EXISTS stage_tiles (
	stage_id TEXT NOT NULL,
	relative_path TEXT NOT NULL,
	tile_name TEXT NOT NULL DEFAULT '',
	lat_x INTEGER NOT NULL,
	lat_y INTEGER NOT NULL,
	lat_z INTEGER NOT NULL,
	this_stage_status TEXT NOT NULL CHECK(this_stage_status IN ('does_not_exist', 'incomplete', 'processing', 'complete', 'failed', 'canceled')) DEFAULT 'incomplete',
	prev_stage_status TEXT NOT NULL CHECK(prev_stage_status IN ('does_not_exist', 'incomplete', 'processing', 'complete', 'failed', 'canceled')) DEFAULT 'does_not_exist',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (stage_id, relative_path)
);

CREATE INDEX IF NOT EXISTS idx_stage_tiles_lattice ON stage_tiles(stage_id, lat_x, lat_y, lat_z);

-- Adjacency cache: tile -> predecessor tile in the input stage
CREATE TABLE IF NOT EXISTS adjacent_tiles (
	stage_id TEXT NOT NULL,
	relative_path TEXT NOT NULL,
	adjacent_relative_path TEXT NOT NULL,
	adjacent_tile_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (stage_id, relative_path)
);

CREATE INDEX IF NOT EXISTS idx_adjacent_tiles_target ON adjacent_tiles(stage_id, adjacent_relative_path);
`

// InitSchema creates the schema on a fresh database and migrates older ones.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	var oldTableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('stage_tiles', 'adjacent_tiles')").Scan(&oldTableCount)
	if err != nil {
		return err
	}
	if oldTableCount > 0 {
		return RunMigrations(db)
	}

	// Completely fresh install - create the modern schema directly and mark
	// every migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
