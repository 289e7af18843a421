package db

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_stage_tiles_and_adjacent_tiles",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_lattice_and_adjacency_target_indexes",
		Up:      migrationV2,
	},
}

func ensureVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	if err := ensureVersionTable(db); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("running migration")

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the tile and adjacency tables without indexes.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
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
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create stage_tiles: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS adjacent_tiles (
			stage_id TEXT NOT NULL,
			relative_path TEXT NOT NULL,
			adjacent_relative_path TEXT NOT NULL,
			adjacent_tile_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (stage_id, relative_path)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create adjacent_tiles: %w", err)
	}

	return nil
}

// migrationV2 adds the coordinate lookup index and the reverse adjacency index.
func migrationV2(tx *sql.Tx) error {
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_stage_tiles_lattice ON stage_tiles(stage_id, lat_x, lat_y, lat_z)"); err != nil {
		return fmt.Errorf("failed to create lattice index: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_adjacent_tiles_target ON adjacent_tiles(stage_id, adjacent_relative_path)"); err != nil {
		return fmt.Errorf("failed to create adjacency target index: %w", err)
	}
	return nil
}
