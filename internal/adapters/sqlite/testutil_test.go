// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/db"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTile inserts a tile directly and returns its ID.
func seedTile(t *testing.T, database *sql.DB, stageID, id string, x, y, z int, status tile.Status) string {
	t.Helper()
	_, err := database.Exec(
		"INSERT INTO stage_tiles (stage_id, relative_path, tile_name, lat_x, lat_y, lat_z, this_stage_status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		stageID, id, "tile-"+id, x, y, z, status.String(),
	)
	if err != nil {
		t.Fatalf("failed to seed tile: %v", err)
	}
	return id
}

// newRecord builds a tile record with fixed timestamps.
func newRecord(id string, x, y, z int, this, prev tile.Status) *secondary.TileRecord {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &secondary.TileRecord{
		ID:              id,
		Name:            "tile-" + id,
		X:               x,
		Y:               y,
		Z:               z,
		ThisStageStatus: this,
		PrevStageStatus: prev,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}
