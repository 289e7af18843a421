// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/ports/secondary"
)

const tileColumns = "relative_path, tile_name, lat_x, lat_y, lat_z, this_stage_status, prev_stage_status, created_at, updated_at"

// TileRepository implements secondary.TileRepository with SQLite.
type TileRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTileRepository creates a new SQLite tile repository.
func NewTileRepository(db *sql.DB) *TileRepository {
	return &TileRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTile(row rowScanner) (*secondary.TileRecord, error) {
	var (
		record     secondary.TileRecord
		thisStatus string
		prevStatus string
	)

	err := row.Scan(&record.ID, &record.Name, &record.X, &record.Y, &record.Z,
		&thisStatus, &prevStatus, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if record.ThisStageStatus, err = tile.ParseStatus(thisStatus); err != nil {
		return nil, fmt.Errorf("tile %s: %w", record.ID, err)
	}
	if record.PrevStageStatus, err = tile.ParseStatus(prevStatus); err != nil {
		return nil, fmt.Errorf("tile %s: %w", record.ID, err)
	}

	return &record, nil
}

// ListByStage retrieves every tile of a stage ordered by relative path.
func (r *TileRepository) ListByStage(ctx context.Context, stageID string) ([]*secondary.TileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tileColumns+" FROM stage_tiles WHERE stage_id = ? ORDER BY relative_path ASC",
		stageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}
	defer rows.Close()

	var tiles []*secondary.TileRecord
	for rows.Next() {
		record, err := scanTile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tile: %w", err)
		}
		tiles = append(tiles, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}

	return tiles, nil
}

// GetByID retrieves one tile of a stage.
func (r *TileRepository) GetByID(ctx context.Context, stageID, id string) (*secondary.TileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tileColumns+" FROM stage_tiles WHERE stage_id = ? AND relative_path = ?",
		stageID, id,
	)

	record, err := scanTile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tile %s in stage %s: %w", id, stageID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tile: %w", err)
	}

	return record, nil
}

// ApplyDiff applies inserts, updates and deletes in a single transaction.
func (r *TileRepository) ApplyDiff(ctx context.Context, stageID string, diff secondary.TileDiff) error {
	if diff.Empty() {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range diff.ToInsert {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO stage_tiles (stage_id, "+tileColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			stageID, t.ID, t.Name, t.X, t.Y, t.Z,
			t.ThisStageStatus.String(), t.PrevStageStatus.String(), t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tile %s: %w", t.ID, err)
		}
	}

	for _, t := range diff.ToUpdate {
		result, err := tx.ExecContext(ctx,
			`UPDATE stage_tiles
			SET this_stage_status = ?, prev_stage_status = ?, lat_x = ?, lat_y = ?, lat_z = ?, updated_at = ?
			WHERE stage_id = ? AND relative_path = ?`,
			t.ThisStageStatus.String(), t.PrevStageStatus.String(), t.X, t.Y, t.Z, t.UpdatedAt,
			stageID, t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update tile %s: %w", t.ID, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("failed to update tile %s: %w", t.ID, secondary.ErrNotFound)
		}
	}

	for _, id := range diff.ToDelete {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM stage_tiles WHERE stage_id = ? AND relative_path = ?",
			stageID, id,
		); err != nil {
			return fmt.Errorf("failed to delete tile %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tile diff: %w", err)
	}

	return nil
}

// Upsert inserts tiles or replaces their coordinates, name and status.
func (r *TileRepository) Upsert(ctx context.Context, stageID string, tiles []*secondary.TileRecord) error {
	if len(tiles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	for _, t := range tiles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stage_tiles (stage_id, `+tileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(stage_id, relative_path) DO UPDATE SET
				tile_name = excluded.tile_name,
				lat_x = excluded.lat_x,
				lat_y = excluded.lat_y,
				lat_z = excluded.lat_z,
				this_stage_status = excluded.this_stage_status,
				prev_stage_status = excluded.prev_stage_status,
				updated_at = excluded.updated_at`,
			stageID, t.ID, t.Name, t.X, t.Y, t.Z,
			t.ThisStageStatus.String(), t.PrevStageStatus.String(), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert tile %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tile upsert: %w", err)
	}

	return nil
}

// SetStatus records a stage execution result for one tile.
func (r *TileRepository) SetStatus(ctx context.Context, stageID, id string, status tile.Status) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE stage_tiles SET this_stage_status = ?, updated_at = ? WHERE stage_id = ? AND relative_path = ?",
		status.String(), r.now(), stageID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set tile status: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tile %s in stage %s: %w", id, stageID, secondary.ErrNotFound)
	}

	return nil
}

// Ensure TileRepository implements the interface.
var _ secondary.TileRepository = (*TileRepository)(nil)
