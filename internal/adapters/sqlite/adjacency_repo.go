package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/tilepipe/internal/ports/secondary"
)

// AdjacencyRepository implements secondary.AdjacencyRepository with SQLite.
type AdjacencyRepository struct {
	db *sql.DB
}

// NewAdjacencyRepository creates a new SQLite adjacency cache repository.
func NewAdjacencyRepository(db *sql.DB) *AdjacencyRepository {
	return &AdjacencyRepository{db: db}
}

// ListByStage retrieves every cached link of a stage.
func (r *AdjacencyRepository) ListByStage(ctx context.Context, stageID string) ([]*secondary.AdjacencyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT relative_path, adjacent_relative_path, adjacent_tile_name FROM adjacent_tiles WHERE stage_id = ? ORDER BY relative_path ASC",
		stageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjacent tiles: %w", err)
	}
	defer rows.Close()

	var links []*secondary.AdjacencyRecord
	for rows.Next() {
		link := &secondary.AdjacencyRecord{}
		if err := rows.Scan(&link.TileID, &link.AdjacentTileID, &link.AdjacentTileName); err != nil {
			return nil, fmt.Errorf("failed to scan adjacent tile: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list adjacent tiles: %w", err)
	}

	return links, nil
}

// GetByTile retrieves the link of one tile.
func (r *AdjacencyRepository) GetByTile(ctx context.Context, stageID, tileID string) (*secondary.AdjacencyRecord, error) {
	link := &secondary.AdjacencyRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT relative_path, adjacent_relative_path, adjacent_tile_name FROM adjacent_tiles WHERE stage_id = ? AND relative_path = ?",
		stageID, tileID,
	).Scan(&link.TileID, &link.AdjacentTileID, &link.AdjacentTileName)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjacent tile for %s in stage %s: %w", tileID, stageID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adjacent tile: %w", err)
	}

	return link, nil
}

// Insert persists new links, replacing any existing link of the same tile.
func (r *AdjacencyRepository) Insert(ctx context.Context, stageID string, links []*secondary.AdjacencyRecord) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, link := range links {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO adjacent_tiles (stage_id, relative_path, adjacent_relative_path, adjacent_tile_name) VALUES (?, ?, ?, ?)",
			stageID, link.TileID, link.AdjacentTileID, link.AdjacentTileName,
		)
		if err != nil {
			return fmt.Errorf("failed to insert adjacent tile for %s: %w", link.TileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjacent tiles: %w", err)
	}

	return nil
}

// Delete removes the links of the given tiles. Missing links are ignored.
func (r *AdjacencyRepository) Delete(ctx context.Context, stageID string, tileIDs []string) error {
	if len(tileIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range tileIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM adjacent_tiles WHERE stage_id = ? AND relative_path = ?",
			stageID, id,
		); err != nil {
			return fmt.Errorf("failed to delete adjacent tile for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adjacent tile deletes: %w", err)
	}

	return nil
}

// Ensure AdjacencyRepository implements the interface.
var _ secondary.AdjacencyRepository = (*AdjacencyRepository)(nil)
