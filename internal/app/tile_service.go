package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/ports/primary"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// TileServiceImpl implements the TileService interface.
type TileServiceImpl struct {
	stages        secondary.StageCatalog
	tileRepo      secondary.TileRepository
	adjacencyRepo secondary.AdjacencyRepository
}

// NewTileService creates a new TileService with injected dependencies.
func NewTileService(stages secondary.StageCatalog, tileRepo secondary.TileRepository, adjacencyRepo secondary.AdjacencyRepository) *TileServiceImpl {
	return &TileServiceImpl{
		stages:        stages,
		tileRepo:      tileRepo,
		adjacencyRepo: adjacencyRepo,
	}
}

// ListStages returns every configured stage.
func (s *TileServiceImpl) ListStages(ctx context.Context) ([]*primary.Stage, error) {
	records, err := s.stages.Stages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	stages := make([]*primary.Stage, len(records))
	for i, r := range records {
		stages[i] = &primary.Stage{
			ID:           r.ID,
			Name:         r.Name,
			InputStageID: r.InputStageID,
			Axis:         string(r.Axis),
			Adjacent:     r.IsAdjacent(),
		}
	}
	return stages, nil
}

// ImportTiles upserts tiles into a source stage.
// Adjacent stages are populated by reconciliation only.
func (s *TileServiceImpl) ImportTiles(ctx context.Context, req primary.ImportTilesRequest) (*primary.ImportTilesResponse, error) {
	stage, err := s.stages.GetStage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	if stage.IsAdjacent() {
		return nil, fmt.Errorf("stage %s is reconciled from %s; import into its input stage instead", stage.ID, stage.InputStageID)
	}

	seen := make(map[string]bool, len(req.Tiles))
	records := make([]*secondary.TileRecord, 0, len(req.Tiles))
	for i, in := range req.Tiles {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			return nil, fmt.Errorf("tile[%d] missing id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("tile %s listed twice", id)
		}
		seen[id] = true

		status := tile.StatusIncomplete
		if in.Status != "" {
			if status, err = tile.ParseStatus(in.Status); err != nil {
				return nil, fmt.Errorf("tile %s: %w", id, err)
			}
		}

		name := in.Name
		if name == "" {
			name = id
		}

		records = append(records, &secondary.TileRecord{
			ID:              id,
			Name:            name,
			X:               in.X,
			Y:               in.Y,
			Z:               in.Z,
			ThisStageStatus: status,
			PrevStageStatus: tile.StatusDoesNotExist,
		})
	}

	if err := s.tileRepo.Upsert(ctx, stage.ID, records); err != nil {
		return nil, fmt.Errorf("failed to import tiles: %w", err)
	}

	return &primary.ImportTilesResponse{StageID: stage.ID, Imported: len(records)}, nil
}

// ListTiles retrieves every tile of a stage.
func (s *TileServiceImpl) ListTiles(ctx context.Context, stageID string) ([]*primary.Tile, error) {
	if _, err := s.stages.GetStage(ctx, stageID); err != nil {
		return nil, err
	}

	records, err := s.tileRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}
	return recordsToTiles(records), nil
}

// GetTile retrieves one tile of a stage.
func (s *TileServiceImpl) GetTile(ctx context.Context, stageID, tileID string) (*primary.Tile, error) {
	record, err := s.tileRepo.GetByID(ctx, stageID, tileID)
	if err != nil {
		return nil, err
	}
	return recordToTile(record), nil
}

// SetTileStatus records a stage execution result for one tile.
func (s *TileServiceImpl) SetTileStatus(ctx context.Context, req primary.SetTileStatusRequest) (*primary.Tile, error) {
	if _, err := s.stages.GetStage(ctx, req.StageID); err != nil {
		return nil, err
	}

	status, err := tile.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	// DoesNotExist is owned by reconciliation; a tile reset to it by hand
	// would never be promoted again.
	if status == tile.StatusDoesNotExist {
		return nil, fmt.Errorf("status %s is not a stage result", status)
	}

	if err := s.tileRepo.SetStatus(ctx, req.StageID, req.TileID, status); err != nil {
		return nil, err
	}

	return s.GetTile(ctx, req.StageID, req.TileID)
}

// ListLinks retrieves the adjacency cache of a stage.
func (s *TileServiceImpl) ListLinks(ctx context.Context, stageID string) ([]*primary.Link, error) {
	if _, err := s.stages.GetStage(ctx, stageID); err != nil {
		return nil, err
	}

	records, err := s.adjacencyRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjacency links: %w", err)
	}

	links := make([]*primary.Link, len(records))
	for i, r := range records {
		links[i] = &primary.Link{
			TileID:           r.TileID,
			AdjacentTileID:   r.AdjacentTileID,
			AdjacentTileName: r.AdjacentTileName,
		}
	}
	return links, nil
}

// Helper methods

func recordToTile(r *secondary.TileRecord) *primary.Tile {
	return &primary.Tile{
		ID:              r.ID,
		Name:            r.Name,
		X:               r.X,
		Y:               r.Y,
		Z:               r.Z,
		ThisStageStatus: r.ThisStageStatus.String(),
		PrevStageStatus: r.PrevStageStatus.String(),
		CreatedAt:       formatTime(r.CreatedAt),
		UpdatedAt:       formatTime(r.UpdatedAt),
	}
}

func recordsToTiles(records []*secondary.TileRecord) []*primary.Tile {
	tiles := make([]*primary.Tile, len(records))
	for i, r := range records {
		tiles[i] = recordToTile(r)
	}
	return tiles
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Ensure TileServiceImpl implements the interface.
var _ primary.TileService = (*TileServiceImpl)(nil)
