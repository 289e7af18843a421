package primary

import (
	"context"
	"time"
)

// PassService defines the primary port for reconciliation passes.
type PassService interface {
	// RunPass reconciles one adjacent-tile stage against its input stage and
	// applies the resulting tile diff unless DryRun is set.
	RunPass(ctx context.Context, req RunPassRequest) (*PassResult, error)

	// RunAll runs a pass for every adjacent-tile stage in declaration order.
	RunAll(ctx context.Context, dryRun bool) ([]*PassResult, error)

	// TaskContext returns the worker arguments for a tile of an adjacent stage.
	TaskContext(ctx context.Context, stageID, tileID string) (*TaskContext, error)
}

// RunPassRequest contains parameters for a reconciliation pass.
type RunPassRequest struct {
	StageID string
	DryRun  bool
}

// PassResult summarises one reconciliation pass.
type PassResult struct {
	PassID        string
	StageID       string
	DryRun        bool
	Inserted      []*Tile
	Updated       []*Tile
	Deleted       []string
	LinksInserted int
	LinksDeleted  int
	Duration      time.Duration
}

// Changed reports whether the pass produced any tile mutation.
func (r *PassResult) Changed() bool {
	return len(r.Inserted) > 0 || len(r.Updated) > 0 || len(r.Deleted) > 0
}

// TaskContext carries what a stage worker needs to process one tile.
type TaskContext struct {
	StageID          string
	TileID           string
	AdjacentTileID   string // empty when no predecessor is linked
	AdjacentTileName string
	Args             []string
}

// TileService defines the primary port for tile and stage inspection.
type TileService interface {
	// ListStages returns every configured stage.
	ListStages(ctx context.Context) ([]*Stage, error)

	// ImportTiles upserts tiles into a stage.
	ImportTiles(ctx context.Context, req ImportTilesRequest) (*ImportTilesResponse, error)

	// ListTiles retrieves every tile of a stage.
	ListTiles(ctx context.Context, stageID string) ([]*Tile, error)

	// GetTile retrieves one tile of a stage.
	GetTile(ctx context.Context, stageID, tileID string) (*Tile, error)

	// SetTileStatus records a stage execution result for one tile.
	SetTileStatus(ctx context.Context, req SetTileStatusRequest) (*Tile, error)

	// ListLinks retrieves the adjacency cache of a stage.
	ListLinks(ctx context.Context, stageID string) ([]*Link, error)
}

// ImportTilesRequest contains tiles to upsert into a stage.
type ImportTilesRequest struct {
	StageID string
	Tiles   []*TileInput
}

// TileInput describes a tile supplied by an importer.
type TileInput struct {
	ID     string
	Name   string
	X      int
	Y      int
	Z      int
	Status string // empty means incomplete
}

// ImportTilesResponse contains the result of an import.
type ImportTilesResponse struct {
	StageID  string
	Imported int
}

// SetTileStatusRequest contains parameters for recording a tile status.
type SetTileStatusRequest struct {
	StageID string
	TileID  string
	Status  string
}

// Stage represents a configured pipeline stage at the port boundary.
type Stage struct {
	ID           string
	Name         string
	InputStageID string
	Axis         string
	Adjacent     bool
}

// Tile represents a tile at the port boundary.
type Tile struct {
	ID              string
	Name            string
	X               int
	Y               int
	Z               int
	ThisStageStatus string
	PrevStageStatus string
	CreatedAt       string
	UpdatedAt       string
}

// Link represents an adjacency cache entry at the port boundary.
type Link struct {
	TileID           string
	AdjacentTileID   string
	AdjacentTileName string
}

// Scheduler defines the primary port for periodic reconciliation.
type Scheduler interface {
	// Run reconciles every adjacent stage on each tick until ctx is done.
	Run(ctx context.Context) error

	// Trigger runs a pass for one stage now, sharing the result with any pass
	// of the same stage already in flight.
	Trigger(ctx context.Context, stageID string) (*PassResult, error)
}
