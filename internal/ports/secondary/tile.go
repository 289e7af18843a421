package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/tilepipe/internal/core/adjacency"
	"github.com/example/tilepipe/internal/core/tile"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TileRepository defines the secondary port for per-stage tile persistence.
type TileRepository interface {
	// ListByStage retrieves every tile of a stage ordered by relative path.
	ListByStage(ctx context.Context, stageID string) ([]*TileRecord, error)

	// GetByID retrieves one tile of a stage. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, stageID, id string) (*TileRecord, error)

	// ApplyDiff applies inserts, updates and deletes in a single transaction.
	ApplyDiff(ctx context.Context, stageID string, diff TileDiff) error

	// Upsert inserts tiles or replaces their coordinates, name and status.
	Upsert(ctx context.Context, stageID string, tiles []*TileRecord) error

	// SetStatus records a stage execution result for one tile.
	SetStatus(ctx context.Context, stageID, id string, status tile.Status) error
}

// TileRecord represents a tile as stored for one stage.
type TileRecord struct {
	ID              string // relative path, stable across stages
	Name            string
	X               int
	Y               int
	Z               int
	ThisStageStatus tile.Status
	PrevStageStatus tile.Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Coord returns the lattice position of the tile.
func (r *TileRecord) Coord() adjacency.Coord {
	return adjacency.Coord{X: r.X, Y: r.Y, Z: r.Z}
}

// State returns the persisted status pair.
func (r *TileRecord) State() tile.State {
	return tile.State{This: r.ThisStageStatus, Prev: r.PrevStageStatus}
}

// TileDiff is the set of tile mutations produced by one reconciliation pass.
type TileDiff struct {
	ToInsert []*TileRecord
	ToUpdate []*TileRecord
	ToDelete []string
}

// Empty reports whether the diff contains no mutations.
func (d TileDiff) Empty() bool {
	return len(d.ToInsert) == 0 && len(d.ToUpdate) == 0 && len(d.ToDelete) == 0
}

// AdjacencyRepository defines the secondary port for the adjacency cache.
type AdjacencyRepository interface {
	// ListByStage retrieves every cached link of a stage.
	ListByStage(ctx context.Context, stageID string) ([]*AdjacencyRecord, error)

	// GetByTile retrieves the link of one tile. Returns ErrNotFound if absent.
	GetByTile(ctx context.Context, stageID, tileID string) (*AdjacencyRecord, error)

	// Insert persists new links. Existing links for the same tile are replaced.
	Insert(ctx context.Context, stageID string, links []*AdjacencyRecord) error

	// Delete removes the links of the given tiles.
	Delete(ctx context.Context, stageID string, tileIDs []string) error
}

// AdjacencyRecord links a tile to its predecessor in the input stage.
type AdjacencyRecord struct {
	TileID           string
	AdjacentTileID   string
	AdjacentTileName string
}

// StageCatalog defines the secondary port for pipeline stage configuration.
type StageCatalog interface {
	// Stages returns every configured stage in declaration order.
	Stages(ctx context.Context) ([]*StageRecord, error)

	// GetStage returns one stage. Returns ErrNotFound if it is not configured.
	GetStage(ctx context.Context, id string) (*StageRecord, error)
}

// StageRecord describes one configured pipeline stage.
type StageRecord struct {
	ID           string
	Name         string
	InputStageID string         // empty for source stages
	Axis         adjacency.Axis // empty for stages that do not compare adjacent tiles
}

// IsAdjacent reports whether the stage depends on a neighbouring input tile.
func (s *StageRecord) IsAdjacent() bool {
	return s.InputStageID != "" && s.Axis != adjacency.AxisNone
}
