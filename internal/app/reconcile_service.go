package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/tilepipe/internal/core/adjacency"
	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/ctxutil"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// ReconcileResult is the tile diff of one pass plus the adjacency links it
// flushed (or would have flushed, for a dry run).
type ReconcileResult struct {
	secondary.TileDiff
	LinksInserted int
	LinksDeleted  int
}

// Reconciler computes the diff between an adjacent-tile stage and its input
// stage. Only one pass per stage may run at a time; callers serialise passes.
type Reconciler struct {
	adjacencyRepo secondary.AdjacencyRepository
	logger        zerolog.Logger
	now           func() time.Time
}

// NewReconciler creates a Reconciler writing links through adjacencyRepo.
func NewReconciler(adjacencyRepo secondary.AdjacencyRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		adjacencyRepo: adjacencyRepo,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// passState is owned by exactly one Reconcile call.
type passState struct {
	stage      *secondary.StageRecord
	inputByID  map[string]*secondary.TileRecord
	outputByID map[string]*secondary.TileRecord
	deleting   map[string]bool
	index      *adjacency.Index[*secondary.TileRecord]
	cache      *AdjacencyCache
	now        time.Time
	result     *ReconcileResult
}

// Reconcile walks knownInput in order, one tile at a time, and returns the
// tile mutations needed to bring knownOutput in line with it. Adjacency links
// are staged during the walk and flushed (inserts, then deletes) at the end,
// unless dryRun is set. The tile diff itself is not applied.
func (r *Reconciler) Reconcile(ctx context.Context, stage *secondary.StageRecord, knownInput, knownOutput []*secondary.TileRecord, dryRun bool) (*ReconcileResult, error) {
	logger := r.logger.With().
		Str("pass_id", ctxutil.PassIDFromContext(ctx)).
		Str("stage", stage.ID).
		Logger()

	cache, err := LoadAdjacencyCache(ctx, r.adjacencyRepo, stage.ID)
	if err != nil {
		return nil, err
	}

	state := &passState{
		stage:      stage,
		inputByID:  make(map[string]*secondary.TileRecord, len(knownInput)),
		outputByID: make(map[string]*secondary.TileRecord, len(knownOutput)),
		deleting:   make(map[string]bool),
		index:      adjacency.NewIndex(knownInput),
		cache:      cache,
		now:        r.now(),
		result:     &ReconcileResult{},
	}

	for _, t := range knownInput {
		state.inputByID[t.ID] = t
	}
	for _, t := range knownOutput {
		state.outputByID[t.ID] = t
		if _, ok := state.inputByID[t.ID]; !ok {
			state.result.ToDelete = append(state.result.ToDelete, t.ID)
			state.deleting[t.ID] = true
			// A departing tile takes its own link with it.
			if cache.Get(t.ID) != nil {
				cache.StageDelete(t.ID)
			}
		}
	}

	for _, in := range knownInput {
		r.reconcileTile(state, in, logger)
	}

	state.result.LinksInserted, state.result.LinksDeleted = cache.Staged()

	if dryRun {
		cache.Discard()
	} else if err := cache.Flush(ctx); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("inserts", len(state.result.ToInsert)).
		Int("updates", len(state.result.ToUpdate)).
		Int("deletes", len(state.result.ToDelete)).
		Int("links_inserted", state.result.LinksInserted).
		Int("links_deleted", state.result.LinksDeleted).
		Bool("dry_run", dryRun).
		Msg("reconciled stage")

	return state.result, nil
}

func (r *Reconciler) reconcileTile(state *passState, in *secondary.TileRecord, logger zerolog.Logger) {
	link := state.cache.Get(in.ID)

	if link == nil {
		if pred, ok := state.index.Predecessor(in, state.stage.Axis); ok {
			link = &secondary.AdjacencyRecord{
				TileID:           in.ID,
				AdjacentTileID:   pred.ID,
				AdjacentTileName: pred.Name,
			}
			state.cache.StageInsert(link)
			logger.Debug().Str("tile", in.ID).Str("adjacent", pred.ID).Msg("staged adjacency link")
		}
	} else if state.deleting[link.AdjacentTileID] {
		// The replacement, if any, is resolved on the next pass once this
		// link is gone.
		state.cache.StageDelete(in.ID)
		logger.Debug().Str("tile", in.ID).Str("adjacent", link.AdjacentTileID).Msg("staged adjacency link removal")
	}

	var adjacent *secondary.TileRecord
	if link != nil {
		adjacent = state.inputByID[link.AdjacentTileID]
		if adjacent == nil {
			logger.Warn().Str("tile", in.ID).Str("adjacent", link.AdjacentTileID).Msg("linked tile missing from input stage")
		}
	}

	input := tile.PropagateInput{InputStatus: in.ThisStageStatus}
	if adjacent != nil {
		input.HasAdjacent = true
		input.AdjacentStatus = adjacent.ThisStageStatus
	}

	existing := state.outputByID[in.ID]
	if existing != nil {
		s := existing.State()
		input.Existing = &s
	}

	computed := tile.Propagate(input)

	switch computed.Write {
	case tile.WriteInsert:
		state.result.ToInsert = append(state.result.ToInsert, &secondary.TileRecord{
			ID:              in.ID,
			Name:            in.Name,
			X:               in.X,
			Y:               in.Y,
			Z:               in.Z,
			ThisStageStatus: computed.This,
			PrevStageStatus: computed.Prev,
			CreatedAt:       state.now,
			UpdatedAt:       state.now,
		})
	case tile.WriteUpdate:
		updated := *existing
		updated.ThisStageStatus = computed.This
		updated.PrevStageStatus = computed.Prev
		updated.X, updated.Y, updated.Z = in.X, in.Y, in.Z
		updated.UpdatedAt = state.now
		state.result.ToUpdate = append(state.result.ToUpdate, &updated)
	}
}

// String renders a one-line summary, used in logs and CLI output.
func (r *ReconcileResult) String() string {
	return fmt.Sprintf("%d inserts, %d updates, %d deletes, %d links added, %d links removed",
		len(r.ToInsert), len(r.ToUpdate), len(r.ToDelete), r.LinksInserted, r.LinksDeleted)
}
