package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/tilepipe/internal/ctxutil"
	"github.com/example/tilepipe/internal/observability"
	"github.com/example/tilepipe/internal/ports/primary"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// PassServiceImpl implements the PassService interface.
type PassServiceImpl struct {
	stages        secondary.StageCatalog
	tileRepo      secondary.TileRepository
	adjacencyRepo secondary.AdjacencyRepository
	reconciler    *Reconciler
	logger        zerolog.Logger
}

// NewPassService creates a new PassService with injected dependencies.
func NewPassService(
	stages secondary.StageCatalog,
	tileRepo secondary.TileRepository,
	adjacencyRepo secondary.AdjacencyRepository,
	logger zerolog.Logger,
) *PassServiceImpl {
	return &PassServiceImpl{
		stages:        stages,
		tileRepo:      tileRepo,
		adjacencyRepo: adjacencyRepo,
		reconciler:    NewReconciler(adjacencyRepo, logger),
		logger:        logger,
	}
}

// RunPass loads both tile sets, reconciles them and applies the tile diff.
func (s *PassServiceImpl) RunPass(ctx context.Context, req primary.RunPassRequest) (*primary.PassResult, error) {
	stage, err := s.adjacentStage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}

	ctx, passID := ctxutil.EnsurePassID(ctx)
	start := time.Now()

	result, err := s.runPass(ctx, stage, req.DryRun)
	duration := time.Since(start)

	logger := s.logger.With().Str("pass_id", passID).Str("stage", stage.ID).Logger()
	if err != nil {
		logger.Error().Err(err).Dur("duration", duration).Msg("reconciliation pass failed")
		if !req.DryRun {
			observability.RecordPass(stage.ID, observability.PassCounts{}, duration, err)
		}
		return nil, err
	}

	if !req.DryRun {
		observability.RecordPass(stage.ID, observability.PassCounts{
			Inserted:      len(result.ToInsert),
			Updated:       len(result.ToUpdate),
			Deleted:       len(result.ToDelete),
			LinksInserted: result.LinksInserted,
			LinksDeleted:  result.LinksDeleted,
		}, duration, nil)
	}

	event := logger.Debug()
	if !result.Empty() {
		event = logger.Info()
	}
	event.Bool("dry_run", req.DryRun).Dur("duration", duration).Msg(result.String())

	return &primary.PassResult{
		PassID:        passID,
		StageID:       stage.ID,
		DryRun:        req.DryRun,
		Inserted:      recordsToTiles(result.ToInsert),
		Updated:       recordsToTiles(result.ToUpdate),
		Deleted:       append([]string(nil), result.ToDelete...),
		LinksInserted: result.LinksInserted,
		LinksDeleted:  result.LinksDeleted,
		Duration:      duration,
	}, nil
}

func (s *PassServiceImpl) runPass(ctx context.Context, stage *secondary.StageRecord, dryRun bool) (*ReconcileResult, error) {
	knownInput, err := s.tileRepo.ListByStage(ctx, stage.InputStageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load input tiles: %w", err)
	}

	knownOutput, err := s.tileRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load output tiles: %w", err)
	}

	result, err := s.reconciler.Reconcile(ctx, stage, knownInput, knownOutput, dryRun)
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := s.tileRepo.ApplyDiff(ctx, stage.ID, result.TileDiff); err != nil {
			return nil, fmt.Errorf("failed to apply tile diff: %w", err)
		}
	}

	return result, nil
}

// RunAll runs a pass for every adjacent-tile stage in declaration order.
// A failing stage does not stop later stages; all errors are returned joined.
func (s *PassServiceImpl) RunAll(ctx context.Context, dryRun bool) ([]*primary.PassResult, error) {
	stages, err := s.stages.Stages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	var (
		results []*primary.PassResult
		errs    []error
	)
	for _, stage := range stages {
		if !stage.IsAdjacent() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := s.RunPass(ctx, primary.RunPassRequest{StageID: stage.ID, DryRun: dryRun})
		if err != nil {
			errs = append(errs, fmt.Errorf("stage %s: %w", stage.ID, err))
			continue
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// TaskContext returns the worker arguments for a tile of an adjacent stage:
// the predecessor's relative path and name, or no arguments without a link.
func (s *PassServiceImpl) TaskContext(ctx context.Context, stageID, tileID string) (*primary.TaskContext, error) {
	stage, err := s.adjacentStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if _, err := s.tileRepo.GetByID(ctx, stage.ID, tileID); err != nil {
		return nil, err
	}

	taskCtx := &primary.TaskContext{StageID: stage.ID, TileID: tileID, Args: []string{}}

	link, err := s.adjacencyRepo.GetByTile(ctx, stage.ID, tileID)
	if errors.Is(err, secondary.ErrNotFound) {
		return taskCtx, nil
	}
	if err != nil {
		return nil, err
	}

	taskCtx.AdjacentTileID = link.AdjacentTileID
	taskCtx.AdjacentTileName = link.AdjacentTileName
	taskCtx.Args = []string{link.AdjacentTileID, link.AdjacentTileName}
	return taskCtx, nil
}

func (s *PassServiceImpl) adjacentStage(ctx context.Context, stageID string) (*secondary.StageRecord, error) {
	stage, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if !stage.IsAdjacent() {
		return nil, fmt.Errorf("stage %s is not an adjacent-tile stage", stageID)
	}
	return stage, nil
}

// Ensure PassServiceImpl implements the interface.
var _ primary.PassService = (*PassServiceImpl)(nil)
