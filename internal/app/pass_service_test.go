package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tilepipe/internal/core/adjacency"
	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/ctxutil"
	"github.com/example/tilepipe/internal/ports/primary"
	"github.com/example/tilepipe/internal/ports/secondary"
)

func newTestPassService() (*PassServiceImpl, *mockTileRepository, *mockAdjacencyRepository, *mockStageCatalog) {
	catalog := newTestCatalog()
	tileRepo := newMockTileRepository()
	adjRepo := newMockAdjacencyRepository()
	service := NewPassService(catalog, tileRepo, adjRepo, zerolog.Nop())
	return service, tileRepo, adjRepo, catalog
}

func seedSource(repo *mockTileRepository, tiles ...*secondary.TileRecord) {
	for _, t := range tiles {
		repo.put(sourceStage, t)
	}
}

func TestRunPass_AppliesDiff(t *testing.T) {
	service, tileRepo, _, _ := newTestPassService()
	ctx := context.Background()
	seedSource(tileRepo,
		inputTile("t1", 0, tile.StatusComplete),
		inputTile("t2", 1, tile.StatusComplete),
	)

	result, err := service.RunPass(ctx, primary.RunPassRequest{StageID: compareStage})
	require.NoError(t, err)

	assert.NotEmpty(t, result.PassID)
	assert.Equal(t, compareStage, result.StageID)
	assert.Len(t, result.Inserted, 2)
	assert.Equal(t, 1, result.LinksInserted)
	assert.True(t, result.Changed())

	stored, err := tileRepo.GetByID(ctx, compareStage, "t1")
	require.NoError(t, err)
	assert.Equal(t, tile.StatusIncomplete, stored.ThisStageStatus)
	assert.Equal(t, tile.StatusComplete, stored.PrevStageStatus)

	again, err := service.RunPass(ctx, primary.RunPassRequest{StageID: compareStage})
	require.NoError(t, err)
	assert.False(t, again.Changed())
	assert.Zero(t, again.LinksInserted)
}

func TestRunPass_KeepsCallerPassID(t *testing.T) {
	service, tileRepo, _, _ := newTestPassService()
	seedSource(tileRepo, inputTile("t1", 0, tile.StatusComplete))

	ctx := ctxutil.WithPassID(context.Background(), "pass-123")
	result, err := service.RunPass(ctx, primary.RunPassRequest{StageID: compareStage})
	require.NoError(t, err)
	assert.Equal(t, "pass-123", result.PassID)
}

func TestRunPass_DryRunWritesNothing(t *testing.T) {
	service, tileRepo, adjRepo, _ := newTestPassService()
	ctx := context.Background()
	seedSource(tileRepo,
		inputTile("t1", 0, tile.StatusComplete),
		inputTile("t2", 1, tile.StatusComplete),
	)

	result, err := service.RunPass(ctx, primary.RunPassRequest{StageID: compareStage, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Inserted, 2)

	assert.Empty(t, tileRepo.applied)
	assert.Empty(t, adjRepo.ops)
	tiles, err := tileRepo.ListByStage(ctx, compareStage)
	require.NoError(t, err)
	assert.Empty(t, tiles)
}

func TestRunPass_RejectsSourceStage(t *testing.T) {
	service, _, _, _ := newTestPassService()

	_, err := service.RunPass(context.Background(), primary.RunPassRequest{StageID: sourceStage})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an adjacent-tile stage")
}

func TestRunPass_UnknownStage(t *testing.T) {
	service, _, _, _ := newTestPassService()

	_, err := service.RunPass(context.Background(), primary.RunPassRequest{StageID: "nope"})
	assert.ErrorIs(t, err, secondary.ErrNotFound)
}

func TestRunPass_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("locked")

	t.Run("load", func(t *testing.T) {
		service, tileRepo, _, _ := newTestPassService()
		tileRepo.listErr = boom

		_, err := service.RunPass(context.Background(), primary.RunPassRequest{StageID: compareStage})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("apply", func(t *testing.T) {
		service, tileRepo, _, _ := newTestPassService()
		seedSource(tileRepo, inputTile("t1", 0, tile.StatusComplete))
		tileRepo.applyErr = boom

		_, err := service.RunPass(context.Background(), primary.RunPassRequest{StageID: compareStage})
		assert.ErrorIs(t, err, boom)
	})
}

func TestRunAll_RunsEveryAdjacentStage(t *testing.T) {
	service, tileRepo, _, catalog := newTestPassService()
	catalog.stages = append(catalog.stages, &secondary.StageRecord{
		ID: "x-compare", Name: "X compare", InputStageID: sourceStage, Axis: adjacency.AxisX,
	})
	seedSource(tileRepo, inputTile("t1", 0, tile.StatusComplete))

	results, err := service.RunAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, compareStage, results[0].StageID)
	assert.Equal(t, "x-compare", results[1].StageID)
}

func TestRunAll_ContinuesAfterFailure(t *testing.T) {
	service, tileRepo, _, catalog := newTestPassService()
	catalog.stages = []*secondary.StageRecord{
		{ID: sourceStage},
		{ID: "broken", InputStageID: sourceStage, Axis: adjacency.AxisZ},
		zStage(),
	}
	seedSource(tileRepo, inputTile("t1", 0, tile.StatusComplete))
	boom := errors.New("boom")
	tileRepo.applyErr = boom

	results, err := service.RunAll(context.Background(), false)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage broken")
	assert.Contains(t, err.Error(), "stage "+compareStage)
	assert.Empty(t, results)
}

func TestTaskContext(t *testing.T) {
	service, tileRepo, adjRepo, _ := newTestPassService()
	ctx := context.Background()
	tileRepo.put(compareStage, outputTile("t1", 0, tile.StatusIncomplete, tile.StatusComplete))
	tileRepo.put(compareStage, outputTile("t2", 1, tile.StatusDoesNotExist, tile.StatusDoesNotExist))
	adjRepo.put(compareStage, &secondary.AdjacencyRecord{TileID: "t1", AdjacentTileID: "t2", AdjacentTileName: "t2.tif"})

	linked, err := service.TaskContext(ctx, compareStage, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t2.tif"}, linked.Args)
	assert.Equal(t, "t2", linked.AdjacentTileID)

	unlinked, err := service.TaskContext(ctx, compareStage, "t2")
	require.NoError(t, err)
	assert.Empty(t, unlinked.Args)
	assert.Empty(t, unlinked.AdjacentTileID)

	_, err = service.TaskContext(ctx, compareStage, "missing")
	assert.ErrorIs(t, err, secondary.ErrNotFound)
}
