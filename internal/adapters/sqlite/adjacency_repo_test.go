package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tilepipe/internal/adapters/sqlite"
	"github.com/example/tilepipe/internal/ports/secondary"
)

func TestAdjacencyRepository_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAdjacencyRepository(db)
	ctx := context.Background()

	links := []*secondary.AdjacencyRecord{
		{TileID: "b", AdjacentTileID: "b-next", AdjacentTileName: "B next"},
		{TileID: "a", AdjacentTileID: "a-next", AdjacentTileName: "A next"},
	}
	if err := repo.Insert(ctx, "z", links); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Insert(ctx, "x", []*secondary.AdjacencyRecord{{TileID: "a", AdjacentTileID: "other"}}); err != nil {
		t.Fatalf("Insert(x) failed: %v", err)
	}

	got, err := repo.ListByStage(ctx, "z")
	if err != nil {
		t.Fatalf("ListByStage failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 links, got %d", len(got))
	}
	if got[0].TileID != "a" || got[0].AdjacentTileID != "a-next" || got[0].AdjacentTileName != "A next" {
		t.Errorf("unexpected first link: %+v", got[0])
	}

	link, err := repo.GetByTile(ctx, "x", "a")
	if err != nil {
		t.Fatalf("GetByTile failed: %v", err)
	}
	if link.AdjacentTileID != "other" {
		t.Errorf("expected stage-scoped link, got %+v", link)
	}
}

func TestAdjacencyRepository_InsertReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAdjacencyRepository(db)
	ctx := context.Background()

	if err := repo.Insert(ctx, "z", []*secondary.AdjacencyRecord{{TileID: "a", AdjacentTileID: "old"}}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.Insert(ctx, "z", []*secondary.AdjacencyRecord{{TileID: "a", AdjacentTileID: "new"}}); err != nil {
		t.Fatalf("second Insert failed: %v", err)
	}

	link, err := repo.GetByTile(ctx, "z", "a")
	if err != nil {
		t.Fatalf("GetByTile failed: %v", err)
	}
	if link.AdjacentTileID != "new" {
		t.Errorf("expected replaced link, got %+v", link)
	}
}

func TestAdjacencyRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAdjacencyRepository(db)
	ctx := context.Background()

	links := []*secondary.AdjacencyRecord{
		{TileID: "a", AdjacentTileID: "a-next"},
		{TileID: "b", AdjacentTileID: "b-next"},
	}
	if err := repo.Insert(ctx, "z", links); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.Delete(ctx, "z", []string{"a", "never-linked"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.GetByTile(ctx, "z", "a"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected link a to be deleted, got %v", err)
	}
	if _, err := repo.GetByTile(ctx, "z", "b"); err != nil {
		t.Errorf("expected link b to survive, got %v", err)
	}
}

func TestAdjacencyRepository_EmptyBatches(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAdjacencyRepository(db)
	ctx := context.Background()

	if err := repo.Insert(ctx, "z", nil); err != nil {
		t.Errorf("Insert(nil) failed: %v", err)
	}
	if err := repo.Delete(ctx, "z", nil); err != nil {
		t.Errorf("Delete(nil) failed: %v", err)
	}
	links, err := repo.ListByStage(ctx, "z")
	if err != nil {
		t.Fatalf("ListByStage failed: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected no links, got %d", len(links))
	}
}
