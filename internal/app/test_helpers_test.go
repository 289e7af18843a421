package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/tilepipe/internal/core/adjacency"
	"github.com/example/tilepipe/internal/core/tile"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.TileRepository      = (*mockTileRepository)(nil)
	_ secondary.AdjacencyRepository = (*mockAdjacencyRepository)(nil)
	_ secondary.StageCatalog        = (*mockStageCatalog)(nil)
)

// mockTileRepository implements secondary.TileRepository for testing.
type mockTileRepository struct {
	mu       sync.Mutex
	tiles    map[string]map[string]*secondary.TileRecord // stageID -> id -> tile
	listErr  error
	applyErr error
	applied  []secondary.TileDiff
}

func newMockTileRepository() *mockTileRepository {
	return &mockTileRepository{tiles: make(map[string]map[string]*secondary.TileRecord)}
}

func (m *mockTileRepository) put(stageID string, r *secondary.TileRecord) {
	if m.tiles[stageID] == nil {
		m.tiles[stageID] = make(map[string]*secondary.TileRecord)
	}
	copied := *r
	m.tiles[stageID][r.ID] = &copied
}

func (m *mockTileRepository) ListByStage(ctx context.Context, stageID string) ([]*secondary.TileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TileRecord
	for _, r := range m.tiles[stageID] {
		copied := *r
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTileRepository) GetByID(ctx context.Context, stageID, id string) (*secondary.TileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tiles[stageID][id]
	if !ok {
		return nil, fmt.Errorf("tile %s: %w", id, secondary.ErrNotFound)
	}
	copied := *r
	return &copied, nil
}

func (m *mockTileRepository) ApplyDiff(ctx context.Context, stageID string, diff secondary.TileDiff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied = append(m.applied, diff)
	for _, r := range diff.ToInsert {
		m.put(stageID, r)
	}
	for _, r := range diff.ToUpdate {
		m.put(stageID, r)
	}
	for _, id := range diff.ToDelete {
		delete(m.tiles[stageID], id)
	}
	return nil
}

func (m *mockTileRepository) Upsert(ctx context.Context, stageID string, tiles []*secondary.TileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range tiles {
		m.put(stageID, r)
	}
	return nil
}

func (m *mockTileRepository) SetStatus(ctx context.Context, stageID, id string, status tile.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.tiles[stageID][id]
	if !ok {
		return fmt.Errorf("tile %s: %w", id, secondary.ErrNotFound)
	}
	r.ThisStageStatus = status
	return nil
}

// mockAdjacencyRepository implements secondary.AdjacencyRepository for testing.
// ops records every mutating call in order.
type mockAdjacencyRepository struct {
	links     map[string]map[string]*secondary.AdjacencyRecord // stageID -> tileID -> link
	ops       []string
	listErr   error
	insertErr error
	deleteErr error
}

func newMockAdjacencyRepository() *mockAdjacencyRepository {
	return &mockAdjacencyRepository{links: make(map[string]map[string]*secondary.AdjacencyRecord)}
}

func (m *mockAdjacencyRepository) put(stageID string, link *secondary.AdjacencyRecord) {
	if m.links[stageID] == nil {
		m.links[stageID] = make(map[string]*secondary.AdjacencyRecord)
	}
	copied := *link
	m.links[stageID][link.TileID] = &copied
}

func (m *mockAdjacencyRepository) ListByStage(ctx context.Context, stageID string) ([]*secondary.AdjacencyRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.AdjacencyRecord
	for _, l := range m.links[stageID] {
		copied := *l
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TileID < result[j].TileID })
	return result, nil
}

func (m *mockAdjacencyRepository) GetByTile(ctx context.Context, stageID, tileID string) (*secondary.AdjacencyRecord, error) {
	l, ok := m.links[stageID][tileID]
	if !ok {
		return nil, fmt.Errorf("link %s: %w", tileID, secondary.ErrNotFound)
	}
	copied := *l
	return &copied, nil
}

func (m *mockAdjacencyRepository) Insert(ctx context.Context, stageID string, links []*secondary.AdjacencyRecord) error {
	if len(links) == 0 {
		return nil
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, l := range links {
		m.put(stageID, l)
		m.ops = append(m.ops, "insert:"+l.TileID)
	}
	return nil
}

func (m *mockAdjacencyRepository) Delete(ctx context.Context, stageID string, tileIDs []string) error {
	if len(tileIDs) == 0 {
		return nil
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, id := range tileIDs {
		delete(m.links[stageID], id)
		m.ops = append(m.ops, "delete:"+id)
	}
	return nil
}

// mockStageCatalog implements secondary.StageCatalog for testing.
type mockStageCatalog struct {
	stages []*secondary.StageRecord
}

func (m *mockStageCatalog) Stages(ctx context.Context) ([]*secondary.StageRecord, error) {
	return m.stages, nil
}

func (m *mockStageCatalog) GetStage(ctx context.Context, id string) (*secondary.StageRecord, error) {
	for _, s := range m.stages {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stage %s: %w", id, secondary.ErrNotFound)
}

// ============================================================================
// Fixtures
// ============================================================================

const (
	sourceStage  = "raw"
	compareStage = "z-compare"
)

func zStage() *secondary.StageRecord {
	return &secondary.StageRecord{ID: compareStage, Name: "Z compare", InputStageID: sourceStage, Axis: adjacency.AxisZ}
}

func newTestCatalog() *mockStageCatalog {
	return &mockStageCatalog{stages: []*secondary.StageRecord{
		{ID: sourceStage, Name: "Raw"},
		zStage(),
	}}
}

func inputTile(id string, z int, status tile.Status) *secondary.TileRecord {
	return &secondary.TileRecord{
		ID:              id,
		Name:            id + ".tif",
		Z:               z,
		ThisStageStatus: status,
		PrevStageStatus: tile.StatusDoesNotExist,
	}
}

func outputTile(id string, z int, this, prev tile.Status) *secondary.TileRecord {
	return &secondary.TileRecord{
		ID:              id,
		Name:            id + ".tif",
		Z:               z,
		ThisStageStatus: this,
		PrevStageStatus: prev,
	}
}

func findRecord(records []*secondary.TileRecord, id string) *secondary.TileRecord {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return nil
}
