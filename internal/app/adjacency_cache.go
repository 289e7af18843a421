package app

import (
	"context"
	"fmt"

	"github.com/example/tilepipe/internal/ports/secondary"
)

// AdjacencyCache is the per-pass view of a stage's adjacency links.
// Mutations are staged during the pass and written by Flush; the cache is
// owned by a single pass and is not safe for concurrent use.
type AdjacencyCache struct {
	repo    secondary.AdjacencyRepository
	stageID string

	links    map[string]*secondary.AdjacencyRecord
	toInsert []*secondary.AdjacencyRecord
	toDelete []string
}

// LoadAdjacencyCache reads every cached link of a stage.
func LoadAdjacencyCache(ctx context.Context, repo secondary.AdjacencyRepository, stageID string) (*AdjacencyCache, error) {
	records, err := repo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjacency cache: %w", err)
	}

	links := make(map[string]*secondary.AdjacencyRecord, len(records))
	for _, r := range records {
		links[r.TileID] = r
	}

	return &AdjacencyCache{repo: repo, stageID: stageID, links: links}, nil
}

// Get returns the cached link of a tile, or nil.
// Links staged in the current pass are not visible until Flush.
func (c *AdjacencyCache) Get(tileID string) *secondary.AdjacencyRecord {
	return c.links[tileID]
}

// StageInsert schedules a new link for the next Flush.
func (c *AdjacencyCache) StageInsert(link *secondary.AdjacencyRecord) {
	c.toInsert = append(c.toInsert, link)
}

// StageDelete schedules removal of a tile's link for the next Flush.
func (c *AdjacencyCache) StageDelete(tileID string) {
	c.toDelete = append(c.toDelete, tileID)
}

// Staged returns the number of pending inserts and deletes.
func (c *AdjacencyCache) Staged() (inserts, deletes int) {
	return len(c.toInsert), len(c.toDelete)
}

// Flush writes staged inserts, then staged deletes, and clears the staging.
// On error nothing is cleared; the next pass recomputes from storage.
func (c *AdjacencyCache) Flush(ctx context.Context) error {
	if err := c.repo.Insert(ctx, c.stageID, c.toInsert); err != nil {
		return fmt.Errorf("failed to flush adjacency inserts: %w", err)
	}
	for _, link := range c.toInsert {
		c.links[link.TileID] = link
	}
	c.toInsert = nil

	if err := c.repo.Delete(ctx, c.stageID, c.toDelete); err != nil {
		return fmt.Errorf("failed to flush adjacency deletes: %w", err)
	}
	for _, id := range c.toDelete {
		delete(c.links, id)
	}
	c.toDelete = nil

	return nil
}

// Discard drops staged mutations without writing them.
func (c *AdjacencyCache) Discard() {
	c.toInsert = nil
	c.toDelete = nil
}
