// Package configfile adapts the TOML project config to secondary ports.
package configfile

import (
	"context"
	"fmt"

	"github.com/example/tilepipe/internal/config"
	"github.com/example/tilepipe/internal/core/adjacency"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// StageCatalog implements secondary.StageCatalog over a loaded config.
type StageCatalog struct {
	stages []*secondary.StageRecord
}

// NewStageCatalog converts the configured stages. The config must already be
// validated; an unparseable axis is reported rather than silently dropped.
func NewStageCatalog(cfg *config.Config) (*StageCatalog, error) {
	catalog := &StageCatalog{}
	for _, s := range cfg.Stages {
		record := &secondary.StageRecord{
			ID:           s.ID,
			Name:         s.Name,
			InputStageID: s.Input,
		}
		if s.Axis != "" {
			axis, err := adjacency.ParseAxis(s.Axis)
			if err != nil {
				return nil, fmt.Errorf("stage %s: %w", s.ID, err)
			}
			record.Axis = axis
		}
		catalog.stages = append(catalog.stages, record)
	}
	return catalog, nil
}

// Stages returns every configured stage in declaration order.
func (c *StageCatalog) Stages(ctx context.Context) ([]*secondary.StageRecord, error) {
	out := make([]*secondary.StageRecord, len(c.stages))
	for i, s := range c.stages {
		copied := *s
		out[i] = &copied
	}
	return out, nil
}

// GetStage returns one configured stage.
func (c *StageCatalog) GetStage(ctx context.Context, id string) (*secondary.StageRecord, error) {
	for _, s := range c.stages {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("stage %s: %w", id, secondary.ErrNotFound)
}

// Ensure StageCatalog implements the interface.
var _ secondary.StageCatalog = (*StageCatalog)(nil)
