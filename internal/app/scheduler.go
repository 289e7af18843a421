package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/example/tilepipe/internal/ports/primary"
	"github.com/example/tilepipe/internal/ports/secondary"
)

// SchedulerImpl periodically reconciles every adjacent stage.
// All passes go through a singleflight group keyed by stage id, so a tick and
// a manual trigger never reconcile the same stage concurrently.
type SchedulerImpl struct {
	passes   primary.PassService
	stages   secondary.StageCatalog
	interval time.Duration
	group    singleflight.Group
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(passes primary.PassService, stages secondary.StageCatalog, interval time.Duration, logger zerolog.Logger) *SchedulerImpl {
	return &SchedulerImpl{
		passes:   passes,
		stages:   stages,
		interval: interval,
		logger:   logger,
	}
}

// Run reconciles immediately and then on every tick until ctx is done.
// A pass in progress when ctx ends runs to completion.
func (s *SchedulerImpl) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *SchedulerImpl) tick(ctx context.Context) {
	stages, err := s.stages.Stages(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list stages")
		return
	}

	for _, stage := range stages {
		if !stage.IsAdjacent() {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Trigger(ctx, stage.ID); err != nil {
			s.logger.Error().Err(err).Str("stage", stage.ID).Msg("scheduled pass failed")
		}
	}
}

// Trigger runs a pass for one stage now. Concurrent triggers for the same
// stage share a single pass and its result.
func (s *SchedulerImpl) Trigger(ctx context.Context, stageID string) (*primary.PassResult, error) {
	v, err, shared := s.group.Do(stageID, func() (any, error) {
		return s.passes.RunPass(ctx, primary.RunPassRequest{StageID: stageID})
	})
	if shared {
		s.logger.Debug().Str("stage", stageID).Msg("joined pass already in flight")
	}
	if err != nil {
		return nil, err
	}

	result, ok := v.(*primary.PassResult)
	if !ok {
		return nil, fmt.Errorf("unexpected pass result %T", v)
	}
	return result, nil
}

// Ensure SchedulerImpl implements the interface.
var _ primary.Scheduler = (*SchedulerImpl)(nil)
