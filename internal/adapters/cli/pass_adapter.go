package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/tilepipe/internal/ports/primary"
)

// PassAdapter translates CLI operations to PassService calls.
type PassAdapter struct {
	service primary.PassService
	out     io.Writer
}

// NewPassAdapter creates a new PassAdapter with the given service.
func NewPassAdapter(service primary.PassService, out io.Writer) *PassAdapter {
	return &PassAdapter{
		service: service,
		out:     out,
	}
}

// Run reconciles one stage and prints the outcome.
func (a *PassAdapter) Run(ctx context.Context, stageID string, dryRun bool) (*primary.PassResult, error) {
	result, err := a.service.RunPass(ctx, primary.RunPassRequest{StageID: stageID, DryRun: dryRun})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile %s: %w", stageID, err)
	}
	a.printResult(result, false)
	return result, nil
}

// RunAll reconciles every adjacent stage. Results of successful stages are
// printed even when another stage fails.
func (a *PassAdapter) RunAll(ctx context.Context, dryRun bool, verbose bool) ([]*primary.PassResult, error) {
	results, err := a.service.RunAll(ctx, dryRun)
	for _, r := range results {
		a.printResult(r, verbose)
	}
	if len(results) == 0 && err == nil {
		fmt.Fprintln(a.out, "No adjacent-tile stages configured.")
	}
	return results, err
}

// TaskArgs prints the worker arguments of a tile, one per line.
func (a *PassAdapter) TaskArgs(ctx context.Context, stageID, tileID string) (*primary.TaskContext, error) {
	taskCtx, err := a.service.TaskContext(ctx, stageID, tileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task context: %w", err)
	}
	for _, arg := range taskCtx.Args {
		fmt.Fprintln(a.out, arg)
	}
	return taskCtx, nil
}

func (a *PassAdapter) printResult(r *primary.PassResult, verbose bool) {
	prefix := color.New(color.FgGreen).Sprint("✓")
	if r.DryRun {
		prefix = color.New(color.FgYellow).Sprint("[dry-run]")
	}

	if !r.Changed() && r.LinksInserted == 0 && r.LinksDeleted == 0 {
		fmt.Fprintf(a.out, "%s %s: up to date\n", prefix, r.StageID)
		return
	}

	fmt.Fprintf(a.out, "%s %s: %d inserted, %d updated, %d deleted, links +%d/-%d (%s)\n",
		prefix, r.StageID,
		len(r.Inserted), len(r.Updated), len(r.Deleted),
		r.LinksInserted, r.LinksDeleted,
		r.Duration.Round(time.Millisecond),
	)

	if !verbose && !r.DryRun {
		return
	}
	for _, t := range r.Inserted {
		fmt.Fprintf(a.out, "  + %s %s/%s\n", t.ID, colorStatus(t.ThisStageStatus), colorStatus(t.PrevStageStatus))
	}
	for _, t := range r.Updated {
		fmt.Fprintf(a.out, "  ~ %s %s/%s\n", t.ID, colorStatus(t.ThisStageStatus), colorStatus(t.PrevStageStatus))
	}
	if len(r.Deleted) > 0 {
		fmt.Fprintf(a.out, "  - %s\n", strings.Join(r.Deleted, ", "))
	}
}
