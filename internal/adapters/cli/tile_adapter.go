package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/tilepipe/internal/manifest"
	"github.com/example/tilepipe/internal/ports/primary"
)

// TileAdapter is a thin adapter that translates CLI operations to TileService calls.
// It depends only on the TileService interface, enabling easy testing with mocks.
type TileAdapter struct {
	service primary.TileService
	out     io.Writer
}

// NewTileAdapter creates a new TileAdapter with the given service.
func NewTileAdapter(service primary.TileService, out io.Writer) *TileAdapter {
	return &TileAdapter{
		service: service,
		out:     out,
	}
}

// Stages lists the configured pipeline stages.
func (a *TileAdapter) Stages(ctx context.Context) ([]*primary.Stage, error) {
	stages, err := a.service.ListStages(ctx)
	if err != nil {
		return nil, err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINPUT\tAXIS")
	fmt.Fprintln(w, "--\t----\t-----\t----")
	for _, s := range stages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, orDash(s.InputStageID), orDash(s.Axis))
	}
	w.Flush()
	return stages, nil
}

// List lists the tiles of a stage.
func (a *TileAdapter) List(ctx context.Context, stageID string) ([]*primary.Tile, error) {
	tiles, err := a.service.ListTiles(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}

	if len(tiles) == 0 {
		fmt.Fprintf(a.out, "No tiles in stage %s.\n", stageID)
		return tiles, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TILE\tX\tY\tZ\tSTATUS\tUPSTREAM")
	fmt.Fprintln(w, "----\t-\t-\t-\t------\t--------")
	for _, t := range tiles {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			t.ID, t.X, t.Y, t.Z,
			colorStatus(t.ThisStageStatus),
			colorStatus(t.PrevStageStatus),
		)
	}
	w.Flush()
	return tiles, nil
}

// ListYAML writes the tiles of a stage as a manifest.
func (a *TileAdapter) ListYAML(ctx context.Context, stageID string) error {
	tiles, err := a.service.ListTiles(ctx, stageID)
	if err != nil {
		return fmt.Errorf("failed to list tiles: %w", err)
	}
	return manifest.Write(a.out, manifest.FromTiles(tiles))
}

// Show displays one tile.
func (a *TileAdapter) Show(ctx context.Context, stageID, tileID string) (*primary.Tile, error) {
	t, err := a.service.GetTile(ctx, stageID, tileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tile: %w", err)
	}

	fmt.Fprintf(a.out, "\nTile: %s\n", t.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", t.Name)
	fmt.Fprintf(a.out, "Coord:    (%d,%d,%d)\n", t.X, t.Y, t.Z)
	fmt.Fprintf(a.out, "Status:   %s\n", colorStatus(t.ThisStageStatus))
	fmt.Fprintf(a.out, "Upstream: %s\n", colorStatus(t.PrevStageStatus))
	fmt.Fprintf(a.out, "Updated:  %s\n", orDash(t.UpdatedAt))
	fmt.Fprintln(a.out)
	return t, nil
}

// Import loads a manifest into a source stage.
func (a *TileAdapter) Import(ctx context.Context, stageID string, m *manifest.Manifest) (*primary.ImportTilesResponse, error) {
	resp, err := a.service.ImportTiles(ctx, primary.ImportTilesRequest{
		StageID: stageID,
		Tiles:   m.ToInputs(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import tiles: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Imported %d tile(s) into %s\n", resp.Imported, resp.StageID)
	return resp, nil
}

// SetStatus records a stage result for one tile.
func (a *TileAdapter) SetStatus(ctx context.Context, stageID, tileID, status string) (*primary.Tile, error) {
	t, err := a.service.SetTileStatus(ctx, primary.SetTileStatusRequest{
		StageID: stageID,
		TileID:  tileID,
		Status:  status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set status: %w", err)
	}

	fmt.Fprintf(a.out, "✓ %s/%s is now %s\n", stageID, t.ID, colorStatus(t.ThisStageStatus))
	return t, nil
}

// Links lists the adjacency links of a stage.
func (a *TileAdapter) Links(ctx context.Context, stageID string) ([]*primary.Link, error) {
	links, err := a.service.ListLinks(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjacency links: %w", err)
	}

	if len(links) == 0 {
		fmt.Fprintf(a.out, "No adjacency links in stage %s.\n", stageID)
		return links, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TILE\tADJACENT\tNAME")
	fmt.Fprintln(w, "----\t--------\t----")
	for _, l := range links {
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.TileID, l.AdjacentTileID, l.AdjacentTileName)
	}
	w.Flush()
	return links, nil
}

func colorStatus(status string) string {
	switch status {
	case "complete":
		return color.New(color.FgGreen).Sprint(status)
	case "processing":
		return color.New(color.FgCyan).Sprint(status)
	case "incomplete":
		return color.New(color.FgYellow).Sprint(status)
	case "failed":
		return color.New(color.FgRed).Sprint(status)
	case "canceled":
		return color.New(color.FgMagenta).Sprint(status)
	default:
		return color.New(color.Faint).Sprint(status)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
