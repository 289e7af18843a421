package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/manifest"
	"github.com/example/tilepipe/internal/wire"
)

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Manage tiles (per-stage status records)",
	Long:  "Import, list, show and update the tiles tracked for each pipeline stage",
}

var tileImportCmd = &cobra.Command{
	Use:   "import [stage] [manifest.yaml]",
	Short: "Import tiles from a YAML manifest into a source stage",
	Long: `Import tiles from a YAML manifest ("-" reads stdin). Existing tiles are
updated in place. Adjacent-tile stages cannot be imported into; they are
populated by reconcile.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Load(args[1])
		if err != nil {
			return err
		}
		_, err = wire.TileAdapterWithOutput(cmd.OutOrStdout()).Import(context.Background(), args[0], m)
		return err
	},
}

var tileListCmd = &cobra.Command{
	Use:   "list [stage]",
	Short: "List the tiles of a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		adapter := wire.TileAdapterWithOutput(cmd.OutOrStdout())

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return adapter.ListYAML(ctx, args[0])
		}
		_, err := adapter.List(ctx, args[0])
		return err
	},
}

var tileShowCmd = &cobra.Command{
	Use:   "show [stage] [tile]",
	Short: "Show one tile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TileAdapterWithOutput(cmd.OutOrStdout()).Show(context.Background(), args[0], args[1])
		return err
	},
}

var tileSetStatusCmd = &cobra.Command{
	Use:   "set-status [stage] [tile] [status]",
	Short: "Record a stage result for a tile",
	Long: `Record a stage result for a tile. Status is one of:
incomplete, processing, complete, failed, canceled.

does_not_exist is set only by reconciliation and is rejected here.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TileAdapterWithOutput(cmd.OutOrStdout()).SetStatus(context.Background(), args[0], args[1], args[2])
		return err
	},
}

func init() {
	tileListCmd.Flags().Bool("yaml", false, "Print the tiles as a YAML manifest")

	tileCmd.AddCommand(tileImportCmd)
	tileCmd.AddCommand(tileListCmd)
	tileCmd.AddCommand(tileShowCmd)
	tileCmd.AddCommand(tileSetStatusCmd)
}

// TileCmd returns the tile command
func TileCmd() *cobra.Command {
	return tileCmd
}
