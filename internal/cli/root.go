package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/config"
	"github.com/example/tilepipe/internal/wire"
)

// NewRootCmd assembles the tilepipe command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tilepipe",
		Short:   "tilepipe - adjacent-tile reconciliation for staged tile pipelines",
		Version: version,
		Long: `tilepipe tracks per-stage status for lattice tiles and keeps stages that
compare each tile with its neighbour in sync with the stage that feeds them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("config")
			wire.Configure(path)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return wire.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", config.DefaultFile, "Path to tilepipe.toml")

	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(StageCmd())
	rootCmd.AddCommand(TileCmd())
	rootCmd.AddCommand(ReconcileCmd())
	rootCmd.AddCommand(WatchCmd())
	rootCmd.AddCommand(AdjacencyCmd())
	rootCmd.AddCommand(TaskArgsCmd())

	return rootCmd
}
