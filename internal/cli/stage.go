package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/wire"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Inspect pipeline stages",
}

var stageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TileAdapterWithOutput(cmd.OutOrStdout()).Stages(context.Background())
		return err
	},
}

func init() {
	stageCmd.AddCommand(stageListCmd)
}

// StageCmd returns the stage command
func StageCmd() *cobra.Command {
	return stageCmd
}
