package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/wire"
)

var adjacencyCmd = &cobra.Command{
	Use:   "adjacency",
	Short: "Inspect the adjacency cache",
}

var adjacencyListCmd = &cobra.Command{
	Use:   "list [stage]",
	Short: "List cached predecessor links of a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.TileAdapterWithOutput(cmd.OutOrStdout()).Links(context.Background(), args[0])
		return err
	},
}

var taskArgsCmd = &cobra.Command{
	Use:   "task-args [stage] [tile]",
	Short: "Print the worker arguments for a tile",
	Long: `Print the arguments a stage worker receives for a tile: the relative
path and name of its linked predecessor, one per line. Nothing is printed
when the tile has no predecessor.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.PassAdapterWithOutput(cmd.OutOrStdout()).TaskArgs(context.Background(), args[0], args[1])
		return err
	},
}

func init() {
	adjacencyCmd.AddCommand(adjacencyListCmd)
}

// AdjacencyCmd returns the adjacency command
func AdjacencyCmd() *cobra.Command {
	return adjacencyCmd
}

// TaskArgsCmd returns the task-args command
func TaskArgsCmd() *cobra.Command {
	return taskArgsCmd
}
