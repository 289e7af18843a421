package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/wire"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [stage]",
	Short: "Run one reconciliation pass",
	Long: `Reconcile an adjacent-tile stage against its input stage. Without a
stage argument every adjacent-tile stage is reconciled in config order.

With --dry-run the diff is computed and printed but neither tiles nor
adjacency links are written.

Passes started by "tilepipe watch" never overlap each other, but that guard
lives in the watch process. A manual reconcile against the same database can
run alongside a scheduled pass. Link writes replace, and a diff that is not
applied is recomputed next pass, so the next pass converges.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")
		adapter := wire.PassAdapterWithOutput(cmd.OutOrStdout())

		if len(args) == 1 {
			_, err := adapter.Run(ctx, args[0], dryRun)
			return err
		}
		_, err := adapter.RunAll(ctx, dryRun, verbose)
		return err
	},
}

func init() {
	reconcileCmd.Flags().Bool("dry-run", false, "Compute the diff without writing it")
	reconcileCmd.Flags().BoolP("verbose", "v", false, "List every changed tile")
}

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command {
	return reconcileCmd
}
