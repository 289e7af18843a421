package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tilepipe/internal/config"
	"github.com/example/tilepipe/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a tilepipe.toml and initialize the database",
	Long: `Write a default tilepipe.toml (one source stage and one Z-adjacent
stage) unless the config already exists, then create the database schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		cfg, err := config.Load(path)
		switch {
		case err == nil && !force:
			fmt.Fprintf(out, "Using existing config %s\n", path)
		case err == nil || errors.Is(err, os.ErrNotExist):
			cfg = config.Default()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote config %s\n", path)
		default:
			return err
		}

		dbPath, err := cfg.DatabasePath()
		if err != nil {
			return err
		}
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()

		version, err := db.CurrentVersion(database)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Database ready at %s (schema v%d)\n", dbPath, version)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintln(out, "  tilepipe tile import raw tiles.yaml")
		fmt.Fprintln(out, "  tilepipe reconcile")
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing config with the defaults")
}

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return initCmd
}
