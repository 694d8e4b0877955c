package cli

import (
	"fmt"

	"bloglist/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DBDriver == "memory" {
			return fmt.Errorf("nothing to migrate for db_driver 'memory'")
		}

		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema for %s is up to date\n", cfg.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
