package db

import (
	"fmt"

	"github.com/spf13/cobra"

	"radruga/internal/app"
	cliconfig "radruga/internal/cli/config"
	"radruga/pkg/database"
)

var DBCmd = &cobra.Command{
	Use:   "db",
	Short: "Database commands",
	Long:  "Apply the schema and check the PostgreSQL connection",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load()
		if err != nil {
			return err
		}
		if err := app.Migrate(cmd.Context(), cfg.Database); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the database connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load()
		if err != nil {
			return err
		}
		db, err := database.NewDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.HealthCheck(cmd.Context()); err != nil {
			return err
		}
		stats := db.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s:%d/%s (open connections: %d)\n",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, stats.OpenConnections)
		return nil
	},
}

func init() {
	DBCmd.AddCommand(migrateCmd)
	DBCmd.AddCommand(pingCmd)
}
