package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"radruga/internal/cli/catalog"
	cliconfig "radruga/internal/cli/config"
	"radruga/internal/cli/db"
	"radruga/internal/cli/jobs"
	"radruga/internal/cli/ratings"
)

var rootCmd = &cobra.Command{
	Use:           "radruga-cli",
	Short:         "Radruga administration tool",
	Long:          "Manage the Radruga missions backend: schema, catalog, ratings and maintenance jobs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./config.yaml or ./configs/config.yaml)")
	_ = viper.BindPFlag(cliconfig.FileKey, rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(cliconfig.ConfigCmd)
	rootCmd.AddCommand(db.DBCmd)
	rootCmd.AddCommand(catalog.CatalogCmd)
	rootCmd.AddCommand(ratings.RatingsCmd)
	rootCmd.AddCommand(jobs.JobsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
