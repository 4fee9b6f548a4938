package jobs

import (
	"fmt"

	"github.com/spf13/cobra"

	cliconfig "radruga/internal/cli/config"
)

var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Maintenance jobs",
	Long:  "Run scheduled maintenance on demand",
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Run the daily maintenance",
	Long:  "Decay kind scales and snapshot rating places",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliconfig.OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Services.Maintenance.RunDaily(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Daily maintenance finished")
		return nil
	},
}

func init() {
	JobsCmd.AddCommand(dailyCmd)
}
