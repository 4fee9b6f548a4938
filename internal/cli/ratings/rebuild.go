package ratings

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cliconfig "radruga/internal/cli/config"
	"radruga/pkg/models"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the common rating",
	Long:  "Reload every rated user from storage and print the new leaders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliconfig.OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		if err := a.Services.Ratings.BuildRatings(cmd.Context()); err != nil {
			return fmt.Errorf("rebuild ratings: %w", err)
		}
		ratings, err := a.Services.Ratings.GetRatings(cmd.Context(), models.RatingCommon, "")
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt in %s\n", time.Since(start).Round(time.Millisecond))
		printRatings(cmd.OutOrStdout(), ratings)
		return nil
	},
}

func init() {
	RatingsCmd.AddCommand(rebuildCmd)
}
