package ratings

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cliconfig "radruga/internal/cli/config"
	"radruga/pkg/models"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print a leaderboard",
	Long:  "Print the leaders of the common or kind scale rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		ratingType, _ := cmd.Flags().GetString("type")
		user, _ := cmd.Flags().GetString("user")

		a, err := cliconfig.OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ratings, err := a.Services.Ratings.GetRatings(cmd.Context(), models.RatingType(ratingType), user)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		printRatings(cmd.OutOrStdout(), ratings)
		return nil
	},
}

func printRatings(out io.Writer, ratings *models.Ratings) {
	fmt.Fprintf(out, "\n%s rating:\n\n", ratings.Type)
	if len(ratings.Leaders) == 0 {
		fmt.Fprintln(out, "  nobody is rated yet")
	}
	for _, r := range ratings.Leaders {
		fmt.Fprintf(out, "%4d. %-24s %6d  (%s)\n", r.Place, r.NickName, r.Points, r.UserID)
	}
	if len(ratings.Neighbors) > 0 {
		fmt.Fprintln(out, "  ...")
		for _, r := range ratings.Neighbors {
			fmt.Fprintf(out, "%4d. %-24s %6d  (%s)\n", r.Place, r.NickName, r.Points, r.UserID)
		}
	}
}

func init() {
	topCmd.Flags().String("type", string(models.RatingCommon), "Rating type (common, kindscale)")
	topCmd.Flags().String("user", "", "Also show the neighbors of this user")
	RatingsCmd.AddCommand(topCmd)
}
