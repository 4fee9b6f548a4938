package ratings

import "github.com/spf13/cobra"

var RatingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Rating commands",
	Long:  "Rebuild and inspect the leaderboards",
}
