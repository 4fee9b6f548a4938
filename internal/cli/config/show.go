package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration after file and RADRUGA_* overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Radruga Configuration:")
		fmt.Fprintln(out, "")
		fmt.Fprintf(out, "Server:\n")
		fmt.Fprintf(out, "  HTTP: %s:%d (%s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.Mode)
		fmt.Fprintf(out, "  gRPC: %s:%d\n", cfg.GRPC.Host, cfg.GRPC.Port)
		fmt.Fprintln(out, "")
		fmt.Fprintf(out, "Storage: %s\n", cfg.Storage.Driver)
		if cfg.Storage.Driver == "postgres" {
			fmt.Fprintf(out, "  Database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
		}
		fmt.Fprintf(out, "Redis locks: %s\n", enabled(cfg.Redis.Enabled, cfg.Redis.Addr))
		fmt.Fprintf(out, "RabbitMQ notifications: %s\n", enabled(cfg.RabbitMQ.Enabled, cfg.RabbitMQ.Queue))
		fmt.Fprintln(out, "")
		fmt.Fprintf(out, "Missions:\n")
		fmt.Fprintf(out, "  Leaders: %d\n", cfg.Missions.LeadersCount)
		fmt.Fprintf(out, "  Starter sets: %s\n", strings.Join(cfg.Missions.StarterMissionSets, ", "))
		fmt.Fprintf(out, "  Common place consensus: %d within %.0fm\n",
			cfg.Missions.TemporaryCommonPlaceLimit, cfg.Missions.TemporaryCommonPlaceAccuracyRadius)
		fmt.Fprintf(out, "Rewards:\n")
		fmt.Fprintf(out, "  Points per star: %v\n", cfg.Rewards.PointsPerStar)
		fmt.Fprintf(out, "  Level points: %v\n", cfg.Rewards.LevelPoints)
		if cfg.JWT.Secret == "" {
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "Warning: jwt.secret is empty, every API token will be rejected")
		}
		return nil
	},
}

func enabled(on bool, target string) string {
	if !on {
		return "disabled"
	}
	return "enabled (" + target + ")"
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
