package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"radruga/internal/catalog"
	cliconfig "radruga/internal/cli/config"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a catalog file",
	Long:  "Upsert person qualities, aliases, missions and mission sets from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		a, err := cliconfig.OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		im := catalog.NewImporter(a.Services.Missions, a.Services.Quiz, a.Services.Places)
		report, err := im.Import(cmd.Context(), c)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Person qualities: %d\n", report.Qualities)
		fmt.Fprintf(out, "Aliases: %d\n", report.Aliases)
		fmt.Fprintf(out, "Missions and sets added: %d, updated: %d\n", report.Added, report.Updated)
		for _, f := range report.Failures {
			fmt.Fprintf(out, "  rejected %s\n", f)
		}
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d entities were rejected", len(report.Failures))
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d missions in %d sets\n", len(c.Missions), len(c.MissionSets))
		return nil
	},
}

func init() {
	CatalogCmd.AddCommand(importCmd)
	CatalogCmd.AddCommand(validateCmd)
}
