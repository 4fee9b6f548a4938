package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"radruga/internal/catalog"
	cliconfig "radruga/internal/cli/config"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog",
	Long:  "Write the stored catalog as YAML to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cliconfig.OpenApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := catalog.NewImporter(a.Services.Missions, a.Services.Quiz, a.Services.Places).Export(cmd.Context())
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}
		return c.Write(out)
	},
}

func init() {
	CatalogCmd.AddCommand(exportCmd)
}
