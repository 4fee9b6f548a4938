package catalog

import "github.com/spf13/cobra"

var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Mission catalog commands",
	Long:  "Validate, import and export the mission catalog as YAML",
}
