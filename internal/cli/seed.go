package cli

import (
	"github.com/spf13/cobra"

	"buttonshop/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog into an empty database",
	Long: `Migrates the database and inserts the sample category forest and
buttons. Does nothing when categories already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(db); err != nil {
			return err
		}

		catalogCache, closeCache := openCatalogCache()
		defer closeCache()
		catalogCache.InvalidateAll(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
