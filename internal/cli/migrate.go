package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"buttonshop/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Long:  "Applies all embedded SQL migrations that haven't been applied yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}
		return printVersion(cmd, db)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.MigrateDown(db); err != nil {
			return err
		}
		return printVersion(cmd, db)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return printVersion(cmd, db)
	},
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

func printVersion(cmd *cobra.Command, db *sql.DB) error {
	v, err := database.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}
