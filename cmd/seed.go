package cmd

import (
	"collegeoffice_go/config"
	"collegeoffice_go/database"
	"collegeoffice_go/database/seeders"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and sample programs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Connect(cmd.Context(), config.AppConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := database.NewMigrator(db.DB, database.Migrations).Up(cmd.Context()); err != nil {
			return err
		}
		return seeders.SeedAll(cmd.Context(), db.DB, config.AppConfig)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
