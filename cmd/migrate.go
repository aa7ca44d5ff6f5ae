package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"collegeoffice_go/config"
	"collegeoffice_go/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the schema migration ledger",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Connect(cmd.Context(), config.AppConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.NewMigrator(db.DB, database.Migrations).Up(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range applied {
			logrus.WithFields(logrus.Fields{"version": m.Version, "name": m.Name}).Info("Applied migration")
		}
		fmt.Printf("%d migration(s) applied\n", len(applied))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the migration ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Connect(cmd.Context(), config.AppConfig)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := database.NewMigrator(db.DB, database.Migrations).Status(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED\tAPPLIED AT")
		for _, r := range rows {
			at := "-"
			if r.AppliedAt != nil {
				at = r.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", r.Version, r.Name, r.Applied, at)
		}
		return w.Flush()
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
