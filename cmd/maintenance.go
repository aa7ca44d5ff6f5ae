package cmd

import (
	"context"
	"fmt"
	"sort"

	"collegeoffice_go/config"
	"collegeoffice_go/database"
	"collegeoffice_go/services"

	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "One-off data repair tasks",
}

func withMaintenance(run func(ctx context.Context, m *services.MaintenanceService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		db, err := database.Connect(cmd.Context(), config.AppConfig)
		if err != nil {
			return err
		}
		defer db.Close()
		return run(cmd.Context(), services.NewMaintenanceService(db))
	}
}

var removeProgram string

var dedupeCmd = &cobra.Command{
	Use:   "dedupe-teacher-programs",
	Short: "Trim and de-duplicate teachers' assigned programs",
	RunE: withMaintenance(func(ctx context.Context, m *services.MaintenanceService) error {
		names, err := m.DedupeTeacherPrograms(ctx, removeProgram)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %d teacher(s)\n", len(names))
		for _, n := range names {
			fmt.Println("  " + n)
		}
		return nil
	}),
}

var clearProgramsCmd = &cobra.Command{
	Use:   "clear-teacher-programs",
	Short: "Remove every teacher's assigned programs",
	RunE: withMaintenance(func(ctx context.Context, m *services.MaintenanceService) error {
		names, err := m.ClearTeacherPrograms(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cleared assigned programs for %d teacher(s)\n", len(names))
		return nil
	}),
}

var confirmClear bool

var clearDataCmd = &cobra.Command{
	Use:   "clear-data",
	Short: "Delete all office data, keeping users and the migration ledger",
	RunE: withMaintenance(func(ctx context.Context, m *services.MaintenanceService) error {
		if !confirmClear {
			return fmt.Errorf("refusing to clear data without --yes")
		}
		counts, err := m.ClearData(ctx)
		if err != nil {
			return err
		}
		tables := make([]string, 0, len(counts))
		for t := range counts {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			fmt.Printf("%-22s %d\n", t, counts[t])
		}
		return nil
	}),
}

func init() {
	dedupeCmd.Flags().StringVar(&removeProgram, "remove", "", "program name to drop from every teacher")
	clearDataCmd.Flags().BoolVar(&confirmClear, "yes", false, "confirm deleting all data")
	maintenanceCmd.AddCommand(dedupeCmd, clearProgramsCmd, clearDataCmd)
	rootCmd.AddCommand(maintenanceCmd)
}
