package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/catdogtool/catdog/internal/errors"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Audit stored backups against their recorded checksums",
	Long: `Recompute the checksum of every stored backup copy and compare it with
the recorded metadata. Corruption or read errors make the command exit
non-zero, so it can gate monitoring and cron alerts.`,
	Example: `  catdog health
  catdog health --path /etc/fstab
  catdog health --json`,
	RunE: runHealth,
}

func init() {
	f := healthCmd.Flags()
	f.String("path", "", "Audit only the backups of this original file")
	addJSONFlag(f)
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	scope, _ := cmd.Flags().GetString("path")
	report, err := m.HealthCheck(scope)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		PrintHeader("Backup Health")
		fmt.Printf("Total:    %d\n", report.TotalBackups)
		fmt.Printf("Healthy:  %d\n", report.HealthyBackups)

		for _, path := range report.CorruptedBackups {
			PrintError("corrupted: %s", path)
		}
		for _, path := range report.MissingMetadata {
			PrintWarning("no metadata: %s", path)
		}
		for _, stale := range report.StaleBackups {
			PrintWarning("stale: %s last backed up %d days ago (%s)",
				stale.FilePath, stale.DaysSinceBackup, stale.LastBackup)
		}
		for _, msg := range report.Errors {
			PrintError("%s", msg)
		}

		if report.Healthy() {
			PrintSuccess("All backups healthy")
		}
	}

	if !report.Healthy() {
		return fmt.Errorf("%d corrupted, %d errors: %w",
			len(report.CorruptedBackups), len(report.Errors), apperrors.ErrUnhealthyBackups)
	}
	return nil
}
