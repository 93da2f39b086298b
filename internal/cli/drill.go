package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/catdogtool/catdog/internal/errors"
)

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Prove every stored backup could be restored",
	Long: `Run a non-destructive restoration drill: for every stored backup, check
that its metadata parses, the copy is readable and its content matches the
recorded checksum. No original file is touched. Any failure makes the
command exit non-zero.`,
	Example: `  catdog drill
  catdog drill --json`,
	RunE: runDrill,
}

func init() {
	addJSONFlag(drillCmd.Flags())
	rootCmd.AddCommand(drillCmd)
}

func runDrill(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	report, err := m.Drill()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		PrintHeader("Restoration Drill")
		fmt.Printf("Tested:       %d\n", report.TotalTested)
		fmt.Printf("Restorable:   %d\n", report.Successful)
		fmt.Printf("Success rate: %.0f%%\n", report.SuccessRate()*100)
		fmt.Printf("Duration:     %s\n", report.Duration.Round(time.Millisecond))

		for _, failure := range report.Failed {
			PrintError("%s: %s", failure.BackupPath, failure.Error)
		}
		if report.AllPassed() {
			PrintSuccess("Every backup is restorable")
		}
	}

	if !report.AllPassed() {
		return fmt.Errorf("%d of %d backups not restorable: %w",
			len(report.Failed), report.TotalTested, apperrors.ErrDrillFailed)
	}
	return nil
}
