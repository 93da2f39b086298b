package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/backup"
	apperrors "github.com/catdogtool/catdog/internal/errors"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-path>",
	Short: "Restore a file from a stored backup",
	Long: `Restore the original file from a backup copy. If the live file changed
since the backup was taken, the restore is refused unless --force is given;
a forced restore first backs up the current state so it stays recoverable.
After writing, the restored content is verified against the recorded checksum.`,
	Example: `  catdog restore ~/.catdog_backups/etc_fstab/fstab.backup.20260830_120000
  catdog restore <backup-path> --force
  catdog restore <backup-path> --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	f := restoreCmd.Flags()
	f.Bool("force", false, "Restore even if the live file changed since the backup")
	f.Bool("dry-run", false, "Check what a restore would do without writing anything")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	res, err := m.Restore(args[0], backup.RestoreOptions{Force: force, DryRun: dryRun})
	if err != nil {
		return describeRestoreError(err)
	}

	if dryRun {
		fmt.Printf("Would restore %s from %s\n", res.Record.OriginalPath, res.Record.BackupPath)
		return nil
	}

	PrintSuccess("Restored %s", res.Record.OriginalPath)
	fmt.Printf("  From:     %s (%s)\n", res.Record.BackupPath, res.Record.Timestamp)
	fmt.Printf("  Checksum: %s (verified)\n", res.Record.Checksum)
	if res.PreRestoreBackup != nil {
		fmt.Printf("  Previous state saved to %s\n", res.PreRestoreBackup.BackupPath)
	}
	return nil
}

// describeRestoreError turns engine errors into actionable messages.
func describeRestoreError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrModifiedSinceBackup):
		return fmt.Errorf("%w\nThe live file changed since this backup was taken. "+
			"Re-run with --force to overwrite it; the current state will be backed up first", err)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return fmt.Errorf("%w\nTry again with elevated privileges", err)
	case errors.Is(err, apperrors.ErrRestoreVerificationFailed):
		return fmt.Errorf("%w\nThe file was written but its checksum does not match the "+
			"backup record - inspect it before trusting it", err)
	}
	return err
}

func describeBackupError(path string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrSourceNotFound):
		return fmt.Errorf("cannot back up %s: %w", path, apperrors.ErrSourceNotFound)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return fmt.Errorf("%w\nTry again with elevated privileges", err)
	}
	return err
}
