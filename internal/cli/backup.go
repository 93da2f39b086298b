package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup <path>...",
	Short: "Create checksummed backups of files",
	Long: `Create a timestamped, checksum-verified backup of each given file.
Backups rotate automatically: only the most recent copies per file are kept.`,
	Example: `  catdog backup /etc/fstab
  catdog backup /etc/fstab /etc/hosts --reason fstab
  catdog backup /etc/fstab --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBackup,
}

func init() {
	f := backupCmd.Flags()
	f.String("reason", "manual", "Why this backup is taken (manual, fstab, system, scheduled)")
	f.Bool("dry-run", false, "Report what would be backed up without writing anything")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	reasonArg, _ := cmd.Flags().GetString("reason")
	reason, err := backup.ParseReason(reasonArg)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	for _, path := range args {
		rec, err := m.Create(path, reason, dryRun)
		if err != nil {
			return describeBackupError(path, err)
		}

		if dryRun {
			fmt.Printf("Would back up %s (%s, checksum %s)\n",
				rec.OriginalPath, formatBytes(rec.SizeBytes), rec.Checksum[:16])
			continue
		}
		PrintSuccess("Backed up %s", rec.OriginalPath)
		fmt.Printf("  Copy:     %s\n", rec.BackupPath)
		fmt.Printf("  Size:     %s\n", formatBytes(rec.SizeBytes))
		fmt.Printf("  Checksum: %s\n", rec.Checksum)
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List stored backups of a file, newest first",
	Example: `  catdog list /etc/fstab
  catdog list /etc/fstab --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	addJSONFlag(listCmd.Flags())
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	records, err := m.List(args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Printf("No backups of %s\n", args[0])
		return nil
	}

	PrintHeader(fmt.Sprintf("Backups of %s", args[0]))
	for _, rec := range records {
		fmt.Printf("\n%s\n", rec.Timestamp)
		fmt.Printf("  Copy:     %s\n", rec.BackupPath)
		fmt.Printf("  Reason:   %s\n", rec.Reason.Description())
		fmt.Printf("  Size:     %s\n", formatBytes(rec.SizeBytes))
		fmt.Printf("  Checksum: %s\n", rec.Checksum)
	}
	return nil
}
