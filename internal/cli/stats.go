package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the backup tree",
	Example: `  catdog stats
  catdog stats --json`,
	RunE: runStats,
}

func init() {
	addJSONFlag(statsCmd.Flags())
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	stats, err := m.Stats()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(stats)
	}

	PrintHeader("Backup Statistics")
	fmt.Printf("Backups:    %d\n", stats.TotalBackups)
	fmt.Printf("Total size: %s\n", formatBytes(stats.TotalSizeBytes))
	if stats.TotalBackups > 0 {
		fmt.Printf("Oldest:     %s\n", stats.OldestTimestamp)
		fmt.Printf("Newest:     %s\n", stats.NewestTimestamp)
	}
	fmt.Printf("Root:       %s\n", m.Root())
	return nil
}
