package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the backup event log",
	Long: `Print recent entries from the append-only backup event log: every
backup, restore, health check and drill leaves a record here.`,
	Example: `  catdog events
  catdog events --limit 50
  catdog events --json`,
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.Int("limit", 20, "Maximum number of events to show (0 for all)")
	addJSONFlag(f)
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	if err := requireConfig(); err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	evs, err := events.NewLog(cfg.EventLogPath).Tail(limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(evs)
	}

	if len(evs) == 0 {
		fmt.Println("No events recorded.")
		return nil
	}

	for _, ev := range evs {
		marker := " "
		if ev.ShouldAlert() {
			marker = "!"
		}
		fmt.Printf("%s %s  %-18s %s", marker, ev.Timestamp, ev.Type, ev.Details)
		if ev.FilePath != "" {
			fmt.Printf("  (%s)", ev.FilePath)
		}
		fmt.Println()
	}
	return nil
}
