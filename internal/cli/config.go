package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration catdog is running with, defaults included.
With --init, write it to the config directory so it can be edited.`,
	Example: `  catdog config
  catdog config --init`,
	RunE: runConfig,
}

func init() {
	f := configCmd.Flags()
	f.Bool("init", false, "Write the effective configuration to disk")
	addJSONFlag(f)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := requireConfig(); err != nil {
		return err
	}

	if doInit, _ := cmd.Flags().GetBool("init"); doInit {
		if config.Exists(cfg.ConfigDir) {
			return fmt.Errorf("config file already exists at %s",
				filepath.Join(cfg.ConfigDir, "config.json"))
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		PrintSuccess("Wrote %s", filepath.Join(cfg.ConfigDir, "config.json"))
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cfg)
	}

	PrintHeader("Configuration")
	fmt.Printf("Config dir:       %s", cfg.ConfigDir)
	if !config.Exists(cfg.ConfigDir) {
		fmt.Print("  (no config file, using defaults)")
	}
	fmt.Println()
	fmt.Printf("Backup root:      %s\n", cfg.BackupRoot)
	fmt.Printf("Event log:        %s\n", cfg.EventLogPath)
	fmt.Printf("Max per file:     %d\n", cfg.MaxBackupsPerFile)
	fmt.Printf("Stale after:      %d days\n", cfg.StaleAfterDays)
	if cfg.ScanBytesPerSec > 0 {
		fmt.Printf("Scan throttle:    %s/s\n", formatBytes(cfg.ScanBytesPerSec))
	}
	if len(cfg.WatchPaths) > 0 {
		fmt.Printf("Watch paths:      %v\n", cfg.WatchPaths)
		fmt.Printf("Watch schedule:   %s\n", cfg.WatchSchedule)
		fmt.Printf("Health schedule:  %s\n", cfg.HealthSchedule)
	}
	fmt.Printf("Log level:        %s\n", cfg.LogLevel)
	return nil
}
