// Package cli wires the catdog commands
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/backup"
	"github.com/catdogtool/catdog/internal/config"
	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/logging"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// App state
	cfg    *config.Config
	cfgErr error

	configDirFlag string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "catdog",
	Short: "Checksummed backups for critical system files",
	Long: `Catdog keeps timestamped, checksum-verified backups of critical
configuration files such as /etc/fstab. Every backup is paired with
metadata recording what was backed up, when and why, so a restore can
prove it put back exactly the bytes that were saved.`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

func init() {
	// Config first: logging is initialized once, from the configured level.
	cobra.OnInitialize(initConfig, initLogging)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"Config directory (default ~/.catdog)")
}

func initLogging() {
	if cfgErr != nil || cfg == nil {
		logging.InitDefault()
		return
	}
	_ = logging.Init(logging.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
}

func initConfig() {
	cfg, cfgErr = config.Load(configDirFlag)
}

// requireConfig surfaces a config load failure; a missing config file is not
// one, since catdog falls back to defaults.
func requireConfig() error {
	return cfgErr
}

// newManager builds the backup engine from the loaded config.
func newManager() (*backup.Manager, error) {
	if err := requireConfig(); err != nil {
		return nil, err
	}
	return backup.NewManager(cfg, events.NewLog(cfg.EventLogPath))
}
