package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/catdogtool/catdog/internal/backup"
	"github.com/catdogtool/catdog/internal/logging"
	"github.com/catdogtool/catdog/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled backups and health audits in the foreground",
	Long: `Run as a daemon: back up the watched paths on the backup schedule and
audit the stored tree on the health schedule, until interrupted.

Watched paths and schedules come from the config file and can be
overridden for one session with flags.`,
	Example: `  # Watch the configured paths
  catdog watch

  # Override for this session
  catdog watch --paths /etc/fstab,/etc/hosts --schedule daily
  catdog watch --schedule "every 4h" --health-schedule daily`,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.String("paths", "", "Override watched paths for this session (comma-separated)")
	f.String("schedule", "", "Override the backup schedule for this session")
	f.String("health-schedule", "", "Override the health audit schedule for this session")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	paths := cfg.WatchPaths
	backupSchedule := cfg.WatchSchedule
	healthSchedule := cfg.HealthSchedule

	// Allow overrides from flags
	if override, _ := cmd.Flags().GetString("paths"); override != "" {
		paths = strings.Split(override, ",")
	}
	if override, _ := cmd.Flags().GetString("schedule"); override != "" {
		backupSchedule = override
	}
	if override, _ := cmd.Flags().GetString("health-schedule"); override != "" {
		healthSchedule = override
	}
	if backupSchedule == "" {
		backupSchedule = "daily"
	}
	if healthSchedule == "" {
		healthSchedule = "daily"
	}
	if len(paths) == 0 {
		return fmt.Errorf("no paths to watch - set watch_paths in the config or pass --paths")
	}

	sched := scheduler.New()

	err = sched.Add("backup", backupSchedule, func() error {
		var firstErr error
		for _, path := range paths {
			if _, err := m.Create(path, backup.ReasonScheduled, false); err != nil {
				logging.Warn("scheduled backup failed",
					logging.String("path", path), logging.Err(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	})
	if err != nil {
		return err
	}

	err = sched.Add("health", healthSchedule, func() error {
		report, err := m.HealthCheck("")
		if err != nil {
			return err
		}
		if !report.Healthy() {
			return fmt.Errorf("%d corrupted backups", len(report.CorruptedBackups))
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info("catdog watching",
		logging.String("paths", strings.Join(paths, ", ")),
		logging.String("backup_schedule", backupSchedule),
		logging.String("health_schedule", healthSchedule))
	fmt.Println("Press Ctrl+C to stop")

	sched.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Info("shutting down")
	sched.Stop()
	return nil
}
