package backup

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/logging"
)

// StaleBackup flags a backup older than the configured staleness window.
// Staleness is a warning; a stale backup with a matching checksum is still
// healthy.
type StaleBackup struct {
	FilePath        string `json:"file_path"`
	BackupPath      string `json:"backup_path"`
	DaysSinceBackup int    `json:"days_since_backup"`
	LastBackup      string `json:"last_backup"`
}

// HealthReport is the outcome of one audit pass. It is recomputed from the
// directory tree on every invocation and never persisted.
type HealthReport struct {
	TotalBackups     int           `json:"total_backups"`
	HealthyBackups   int           `json:"healthy_backups"`
	CorruptedBackups []string      `json:"corrupted_backups"`
	MissingMetadata  []string      `json:"missing_metadata"`
	StaleBackups     []StaleBackup `json:"stale_backups"`
	Errors           []string      `json:"errors,omitempty"`
}

// Healthy reports whether the audit found no corruption and no read errors.
// Stale and metadata-less backups do not fail the check on their own.
func (r *HealthReport) Healthy() bool {
	return len(r.CorruptedBackups) == 0 && len(r.Errors) == 0
}

// HealthCheck recomputes the checksum of every stored backup copy and
// cross-checks its metadata. With a non-empty scope only the backups of that
// original path are audited; otherwise the whole tree is walked.
func (m *Manager) HealthCheck(scope string) (*HealthReport, error) {
	report := &HealthReport{}

	check := func(path string) {
		m.checkOne(path, report)
	}

	if scope != "" {
		abs, err := filepath.Abs(scope)
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", scope, err)
		}
		copies, err := listCopies(dirFor(m.root, abs))
		if err != nil {
			return nil, err
		}
		for _, path := range copies {
			report.TotalBackups++
			check(path)
		}
	} else {
		err := m.walkCopies(func(path string, _ fs.FileInfo) error {
			report.TotalBackups++
			check(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(report.CorruptedBackups) == 0 {
		m.emit(events.TypeHealthCheckPassed, scope,
			fmt.Sprintf("health check passed: %d/%d healthy", report.HealthyBackups, report.TotalBackups),
			events.SeverityInfo)
	} else {
		m.emit(events.TypeHealthCheckFailed, scope,
			fmt.Sprintf("health check failed: %d corrupted of %d", len(report.CorruptedBackups), report.TotalBackups),
			events.SeverityCritical)
	}

	return report, nil
}

// checkOne audits a single backup copy into the report.
func (m *Manager) checkOne(path string, report *HealthReport) {
	rec, err := loadSidecar(path)
	if err != nil {
		// Absent and unparsable sidecars both leave the copy unverifiable.
		report.MissingMetadata = append(report.MissingMetadata, path)
		logging.Warn("backup has no usable metadata",
			logging.String("backup", path), logging.Err(err))
		return
	}

	sum, err := m.checksumFile(path)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("verify %s: %v", path, err))
		return
	}

	if sum != rec.Checksum {
		report.CorruptedBackups = append(report.CorruptedBackups, path)
		logging.Error("corrupted backup detected", logging.String("backup", path))
		m.emit(events.TypeBackupCorrupted, rec.OriginalPath,
			fmt.Sprintf("checksum mismatch on %s", path), events.SeverityCritical)
		return
	}

	report.HealthyBackups++

	if age, err := rec.AgeDays(m.now()); err == nil {
		if float64(age) > m.staleAfter.Hours()/24 {
			report.StaleBackups = append(report.StaleBackups, StaleBackup{
				FilePath:        rec.OriginalPath,
				BackupPath:      path,
				DaysSinceBackup: age,
				LastBackup:      rec.Timestamp,
			})
		}
	}
}
