package backup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/catdogtool/catdog/internal/errors"
	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/logging"
)

// RestoreOptions controls restore behavior.
type RestoreOptions struct {
	// Force proceeds even when the live file diverged from the backup.
	Force bool

	// DryRun reports what would happen without writing anything.
	DryRun bool
}

// RestoreResult describes a completed (or simulated) restore.
type RestoreResult struct {
	Record *Record

	// PreRestoreBackup is the record taken of the live file before it was
	// overwritten, when one was taken.
	PreRestoreBackup *Record
}

// Restore copies the stored backup at backupPath over its original location.
//
// The live file's current content is compared to the backup copy's content:
// if they differ and Force is not set the restore is refused, because the
// divergence means the restore would destroy changes made since the backup.
// When proceeding over an existing file, the live state is first captured as
// a regular PreRestore backup so restoration is itself always recoverable.
func (m *Manager) Restore(backupPath string, opts RestoreOptions) (*RestoreResult, error) {
	res, err := m.restore(backupPath, opts)
	if err != nil {
		filePath := backupPath
		if res != nil && res.Record != nil {
			filePath = res.Record.OriginalPath
		}
		m.emit(events.TypeBackupFailed, filePath,
			fmt.Sprintf("restore failed: %v", err), events.SeverityWarning)
		return nil, err
	}
	if !opts.DryRun {
		m.emit(events.TypeBackupRestored, res.Record.OriginalPath,
			fmt.Sprintf("restored from backup: %s", backupPath), events.SeverityInfo)
	}
	return res, nil
}

func (m *Manager) restore(backupPath string, opts RestoreOptions) (*RestoreResult, error) {
	abs, err := filepath.Abs(backupPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", backupPath, err)
	}

	rec, err := loadSidecar(abs)
	if err != nil {
		return nil, err
	}
	res := &RestoreResult{Record: rec}

	if _, err := os.Stat(abs); err != nil {
		return res, classifyAccessErr(abs, err)
	}

	original := rec.OriginalPath
	liveInfo, statErr := os.Stat(original)
	liveExists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return res, classifyAccessErr(original, statErr)
	}

	if liveExists {
		liveSum, err := m.checksumFile(original)
		if err != nil {
			return res, classifyAccessErr(original, err)
		}
		copySum, err := m.checksumFile(abs)
		if err != nil {
			return res, classifyAccessErr(abs, err)
		}
		if liveSum != copySum && !opts.Force {
			return res, fmt.Errorf("%s: %w", original, apperrors.ErrModifiedSinceBackup)
		}
	}

	if opts.DryRun {
		logging.Info("dry run: would restore",
			logging.String("backup", abs),
			logging.String("target", original))
		return res, nil
	}

	if liveExists {
		pre, err := m.Create(original, ReasonPreRestore, false)
		if err != nil {
			return res, fmt.Errorf("pre-restore backup: %w", err)
		}
		res.PreRestoreBackup = pre
		logging.Info("created pre-restore backup",
			logging.String("backup", pre.BackupPath))
	}

	perm := fs.FileMode(0o600)
	if liveExists {
		perm = liveInfo.Mode().Perm()
	} else if copyInfo, err := os.Stat(abs); err == nil {
		perm = copyInfo.Mode().Perm()
	}

	// Never truncate the live file in place; write a sibling temp file and
	// rename so an interrupted restore leaves the target intact.
	if _, _, err := copyAndHash(abs, original, perm); err != nil {
		return res, err
	}

	restoredSum, err := m.checksumFile(original)
	if err != nil {
		return res, classifyAccessErr(original, err)
	}
	if restoredSum != rec.Checksum {
		// The write already happened; surfacing this late is still better
		// than claiming success.
		return res, fmt.Errorf("%s: expected %s, got %s: %w",
			original, shortSum(rec.Checksum), shortSum(restoredSum),
			apperrors.ErrRestoreVerificationFailed)
	}

	logging.Info("restore complete",
		logging.String("backup", abs),
		logging.String("target", original))
	return res, nil
}
