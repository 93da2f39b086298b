package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/catdogtool/catdog/internal/checksum"
	"github.com/catdogtool/catdog/internal/config"
	apperrors "github.com/catdogtool/catdog/internal/errors"
	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/filelock"
	"github.com/catdogtool/catdog/internal/logging"
)

// Manager owns the backup directory tree. It is the only writer of backup
// content, alongside the restore path; health checks and drills are read-only
// observers over the same tree.
type Manager struct {
	root       string
	maxPerFile int
	staleAfter time.Duration
	events     *events.Log
	limiter    *rate.Limiter

	// now is swapped out by tests that need timestamp control.
	now func() time.Time
}

// NewManager builds a Manager from explicit configuration. No component reads
// ambient globals; everything is threaded through here.
func NewManager(cfg *config.Config, log *events.Log) (*Manager, error) {
	if cfg == nil || cfg.BackupRoot == "" {
		return nil, fmt.Errorf("backup root required")
	}
	if log == nil {
		return nil, fmt.Errorf("event log required")
	}

	maxPerFile := cfg.MaxBackupsPerFile
	if maxPerFile <= 0 {
		maxPerFile = config.DefaultMaxBackupsPerFile
	}
	staleDays := cfg.StaleAfterDays
	if staleDays <= 0 {
		staleDays = config.DefaultStaleAfterDays
	}

	m := &Manager{
		root:       cfg.BackupRoot,
		maxPerFile: maxPerFile,
		staleAfter: time.Duration(staleDays) * 24 * time.Hour,
		events:     log,
		now:        time.Now,
	}
	if cfg.ScanBytesPerSec > 0 {
		m.limiter = newScanLimiter(cfg.ScanBytesPerSec)
	}
	return m, nil
}

// Root returns the backup tree root directory.
func (m *Manager) Root() string {
	return m.root
}

// Create backs up the file at originalPath. The returned record describes the
// stored copy; with dryRun no disk writes happen and the record describes what
// would have been written. On return the (copy, sidecar) pair is either fully
// present or entirely absent.
func (m *Manager) Create(originalPath string, reason Reason, dryRun bool) (*Record, error) {
	rec, err := m.create(originalPath, reason, dryRun)
	if err != nil {
		m.emit(events.TypeBackupFailed, originalPath,
			fmt.Sprintf("backup failed: %v", err), events.SeverityWarning)
		return nil, err
	}
	if !dryRun {
		m.emit(events.TypeBackupCreated, originalPath,
			fmt.Sprintf("backup created: %d bytes, checksum %s", rec.SizeBytes, shortSum(rec.Checksum)),
			events.SeverityInfo)
	}
	return rec, nil
}

func (m *Manager) create(originalPath string, reason Reason, dryRun bool) (*Record, error) {
	abs, err := filepath.Abs(originalPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", originalPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, classifyStatErr(abs, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", abs, apperrors.ErrNotRegularFile)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("invalid backup reason %q", reason)
	}

	timestamp := m.now().UTC().Format(TimestampLayout)
	dir := dirFor(m.root, abs)
	backupPath := filepath.Join(dir, backupFileName(filepath.Base(abs), timestamp))

	if dryRun {
		sum, err := m.checksumFile(abs)
		if err != nil {
			return nil, classifyAccessErr(abs, err)
		}
		logging.Info("dry run: would create backup",
			logging.String("source", abs),
			logging.String("backup", backupPath))
		return &Record{
			OriginalPath: abs,
			BackupPath:   backupPath,
			Timestamp:    timestamp,
			Reason:       reason,
			Checksum:     sum,
			SizeBytes:    info.Size(),
		}, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, classifyAccessErr(dir, err)
	}

	// Two invocations inside the same second must not silently overwrite
	// each other; failing loudly here is the concurrency safety valve.
	if _, err := os.Lstat(backupPath); err == nil {
		return nil, fmt.Errorf("%s: %w", backupPath, apperrors.ErrTimestampCollision)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", backupPath, err)
	}

	sum, size, err := copyAndHash(abs, backupPath, info.Mode().Perm())
	if err != nil {
		return nil, err
	}

	rec := &Record{
		OriginalPath: abs,
		BackupPath:   backupPath,
		Timestamp:    timestamp,
		Reason:       reason,
		Checksum:     sum,
		SizeBytes:    size,
	}

	if err := writeSidecar(rec); err != nil {
		// Keep the pair atomic: no copy without metadata.
		os.Remove(backupPath)
		return nil, err
	}

	logging.Info("backup created",
		logging.String("source", abs),
		logging.String("backup", backupPath),
		logging.String("reason", string(reason)),
		logging.Int64("size_bytes", size))

	// Best-effort cleanup. A rotation failure never undoes the creation.
	m.rotate(dir)

	return rec, nil
}

// copyAndHash streams src into a temporary file in the target directory,
// hashing the exact bytes written, then renames it into place. The stored
// checksum therefore always describes the stored copy, even if the source is
// mutated mid-read.
func copyAndHash(src, dst string, perm fs.FileMode) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, classifyAccessErr(src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return "", 0, classifyAccessErr(filepath.Dir(dst), err)
	}

	digest := checksum.New()
	size, err := io.Copy(io.MultiWriter(tmp, digest), in)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), perm)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write backup copy: %w", err)
	}

	return digest.Sum(), size, nil
}

// List returns all records for one original path, newest first.
func (m *Manager) List(originalPath string) ([]*Record, error) {
	abs, err := filepath.Abs(originalPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", originalPath, err)
	}

	copies, err := listCopies(dirFor(m.root, abs))
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(copies))
	for _, path := range copies {
		rec, err := loadSidecar(path)
		if err != nil {
			logging.Warn("skipping backup with unreadable metadata",
				logging.String("backup", path), logging.Err(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// listCopies returns backup copy paths in a directory, newest first by
// timestamp key. A missing directory is an empty listing, not an error.
func listCopies(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, classifyAccessErr(dir, err)
	}

	var copies []string
	for _, e := range entries {
		if e.Type().IsRegular() && isBackupCopy(e.Name()) {
			copies = append(copies, filepath.Join(dir, e.Name()))
		}
	}
	sort.Slice(copies, func(i, j int) bool {
		return timestampOf(filepath.Base(copies[i])) > timestampOf(filepath.Base(copies[j]))
	})
	return copies, nil
}

// rotate evicts the oldest records beyond the retention count. It operates on
// a snapshot of the directory listing; a record created concurrently after the
// snapshot simply waits for the next pass. Individual deletion failures are
// logged and skipped.
func (m *Manager) rotate(dir string) {
	lock := filelock.NewForDir(dir)
	acquired, err := lock.TryAcquire()
	if err != nil {
		logging.Warn("rotation lock unavailable, proceeding unlocked",
			logging.String("dir", dir), logging.Err(err))
	} else if !acquired {
		// Another invocation is already rotating this directory.
		return
	} else {
		defer lock.Release()
	}

	copies, err := listCopies(dir)
	if err != nil {
		logging.Warn("rotation listing failed", logging.String("dir", dir), logging.Err(err))
		return
	}
	if len(copies) <= m.maxPerFile {
		return
	}

	removed := 0
	for _, path := range copies[m.maxPerFile:] {
		if err := os.Remove(path); err != nil {
			logging.Warn("failed to remove old backup",
				logging.String("backup", path), logging.Err(err))
			continue
		}
		if err := os.Remove(sidecarPath(path)); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove old backup metadata",
				logging.String("backup", path), logging.Err(err))
		}
		removed++
	}
	if removed > 0 {
		logging.Info("rotated old backups",
			logging.String("dir", dir), logging.Int("removed", removed))
	}
}

// Stats summarizes the whole backup tree.
type Stats struct {
	TotalBackups    int    `json:"total_backups"`
	TotalSizeBytes  int64  `json:"total_size_bytes"`
	OldestTimestamp string `json:"oldest_timestamp,omitempty"`
	NewestTimestamp string `json:"newest_timestamp,omitempty"`
}

// Stats walks the tree and aggregates counts, sizes and the timestamp range.
func (m *Manager) Stats() (*Stats, error) {
	stats := &Stats{}
	err := m.walkCopies(func(path string, info fs.FileInfo) error {
		stats.TotalBackups++
		stats.TotalSizeBytes += info.Size()

		ts := timestampOf(filepath.Base(path))
		if stats.OldestTimestamp == "" || ts < stats.OldestTimestamp {
			stats.OldestTimestamp = ts
		}
		if ts > stats.NewestTimestamp {
			stats.NewestTimestamp = ts
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// walkCopies visits every backup copy under the tree root. A missing root is
// an empty tree.
func (m *Manager) walkCopies(fn func(path string, info fs.FileInfo) error) error {
	err := filepath.Walk(m.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == m.root {
				return filepath.SkipAll
			}
			return err
		}
		if info.Mode().IsRegular() && isBackupCopy(info.Name()) {
			return fn(path, info)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// checksumFile computes a file's digest, throttled by the scan limiter when
// one is configured.
func (m *Manager) checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return checksum.Reader(m.scanReader(f))
}

// emit appends an event, downgrading append failures to a log warning: losing
// an audit line must not fail the operation it describes.
func (m *Manager) emit(t events.Type, filePath, details string, sev events.Severity) {
	if err := m.events.Append(t, filePath, details, sev); err != nil {
		logging.Warn("failed to append backup event",
			logging.String("event_type", string(t)), logging.Err(err))
	}
}

func shortSum(sum string) string {
	if len(sum) > 16 {
		return sum[:16]
	}
	return sum
}

// classifyStatErr maps a stat failure on a backup source to the error
// taxonomy the CLI inspects.
func classifyStatErr(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, apperrors.ErrSourceNotFound)
	}
	return classifyAccessErr(path, err)
}

func classifyAccessErr(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w", path, apperrors.ErrPermissionDenied)
	}
	return fmt.Errorf("%s: %w", path, err)
}
