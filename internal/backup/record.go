// Package backup implements the catdog backup/restore integrity engine:
// checksummed rotated copies of critical files, modification-aware restore,
// and the read-only health and drill audits over the stored tree.
package backup

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the second-resolution key used in backup filenames and
// metadata. Lexicographic order equals chronological order.
const TimestampLayout = "20060102_150405"

// Reason records why a backup was taken.
type Reason string

const (
	ReasonManual               Reason = "Manual"
	ReasonPreFstabModification Reason = "PreFstabModification"
	ReasonPreRestore           Reason = "PreRestore"
	ReasonPreSystemChange      Reason = "PreSystemChange"
	ReasonScheduled            Reason = "Scheduled"
)

// Valid reports whether r is a known reason.
func (r Reason) Valid() bool {
	switch r {
	case ReasonManual, ReasonPreFstabModification, ReasonPreRestore,
		ReasonPreSystemChange, ReasonScheduled:
		return true
	}
	return false
}

// ParseReason maps a command-line reason argument onto a Reason.
func ParseReason(s string) (Reason, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual":
		return ReasonManual, nil
	case "fstab", "pre-fstab", "pre-fstab-modification":
		return ReasonPreFstabModification, nil
	case "pre-restore":
		return ReasonPreRestore, nil
	case "system", "pre-system-change":
		return ReasonPreSystemChange, nil
	case "scheduled":
		return ReasonScheduled, nil
	}
	return "", fmt.Errorf("unknown reason %q (expected manual, fstab, pre-restore, system or scheduled)", s)
}

// Description returns a human-readable form for display.
func (r Reason) Description() string {
	switch r {
	case ReasonManual:
		return "Manual backup"
	case ReasonPreFstabModification:
		return "Before fstab modification"
	case ReasonPreRestore:
		return "Before restore"
	case ReasonPreSystemChange:
		return "Before system change"
	case ReasonScheduled:
		return "Scheduled backup"
	default:
		return string(r)
	}
}

// Record is one stored backup: a copy plus its metadata sidecar.
type Record struct {
	OriginalPath string `json:"original_path"`
	BackupPath   string `json:"backup_path"`
	Timestamp    string `json:"timestamp"`
	Reason       Reason `json:"reason"`
	Checksum     string `json:"checksum"`
	SizeBytes    int64  `json:"size_bytes"`
}

// Time parses the record's timestamp key. Timestamps are stored in UTC.
func (r *Record) Time() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", r.Timestamp, err)
	}
	return t, nil
}

// AgeDays returns the record's age in whole days relative to now.
func (r *Record) AgeDays(now time.Time) (int, error) {
	t, err := r.Time()
	if err != nil {
		return 0, err
	}
	return int(now.UTC().Sub(t).Hours() / 24), nil
}

// validate checks the fields the rest of the engine relies on.
func (r *Record) validate() error {
	if r.OriginalPath == "" {
		return fmt.Errorf("missing original_path")
	}
	if r.BackupPath == "" {
		return fmt.Errorf("missing backup_path")
	}
	if r.Checksum == "" {
		return fmt.Errorf("missing checksum")
	}
	if !r.Reason.Valid() {
		return fmt.Errorf("unknown reason %q", r.Reason)
	}
	if _, err := r.Time(); err != nil {
		return err
	}
	return nil
}
