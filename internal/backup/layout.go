package backup

import (
	"path/filepath"
	"strings"
)

const (
	backupMarker  = ".backup."
	sidecarSuffix = ".json"
)

// dirNameFor maps an absolute original path to its storage subdirectory name.
// Underscores in the path are doubled before separators become single
// underscores, so two distinct paths can never map to the same directory
// ("/etc/fstab" -> "etc_fstab", "/a_b" -> "a__b", "/a/b" -> "a_b").
func dirNameFor(originalPath string) string {
	s := strings.ReplaceAll(originalPath, "_", "__")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return strings.TrimPrefix(s, "_")
}

// backupFileName builds the copy filename for a source basename and
// timestamp key, e.g. "fstab.backup.20260830_120000".
func backupFileName(base, timestamp string) string {
	return base + backupMarker + timestamp
}

// sidecarPath returns the metadata path for a backup copy path.
func sidecarPath(backupPath string) string {
	return backupPath + sidecarSuffix
}

// isBackupCopy reports whether name is a backup copy (not a sidecar).
func isBackupCopy(name string) bool {
	return strings.Contains(name, backupMarker) && !strings.HasSuffix(name, sidecarSuffix)
}

// timestampOf extracts the timestamp key from a backup copy filename.
// Returns "" when name is not a backup copy.
func timestampOf(name string) string {
	i := strings.LastIndex(name, backupMarker)
	if i < 0 {
		return ""
	}
	return name[i+len(backupMarker):]
}

// dirFor returns the storage subdirectory for an original path under root.
func dirFor(root, originalPath string) string {
	return filepath.Join(root, dirNameFor(originalPath))
}
