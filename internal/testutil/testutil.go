// Package testutil provides shared fixtures for catdog tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catdogtool/catdog/internal/config"
)

// TestConfig returns a configuration rooted in temporary directories that are
// cleaned up with the test.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ConfigDir:         dir,
		BackupRoot:        filepath.Join(dir, "backups"),
		EventLogPath:      filepath.Join(dir, "backup_events.log"),
		MaxBackupsPerFile: config.DefaultMaxBackupsPerFile,
		StaleAfterDays:    config.DefaultStaleAfterDays,
	}
}

// WriteFile creates a file with the given content and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// FlipByte corrupts a file by inverting its first byte.
func FlipByte(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data, "cannot corrupt an empty file")
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
