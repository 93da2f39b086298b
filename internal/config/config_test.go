package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, DefaultMaxBackupsPerFile, cfg.MaxBackupsPerFile)
	assert.Equal(t, DefaultStaleAfterDays, cfg.StaleAfterDays)
	assert.NotEmpty(t, cfg.BackupRoot)
	assert.Equal(t, filepath.Join(dir, "backup_events.log"), cfg.EventLogPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{
		ConfigDir:         dir,
		BackupRoot:        "/var/lib/catdog/backups",
		MaxBackupsPerFile: 5,
		StaleAfterDays:    7,
		WatchPaths:        []string{"/etc/fstab", "/etc/hosts"},
		WatchSchedule:     "@hourly",
		LogLevel:          "debug",
	}
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/catdog/backups", loaded.BackupRoot)
	assert.Equal(t, 5, loaded.MaxBackupsPerFile)
	assert.Equal(t, 7, loaded.StaleAfterDays)
	assert.Equal(t, []string{"/etc/fstab", "/etc/hosts"}, loaded.WatchPaths)
	assert.Equal(t, "@hourly", loaded.WatchSchedule)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, dir, loaded.ConfigDir)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_level":"warn"}`), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultMaxBackupsPerFile, cfg.MaxBackupsPerFile)
	assert.NotEmpty(t, cfg.BackupRoot)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))

	cfg := &Config{ConfigDir: dir}
	require.NoError(t, cfg.Save())
	assert.True(t, Exists(dir))
}

func TestSave_ConfigDirNotSerialized(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{ConfigDir: dir, BackupRoot: "/tmp/b"}
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), dir)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultConfigDir(), cfg.ConfigDir)
	assert.Equal(t, DefaultMaxBackupsPerFile, cfg.MaxBackupsPerFile)
}
