package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/catdogtool/catdog/internal/errors"
	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/testutil"
)

func TestRestore_RoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "original content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	// Clobber the live file, then force-restore.
	require.NoError(t, os.WriteFile(src, []byte("broken edit"), 0o644))

	res, err := m.Restore(rec.BackupPath, RestoreOptions{Force: true})
	require.NoError(t, err)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "original content\n", string(data))
	assert.Equal(t, rec.Checksum, mustChecksum(t, m, src))
	assert.Equal(t, rec.BackupPath, res.Record.BackupPath)
}

func TestRestore_ModifiedWithoutForce(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "original content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("local edit"), 0o644))

	_, err = m.Restore(rec.BackupPath, RestoreOptions{})
	assert.ErrorIs(t, err, apperrors.ErrModifiedSinceBackup)

	// The live file must be untouched by the refused restore.
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "local edit", string(data))
}

func TestRestore_ForcedPriorStateIsRecoverable(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "original content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("local edit"), 0o644))
	editSum := mustChecksum(t, m, src)

	res, err := m.Restore(rec.BackupPath, RestoreOptions{Force: true})
	require.NoError(t, err)
	require.NotNil(t, res.PreRestoreBackup)
	assert.Equal(t, ReasonPreRestore, res.PreRestoreBackup.Reason)
	assert.Equal(t, editSum, res.PreRestoreBackup.Checksum,
		"pre-restore backup must capture the overwritten live state")

	// The pre-restore backup is a first-class record visible in listings.
	records, err := m.List(src)
	require.NoError(t, err)
	var found bool
	for _, r := range records {
		if r.Reason == ReasonPreRestore {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRestore_UnmodifiedNeedsNoForce(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "stable content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	_, err = m.Restore(rec.BackupPath, RestoreOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "stable content\n", string(data))
}

func TestRestore_RecreatesMissingOriginal(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(src))

	res, err := m.Restore(rec.BackupPath, RestoreOptions{})
	require.NoError(t, err)
	assert.Nil(t, res.PreRestoreBackup, "no live file, so no pre-restore backup")

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(data))
}

func TestRestore_MetadataNotFound(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(rec.BackupPath+".json"))

	_, err = m.Restore(rec.BackupPath, RestoreOptions{})
	assert.ErrorIs(t, err, apperrors.ErrMetadataNotFound)
}

func TestRestore_MetadataMalformed(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(rec.BackupPath+".json", []byte("{not json"), 0o600))

	_, err = m.Restore(rec.BackupPath, RestoreOptions{})
	assert.ErrorIs(t, err, apperrors.ErrMetadataMalformed)
}

func TestRestore_DryRun(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("edited"), 0o644))

	_, err = m.Restore(rec.BackupPath, RestoreOptions{Force: true, DryRun: true})
	require.NoError(t, err)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data), "dry run must not write")

	records, err := m.List(src)
	require.NoError(t, err)
	assert.Len(t, records, 1, "dry run must not create a pre-restore backup")
}

func TestRestore_EmitsEvent(t *testing.T) {
	m, cfg := newTestManager(t)
	tickingClock(m)
	src := testutil.WriteFile(t, t.TempDir(), "fstab", "content\n")

	rec, err := m.Create(src, ReasonManual, false)
	require.NoError(t, err)
	_, err = m.Restore(rec.BackupPath, RestoreOptions{})
	require.NoError(t, err)

	evs, err := events.NewLog(cfg.EventLogPath).Tail(0)
	require.NoError(t, err)

	var types []events.Type
	for _, ev := range evs {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, events.TypeBackupRestored)
}

func mustChecksum(t *testing.T, m *Manager, path string) string {
	t.Helper()
	sum, err := m.checksumFile(path)
	require.NoError(t, err)
	return sum
}

func TestRestore_BackupCopyMissing(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Restore(filepath.Join(t.TempDir(), "ghost.backup.20260830_120000"), RestoreOptions{})
	assert.Error(t, err)
}
