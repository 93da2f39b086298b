package backup

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catdogtool/catdog/internal/events"
	"github.com/catdogtool/catdog/internal/testutil"
)

func TestDrill_AllRestorable(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	seedBackups(t, m, 5)

	report, err := m.Drill()
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalTested)
	assert.Equal(t, 5, report.Successful)
	assert.True(t, report.AllPassed())
	assert.InDelta(t, 1.0, report.SuccessRate(), 1e-9)
	assert.GreaterOrEqual(t, report.Duration.Nanoseconds(), int64(0))
}

func TestDrill_CorruptedBackupFails(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	records := seedBackups(t, m, 4)

	testutil.FlipByte(t, records[2].BackupPath)

	report, err := m.Drill()
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalTested)
	assert.Equal(t, 3, report.Successful)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, records[2].BackupPath, report.Failed[0].BackupPath)
	assert.Equal(t, records[2].OriginalPath, report.Failed[0].OriginalPath)
	assert.InDelta(t, 0.75, report.SuccessRate(), 1e-9)
	assert.False(t, report.AllPassed())
}

func TestDrill_MissingMetadataFails(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	records := seedBackups(t, m, 2)

	require.NoError(t, os.Remove(records[0].BackupPath+".json"))

	report, err := m.Drill()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Successful)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "unknown", report.Failed[0].OriginalPath)
}

func TestDrill_NeverTouchesOriginals(t *testing.T) {
	m, _ := newTestManager(t)
	tickingClock(m)
	records := seedBackups(t, m, 3)

	before := make(map[string]string)
	for _, rec := range records {
		data, err := os.ReadFile(rec.OriginalPath)
		require.NoError(t, err)
		before[rec.OriginalPath] = string(data)
	}

	// Corrupt one backup so both drill branches execute.
	testutil.FlipByte(t, records[0].BackupPath)

	_, err := m.Drill()
	require.NoError(t, err)

	for path, content := range before {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data), "drill must never modify %s", path)
	}
}

func TestDrill_Events(t *testing.T) {
	m, cfg := newTestManager(t)
	tickingClock(m)
	records := seedBackups(t, m, 2)
	log := events.NewLog(cfg.EventLogPath)

	_, err := m.Drill()
	require.NoError(t, err)
	evs, err := log.Tail(1)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeDrillPassed, evs[0].Type)

	testutil.FlipByte(t, records[0].BackupPath)
	_, err = m.Drill()
	require.NoError(t, err)
	evs, err = log.Tail(1)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeDrillFailed, evs[0].Type)
	assert.Equal(t, events.SeverityCritical, evs[0].Severity)
}

func TestDrill_EmptyTree(t *testing.T) {
	m, _ := newTestManager(t)
	report, err := m.Drill()
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalTested)
	assert.True(t, report.AllPassed())
}

func TestDrill_ThrottledScanStillVerifies(t *testing.T) {
	cfg := testutil.TestConfig(t)
	cfg.ScanBytesPerSec = 10 * 1024 * 1024
	m, err := NewManager(cfg, events.NewLog(cfg.EventLogPath))
	require.NoError(t, err)
	tickingClock(m)
	seedBackups(t, m, 2)

	report, err := m.Drill()
	require.NoError(t, err)
	assert.True(t, report.AllPassed())
}
