package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSpec(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"hourly", "@hourly", false},
		{"daily", "@daily", false},
		{"Weekly", "@weekly", false},
		{"every 4h", "@every 4h0m0s", false},
		{"every 30m", "@every 30m0s", false},
		{"0 2 * * *", "0 2 * * *", false},
		{"@midnight", "@midnight", false},
		{"every 10s", "", true},
		{"every banana", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSpec(tt.expr)
		if tt.wantErr {
			assert.Error(t, err, "expr %q", tt.expr)
			continue
		}
		require.NoError(t, err, "expr %q", tt.expr)
		assert.Equal(t, tt.want, got, "expr %q", tt.expr)
	}
}

func TestAdd_InvalidSpec(t *testing.T) {
	s := New()
	err := s.Add("backup", "not a schedule", func() error { return nil })
	assert.Error(t, err)
}

func TestAdd_Status(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("backup", "daily", func() error { return nil }))
	require.NoError(t, s.Add("health", "0 3 * * *", func() error { return nil }))

	statuses := s.Status()
	require.Len(t, statuses, 2)
	assert.Equal(t, "backup", statuses[0].Name)
	assert.Equal(t, "@daily", statuses[0].Spec)
	assert.True(t, statuses[0].LastRun.IsZero())
	assert.True(t, statuses[0].NextRun.IsZero(), "no next run before Start")
}

func TestExecute_RecordsOutcome(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("ok", "daily", func() error { return nil }))
	require.NoError(t, s.Add("broken", "daily", func() error { return fmt.Errorf("boom") }))

	s.execute(s.jobs[0])
	s.execute(s.jobs[1])

	statuses := s.Status()
	assert.False(t, statuses[0].LastRun.IsZero())
	assert.Empty(t, statuses[0].LastError)
	assert.Equal(t, "boom", statuses[1].LastError)
}

func TestStartStop(t *testing.T) {
	s := New()
	ran := make(chan struct{}, 1)
	// Raw @every descriptors pass through normalization untouched, which
	// lets this test use a sub-minute interval.
	require.NoError(t, s.Add("tick", "@every 10ms", func() error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	s.Start() // idempotent

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job never ran")
	}

	statuses := s.Status()
	assert.False(t, statuses[0].NextRun.IsZero(), "running scheduler exposes next run")

	s.Stop()
	s.Stop() // idempotent
}
