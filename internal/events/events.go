// Package events maintains the append-only backup event log. Each event is a
// single self-describing JSON line; readers never need cross-line state.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened.
type Type string

const (
	TypeBackupCreated     Type = "BackupCreated"
	TypeBackupRestored    Type = "BackupRestored"
	TypeBackupCorrupted   Type = "BackupCorrupted"
	TypeBackupFailed      Type = "BackupFailed"
	TypeHealthCheckPassed Type = "HealthCheckPassed"
	TypeHealthCheckFailed Type = "HealthCheckFailed"
	TypeDrillPassed       Type = "DrillPassed"
	TypeDrillFailed       Type = "DrillFailed"
)

// Severity classifies an event for monitoring integrations.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// Event is one immutable log record.
type Event struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Type      Type     `json:"event_type"`
	FilePath  string   `json:"file_path"`
	Details   string   `json:"details"`
	Severity  Severity `json:"severity"`
}

// ShouldAlert reports whether the event warrants attention from an external
// alerting hook.
func (e Event) ShouldAlert() bool {
	return e.Severity == SeverityWarning || e.Severity == SeverityCritical
}

// Log appends events to a file. Each record is written in one bounded write
// call and synced immediately, so a crash right after an operation cannot
// lose the record describing it, and concurrent appenders cannot interleave
// within a record.
type Log struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewLog creates an event log that appends to path.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one event record and flushes it to stable storage.
func (l *Log) Append(t Type, filePath, details string, sev Severity) error {
	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Type:      t,
		FilePath:  filePath,
		Details:   details,
		Severity:  sev,
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create event log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return f.Sync()
}

// Tail returns up to limit of the most recent events, oldest first.
// A limit <= 0 returns all events. Unparsable lines are skipped; the log
// must stay readable even if a foreign line sneaks in.
func (l *Log) Tail(limit int) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
