// Package scheduler runs recurring backup and health-check jobs
package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/catdogtool/catdog/internal/logging"
)

// Scheduler drives recurring jobs from cron expressions. It backs the watch
// daemon: periodic backups of watched paths and periodic health audits.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	running bool
	jobs    []*job
}

type job struct {
	name    string
	spec    string
	entryID cron.EntryID
	run     func() error

	lastRun time.Time
	lastErr error
}

// JobStatus is a snapshot of one scheduled job.
type JobStatus struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// NormalizeSpec maps the friendly schedule forms accepted in configuration
// onto cron syntax.
// Supports:
// - Simple: "hourly", "daily", "weekly"
// - Intervals: "every 4h", "every 30m"
// - Cron: "0 2 * * *" and "@"-descriptors, passed through unchanged
func NormalizeSpec(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", fmt.Errorf("empty schedule")
	}

	switch strings.ToLower(expr) {
	case "hourly":
		return "@hourly", nil
	case "daily":
		return "@daily", nil
	case "weekly":
		return "@weekly", nil
	}

	if after, ok := strings.CutPrefix(strings.ToLower(expr), "every "); ok {
		dur, err := time.ParseDuration(strings.TrimSpace(after))
		if err != nil {
			return "", fmt.Errorf("invalid interval %q: %w", after, err)
		}
		if dur < time.Minute {
			return "", fmt.Errorf("interval must be at least 1 minute")
		}
		return "@every " + dur.String(), nil
	}

	return expr, nil
}

// Add registers a named job. The expression is normalized and validated;
// scheduling starts when Start is called.
func (s *Scheduler) Add(name, expr string, run func() error) error {
	spec, err := NormalizeSpec(expr)
	if err != nil {
		return fmt.Errorf("schedule for %s: %w", name, err)
	}

	j := &job{name: name, spec: spec, run: run}
	entryID, err := s.cron.AddFunc(spec, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("schedule for %s: %w", name, err)
	}
	j.entryID = entryID

	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) execute(j *job) {
	logging.Info("running scheduled job", logging.String("job", j.name))
	err := j.run()

	s.mu.Lock()
	j.lastRun = time.Now()
	j.lastErr = err
	s.mu.Unlock()

	if err != nil {
		logging.Warn("scheduled job failed",
			logging.String("job", j.name), logging.Err(err))
		return
	}
	logging.Info("scheduled job completed", logging.String("job", j.name))
}

// Start begins running registered jobs. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()

	for _, j := range s.jobs {
		next := s.cron.Entry(j.entryID).Next
		logging.Info("job scheduled",
			logging.String("job", j.name),
			logging.String("spec", j.spec),
			logging.String("next_run", next.Format(time.RFC3339)))
	}
}

// Stop halts scheduling and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logging.Info("scheduler stopped")
}

// Status returns a snapshot of every registered job.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := JobStatus{
			Name:    j.name,
			Spec:    j.spec,
			LastRun: j.lastRun,
		}
		if j.lastErr != nil {
			st.LastError = j.lastErr.Error()
		}
		if s.running {
			st.NextRun = s.cron.Entry(j.entryID).Next
		}
		statuses = append(statuses, st)
	}
	return statuses
}
