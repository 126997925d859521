package scheduler

import (
	"fmt"
	"sync"
	"time"

	"medreminder/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron jobs.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
	mu   sync.Mutex // To protect access to job management
}

// NewScheduler creates and starts a cron scheduler with seconds precision
// running in loc (time.Local when nil).
func NewScheduler(log logger.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	c.Start()
	log.Info("Cron scheduler started.")
	return &Scheduler{
		cron: c,
		log:  log,
	}
}

// DailySpec returns the cron spec firing every day at hour:minute.
func DailySpec(hour, minute int) string {
	// Seconds Minutes Hours DayOfMonth Month DayOfWeek
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}

// OnceSpec returns a cron spec for a specific point in time. The spec matches
// again a year later, so callers remove the job after its first run.
func OnceSpec(t time.Time) string {
	return fmt.Sprintf("%d %d %d %d %d *", t.Second(), t.Minute(), t.Hour(), t.Day(), t.Month())
}

// AddJob adds a new job to the scheduler.
// spec follows the cron format (e.g., "0 30 * * * *").
// Returns the EntryID of the added job and an error if any.
func (s *Scheduler) AddJob(spec string, cmd func()) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		s.log.Error("Failed to add cron job", err)
		return 0, fmt.Errorf("failed to add cron job: %w", err)
	}
	s.log.Debug(fmt.Sprintf("Added cron job with ID %d, spec: %s", id, spec))
	return id, nil
}

// RemoveJob removes a job from the scheduler by its EntryID.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(id)
	s.log.Debug(fmt.Sprintf("Removed cron job with ID %d", id))
}

// Next returns the next activation time of a job, or the zero time if the
// job is unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entry(id).Next
}

// Stop stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()

	if c != nil {
		// Running jobs may call RemoveJob, so the lock is released before waiting.
		ctx := c.Stop()
		<-ctx.Done()
		s.log.Info("Cron scheduler stopped.")
	}
}

// GetEntries returns the list of scheduled entries. Useful for debugging.
func (s *Scheduler) GetEntries() []cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entries()
}
