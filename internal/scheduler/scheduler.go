package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DefaultSweepInterval is how often idle sessions are looked for
const DefaultSweepInterval = time.Minute

// Sweeper drops learning sessions that have been idle for too long
type Sweeper interface {
	// SweepIdle removes sessions untouched for longer than idle and returns how many were removed
	SweepIdle(idle time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	idle      time.Duration
	logger    *zap.Logger
}

// New creates a new scheduler instance
func New(sweeper Sweeper, interval, idle time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		idle:      idle,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweepIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepIdleSessions discards abandoned sessions; nothing is recorded for them
func (s *Scheduler) sweepIdleSessions() {
	if removed := s.sweeper.SweepIdle(s.idle); removed > 0 {
		s.logger.Info("discarded idle learning sessions",
			zap.Int("count", removed),
			zap.Duration("idle", s.idle))
	}
}
