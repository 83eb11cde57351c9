// Package runtime hosts the background maintenance loop.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/emberworks/aria/memory"
)

// DefaultSweepSchedule runs the retention sweep every night at 03:00.
const DefaultSweepSchedule = "0 3 * * *"

// Scheduler runs the memory retention sweep on a cron schedule.
type Scheduler struct {
	store    *memory.Store
	schedule cron.Schedule
	logger   zerolog.Logger
}

// NewScheduler creates a Scheduler from a schedule string. Both cron
// expressions ("0 3 * * *") and Go durations ("24h") are accepted; an empty
// string selects the default nightly schedule.
func NewScheduler(store *memory.Store, schedule string, logger zerolog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	sched, err := parseSchedule(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	return &Scheduler{
		store:    store,
		schedule: sched,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// parseSchedule parses a schedule string.
// Supports:
//   - Cron expressions: "0 3 * * *" (5-field) or "0 0 3 * * *" (6-field)
//   - Go duration strings: "24h", "1h30m"
func parseSchedule(schedule string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(schedule); err == nil {
		return sched, nil
	}

	duration, err := time.ParseDuration(schedule)
	if err != nil {
		return nil, fmt.Errorf("not a cron expression or duration: %w", err)
	}
	return cron.ConstantDelaySchedule{Delay: duration}, nil
}

// Start sweeps once immediately, then blocks sweeping on schedule until ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info().Msg("starting retention sweeps")
	s.store.CleanupOldMemories(ctx)

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("scheduler stopped: context cancelled")
			return
		case <-timer.C:
			s.store.CleanupOldMemories(ctx)
		}
	}
}
