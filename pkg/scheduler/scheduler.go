// Package scheduler runs time-driven flows. Each enabled scheduled flow gets
// a cron job that triggers it through the engine with triggered_by "system".
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/kodisha/flowd/pkg/flow"
	"github.com/kodisha/flowd/pkg/models"
)

type job struct {
	entryID  cron.EntryID
	schedule *models.Schedule
}

// Scheduler mirrors the engine's scheduled flows into a cron runner. Refresh
// reconciles the jobs after flows are registered, removed, enabled or
// disabled.
type Scheduler struct {
	cron   *cron.Cron
	engine *flow.Engine
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]job
}

func NewScheduler(logger *slog.Logger, engine *flow.Engine) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		engine: engine,
		logger: logger.With("module", "scheduler"),
		jobs:   make(map[string]job),
	}
}

// Start reconciles once and begins firing jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", "jobs", len(s.jobs))

	return nil
}

// Stop halts job dispatch and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Scheduler stopped")

	return nil
}

// Refresh aligns cron jobs with the engine's enabled scheduled flows. Jobs
// for removed or disabled flows are dropped; changed schedules are re-added.
func (s *Scheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]string)
	for _, def := range s.engine.Flows().Scheduled() {
		wanted[def.ID] = def.Trigger.Schedule
	}

	for flowID, existing := range s.jobs {
		expression, keep := wanted[flowID]
		if keep && expression == existing.schedule.CronExpression {
			delete(wanted, flowID)

			continue
		}

		s.cron.Remove(existing.entryID)
		delete(s.jobs, flowID)

		s.logger.DebugContext(ctx, "Removed scheduled job", "flow_id", flowID)
	}

	for flowID, expression := range wanted {
		schedule, err := models.NewSchedule(flowID, expression)
		if err != nil {
			s.logger.ErrorContext(ctx, "Invalid cron expression, skipping flow",
				"flow_id", flowID,
				"schedule", expression,
				"error", err)

			continue
		}

		entryID, err := s.cron.AddFunc(expression, s.runner(flowID))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to register cron job, skipping flow",
				"flow_id", flowID,
				"schedule", expression,
				"error", err)

			continue
		}

		s.jobs[flowID] = job{entryID: entryID, schedule: schedule}

		s.logger.InfoContext(ctx, "Registered scheduled job",
			"flow_id", flowID,
			"schedule", expression,
			"next_due_at", schedule.NextDueAt)
	}

	return nil
}

// Jobs returns the flow ids with an active cron job.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}

	return ids
}

// Schedules snapshots the tracked schedules with their next due times.
func (s *Scheduler) Schedules() []*models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Schedule, 0, len(s.jobs))
	for _, j := range s.jobs {
		copied := *j.schedule
		out = append(out, &copied)
	}

	return out
}

func (s *Scheduler) runner(flowID string) func() {
	return func() {
		ctx := context.Background()

		record, err := s.engine.TriggerFlow(ctx, flowID, models.TriggeredBySystem, nil)
		if err != nil {
			if errors.Is(err, flow.ErrEngineNotRunning) {
				s.logger.DebugContext(ctx, "Engine not running, skipping scheduled flow", "flow_id", flowID)

				return
			}

			s.logger.ErrorContext(ctx, "Scheduled flow failed to trigger",
				"flow_id", flowID,
				"error", err)

			return
		}

		s.mu.Lock()
		if j, ok := s.jobs[flowID]; ok {
			if err := j.schedule.UpdateNextDueAt(); err != nil {
				s.logger.Warn("Failed to advance schedule", "flow_id", flowID, "error", err)
			}
		}
		s.mu.Unlock()

		if record != nil {
			s.logger.InfoContext(ctx, "Scheduled flow executed",
				"flow_id", flowID,
				"status", record.Status)
		}
	}
}
