package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

// Schedule tracks the next due time for one scheduled flow. The precomputed
// NextDueAt lets the scheduler poll without keeping a timer per flow.
type Schedule struct {
	FlowID         string    `json:"flow_id"         validate:"required"`
	CronExpression string    `json:"cron_expression" validate:"required"`
	NextDueAt      time.Time `json:"next_due_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Active         bool      `json:"active"`
}

// NewSchedule creates a Schedule with the first due time calculated from now.
func NewSchedule(flowID, cronExpression string) (*Schedule, error) {
	schedule := &Schedule{
		FlowID:         flowID,
		CronExpression: cronExpression,
		Active:         true,
	}

	if err := schedule.calculateNextDueAt(time.Now().UTC()); err != nil {
		return nil, err
	}

	return schedule, nil
}

// UpdateNextDueAt advances the due time past the current moment.
func (s *Schedule) UpdateNextDueAt() error {
	return s.calculateNextDueAt(time.Now().UTC())
}

func (s *Schedule) calculateNextDueAt(referenceTime time.Time) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	cronSchedule, err := parser.Parse(s.CronExpression)
	if err != nil {
		return err
	}

	s.NextDueAt = cronSchedule.Next(referenceTime)
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// IsDue checks if this schedule is due for execution at the given time.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Active && !s.NextDueAt.After(now)
}

// Validate checks required fields and the cron expression format.
func (s *Schedule) Validate() error {
	if s.FlowID == "" || s.CronExpression == "" {
		return ErrInvalidSchedule
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(s.CronExpression)

	return err
}
