package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduleComputesNextDue(t *testing.T) {
	t.Parallel()

	schedule, err := NewSchedule("overdue-rent-reminder", "0 8 * * *")
	require.NoError(t, err)
	assert.True(t, schedule.Active)
	assert.False(t, schedule.NextDueAt.IsZero())
	assert.True(t, schedule.NextDueAt.After(time.Now().Add(-time.Minute)))
}

func TestNewScheduleRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	_, err := NewSchedule("broken", "every tuesday")
	assert.Error(t, err)
}

func TestScheduleIsDue(t *testing.T) {
	t.Parallel()

	schedule, err := NewSchedule("sweep", "* * * * *")
	require.NoError(t, err)

	assert.False(t, schedule.IsDue(time.Now()))
	assert.True(t, schedule.IsDue(schedule.NextDueAt.Add(time.Second)))

	schedule.Active = false
	assert.False(t, schedule.IsDue(schedule.NextDueAt.Add(time.Second)))
}

func TestScheduleValidate(t *testing.T) {
	t.Parallel()

	schedule := &Schedule{FlowID: "x", CronExpression: "*/5 * * * *"}
	assert.NoError(t, schedule.Validate())

	schedule.CronExpression = ""
	assert.ErrorIs(t, schedule.Validate(), ErrInvalidSchedule)
}

func TestUpdateNextDueAtAdvances(t *testing.T) {
	t.Parallel()

	schedule, err := NewSchedule("sweep", "* * * * *")
	require.NoError(t, err)

	first := schedule.NextDueAt
	require.NoError(t, schedule.UpdateNextDueAt())
	assert.False(t, schedule.NextDueAt.Before(first))
}
