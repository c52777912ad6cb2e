package scheduler

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/flow"
	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/registry"
)

func scheduledFlow(id, schedule string) *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:      id,
		Name:    "Scheduled " + id,
		Trigger: models.Trigger{Type: models.TriggerTypeScheduled, Schedule: schedule},
		Actions: []models.ActionSpec{{Type: "log", Params: map[string]any{"message": "tick"}}},
		Enabled: true,
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *flow.Engine) {
	t.Helper()

	logger := slog.Default()
	engine := flow.NewEngine(logger, registry.NewActionRegistry(logger), flow.Config{})

	return NewScheduler(logger, engine), engine
}

func TestRefreshRegistersEnabledScheduledFlows(t *testing.T) {
	t.Parallel()

	scheduler, engine := newTestScheduler(t)

	require.NoError(t, engine.Flows().Register(scheduledFlow("nightly", "0 2 * * *")))
	require.NoError(t, engine.Flows().Register(scheduledFlow("hourly", "0 * * * *")))

	require.NoError(t, scheduler.Refresh(context.Background()))
	assert.ElementsMatch(t, []string{"nightly", "hourly"}, scheduler.Jobs())

	for _, schedule := range scheduler.Schedules() {
		assert.True(t, schedule.Active)
		assert.False(t, schedule.NextDueAt.IsZero())
	}
}

func TestRefreshDropsDisabledFlows(t *testing.T) {
	t.Parallel()

	scheduler, engine := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, engine.Flows().Register(scheduledFlow("sweep", "0 8 * * *")))
	require.NoError(t, scheduler.Refresh(ctx))
	require.Len(t, scheduler.Jobs(), 1)

	_, err := engine.Flows().Disable("sweep")
	require.NoError(t, err)

	require.NoError(t, scheduler.Refresh(ctx))
	assert.Empty(t, scheduler.Jobs())
}

func TestRefreshSkipsInvalidCronExpression(t *testing.T) {
	t.Parallel()

	scheduler, engine := newTestScheduler(t)

	require.NoError(t, engine.Flows().Register(scheduledFlow("broken", "not a cron")))
	require.NoError(t, scheduler.Refresh(context.Background()))
	assert.Empty(t, scheduler.Jobs())
}

func TestRefreshReplacesChangedSchedule(t *testing.T) {
	t.Parallel()

	scheduler, engine := newTestScheduler(t)
	ctx := context.Background()

	def := scheduledFlow("drift", "0 8 * * *")
	require.NoError(t, engine.Flows().Register(def))
	require.NoError(t, scheduler.Refresh(ctx))

	def.Trigger.Schedule = "30 8 * * *"
	require.NoError(t, scheduler.Refresh(ctx))
	assert.Equal(t, []string{"drift"}, scheduler.Jobs())
}

func TestRunnerSkipsWhenEngineStopped(t *testing.T) {
	t.Parallel()

	scheduler, engine := newTestScheduler(t)

	require.NoError(t, engine.Flows().Register(scheduledFlow("idle", "0 8 * * *")))

	// Engine never started; the runner must swallow the rejection.
	assert.NotPanics(t, func() {
		scheduler.runner("idle")()
	})
}
