package flowdefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/events"
	"github.com/kodisha/flowd/pkg/flow"
)

func TestBuiltInFlowsRegisterCleanly(t *testing.T) {
	t.Parallel()

	registry := flow.NewRegistry()

	for _, def := range BuiltIn() {
		require.NoError(t, registry.Register(def), "flow %s", def.ID)
	}

	assert.Len(t, registry.List(), len(BuiltIn()))
}

func TestBuiltInReturnsFreshCopies(t *testing.T) {
	t.Parallel()

	first := BuiltIn()
	first[0].Enabled = false
	first[0].Actions = nil

	second := BuiltIn()
	assert.True(t, second[0].Enabled)
	assert.NotEmpty(t, second[0].Actions)
}

func TestBuiltInCoversCoreEvents(t *testing.T) {
	t.Parallel()

	byEvent := make(map[string]int)

	scheduled := 0

	for _, def := range BuiltIn() {
		if def.Trigger.Scheduled() {
			scheduled++

			continue
		}

		byEvent[def.Trigger.Event]++
	}

	assert.Positive(t, byEvent[events.ContactCreated])
	assert.Positive(t, byEvent[events.ContactTagged])
	assert.Positive(t, byEvent[events.PaymentReceived])
	assert.Positive(t, byEvent[events.MaintenanceCreated])
	assert.Equal(t, 1, scheduled)
}
