package flow

import (
	"strconv"
	"testing"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) *models.ExecutionRecord {
	return &models.ExecutionRecord{ID: id, FlowID: "f1", Status: models.ExecutionStatusSuccess}
}

func TestHistory_RecentNewestFirst(t *testing.T) {
	history := NewHistory(10)

	history.Append(record("a"))
	history.Append(record("b"))
	history.Append(record("c"))

	recent := history.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
}

func TestHistory_EvictsOldestAtCapacity(t *testing.T) {
	history := NewHistory(3)

	for i := range 5 {
		history.Append(record(strconv.Itoa(i)))
	}

	assert.Equal(t, 3, history.Len())

	recent := history.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "4", recent[0].ID)
	assert.Equal(t, "2", recent[2].ID)
}

func TestHistory_LimitLargerThanSize(t *testing.T) {
	history := NewHistory(10)
	history.Append(record("a"))

	assert.Len(t, history.Recent(100), 1)
}

func TestHistory_DefaultCapacity(t *testing.T) {
	history := NewHistory(0)

	for i := range DefaultHistoryCapacity + 50 {
		history.Append(record(strconv.Itoa(i)))
	}

	assert.Equal(t, DefaultHistoryCapacity, history.Len())
}
