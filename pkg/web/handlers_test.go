package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/actions/sms"
	"github.com/kodisha/flowd/pkg/flow"
	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence/file"
	"github.com/kodisha/flowd/pkg/registry"
	"github.com/kodisha/flowd/pkg/web"
)

type testEnv struct {
	app    *fiber.App
	engine *flow.Engine
	sent   *outbox.Memory
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.Default()
	sent := outbox.NewMemory()

	actions := registry.NewActionRegistry(logger)
	actions.Register(sms.NewHandler(sent))

	engine := flow.NewEngine(logger, actions, flow.Config{})
	require.NoError(t, engine.Start(context.Background()))

	store := file.NewStore(t.TempDir())
	handlers := web.NewAPIHandlers(logger, engine, store, nil)

	return &testEnv{app: web.NewApp(handlers), engine: engine, sent: sent}
}

func flowBody(id string) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    "Late rent SMS",
		"trigger": map[string]any{"event": "rent.overdue"},
		"actions": []any{
			map[string]any{
				"type": "sms",
				"params": map[string]any{
					"to":      "{{tenant.phone}}",
					"message": "Rent for {{unit.code}} is overdue",
				},
			},
		},
		"enabled": true,
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func do(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(body, &out))

	return out
}

func TestCreateAndGetFlow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := postJSON(t, env.app, "/api/flows", flowBody("late-rent-sms"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, env.app, http.MethodGet, "/api/flows/late-rent-sms")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	def := decode[models.FlowDefinition](t, resp)
	assert.Equal(t, "Late rent SMS", def.Name)
	assert.Equal(t, "rent.overdue", def.Trigger.Event)
}

func TestCreateFlowDuplicateIDRejected(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := postJSON(t, env.app, "/api/flows", flowBody("dup"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, env.app, "/api/flows", flowBody("dup"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, env.engine.Flows().List(), 1)
}

func TestCreateFlowSchemaValidation(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	body := flowBody("no-actions")
	body["actions"] = []any{}

	resp := postJSON(t, env.app, "/api/flows", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "actions")
}

func TestGetFlowNotFound(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := do(t, env.app, http.MethodGet, "/api/flows/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListFlows(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	postJSON(t, env.app, "/api/flows", flowBody("one"))
	postJSON(t, env.app, "/api/flows", flowBody("two"))

	resp := do(t, env.app, http.MethodGet, "/api/flows")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defs := decode[[]models.FlowDefinition](t, resp)
	require.Len(t, defs, 2)
	assert.Equal(t, "one", defs[0].ID)
	assert.Equal(t, "two", defs[1].ID)
}

func TestEnableDisableFlow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	postJSON(t, env.app, "/api/flows", flowBody("toggle"))

	resp := do(t, env.app, http.MethodPut, "/api/flows/toggle/disable")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	def := decode[models.FlowDefinition](t, resp)
	assert.False(t, def.Enabled)

	resp = do(t, env.app, http.MethodPut, "/api/flows/toggle/enable")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	def = decode[models.FlowDefinition](t, resp)
	assert.True(t, def.Enabled)

	resp = do(t, env.app, http.MethodPut, "/api/flows/absent/enable")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteFlow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	postJSON(t, env.app, "/api/flows", flowBody("doomed"))

	resp := do(t, env.app, http.MethodDelete, "/api/flows/doomed")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, env.app, http.MethodDelete, "/api/flows/doomed")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerEventRunsFlow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	postJSON(t, env.app, "/api/flows", flowBody("late-rent-sms"))

	resp := postJSON(t, env.app, "/api/flows/trigger", map[string]any{
		"eventName": "rent.overdue",
		"eventData": map[string]any{
			"tenant": map[string]any{"phone": "+254700000001"},
			"unit":   map[string]any{"code": "A-12"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[web.TriggerEventResponse](t, resp)
	assert.Equal(t, 1, result.FlowsExecuted)
	require.Len(t, result.ExecutionIDs, 1)

	messages := env.sent.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "+254700000001", messages[0].Recipient)
	assert.Equal(t, "Rent for A-12 is overdue", messages[0].Body)
}

func TestTriggerEventRequiresEventName(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := postJSON(t, env.app, "/api/flows/trigger", map[string]any{
		"eventData": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerEventEngineStopped(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	require.NoError(t, env.engine.Stop(context.Background()))

	resp := postJSON(t, env.app, "/api/flows/trigger", map[string]any{
		"eventName": "rent.overdue",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestTriggerSucceedsDespiteActionFailure(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	body := flowBody("failing")
	body["actions"] = []any{
		map[string]any{"type": "sms", "params": map[string]any{"to": "{{tenant.phone}}"}},
	}
	postJSON(t, env.app, "/api/flows", body)

	// Missing message parameter fails the action; the trigger call still 200s.
	resp := postJSON(t, env.app, "/api/flows/trigger", map[string]any{
		"eventName": "rent.overdue",
		"eventData": map[string]any{"tenant": map[string]any{"phone": "+254700000002"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[web.TriggerEventResponse](t, resp)
	assert.Equal(t, 1, result.FlowsExecuted)

	records := env.engine.History(1)
	require.Len(t, records, 1)
	assert.Equal(t, models.ExecutionStatusFailed, records[0].Status)
}

func TestRecentHistoryLimit(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	postJSON(t, env.app, "/api/flows", flowBody("late-rent-sms"))

	for range 3 {
		postJSON(t, env.app, "/api/flows/trigger", map[string]any{
			"eventName": "rent.overdue",
			"eventData": map[string]any{
				"tenant": map[string]any{"phone": "+254700000003"},
				"unit":   map[string]any{"code": "B-2"},
			},
		})
	}

	resp := do(t, env.app, http.MethodGet, "/api/flows/history/recent?limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	records := decode[[]models.ExecutionRecord](t, resp)
	assert.Len(t, records, 2)

	resp = do(t, env.app, http.MethodGet, "/api/flows/history/recent?limit=zero")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)
	postJSON(t, env.app, "/api/flows", flowBody("late-rent-sms"))

	postJSON(t, env.app, "/api/flows/trigger", map[string]any{
		"eventName": "rent.overdue",
		"eventData": map[string]any{
			"tenant": map[string]any{"phone": "+254700000004"},
			"unit":   map[string]any{"code": "C-7"},
		},
	})

	resp := do(t, env.app, http.MethodGet, "/api/flows/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decode[flow.EngineStats](t, resp)
	assert.True(t, stats.Running)
	assert.Equal(t, 1, stats.Flows)
	assert.Equal(t, int64(1), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.SuccessfulExecutions)
}
