// Package web provides the REST surface for flow management and manual
// triggering.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/kodisha/flowd/pkg/flow"
	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/persistence"
)

const defaultHistoryLimit = 50

// Refresher is notified after flow mutations so scheduled jobs stay in sync.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// APIHandlers serves the /api/flows endpoints. The store is optional; when
// present, registrations and deletions are mirrored into it.
type APIHandlers struct {
	engine    *flow.Engine
	store     persistence.FlowStore
	refresher Refresher
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	logger *slog.Logger,
	engine *flow.Engine,
	store persistence.FlowStore,
	refresher Refresher,
) *APIHandlers {
	return &APIHandlers{
		engine:    engine,
		store:     store,
		refresher: refresher,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.With("module", "web"),
	}
}

func (h *APIHandlers) ListFlows(c fiber.Ctx) error {
	return c.JSON(h.engine.Flows().List())
}

func (h *APIHandlers) GetStats(c fiber.Ctx) error {
	return c.JSON(h.engine.Stats())
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	id := c.Params("flowId")

	def, ok := h.engine.Flows().Get(id)
	if !ok {
		return notFound(c, "Flow not found: "+id)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var body map[string]any
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := validateFlowBody(body); err != nil {
		return badRequest(c, err.Error())
	}

	var def models.FlowDefinition
	if err := json.Unmarshal(c.Body(), &def); err != nil {
		return badRequest(c, "Invalid flow definition: "+err.Error())
	}

	if err := h.validator.Struct(def); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.engine.Flows().Register(&def); err != nil {
		if errors.Is(err, flow.ErrDuplicateFlowID) || flow.IsValidationError(err) {
			return badRequest(c, err.Error())
		}

		return internalError(c, err)
	}

	h.persist(c.Context(), &def)
	h.refresh(c.Context())

	return c.Status(fiber.StatusCreated).JSON(def)
}

func (h *APIHandlers) EnableFlow(c fiber.Ctx) error {
	return h.setEnabled(c, true)
}

func (h *APIHandlers) DisableFlow(c fiber.Ctx) error {
	return h.setEnabled(c, false)
}

func (h *APIHandlers) setEnabled(c fiber.Ctx, enabled bool) error {
	id := c.Params("flowId")

	var (
		def *models.FlowDefinition
		err error
	)

	if enabled {
		def, err = h.engine.Flows().Enable(id)
	} else {
		def, err = h.engine.Flows().Disable(id)
	}

	if err != nil {
		return badRequest(c, err.Error())
	}

	h.persist(c.Context(), def)
	h.refresh(c.Context())

	return c.JSON(def)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("flowId")

	if err := h.engine.Flows().Unregister(id); err != nil {
		return badRequest(c, err.Error())
	}

	if h.store != nil {
		if err := h.store.DeleteFlow(c.Context(), id); err != nil && !persistence.IsFlowNotFound(err) {
			h.logger.Warn("Failed to delete flow from store", "flow_id", id, "error", err)
		}
	}

	h.refresh(c.Context())

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) RecentHistory(c fiber.Ctx) error {
	limit := defaultHistoryLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return badRequest(c, "Invalid limit: "+limitStr)
		}

		limit = parsed
	}

	records := h.engine.History(limit)
	if records == nil {
		records = []*models.ExecutionRecord{}
	}

	return c.JSON(records)
}

func (h *APIHandlers) TriggerEvent(c fiber.Ctx) error {
	var req TriggerEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "eventName is required")
	}

	records, err := h.engine.TriggerEvent(c.Context(), req.EventName, req.EventData)
	if err != nil {
		if errors.Is(err, flow.ErrEngineNotRunning) {
			return serviceUnavailable(c, err.Error())
		}

		return internalError(c, err)
	}

	// Dispatch succeeded; individual action failures are visible only through
	// the history and stats endpoints.
	response := TriggerEventResponse{
		EventName:     req.EventName,
		FlowsExecuted: len(records),
		ExecutionIDs:  make([]string, 0, len(records)),
	}

	for _, record := range records {
		response.ExecutionIDs = append(response.ExecutionIDs, record.ID)
	}

	return c.JSON(response)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	actionsCheck, actionsOk := h.engine.Actions().HealthCheck()
	engineOk := h.engine.Running()

	storeOk := true
	if h.store != nil {
		storeOk = h.store.HealthCheck(c.Context()) == nil
	}

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if actionsOk && engineOk && storeOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"engine":  fiber.Map{"running": engineOk},
			"actions": actionsCheck,
			"store":   fiber.Map{"healthy": storeOk},
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) persist(ctx context.Context, def *models.FlowDefinition) {
	if h.store == nil {
		return
	}

	if err := h.store.SaveFlow(ctx, def); err != nil {
		h.logger.Warn("Failed to persist flow", "flow_id", def.ID, "error", err)
	}
}

func (h *APIHandlers) refresh(ctx context.Context) {
	if h.refresher == nil {
		return
	}

	if err := h.refresher.Refresh(ctx); err != nil {
		h.logger.Warn("Failed to refresh scheduler", "error", err)
	}
}
