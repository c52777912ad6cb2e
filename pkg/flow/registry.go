package flow

import (
	"fmt"
	"sync"
	"time"

	"github.com/kodisha/flowd/pkg/models"
)

type flowEntry struct {
	def   *models.FlowDefinition
	stats models.FlowStats
}

// Registry stores flow definitions in insertion order. Flow ids are unique;
// registering a duplicate fails instead of overwriting.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]*flowEntry
	order []string
}

func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*flowEntry)}
}

// Register validates and stores a definition. The id must be unique, the
// trigger must specify exactly one mode, and the action list must be
// non-empty with a type on every entry. Whether each action type has a
// handler is checked at dispatch time, so flows and handlers may register
// in any order.
func (r *Registry) Register(def *models.FlowDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.flows[def.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFlowID, def.ID)
	}

	now := time.Now().UTC()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}

	def.UpdatedAt = now

	r.flows[def.ID] = &flowEntry{def: def}
	r.order = append(r.order, def.ID)

	return nil
}

// Unregister removes a flow and its statistics.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.flows[id]; !exists {
		return fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}

	delete(r.flows, id)

	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}

// Enable marks a flow as matchable again.
func (r *Registry) Enable(id string) (*models.FlowDefinition, error) {
	return r.setEnabled(id, true)
}

// Disable retains the flow but excludes it from event matching.
func (r *Registry) Disable(id string) (*models.FlowDefinition, error) {
	return r.setEnabled(id, false)
}

func (r *Registry) setEnabled(id string, enabled bool) (*models.FlowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.flows[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}

	entry.def.Enabled = enabled
	entry.def.UpdatedAt = time.Now().UTC()

	return entry.def, nil
}

// Get returns the flow definition, or false when the id is unknown.
func (r *Registry) Get(id string) (*models.FlowDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.flows[id]
	if !exists {
		return nil, false
	}

	return entry.def, true
}

// List returns all definitions in registration order.
func (r *Registry) List() []*models.FlowDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.FlowDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.flows[id].def)
	}

	return out
}

// Matching returns the enabled event-driven flows subscribed to eventName,
// in registration order.
func (r *Registry) Matching(eventName string) []*models.FlowDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.FlowDefinition

	for _, id := range r.order {
		def := r.flows[id].def
		if def.Enabled && !def.Trigger.Scheduled() && def.Trigger.Event == eventName {
			out = append(out, def)
		}
	}

	return out
}

// Scheduled returns the enabled time-driven flows in registration order.
func (r *Registry) Scheduled() []*models.FlowDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.FlowDefinition

	for _, id := range r.order {
		def := r.flows[id].def
		if def.Enabled && def.Trigger.Scheduled() {
			out = append(out, def)
		}
	}

	return out
}

// Stats returns a copy of the flow's running statistics.
func (r *Registry) Stats(id string) (models.FlowStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.flows[id]
	if !exists {
		return models.FlowStats{}, false
	}

	return entry.stats, true
}

func (r *Registry) recordExecution(record *models.ExecutionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.flows[record.FlowID]
	if !exists {
		// Flow was unregistered while executing; nothing to fold the result into.
		return
	}

	entry.stats.Record(record.Status, record.TriggeredAt, record.DurationMs)
}

func validateDefinition(def *models.FlowDefinition) error {
	if def == nil || def.ID == "" {
		return ErrMissingFlowID
	}

	eventDriven := def.Trigger.Event != ""
	scheduled := def.Trigger.Scheduled() && def.Trigger.Schedule != ""

	if eventDriven == scheduled {
		return fmt.Errorf("%w (flow %s)", ErrInvalidTrigger, def.ID)
	}

	if len(def.Actions) == 0 {
		return fmt.Errorf("%w (flow %s)", ErrNoActions, def.ID)
	}

	for i, action := range def.Actions {
		if action.Type == "" {
			return fmt.Errorf("%w (flow %s, action %d)", ErrMissingActionType, def.ID, i)
		}
	}

	return nil
}
