package web

// TriggerEventRequest is the body of POST /api/flows/trigger.
type TriggerEventRequest struct {
	EventName string         `json:"eventName" validate:"required"`
	EventData map[string]any `json:"eventData"`
}

// TriggerEventResponse reports dispatch results. Per-action failures are not
// surfaced here; the history and stats endpoints carry them.
type TriggerEventResponse struct {
	EventName     string   `json:"eventName"`
	FlowsExecuted int      `json:"flowsExecuted"`
	ExecutionIDs  []string `json:"executionIds"`
}
