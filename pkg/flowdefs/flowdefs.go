// Package flowdefs ships the automation flows kodisha runs out of the box.
// Deployments can disable or replace any of them through the API.
package flowdefs

import (
	"github.com/kodisha/flowd/pkg/events"
	"github.com/kodisha/flowd/pkg/models"
)

// BuiltIn returns the default flow set. Each call returns fresh values so
// callers can mutate their copies safely.
func BuiltIn() []*models.FlowDefinition {
	return []*models.FlowDefinition{
		welcomeEmail(),
		firstTimeBuyerCampaign(),
		paymentReceipt(),
		maintenanceIntake(),
		overdueRentReminder(),
	}
}

func welcomeEmail() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:          "welcome-email",
		Name:        "Welcome email for new contacts",
		Description: "Sends a welcome email as soon as a contact is created with an email address.",
		Trigger:     models.Trigger{Event: events.ContactCreated},
		Conditions: []models.Condition{
			{Field: "contact.email", Operator: "exists"},
		},
		Actions: []models.ActionSpec{
			{
				Type: "email",
				Params: map[string]any{
					"to":      "{{contact.email}}",
					"subject": "Welcome to Kodisha, {{contact.name}}",
					"body":    "Hi {{contact.name}}, your account is ready.",
				},
			},
		},
		Enabled: true,
	}
}

func firstTimeBuyerCampaign() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:          "first-time-buyer-campaign",
		Name:        "First-time buyer nurture campaign",
		Description: "Kicks off the buyer education sequence when a lead is tagged first-time-buyer.",
		Trigger:     models.Trigger{Event: events.ContactTagged},
		Conditions: []models.Condition{
			{Field: "tag", Operator: "equals", Value: "first-time-buyer"},
		},
		Actions: []models.ActionSpec{
			{
				Type: "email",
				Params: map[string]any{
					"to":       "{{contact.email}}",
					"subject":  "Your home buying journey starts here",
					"template": "first_time_buyer_welcome",
				},
			},
			{
				Type: "task",
				Params: map[string]any{
					"title":       "Call new buyer lead {{contact.name}}",
					"assign_to":   "sales",
					"related_to":  "{{contact.id}}",
					"due_in_days": 1,
				},
			},
			{
				Type:         "email",
				DelayMinutes: 2880,
				Params: map[string]any{
					"to":       "{{contact.email}}",
					"subject":  "Mortgage basics for first-time buyers",
					"template": "first_time_buyer_financing",
				},
			},
		},
		Enabled: true,
	}
}

func paymentReceipt() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:          "payment-receipt",
		Name:        "Rent payment receipt",
		Description: "Emails a receipt and notifies the finance channel on every successful payment.",
		Trigger:     models.Trigger{Event: events.PaymentReceived},
		Conditions: []models.Condition{
			{Field: "payment.amount", Operator: "greater_than", Value: 0},
		},
		Actions: []models.ActionSpec{
			{
				Type: "email",
				Params: map[string]any{
					"to":      "{{tenant.email}}",
					"subject": "Payment received",
					"body":    "We received your payment of {{payment.amount}} for {{unit.code}}.",
				},
			},
			{
				Type: "notify",
				Params: map[string]any{
					"channel": "finance",
					"message": "Payment of {{payment.amount}} received for unit {{unit.code}}",
				},
			},
		},
		Enabled: true,
	}
}

func maintenanceIntake() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:          "maintenance-intake",
		Name:        "Maintenance request intake",
		Description: "Acknowledges a new maintenance request and opens a vendor follow-up task.",
		Trigger:     models.Trigger{Event: events.MaintenanceCreated},
		Actions: []models.ActionSpec{
			{
				Type: "sms",
				Params: map[string]any{
					"to":      "{{tenant.phone}}",
					"message": "We received your maintenance request for {{unit.code}} and will follow up shortly.",
				},
			},
			{
				Type: "task",
				Params: map[string]any{
					"title":       "Dispatch vendor for {{request.category}} at {{unit.code}}",
					"assign_to":   "maintenance-team",
					"related_to":  "{{request.id}}",
					"due_in_days": 1,
				},
			},
		},
		Enabled: true,
	}
}

func overdueRentReminder() *models.FlowDefinition {
	return &models.FlowDefinition{
		ID:          "overdue-rent-reminder",
		Name:        "Overdue rent morning sweep",
		Description: "Runs every morning and posts the overdue summary to the collections channel.",
		Trigger: models.Trigger{
			Type:     models.TriggerTypeScheduled,
			Schedule: "0 8 * * *",
		},
		Actions: []models.ActionSpec{
			{
				Type: "notify",
				Params: map[string]any{
					"channel": "collections",
					"message": "Daily overdue rent sweep started at {{event.triggered_at}}",
				},
			},
			{
				Type: "log",
				Params: map[string]any{
					"message": "overdue rent sweep dispatched",
				},
			},
		},
		Enabled: true,
	}
}
