// Package entities holds the lightweight contact and task records the
// automation actions read and write. Lifecycle changes publish domain events
// so flows can react to them.
package entities

import "time"

// Contact is a CRM record: a tenant, owner, buyer lead or vendor.
type Contact struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Task is a follow-up item created for a team member, usually by a flow.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	RelatedTo   string     `json:"related_to,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AsMap renders the contact as the loosely typed payload shape used in event
// data and template contexts.
func (c *Contact) AsMap() map[string]any {
	m := map[string]any{
		"id":    c.ID,
		"name":  c.Name,
		"email": c.Email,
	}

	if c.Phone != "" {
		m["phone"] = c.Phone
	}

	if len(c.Tags) > 0 {
		tags := make([]any, len(c.Tags))
		for i, tag := range c.Tags {
			tags[i] = tag
		}

		m["tags"] = tags
	}

	for k, v := range c.Attributes {
		m[k] = v
	}

	return m
}
