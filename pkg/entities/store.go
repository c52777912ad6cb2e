package entities

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kodisha/flowd/pkg/eventbus"
	"github.com/kodisha/flowd/pkg/events"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// Store keeps contacts and tasks in memory and publishes lifecycle events.
// Flow actions are its main writers; the API and built-in flows read it.
type Store struct {
	mu        sync.RWMutex
	contacts  map[string]*Contact
	tasks     map[string]*Task
	publisher eventbus.Publisher
	logger    *slog.Logger
}

func NewStore(publisher eventbus.Publisher, logger *slog.Logger) *Store {
	return &Store{
		contacts:  make(map[string]*Contact),
		tasks:     make(map[string]*Task),
		publisher: publisher,
		logger:    logger.With("module", "entities"),
	}
}

// CreateContact stores the contact and publishes contact.created.
func (s *Store) CreateContact(ctx context.Context, contact *Contact) (*Contact, error) {
	if contact.Email == "" {
		return nil, errors.New("contact email is required")
	}

	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	s.mu.Lock()
	if _, exists := s.contacts[contact.ID]; exists {
		s.mu.Unlock()

		return nil, fmt.Errorf("contact %s already exists", contact.ID)
	}

	s.contacts[contact.ID] = contact
	s.mu.Unlock()

	s.publish(ctx, events.ContactCreated, map[string]any{
		"contact": contact.AsMap(),
	})

	return contact, nil
}

// UpdateContact merges attrs into the contact and publishes contact.updated.
func (s *Store) UpdateContact(ctx context.Context, id string, attrs map[string]any) (*Contact, error) {
	s.mu.Lock()

	contact, ok := s.contacts[id]
	if !ok {
		s.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}

	changed := make([]string, 0, len(attrs))

	for key, value := range attrs {
		switch key {
		case "name":
			if v, ok := value.(string); ok {
				contact.Name = v
			}
		case "email":
			if v, ok := value.(string); ok {
				contact.Email = v
			}
		case "phone":
			if v, ok := value.(string); ok {
				contact.Phone = v
			}
		default:
			if contact.Attributes == nil {
				contact.Attributes = make(map[string]any)
			}

			contact.Attributes[key] = value
		}

		changed = append(changed, key)
	}

	contact.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()

	s.publish(ctx, events.ContactUpdated, map[string]any{
		"contact": contact.AsMap(),
		"changed": changed,
	})

	return contact, nil
}

// TagContact appends a tag and publishes contact.tagged with the tag at the
// payload root so conditions can match on it directly.
func (s *Store) TagContact(ctx context.Context, id, tag string) (*Contact, error) {
	s.mu.Lock()

	contact, ok := s.contacts[id]
	if !ok {
		s.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}

	for _, existing := range contact.Tags {
		if existing == tag {
			s.mu.Unlock()

			return contact, nil
		}
	}

	contact.Tags = append(contact.Tags, tag)
	contact.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()

	s.publish(ctx, events.ContactTagged, map[string]any{
		"contact": contact.AsMap(),
		"tag":     tag,
	})

	return contact, nil
}

func (s *Store) ContactByID(id string) (*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}

	return contact, nil
}

func (s *Store) Contacts() []*Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contacts := make([]*Contact, 0, len(s.contacts))
	for _, contact := range s.contacts {
		contacts = append(contacts, contact)
	}

	return contacts
}

// CreateTask stores a follow-up task. Tasks do not publish events; flows
// create them, they never trigger flows.
func (s *Store) CreateTask(task *Task) *Task {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	task.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	return task
}

func (s *Store) TaskByID(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	return task, nil
}

func (s *Store) Tasks() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}

	return tasks
}

func (s *Store) publish(ctx context.Context, name string, data map[string]any) {
	if s.publisher == nil {
		return
	}

	event := events.NewDomainEvent(name, data)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish entity event", "event", name, "error", err)
	}
}
