package models

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is the fallback store for targets without an atomic conditional
// update primitive: Reserve's check-and-write runs under a mutex, which gives
// the same per-event atomicity the Mongo filter+update gives server-side. It
// backs local development without a database and the admission tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	events map[primitive.ObjectID]*Event
	users  map[primitive.ObjectID]*User
	emails map[string]primitive.ObjectID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		events: make(map[primitive.ObjectID]*Event),
		users:  make(map[primitive.ObjectID]*User),
		emails: make(map[string]primitive.ObjectID),
	}
}

func cloneEvent(e *Event) *Event {
	cp := *e
	cp.Attendees = append([]primitive.ObjectID{}, e.Attendees...)
	return &cp
}

func (m *MemoryRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event.BeforeCreate()
	m.events[event.ID] = cloneEvent(event)
	return event, nil
}

func (m *MemoryRepo) GetEvents(ctx context.Context, category Category) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := []*Event{}
	for _, e := range m.events {
		if category != "" && e.Category != category {
			continue
		}
		events = append(events, cloneEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (m *MemoryRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEvent(e), nil
}

func (m *MemoryRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				e.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				e.Description = v
			}
		case "date":
			if v, ok := value.(time.Time); ok {
				e.Date = v
			}
		case "time":
			if v, ok := value.(string); ok {
				e.Time = v
			}
		case "location":
			if v, ok := value.(string); ok {
				e.Location = v
			}
		case "category":
			if v, ok := value.(Category); ok {
				e.Category = v
			}
		case "capacity":
			if v, ok := value.(int); ok {
				e.Capacity = v
			}
		case "image_url":
			if v, ok := value.(string); ok {
				e.ImageURL = v
			}
		}
	}
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (m *MemoryRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// Reserve holds the store lock across the condition check and the append, so
// no two callers can both observe room on the same event.
func (m *MemoryRepo) Reserve(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	if e.HasAttendee(userID) {
		return nil, ErrAlreadyReserved
	}
	if e.IsFull() {
		return nil, ErrCapacityExceeded
	}
	e.Attendees = append(e.Attendees, userID)
	e.UpdatedAt = time.Now()
	return cloneEvent(e), nil
}

func (m *MemoryRepo) Cancel(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	for i, a := range e.Attendees {
		if a == userID {
			e.Attendees = append(e.Attendees[:i], e.Attendees[i+1:]...)
			e.UpdatedAt = time.Now()
			break
		}
	}
	return cloneEvent(e), nil
}

func (m *MemoryRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.emails[user.Email]; taken {
		return nil, ErrEmailTaken
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	m.users[user.ID] = &cp
	m.emails[user.Email] = user.ID
	return user, nil
}

func (m *MemoryRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MemoryRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
