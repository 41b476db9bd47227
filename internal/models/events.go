package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryConference Category = "conference"
	CategoryWorkshop   Category = "workshop"
	CategoryMeetup     Category = "meetup"
	CategoryWebinar    Category = "webinar"
	CategorySocial     Category = "social"
)

// Event is the stored document. The schedule is deliberately split into a
// calendar date plus a display time string, matching the data already in the
// collection. Attendees is logically a set; cardinality never exceeds Capacity.
type Event struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title" validate:"required"`
	Description string               `bson:"description" json:"description" validate:"required"`
	Date        time.Time            `bson:"date" json:"date" validate:"required"`
	Time        string               `bson:"time" json:"time" validate:"required"`
	Location    string               `bson:"location" json:"location" validate:"required"`
	Category    Category             `bson:"category" json:"category" validate:"required,oneof=conference workshop meetup webinar social"`
	Capacity    int                  `bson:"capacity" json:"capacity" validate:"required,min=1"`
	ImageURL    string               `bson:"image_url" json:"imageUrl"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"createdBy"`
	Attendees   []primitive.ObjectID `bson:"attendees" json:"attendees"`
	CreatedAt   time.Time            `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time            `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (e *Event) HasAttendee(userID primitive.ObjectID) bool {
	for _, a := range e.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}

func (e *Event) IsFull() bool {
	return len(e.Attendees) >= e.Capacity
}

// OwnerRef is the owner reference as it appears on the wire: a bare hex id on
// most paths, an {id, name, email} object when the by-id read resolved the
// owner. The stored form is always the bare ObjectID.
type OwnerRef struct {
	ID       primitive.ObjectID
	Name     string
	Email    string
	Expanded bool
}

func BareOwner(id primitive.ObjectID) OwnerRef {
	return OwnerRef{ID: id}
}

func ExpandedOwner(u *User) OwnerRef {
	return OwnerRef{ID: u.ID, Name: u.Name, Email: u.Email, Expanded: true}
}

func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if !o.Expanded {
		return json.Marshal(o.ID)
	}
	return json.Marshal(struct {
		ID    primitive.ObjectID `json:"id"`
		Name  string             `json:"name"`
		Email string             `json:"email"`
	}{o.ID, o.Name, o.Email})
}

func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return fmt.Errorf("invalid owner id %q: %w", hex, err)
		}
		*o = OwnerRef{ID: id}
		return nil
	}
	var full struct {
		ID    primitive.ObjectID `json:"id"`
		Name  string             `json:"name"`
		Email string             `json:"email"`
	}
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("invalid owner reference: %w", err)
	}
	*o = OwnerRef{ID: full.ID, Name: full.Name, Email: full.Email, Expanded: true}
	return nil
}

// EventDetail is the by-id response shape: the event with the owner reference
// expanded. The outer CreatedBy shadows the embedded bare id on the wire.
type EventDetail struct {
	Event
	CreatedBy OwnerRef `json:"createdBy"`
}

func (e Event) Detail(owner *User) EventDetail {
	ref := BareOwner(e.CreatedBy)
	if owner != nil {
		ref = ExpandedOwner(owner)
	}
	return EventDetail{Event: e, CreatedBy: ref}
}
