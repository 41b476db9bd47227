package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	eventRepo models.EventRepo
	userRepo  models.UserRepo
}

func NewEventService(eventRepo models.EventRepo, userRepo models.UserRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, ownerID primitive.ObjectID) (*models.Event, error) {
	if ownerID.IsZero() {
		return nil, fmt.Errorf("invalid user ID")
	}
	event.CreatedBy = ownerID
	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("invalid event data provided: %v", err)
	}
	return es.eventRepo.CreateEvent(ctx, event)
}

func (es *EventService) GetEvents(ctx context.Context, category models.Category) ([]*models.Event, error) {
	if category != "" {
		switch category {
		case models.CategoryConference, models.CategoryWorkshop, models.CategoryMeetup,
			models.CategoryWebinar, models.CategorySocial:
		default:
			return nil, fmt.Errorf("unknown category: %s", category)
		}
	}
	return es.eventRepo.GetEvents(ctx, category)
}

// GetEventByID resolves the owner's public fields into the response. A missing
// owner record degrades to the bare id reference rather than failing the read.
func (es *EventService) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.EventDetail, error) {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := es.userRepo.GetUserByID(ctx, event.CreatedBy)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	detail := event.Detail(owner)
	return &detail, nil
}

var updatableEventFields = map[string]bool{
	"title":       true,
	"description": true,
	"date":        true,
	"time":        true,
	"location":    true,
	"category":    true,
	"capacity":    true,
	"image_url":   true,
}

func (es *EventService) UpdateEvent(ctx context.Context, id, requesterID primitive.ObjectID, fields map[string]interface{}) (*models.Event, error) {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != requesterID {
		return nil, models.ErrUnauthorized
	}

	for key := range fields {
		if !updatableEventFields[key] {
			delete(fields, key)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	if capacity, ok := fields["capacity"].(int); ok && capacity < 1 {
		return nil, fmt.Errorf("capacity must be a positive integer")
	}
	if category, ok := fields["category"].(models.Category); ok {
		switch category {
		case models.CategoryConference, models.CategoryWorkshop, models.CategoryMeetup,
			models.CategoryWebinar, models.CategorySocial:
		default:
			return nil, fmt.Errorf("unknown category: %s", category)
		}
	}

	return es.eventRepo.UpdateEvent(ctx, id, fields)
}

func (es *EventService) DeleteEvent(ctx context.Context, id, requesterID primitive.ObjectID) error {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatedBy != requesterID {
		return models.ErrUnauthorized
	}
	return es.eventRepo.DeleteEvent(ctx, id)
}

// Reserve admits the user to the event. The admission decision is made by the
// store's atomic conditional update, never by a read in this layer.
func (es *EventService) Reserve(ctx context.Context, eventID, userID primitive.ObjectID) (*models.Event, error) {
	if eventID.IsZero() || userID.IsZero() {
		return nil, fmt.Errorf("invalid event or user ID")
	}
	return es.eventRepo.Reserve(ctx, eventID, userID)
}

func (es *EventService) Cancel(ctx context.Context, eventID, userID primitive.ObjectID) (*models.Event, error) {
	if eventID.IsZero() || userID.IsZero() {
		return nil, fmt.Errorf("invalid event or user ID")
	}
	return es.eventRepo.Cancel(ctx, eventID, userID)
}
