package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvents(ctx context.Context, category Category) ([]*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error

	// Reserve adds userID to the event's attendees through a single atomic
	// conditional update: the capacity check, the duplicate check and the
	// mutation are evaluated as one operation by the store. It never decides
	// the write from a prior read.
	Reserve(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error)

	// Cancel removes userID from the attendees if present. Removal only
	// shrinks the set, so no condition is needed.
	Cancel(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error)
}

func (e *Event) BeforeCreate() {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Attendees == nil {
		e.Attendees = []primitive.ObjectID{}
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	event.BeforeCreate()
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("error inserting event: %v", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEvents(ctx context.Context, category Category) ([]*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events: %v", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %v", err)
	}
	return events, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding event: %v", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	fields["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating event: %v", err)
	}
	return &updated, nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting event: %v", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reserve runs the admission as one server-side filter-and-mutate: the event
// matches only while userID is absent from attendees AND the attendee count is
// below capacity, and $addToSet lands in the same operation. Two concurrent
// callers racing for the last slot cannot both match.
func (mdb *MongodbRepo) Reserve(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id":       eventID,
		"attendees": bson.M{"$ne": userID},
		"$expr":     bson.M{"$lt": bson.A{bson.M{"$size": "$attendees"}, "$capacity"}},
	}
	update := bson.M{
		"$addToSet": bson.M{"attendees": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error reserving slot: %v", err)
	}

	// The condition was false; the write definitively did not happen. Re-read
	// only to pick an error message — another writer may have moved the event
	// since, so the reported reason can be momentarily imprecise.
	event, err := mdb.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HasAttendee(userID) {
		return nil, ErrAlreadyReserved
	}
	return nil, ErrCapacityExceeded
}

func (mdb *MongodbRepo) Cancel(ctx context.Context, eventID, userID primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Event
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": eventID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error cancelling reservation: %v", err)
	}
	return &updated, nil
}

// EnsureIndexes creates the indexes the repo relies on: the ascending date
// index backing the default listing order and the unique email index backing
// signup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	events, err := mdb.GetCollection(ctx, DBName, EventsCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetName("date_idx"),
	})
	if err != nil {
		return fmt.Errorf("error creating event indexes: %v", err)
	}

	users, err := mdb.GetCollection(ctx, DBName, UsersCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("error creating user indexes: %v", err)
	}
	return nil
}
