package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestEvent(t *testing.T, repo *MemoryRepo, capacity int) *Event {
	t.Helper()
	event, err := repo.CreateEvent(context.Background(), &Event{
		Title:       "Go Meetup",
		Description: "Monthly gathering",
		Date:        time.Now().AddDate(0, 1, 0),
		Time:        "18:00",
		Location:    "Accra",
		Category:    CategoryMeetup,
		Capacity:    capacity,
	})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return event
}

func attendeeSet(t *testing.T, event *Event) map[primitive.ObjectID]bool {
	t.Helper()
	set := make(map[primitive.ObjectID]bool, len(event.Attendees))
	for _, a := range event.Attendees {
		if set[a] {
			t.Fatalf("duplicate attendee %s", a.Hex())
		}
		set[a] = true
	}
	return set
}

func TestReserveBothFitWithinCapacity(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	event := newTestEvent(t, repo, 2)

	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, u := range []primitive.ObjectID{userA, userB} {
		wg.Add(1)
		go func(i int, u primitive.ObjectID) {
			defer wg.Done()
			_, errs[i] = repo.Reserve(ctx, event.ID, u)
		}(i, u)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("reserve %d failed: %v", i, err)
		}
	}

	final, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("failed to re-read event: %v", err)
	}
	set := attendeeSet(t, final)
	if len(set) != 2 || !set[userA] || !set[userB] {
		t.Errorf("expected attendees {A, B}, got %v", final.Attendees)
	}
}

func TestReserveBoundaryCapacityOne(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	// Repeated trials: two simultaneous callers racing for a single slot.
	// Exactly one must win every time.
	for trial := 0; trial < 100; trial++ {
		event := newTestEvent(t, repo, 1)
		userA := primitive.NewObjectID()
		userB := primitive.NewObjectID()

		var success, full int32
		var wg sync.WaitGroup
		for _, u := range []primitive.ObjectID{userA, userB} {
			wg.Add(1)
			go func(u primitive.ObjectID) {
				defer wg.Done()
				_, err := repo.Reserve(ctx, event.ID, u)
				switch {
				case err == nil:
					atomic.AddInt32(&success, 1)
				case errors.Is(err, ErrCapacityExceeded):
					atomic.AddInt32(&full, 1)
				default:
					t.Errorf("trial %d: unexpected error: %v", trial, err)
				}
			}(u)
		}
		wg.Wait()

		if success != 1 || full != 1 {
			t.Fatalf("trial %d: expected 1 success and 1 rejection, got %d/%d", trial, success, full)
		}

		final, err := repo.GetEventByID(ctx, event.ID)
		if err != nil {
			t.Fatalf("trial %d: failed to re-read event: %v", trial, err)
		}
		if len(final.Attendees) != 1 {
			t.Fatalf("trial %d: attendees grew past capacity: %d", trial, len(final.Attendees))
		}
	}
}

func TestReserveInvariantUnderLoad(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	capacity := 5
	event := newTestEvent(t, repo, capacity)

	numRequests := 100
	var success, full, unexpected int32
	var wg sync.WaitGroup
	wg.Add(numRequests)

	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Reserve(ctx, event.ID, primitive.NewObjectID())
			switch {
			case err == nil:
				atomic.AddInt32(&success, 1)
			case errors.Is(err, ErrCapacityExceeded):
				atomic.AddInt32(&full, 1)
			default:
				atomic.AddInt32(&unexpected, 1)
			}
		}()
	}
	wg.Wait()

	if success != int32(capacity) {
		t.Errorf("expected exactly %d successes, got %d", capacity, success)
	}
	if full != int32(numRequests-capacity) {
		t.Errorf("expected exactly %d capacity rejections, got %d", numRequests-capacity, full)
	}
	if unexpected != 0 {
		t.Errorf("expected 0 unexpected errors, got %d", unexpected)
	}

	final, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("failed to re-read event: %v", err)
	}
	set := attendeeSet(t, final)
	if len(set) != capacity {
		t.Errorf("attendee count %d does not match capacity %d", len(set), capacity)
	}
}

func TestReserveIdempotence(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	event := newTestEvent(t, repo, 5)
	user := primitive.NewObjectID()

	first, err := repo.Reserve(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}

	_, err = repo.Reserve(ctx, event.ID, user)
	if !errors.Is(err, ErrAlreadyReserved) {
		t.Fatalf("second reserve: expected ErrAlreadyReserved, got %v", err)
	}

	final, err := repo.GetEventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("failed to re-read event: %v", err)
	}
	if len(final.Attendees) != len(first.Attendees) {
		t.Errorf("attendees changed after rejected duplicate: %d -> %d", len(first.Attendees), len(final.Attendees))
	}
}

func TestReserveCancelSymmetry(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	event := newTestEvent(t, repo, 3)

	existing := primitive.NewObjectID()
	if _, err := repo.Reserve(ctx, event.ID, existing); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	user := primitive.NewObjectID()
	if _, err := repo.Reserve(ctx, event.ID, user); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	after, err := repo.Cancel(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	set := attendeeSet(t, after)
	if len(set) != 1 || !set[existing] {
		t.Errorf("expected attendees restored to {existing}, got %v", after.Attendees)
	}
}

func TestCancelNonAttendee(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	event := newTestEvent(t, repo, 3)

	attending := primitive.NewObjectID()
	if _, err := repo.Reserve(ctx, event.ID, attending); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	after, err := repo.Cancel(ctx, event.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("cancel of a non-attendee should not error, got %v", err)
	}
	if len(after.Attendees) != 1 || after.Attendees[0] != attending {
		t.Errorf("attendees changed by no-op cancel: %v", after.Attendees)
	}
}

func TestReserveEventNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	_, err := repo.Reserve(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReserveAfterCancelReopensSlot(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	event := newTestEvent(t, repo, 1)

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	if _, err := repo.Reserve(ctx, event.ID, first); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := repo.Reserve(ctx, event.ID, second); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded while full, got %v", err)
	}
	if _, err := repo.Cancel(ctx, event.ID, first); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	after, err := repo.Reserve(ctx, event.ID, second)
	if err != nil {
		t.Fatalf("reserve after cancel failed: %v", err)
	}
	if len(after.Attendees) != 1 || after.Attendees[0] != second {
		t.Errorf("expected attendees {second}, got %v", after.Attendees)
	}
}
