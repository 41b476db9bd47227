package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gatherly/api/internal/container"
	"github.com/gatherly/api/internal/routes"
	"github.com/gin-gonic/gin"
)

func newTestServer() http.Handler {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appContainer := container.NewContainer(logger, nil, nil, nil, []byte("test-secret"))
	return routes.SetupRoutes(appContainer)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, h http.Handler, name, email string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "Str0ng!pass",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

func createEvent(t *testing.T, h http.Handler, token string, capacity int) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/events", token, map[string]interface{}{
		"title":       "Launch Party",
		"description": "Celebrating the release",
		"date":        "2026-10-01",
		"time":        "19:00",
		"location":    "Osu",
		"category":    "social",
		"capacity":    capacity,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: status %d, body %s", w.Code, w.Body.String())
	}
	var event struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return event.ID
}

func TestRsvpEndpointStatusMapping(t *testing.T) {
	h := newTestServer()
	ownerToken := registerUser(t, h, "Owner", "owner@example.com")
	guestToken := registerUser(t, h, "Guest", "guest@example.com")
	lateToken := registerUser(t, h, "Late", "late@example.com")

	eventID := createEvent(t, h, ownerToken, 1)

	// First RSVP takes the only slot.
	w := doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/rsvp", guestToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rsvp: status %d, body %s", w.Code, w.Body.String())
	}
	var updated struct {
		Attendees []string `json:"attendees"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode rsvp response: %v", err)
	}
	if len(updated.Attendees) != 1 {
		t.Errorf("expected 1 attendee, got %v", updated.Attendees)
	}

	// Same caller again: 400 with the duplicate message.
	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/rsvp", guestToken, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "already RSVPed") {
		t.Errorf("duplicate rsvp: status %d, body %s", w.Code, w.Body.String())
	}

	// Another caller on a full event: 400 with the capacity message.
	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/rsvp", lateToken, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "full capacity") {
		t.Errorf("full rsvp: status %d, body %s", w.Code, w.Body.String())
	}

	// Unknown event: 404.
	w = doJSON(t, h, http.MethodPut, "/api/events/64f1b2c3d4e5f6a7b8c9d0e1/rsvp", guestToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown event rsvp: status %d, body %s", w.Code, w.Body.String())
	}

	// No token: 401.
	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/rsvp", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated rsvp: status %d", w.Code)
	}

	// Cancel then the late caller fits.
	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/cancel", guestToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d, body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID+"/rsvp", lateToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("rsvp after cancel: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestOwnerGateOverHTTP(t *testing.T) {
	h := newTestServer()
	ownerToken := registerUser(t, h, "Owner", "owner@example.com")
	otherToken := registerUser(t, h, "Other", "other@example.com")

	eventID := createEvent(t, h, ownerToken, 10)

	w := doJSON(t, h, http.MethodPut, "/api/events/"+eventID, otherToken, map[string]string{"title": "Hijacked"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("non-owner update: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodDelete, "/api/events/"+eventID, otherToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("non-owner delete: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPut, "/api/events/"+eventID, ownerToken, map[string]string{"title": "Renamed"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Renamed") {
		t.Errorf("owner update: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodDelete, "/api/events/"+eventID, ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner delete: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestEventReadPaths(t *testing.T) {
	h := newTestServer()
	ownerToken := registerUser(t, h, "Owner", "owner@example.com")

	for i, date := range []string{"2026-12-01", "2026-11-01"} {
		w := doJSON(t, h, http.MethodPost, "/api/events", ownerToken, map[string]interface{}{
			"title":       fmt.Sprintf("Event %d", i),
			"description": "d",
			"date":        date,
			"time":        "10:00",
			"location":    "Accra",
			"category":    "meetup",
			"capacity":    5,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
		}
	}

	// Listing is public and sorted ascending by date.
	w := doJSON(t, h, http.MethodGet, "/api/events", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var events []struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(events) != 2 || events[0].Date > events[1].Date {
		t.Errorf("listing not sorted by date: %+v", events)
	}

	// The by-id read expands the owner.
	w = doJSON(t, h, http.MethodGet, "/api/events/"+events[0].ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get by id: status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"email":"owner@example.com"`) {
		t.Errorf("owner not expanded in by-id read: %s", w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/events/not-an-id", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/api/events/64f1b2c3d4e5f6a7b8c9d0e1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status %d", w.Code)
	}
}

func TestCreateEventValidationOverHTTP(t *testing.T) {
	h := newTestServer()
	token := registerUser(t, h, "Owner", "owner@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/events", token, map[string]interface{}{
		"title":       "Bad Category",
		"description": "d",
		"date":        "2026-10-01",
		"time":        "10:00",
		"location":    "Accra",
		"category":    "festival",
		"capacity":    5,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad category: status %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/api/events", token, map[string]interface{}{
		"title":       "Zero Capacity",
		"description": "d",
		"date":        "2026-10-01",
		"time":        "10:00",
		"location":    "Accra",
		"category":    "meetup",
		"capacity":    0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero capacity: status %d", w.Code)
	}
}

func TestDescribeDisabledWithoutKey(t *testing.T) {
	h := newTestServer()
	token := registerUser(t, h, "Owner", "owner@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/events/ai-generate", token, map[string]string{
		"title":    "Launch Party",
		"category": "social",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("describe without key: status %d, body %s", w.Code, w.Body.String())
	}
}
