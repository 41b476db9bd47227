package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gatherly/api/internal/helpers"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type eventPayload struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Category    string `json:"category" binding:"required,oneof=conference workshop meetup webinar social"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	ImageURL    string `json:"imageUrl"`
}

type eventUpdatePayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Category    *string `json:"category" binding:"omitempty,oneof=conference workshop meetup webinar social"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl"`
}

// parseEventDate accepts the client's date-input format plus full timestamps.
func parseEventDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func requireClaims(c *gin.Context) (*helpers.AuthClaims, primitive.ObjectID, bool) {
	claims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
		return nil, primitive.NilObjectID, false
	}
	userClaims, ok := claims.(*helpers.AuthClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user claims"))
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userClaims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid user ID in claims"))
		return nil, primitive.NilObjectID, false
	}
	return userClaims, userID, true
}

func requireEventID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(helpers.StringTrim(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyReserved), errors.Is(err, models.ErrCapacityExceeded):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func GetEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := models.Category(c.Query("category"))

		events, err := e.GetEvents(c.Request.Context(), category)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func GetEventByID(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := requireEventID(c)
		if !ok {
			return
		}

		event, err := e.GetEventByID(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(statusFromErr(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func CreateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := requireClaims(c)
		if !ok {
			return
		}

		var req eventPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		date, err := parseEventDate(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		event := &models.Event{
			Title:       req.Title,
			Description: req.Description,
			Date:        date,
			Time:        req.Time,
			Location:    req.Location,
			Category:    models.Category(req.Category),
			Capacity:    req.Capacity,
			ImageURL:    req.ImageURL,
		}

		created, err := e.CreateEvent(c.Request.Context(), event, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func UpdateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := requireClaims(c)
		if !ok {
			return
		}
		eventID, ok := requireEventID(c)
		if !ok {
			return
		}

		var req eventUpdatePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		fields := map[string]interface{}{}
		if req.Title != nil {
			fields["title"] = *req.Title
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Date != nil {
			date, err := parseEventDate(*req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
				return
			}
			fields["date"] = date
		}
		if req.Time != nil {
			fields["time"] = *req.Time
		}
		if req.Location != nil {
			fields["location"] = *req.Location
		}
		if req.Category != nil {
			fields["category"] = models.Category(*req.Category)
		}
		if req.Capacity != nil {
			fields["capacity"] = *req.Capacity
		}
		if req.ImageURL != nil {
			fields["image_url"] = *req.ImageURL
		}

		if len(fields) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("no fields to update"))
			return
		}

		updated, err := e.UpdateEvent(c.Request.Context(), eventID, userID, fields)
		if err != nil {
			c.JSON(statusFromErr(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := requireClaims(c)
		if !ok {
			return
		}
		eventID, ok := requireEventID(c)
		if !ok {
			return
		}

		if err := e.DeleteEvent(c.Request.Context(), eventID, userID); err != nil {
			c.JSON(statusFromErr(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Event removed"})
	}
}

func RsvpEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := requireClaims(c)
		if !ok {
			return
		}
		eventID, ok := requireEventID(c)
		if !ok {
			return
		}

		event, err := e.Reserve(c.Request.Context(), eventID, userID)
		if err != nil {
			c.JSON(statusFromErr(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func CancelRsvp(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := requireClaims(c)
		if !ok {
			return
		}
		eventID, ok := requireEventID(c)
		if !ok {
			return
		}

		event, err := e.Cancel(c.Request.Context(), eventID, userID)
		if err != nil {
			c.JSON(statusFromErr(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

type describePayload struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

func GenerateDescription(d *services.DescribeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !d.Enabled() {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("description drafting is not configured"))
			return
		}

		var req describePayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		if req.Title == "" || req.Category == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Title and Category are required"))
			return
		}

		text, err := d.GenerateDescription(c.Request.Context(), req.Title, req.Category, req.Location, req.Date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("Failed to generate description"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"description": text})
	}
}
