package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

// TripHandler handles trip CRUD requests
type TripHandler struct {
	tripRepository *database.TripRepository
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripRepository *database.TripRepository) *TripHandler {
	return &TripHandler{tripRepository: tripRepository}
}

// parseBudget converts the optional budget string into a float.
// An absent or empty budget is valid and stored as NULL.
func parseBudget(raw *string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// tripID parses the :tripId path parameter
func tripID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid trip ID",
			Code:    "INVALID_TRIP_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// CreateTrip handles POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "title, departure, destination, start_date and end_date are required",
		})
		return
	}

	start, end, err := models.ParseTripDates(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    "INVALID_DATES",
		})
		return
	}

	budget, err := parseBudget(req.Budget)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "budget must be a number",
			Code:    "INVALID_BUDGET",
		})
		return
	}

	trip, err := h.tripRepository.CreateTrip(
		userCtx.UserID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Departure),
		strings.TrimSpace(req.Destination),
		start, end, budget,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": trip.ID,
		"user_id": userCtx.UserID,
	}).Info("Trip created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trip created successfully",
		"trip":    trip,
	})
}

// ListTrips handles GET /api/v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	trips, err := h.tripRepository.ListTripsByUser(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trips": trips,
		"count": len(trips),
	})
}

// GetTrip handles GET /api/v1/trips/:tripId
func (h *TripHandler) GetTrip(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripRepository.GetTripByID(id, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// UpdateTrip handles PUT /api/v1/trips/:tripId
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := tripID(c)
	if !ok {
		return
	}

	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "title, departure, destination, start_date and end_date are required",
		})
		return
	}

	start, end, err := models.ParseTripDates(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    "INVALID_DATES",
		})
		return
	}

	budget, err := parseBudget(req.Budget)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "budget must be a number",
			Code:    "INVALID_BUDGET",
		})
		return
	}

	trip, err := h.tripRepository.UpdateTrip(
		id, userCtx.UserID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Departure),
		strings.TrimSpace(req.Destination),
		start, end, budget,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trip updated successfully",
		"trip":    trip,
	})
}

// DeleteTrip handles DELETE /api/v1/trips/:tripId
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := tripID(c)
	if !ok {
		return
	}

	if err := h.tripRepository.DeleteTrip(id, userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": id,
		"user_id": userCtx.UserID,
	}).Info("Trip deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted successfully"})
}
