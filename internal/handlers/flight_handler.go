package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

// FlightHandler handles flight persistence requests for a trip
type FlightHandler struct {
	tripRepository   *database.TripRepository
	flightRepository *database.FlightRepository
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(tripRepository *database.TripRepository, flightRepository *database.FlightRepository) *FlightHandler {
	return &FlightHandler{
		tripRepository:   tripRepository,
		flightRepository: flightRepository,
	}
}

// ownedTrip verifies the trip exists and belongs to the caller.
// Trips owned by other users are reported as not found.
func (h *FlightHandler) ownedTrip(c *gin.Context) (uuid.UUID, bool) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := tripID(c)
	if !ok {
		return uuid.Nil, false
	}

	if _, err := h.tripRepository.GetTripByID(id, userCtx.UserID); err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}

	return id, true
}

// ListFlights handles GET /api/v1/trips/:tripId/flights
func (h *FlightHandler) ListFlights(c *gin.Context) {
	id, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	flights, err := h.flightRepository.ListFlightsByTrip(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flights": flights,
		"count":   len(flights),
	})
}

// ReplaceFlightPair handles POST /api/v1/trips/:tripId/flights.
// The trip's previously saved flights are replaced by the submitted
// outbound/return pair in a single transaction.
func (h *FlightHandler) ReplaceFlightPair(c *gin.Context) {
	id, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	var req models.ReplaceFlightPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    "VALIDATION_ERROR",
		})
		return
	}

	outbound, ret, err := h.flightRepository.ReplaceFlightPair(id, req.Outbound, req.Return)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":     id,
		"outbound_id": outbound.ID,
		"return_id":   ret.ID,
	}).Info("Flight pair saved")

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Flights saved successfully",
		"outbound": outbound,
		"return":   ret,
	})
}

// DeleteFlight handles DELETE /api/v1/trips/:tripId/flights?flightId=...
// Without a flightId query parameter, every flight saved for the trip is
// removed.
func (h *FlightHandler) DeleteFlight(c *gin.Context) {
	id, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	raw := c.Query("flightId")
	if raw == "" {
		if err := h.flightRepository.DeleteTripFlights(id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Trip flights deleted successfully"})
		return
	}

	flightID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "flightId must be a valid UUID",
			Code:    "INVALID_FLIGHT_ID",
		})
		return
	}

	if err := h.flightRepository.DeleteFlight(id, flightID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight deleted successfully"})
}

// DeleteOutboundFlight handles DELETE /api/v1/trips/:tripId/flights/:flightId/outbound.
// Deleting an outbound leg detaches any return leg that references it
// before the row is removed.
func (h *FlightHandler) DeleteOutboundFlight(c *gin.Context) {
	h.deleteLeg(c, h.flightRepository.DeleteOutboundFlight)
}

// DeleteReturnFlight handles DELETE /api/v1/trips/:tripId/flights/:flightId/return
func (h *FlightHandler) DeleteReturnFlight(c *gin.Context) {
	h.deleteLeg(c, h.flightRepository.DeleteReturnFlight)
}

func (h *FlightHandler) deleteLeg(c *gin.Context, remove func(tripID, flightID uuid.UUID) error) {
	id, ok := h.ownedTrip(c)
	if !ok {
		return
	}

	flightID, err := uuid.Parse(c.Param("flightId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid flight ID",
			Code:    "INVALID_FLIGHT_ID",
		})
		return
	}

	if err := remove(id, flightID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flight deleted successfully"})
}
