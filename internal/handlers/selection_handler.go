package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/internal/services"
	"github.com/wanderplan/trip-planner-backend/internal/workflow"
)

// SelectionHandler exposes the flight selection workflow over HTTP
type SelectionHandler struct {
	selectionService *services.SelectionService
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(selectionService *services.SelectionService) *SelectionHandler {
	return &SelectionHandler{selectionService: selectionService}
}

// SelectOfferRequest picks an offer from the current result list by index
type SelectOfferRequest struct {
	Index *int `json:"index" binding:"required"`
}

// ConfirmRequest finalizes the selected pair. Each leg can be marked as
// booked independently; booked legs get a booking URL in the response.
type ConfirmRequest struct {
	BookOutbound bool `json:"book_outbound"`
	BookReturn   bool `json:"book_return"`
}

func (h *SelectionHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := tripID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	return userCtx.UserID, id, true
}

func stateResponse(c *gin.Context, state workflow.State) {
	c.JSON(http.StatusOK, gin.H{"selection": state})
}

// GetState handles GET /api/v1/trips/:tripId/selection
func (h *SelectionHandler) GetState(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	state, err := h.selectionService.State(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	stateResponse(c, state)
}

// SearchOutbound handles POST /api/v1/trips/:tripId/selection/search
func (h *SelectionHandler) SearchOutbound(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	state, err := h.selectionService.SearchOutbound(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	stateResponse(c, state)
}

// SelectOutbound handles POST /api/v1/trips/:tripId/selection/outbound
func (h *SelectionHandler) SelectOutbound(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	var req SelectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "index is required",
		})
		return
	}

	state, err := h.selectionService.SelectOutbound(userID, id, *req.Index)
	if err != nil {
		respondError(c, err)
		return
	}

	stateResponse(c, state)
}

// SelectReturn handles POST /api/v1/trips/:tripId/selection/return
func (h *SelectionHandler) SelectReturn(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	var req SelectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "index is required",
		})
		return
	}

	state, err := h.selectionService.SelectReturn(userID, id, *req.Index)
	if err != nil {
		respondError(c, err)
		return
	}

	stateResponse(c, state)
}

// Confirm handles POST /api/v1/trips/:tripId/selection/confirm
func (h *SelectionHandler) Confirm(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	result, state, err := h.selectionService.Confirm(userID, id, req.BookOutbound, req.BookReturn)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"trip_id": id,
		"user_id": userID,
	}).Info("Flight pair confirmed")

	c.JSON(http.StatusOK, gin.H{
		"message":              "Flights saved successfully",
		"outbound":             result.Outbound,
		"return":               result.Return,
		"outbound_booking_url": result.OutboundBookingURL,
		"return_booking_url":   result.ReturnBookingURL,
		"selection":            state,
	})
}

// Cancel handles POST /api/v1/trips/:tripId/selection/cancel
func (h *SelectionHandler) Cancel(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	state, err := h.selectionService.Cancel(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	stateResponse(c, state)
}
