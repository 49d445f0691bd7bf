package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wanderplan/trip-planner-backend/internal/middleware"
	"github.com/wanderplan/trip-planner-backend/pkg/flightsearch"
)

// SearchHandler proxies flight searches to the external aggregator
type SearchHandler struct {
	client *flightsearch.Client
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(client *flightsearch.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// SearchFlights handles POST /api/v1/flights/search.
// An empty offer list is a successful response, not an error.
func (h *SearchHandler) SearchFlights(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req flightsearch.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	offers, err := h.client.Search(req)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userCtx.UserID,
		"origin":      req.Origin,
		"destination": req.Destination,
		"results":     len(offers),
	}).Info("Flight search completed")

	c.JSON(http.StatusOK, gin.H{
		"flights": offers,
		"count":   len(offers),
	})
}
