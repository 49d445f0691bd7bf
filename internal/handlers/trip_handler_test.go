package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/middleware"
)

// setupTripRouter wires a trip handler behind a stub auth middleware that
// injects the given user
func setupTripRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewTripRepository(&database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")})
	handler := NewTripHandler(repo)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{UserID: userID, Email: "jane@example.com"})
		c.Next()
	})
	router.POST("/trips", handler.CreateTrip)
	router.GET("/trips", handler.ListTrips)
	router.GET("/trips/:tripId", handler.GetTrip)
	router.PUT("/trips/:tripId", handler.UpdateTrip)
	router.DELETE("/trips/:tripId", handler.DeleteTrip)

	return router, mock
}

func tripResultRows(tripID, userID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "title", "departure", "destination",
		"start_date", "end_date", "budget", "created_at", "updated_at",
	}).AddRow(tripID, userID, "Tokyo Spring", "New York (JFK)", "Tokyo (NRT)",
		now, now.Add(7*24*time.Hour), nil, now, now)
}

func noFlightRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "trip_id", "airline", "flight_number", "departure", "arrival",
		"cost", "booked", "booking_token", "is_return", "outbound_flight_id",
		"created_at",
	})
}

func TestCreateTripHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		router, mock := setupTripRouter(t, userID)

		mock.ExpectExec(`INSERT INTO trips`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body := `{
			"title": "Tokyo Spring",
			"departure": "New York (JFK)",
			"destination": "Tokyo (NRT)",
			"start_date": "2026-04-01",
			"end_date": "2026-04-08",
			"budget": "2500"
		}`
		req := httptest.NewRequest("POST", "/trips", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Tokyo Spring")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("End Before Start", func(t *testing.T) {
		router, _ := setupTripRouter(t, userID)

		body := `{
			"title": "Tokyo Spring",
			"departure": "NYC",
			"destination": "Tokyo",
			"start_date": "2026-04-08",
			"end_date": "2026-04-01"
		}`
		req := httptest.NewRequest("POST", "/trips", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "end_date")
	})

	t.Run("Missing Required Fields", func(t *testing.T) {
		router, _ := setupTripRouter(t, userID)

		req := httptest.NewRequest("POST", "/trips", strings.NewReader(`{"title": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Non Numeric Budget", func(t *testing.T) {
		router, _ := setupTripRouter(t, userID)

		body := `{
			"title": "Tokyo Spring",
			"departure": "NYC",
			"destination": "Tokyo",
			"start_date": "2026-04-01",
			"end_date": "2026-04-08",
			"budget": "lots"
		}`
		req := httptest.NewRequest("POST", "/trips", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_BUDGET")
	})
}

func TestGetTripHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		router, mock := setupTripRouter(t, userID)
		tripID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs(tripID, userID).
			WillReturnRows(tripResultRows(tripID, userID))
		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE trip_id = \$1`).
			WithArgs(tripID).
			WillReturnRows(noFlightRows())

		req := httptest.NewRequest("GET", "/trips/"+tripID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tripID.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		router, mock := setupTripRouter(t, userID)
		tripID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs(tripID, userID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "title", "departure", "destination",
				"start_date", "end_date", "budget", "created_at", "updated_at",
			}))

		req := httptest.NewRequest("GET", "/trips/"+tripID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("Malformed Trip ID", func(t *testing.T) {
		router, _ := setupTripRouter(t, userID)

		req := httptest.NewRequest("GET", "/trips/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TRIP_ID")
	})
}

func TestDeleteTripHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		router, mock := setupTripRouter(t, userID)
		tripID := uuid.New()

		mock.ExpectExec(`DELETE FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs(tripID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest("DELETE", "/trips/"+tripID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Someone Elses Trip Is Not Found", func(t *testing.T) {
		router, mock := setupTripRouter(t, userID)
		tripID := uuid.New()

		mock.ExpectExec(`DELETE FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs(tripID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest("DELETE", "/trips/"+tripID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
