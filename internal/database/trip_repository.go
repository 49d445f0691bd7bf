package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

// TripRepository handles trip database operations.
// Every read and write is scoped by (id, user_id) so a trip that exists but
// belongs to someone else is reported exactly like a trip that doesn't exist.
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{
		db: db,
	}
}

// CreateTrip creates a new trip for the given user
func (r *TripRepository) CreateTrip(userID uuid.UUID, title, departure, destination string, startDate, endDate time.Time, budget *float64) (*models.Trip, error) {
	trip := &models.Trip{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Departure:   departure,
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      budget,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Flights:     []*models.Flight{},
	}

	query := `
		INSERT INTO trips (
			id, user_id, title, departure, destination,
			start_date, end_date, budget, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		query,
		trip.ID,
		trip.UserID,
		trip.Title,
		trip.Departure,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		trip.Budget,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	return trip, nil
}

// GetTripByID retrieves a trip owned by the given user, with its flights loaded
func (r *TripRepository) GetTripByID(id, userID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip

	query := `
		SELECT id, user_id, title, departure, destination,
		       start_date, end_date, budget, created_at, updated_at
		FROM trips
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.Get(&trip, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	flights, err := r.listFlights(trip.ID)
	if err != nil {
		return nil, err
	}
	trip.Flights = flights

	return &trip, nil
}

// ListTripsByUser retrieves all trips for a user, newest first
func (r *TripRepository) ListTripsByUser(userID uuid.UUID) ([]*models.Trip, error) {
	var trips []*models.Trip

	query := `
		SELECT id, user_id, title, departure, destination,
		       start_date, end_date, budget, created_at, updated_at
		FROM trips
		WHERE user_id = $1
		ORDER BY start_date ASC, created_at DESC
	`

	err := r.db.Select(&trips, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	for _, trip := range trips {
		flights, err := r.listFlights(trip.ID)
		if err != nil {
			return nil, err
		}
		trip.Flights = flights
	}

	return trips, nil
}

// UpdateTrip performs a full-field update of a trip owned by the given user
func (r *TripRepository) UpdateTrip(id, userID uuid.UUID, title, departure, destination string, startDate, endDate time.Time, budget *float64) (*models.Trip, error) {
	query := `
		UPDATE trips
		SET title = $1,
		    departure = $2,
		    destination = $3,
		    start_date = $4,
		    end_date = $5,
		    budget = $6,
		    updated_at = $7
		WHERE id = $8 AND user_id = $9
	`

	result, err := r.db.Exec(query, title, departure, destination, startDate, endDate, budget, time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
	}

	return r.GetTripByID(id, userID)
}

// DeleteTrip deletes a trip owned by the given user. Flight rows cascade via
// the trip_id foreign key.
func (r *TripRepository) DeleteTrip(id, userID uuid.UUID) error {
	query := `DELETE FROM trips WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("trip %s: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

// listFlights loads the flight rows for a trip, outbound leg first
func (r *TripRepository) listFlights(tripID uuid.UUID) ([]*models.Flight, error) {
	flights := []*models.Flight{}

	query := `
		SELECT id, trip_id, airline, flight_number, departure, arrival,
		       cost, booked, booking_token, is_return, outbound_flight_id,
		       created_at
		FROM flights
		WHERE trip_id = $1
		ORDER BY is_return ASC, departure ASC
	`

	err := r.db.Select(&flights, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip flights: %w", err)
	}

	return flights, nil
}
