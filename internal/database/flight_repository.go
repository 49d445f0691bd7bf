package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

// FlightRepository handles flight database operations.
// Callers must have already resolved trip ownership through TripRepository;
// all operations here are scoped by trip_id only.
type FlightRepository struct {
	db DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db DB) *FlightRepository {
	return &FlightRepository{
		db: db,
	}
}

const flightColumns = `id, trip_id, airline, flight_number, departure, arrival,
	       cost, booked, booking_token, is_return, outbound_flight_id,
	       created_at`

// GetFlightByID retrieves one flight belonging to the given trip
func (r *FlightRepository) GetFlightByID(tripID, flightID uuid.UUID) (*models.Flight, error) {
	var flight models.Flight

	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE id = $1 AND trip_id = $2
	`

	err := r.db.Get(&flight, query, flightID, tripID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("flight %s: %w", flightID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	return &flight, nil
}

// ListFlightsByTrip retrieves all flight rows for a trip, outbound leg first
func (r *FlightRepository) ListFlightsByTrip(tripID uuid.UUID) ([]*models.Flight, error) {
	flights := []*models.Flight{}

	query := `
		SELECT ` + flightColumns + `
		FROM flights
		WHERE trip_id = $1
		ORDER BY is_return ASC, departure ASC
	`

	err := r.db.Select(&flights, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	return flights, nil
}

// ReplaceFlightPair atomically replaces a trip's flight pair: it deletes all
// existing flight rows for the trip, inserts the outbound leg, then inserts
// the return leg with its back-reference set to the new outbound leg. If any
// step fails the transaction rolls back and no partial pair is persisted.
func (r *FlightRepository) ReplaceFlightPair(tripID uuid.UUID, outbound, ret models.FlightLegData) (*models.Flight, *models.Flight, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Remove any previously selected pair
	if _, err := tx.Exec(`DELETE FROM flights WHERE trip_id = $1`, tripID); err != nil {
		return nil, nil, fmt.Errorf("failed to clear trip flights: %w", err)
	}

	now := time.Now()

	outboundFlight := &models.Flight{
		ID:           uuid.New(),
		TripID:       tripID,
		Airline:      outbound.Airline,
		FlightNumber: outbound.FlightNumber,
		Departure:    outbound.DepartureTime,
		Arrival:      outbound.ArrivalTime,
		Cost:         outbound.Cost,
		Booked:       outbound.Booked,
		BookingToken: outbound.BookingToken,
		IsReturn:     false,
		CreatedAt:    now,
	}

	insertQuery := `
		INSERT INTO flights (
			id, trip_id, airline, flight_number, departure, arrival,
			cost, booked, booking_token, is_return, outbound_flight_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	// 2. Insert the outbound leg
	_, err = tx.Exec(insertQuery,
		outboundFlight.ID, outboundFlight.TripID,
		outboundFlight.Airline, outboundFlight.FlightNumber,
		outboundFlight.Departure, outboundFlight.Arrival,
		outboundFlight.Cost, outboundFlight.Booked, outboundFlight.BookingToken,
		outboundFlight.IsReturn, nil, outboundFlight.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert outbound flight: %w", err)
	}

	returnFlight := &models.Flight{
		ID:               uuid.New(),
		TripID:           tripID,
		Airline:          ret.Airline,
		FlightNumber:     ret.FlightNumber,
		Departure:        ret.DepartureTime,
		Arrival:          ret.ArrivalTime,
		Cost:             ret.Cost,
		Booked:           ret.Booked,
		BookingToken:     ret.BookingToken,
		IsReturn:         true,
		OutboundFlightID: &outboundFlight.ID,
		CreatedAt:        now,
	}

	// 3. Insert the return leg linked to the outbound leg
	_, err = tx.Exec(insertQuery,
		returnFlight.ID, returnFlight.TripID,
		returnFlight.Airline, returnFlight.FlightNumber,
		returnFlight.Departure, returnFlight.Arrival,
		returnFlight.Cost, returnFlight.Booked, returnFlight.BookingToken,
		returnFlight.IsReturn, returnFlight.OutboundFlightID, returnFlight.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert return flight: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit flight pair: %w", err)
	}

	return outboundFlight, returnFlight, nil
}

// DeleteFlight removes one flight row. When the target is an outbound leg
// with a linked return leg, the return leg's back-reference is cleared first
// so it never dangles; a return leg is deleted directly.
func (r *FlightRepository) DeleteFlight(tripID, flightID uuid.UUID) error {
	flight, err := r.GetFlightByID(tripID, flightID)
	if err != nil {
		return err
	}

	if !flight.IsReturn {
		return r.deleteOutboundLeg(flight)
	}

	return r.deleteRow(tripID, flightID)
}

// DeleteOutboundFlight removes an outbound leg, clearing any linked return
// leg's back-reference first. Targeting a return leg is a not-found.
func (r *FlightRepository) DeleteOutboundFlight(tripID, flightID uuid.UUID) error {
	flight, err := r.GetFlightByID(tripID, flightID)
	if err != nil {
		return err
	}
	if flight.IsReturn {
		return fmt.Errorf("outbound flight %s: %w", flightID, apperrors.ErrNotFound)
	}

	return r.deleteOutboundLeg(flight)
}

// DeleteReturnFlight removes a return leg. Targeting an outbound leg is a
// not-found.
func (r *FlightRepository) DeleteReturnFlight(tripID, flightID uuid.UUID) error {
	flight, err := r.GetFlightByID(tripID, flightID)
	if err != nil {
		return err
	}
	if !flight.IsReturn {
		return fmt.Errorf("return flight %s: %w", flightID, apperrors.ErrNotFound)
	}

	return r.deleteRow(tripID, flightID)
}

// DeleteTripFlights removes all flight rows for a trip unconditionally
func (r *FlightRepository) DeleteTripFlights(tripID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM flights WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip flights: %w", err)
	}

	return nil
}

// deleteOutboundLeg clears the paired return leg's back-reference (if any)
// and deletes the outbound row, in one transaction.
func (r *FlightRepository) deleteOutboundLeg(flight *models.Flight) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE flights SET outbound_flight_id = NULL WHERE trip_id = $1 AND outbound_flight_id = $2`,
		flight.TripID, flight.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink return flight: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM flights WHERE id = $1 AND trip_id = $2`, flight.ID, flight.TripID)
	if err != nil {
		return fmt.Errorf("failed to delete outbound flight: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("flight %s: %w", flight.ID, apperrors.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flight deletion: %w", err)
	}

	return nil
}

// deleteRow deletes a single flight row
func (r *FlightRepository) deleteRow(tripID, flightID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM flights WHERE id = $1 AND trip_id = $2`, flightID, tripID)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("flight %s: %w", flightID, apperrors.ErrNotFound)
	}

	return nil
}
