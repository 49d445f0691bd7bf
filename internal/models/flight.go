package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Flight represents one persisted leg of a trip's flight pair.
// A return leg carries a back-reference to its outbound leg; the reference
// must point to a non-return flight on the same trip.
type Flight struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	TripID           uuid.UUID  `json:"trip_id" db:"trip_id"`
	Airline          string     `json:"airline" db:"airline"`
	FlightNumber     string     `json:"flight_number" db:"flight_number"`
	Departure        time.Time  `json:"departure" db:"departure"`
	Arrival          time.Time  `json:"arrival" db:"arrival"`
	Cost             float64    `json:"cost" db:"cost"`
	Booked           bool       `json:"booked" db:"booked"`
	BookingToken     *string    `json:"booking_token,omitempty" db:"booking_token"`
	IsReturn         bool       `json:"is_return" db:"is_return"`
	OutboundFlightID *uuid.UUID `json:"outbound_flight_id,omitempty" db:"outbound_flight_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// FlightLegData carries the fields needed to persist one leg
type FlightLegData struct {
	Airline       string    `json:"airline"`
	FlightNumber  string    `json:"flight_number"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Cost          float64   `json:"cost"`
	Booked        bool      `json:"booked"`
	BookingToken  *string   `json:"booking_token,omitempty"`
}

// Validate validates a single leg's data
func (d *FlightLegData) Validate() error {
	if d.Airline == "" {
		return errors.New("airline is required")
	}
	if d.DepartureTime.IsZero() || d.ArrivalTime.IsZero() {
		return errors.New("departure_time and arrival_time are required")
	}
	if d.ArrivalTime.Before(d.DepartureTime) {
		return errors.New("arrival_time must not be before departure_time")
	}
	return nil
}

// ReplaceFlightPairRequest represents the request to attach a flight pair
// to a trip, replacing any previously attached pair.
type ReplaceFlightPairRequest struct {
	Outbound FlightLegData `json:"outbound" binding:"required"`
	Return   FlightLegData `json:"return" binding:"required"`
}

// Validate validates both legs
func (r *ReplaceFlightPairRequest) Validate() error {
	if err := r.Outbound.Validate(); err != nil {
		return errors.New("outbound: " + err.Error())
	}
	if err := r.Return.Validate(); err != nil {
		return errors.New("return: " + err.Error())
	}
	return nil
}
