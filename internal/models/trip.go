package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned trip owned by a user.
// A trip owns at most one outbound/return flight pair at a time.
type Trip struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Departure   string    `json:"departure" db:"departure"`
	Destination string    `json:"destination" db:"destination"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	Budget      *float64  `json:"budget,omitempty" db:"budget"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Loaded relation, not a column
	Flights []*Flight `json:"flights" db:"-"`
}

// CreateTripRequest represents the request to create a trip
type CreateTripRequest struct {
	Title       string  `json:"title" binding:"required"`
	Departure   string  `json:"departure" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string  `json:"end_date" binding:"required"`   // YYYY-MM-DD
	Budget      *string `json:"budget,omitempty"`
}

// UpdateTripRequest represents a full-field trip update
type UpdateTripRequest struct {
	Title       string  `json:"title" binding:"required"`
	Departure   string  `json:"departure" binding:"required"`
	Destination string  `json:"destination" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	Budget      *string `json:"budget,omitempty"`
}

// ParseTripDates parses and orders the trip's travel dates
func ParseTripDates(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start_date format. Use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end_date format. Use YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_date must not be before start_date")
	}
	return start, end, nil
}
