package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
	"github.com/wanderplan/trip-planner-backend/internal/models"
)

func flightRow(id, tripID uuid.UUID, isReturn bool, outboundID *uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "trip_id", "airline", "flight_number", "departure", "arrival",
		"cost", "booked", "booking_token", "is_return", "outbound_flight_id",
		"created_at",
	}).AddRow(
		id, tripID, "ANA", "NH9", now, now.Add(13*time.Hour),
		850.0, false, nil, isReturn, outboundID, now,
	)
}

func legData(airline string) models.FlightLegData {
	return models.FlightLegData{
		Airline:       airline,
		FlightNumber:  "NH9",
		DepartureTime: time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2026, 4, 2, 14, 10, 0, 0, time.UTC),
		Cost:          850.0,
	}
}

func TestReplaceFlightPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlightRepository(db)

	tripID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM flights WHERE trip_id = \$1`).
			WithArgs(tripID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO flights`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO flights`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outbound, ret, err := repo.ReplaceFlightPair(tripID, legData("ANA"), legData("ANA"))
		require.NoError(t, err)
		assert.False(t, outbound.IsReturn)
		assert.True(t, ret.IsReturn)
		require.NotNil(t, ret.OutboundFlightID)
		assert.Equal(t, outbound.ID, *ret.OutboundFlightID)
		assert.Nil(t, outbound.OutboundFlightID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls Back When Return Insert Fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM flights WHERE trip_id = \$1`).
			WithArgs(tripID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO flights`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO flights`).
			WillReturnError(fmt.Errorf("constraint violation"))
		mock.ExpectRollback()

		outbound, ret, err := repo.ReplaceFlightPair(tripID, legData("ANA"), legData("ANA"))
		assert.Error(t, err)
		assert.Nil(t, outbound)
		assert.Nil(t, ret)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls Back When Clear Fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM flights WHERE trip_id = \$1`).
			WithArgs(tripID).
			WillReturnError(fmt.Errorf("deadlock detected"))
		mock.ExpectRollback()

		_, _, err := repo.ReplaceFlightPair(tripID, legData("ANA"), legData("ANA"))
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteOutboundFlight(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlightRepository(db)

	t.Run("Unlinks Return Leg First", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, false, nil))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE flights SET outbound_flight_id = NULL WHERE trip_id = \$1 AND outbound_flight_id = \$2`).
			WithArgs(tripID, flightID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.DeleteOutboundFlight(tripID, flightID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Return Leg Target Is Not Found", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()
		outboundID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, true, &outboundID))

		err := repo.DeleteOutboundFlight(tripID, flightID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Flight Is Not Found", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "trip_id", "airline", "flight_number", "departure", "arrival",
				"cost", "booked", "booking_token", "is_return", "outbound_flight_id",
				"created_at",
			}))

		err := repo.DeleteOutboundFlight(tripID, flightID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteReturnFlight(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlightRepository(db)

	t.Run("Success", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()
		outboundID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, true, &outboundID))
		mock.ExpectExec(`DELETE FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteReturnFlight(tripID, flightID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Outbound Leg Target Is Not Found", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, false, nil))

		err := repo.DeleteReturnFlight(tripID, flightID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteFlightDispatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlightRepository(db)

	t.Run("Outbound Leg Goes Through Unlink Transaction", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, false, nil))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE flights SET outbound_flight_id = NULL`).
			WithArgs(tripID, flightID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.DeleteFlight(tripID, flightID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Return Leg Deletes Directly", func(t *testing.T) {
		tripID := uuid.New()
		flightID := uuid.New()
		outboundID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnRows(flightRow(flightID, tripID, true, &outboundID))
		mock.ExpectExec(`DELETE FROM flights WHERE id = \$1 AND trip_id = \$2`).
			WithArgs(flightID, tripID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteFlight(tripID, flightID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteTripFlights(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFlightRepository(db)

	tripID := uuid.New()
	mock.ExpectExec(`DELETE FROM flights WHERE trip_id = \$1`).
		WithArgs(tripID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, repo.DeleteTripFlights(tripID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
