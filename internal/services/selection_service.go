package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
	"github.com/wanderplan/trip-planner-backend/internal/database"
	"github.com/wanderplan/trip-planner-backend/internal/models"
	"github.com/wanderplan/trip-planner-backend/internal/workflow"
	"github.com/wanderplan/trip-planner-backend/pkg/flightsearch"
)

// TripStore is the slice of persistence the selection workflow needs.
// Implemented by the trip and flight repositories; tests use an in-memory fake.
type TripStore interface {
	GetTripByID(id, userID uuid.UUID) (*models.Trip, error)
	ReplaceFlightPair(tripID uuid.UUID, outbound, ret models.FlightLegData) (*models.Flight, *models.Flight, error)
}

// FlightSearcher is the gateway surface the workflow needs
type FlightSearcher interface {
	Search(req flightsearch.SearchRequest) ([]flightsearch.Offer, error)
	BookingURL(bookingToken string) string
}

// repositoryStore joins the trip and flight repositories into one TripStore
type repositoryStore struct {
	trips   *database.TripRepository
	flights *database.FlightRepository
}

// NewTripStore adapts the repositories to the TripStore interface
func NewTripStore(trips *database.TripRepository, flights *database.FlightRepository) TripStore {
	return &repositoryStore{trips: trips, flights: flights}
}

func (s *repositoryStore) GetTripByID(id, userID uuid.UUID) (*models.Trip, error) {
	return s.trips.GetTripByID(id, userID)
}

func (s *repositoryStore) ReplaceFlightPair(tripID uuid.UUID, outbound, ret models.FlightLegData) (*models.Flight, *models.Flight, error) {
	return s.flights.ReplaceFlightPair(tripID, outbound, ret)
}

// SelectionService runs the flight selection workflow server-side: one
// session per (user, trip), advanced step by step from HTTP handlers. The
// service mutex guards the session map; each session carries its own lock,
// held for the full duration of a step, so concurrent requests for the same
// trip serialize instead of racing on the state.
type SelectionService struct {
	store    TripStore
	searcher FlightSearcher

	mu       sync.Mutex
	sessions map[sessionKey]*selectionSession
}

type sessionKey struct {
	userID uuid.UUID
	tripID uuid.UUID
}

type selectionSession struct {
	mu    sync.Mutex
	state workflow.State
	trip  *models.Trip
}

// ConfirmResult is the outcome of persisting a selected pair
type ConfirmResult struct {
	Outbound           *models.Flight `json:"outbound"`
	Return             *models.Flight `json:"return"`
	OutboundBookingURL string         `json:"outbound_booking_url,omitempty"`
	ReturnBookingURL   string         `json:"return_booking_url,omitempty"`
}

// NewSelectionService creates a new selection service
func NewSelectionService(store TripStore, searcher FlightSearcher) *SelectionService {
	return &SelectionService{
		store:    store,
		searcher: searcher,
		sessions: make(map[sessionKey]*selectionSession),
	}
}

// State returns the current selection state for a trip, creating an idle
// session if none exists. Trip ownership is re-checked on every call.
func (s *SelectionService) State(userID, tripID uuid.UUID) (workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return workflow.State{}, err
	}
	defer session.mu.Unlock()

	return session.state, nil
}

// SearchOutbound starts a fresh outbound search for the trip. Both trip
// dates must be set; a validation failure is surfaced without losing the
// session.
func (s *SelectionService) SearchOutbound(userID, tripID uuid.UUID) (workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return workflow.State{}, err
	}
	defer session.mu.Unlock()

	trip := session.trip
	searching, err := workflow.Reduce(session.state, workflow.SearchRequested{
		StartDate: trip.StartDate.Format("2006-01-02"),
		EndDate:   trip.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		return session.state, fmt.Errorf("%w: %w", err, apperrors.ErrValidation)
	}

	offers, err := s.searcher.Search(flightsearch.SearchRequest{
		Origin:        trip.Departure,
		Destination:   trip.Destination,
		DepartureDate: trip.StartDate.Format("2006-01-02"),
		ReturnDate:    trip.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		session.state, _ = workflow.Reduce(searching, workflow.OutboundFailed{Message: err.Error()})
		return session.state, nil
	}

	session.state, _ = workflow.Reduce(searching, workflow.OutboundResults{Offers: offers})
	return session.state, nil
}

// SelectOutbound picks one outbound offer and re-queries the provider with
// the offer's departure token to fetch compatible return offers.
func (s *SelectionService) SelectOutbound(userID, tripID uuid.UUID, index int) (workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return workflow.State{}, err
	}
	defer session.mu.Unlock()

	searching, err := workflow.Reduce(session.state, workflow.OutboundPicked{Index: index})
	if err != nil {
		return session.state, fmt.Errorf("%w: %w", err, apperrors.ErrValidation)
	}

	trip := session.trip
	offers, err := s.searcher.Search(flightsearch.SearchRequest{
		Origin:         trip.Departure,
		Destination:    trip.Destination,
		DepartureDate:  trip.StartDate.Format("2006-01-02"),
		ReturnDate:     trip.EndDate.Format("2006-01-02"),
		DepartureToken: searching.OutboundChoice.DepartureToken,
	})
	if err != nil {
		session.state, _ = workflow.Reduce(searching, workflow.ReturnFailed{Message: err.Error()})
		return session.state, nil
	}

	session.state, _ = workflow.Reduce(searching, workflow.ReturnResults{Offers: offers})
	return session.state, nil
}

// SelectReturn picks one return offer, completing the pair
func (s *SelectionService) SelectReturn(userID, tripID uuid.UUID, index int) (workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return workflow.State{}, err
	}
	defer session.mu.Unlock()

	next, err := workflow.Reduce(session.state, workflow.ReturnPicked{Index: index})
	if err != nil {
		return session.state, fmt.Errorf("%w: %w", err, apperrors.ErrValidation)
	}

	session.state = next
	return session.state, nil
}

// Confirm persists the selected pair, replacing any prior pair for the trip.
// Each leg is booked independently; a booked leg keeps its booking token and
// gets an external booking URL in the result.
func (s *SelectionService) Confirm(userID, tripID uuid.UUID, bookOutbound, bookReturn bool) (*ConfirmResult, workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return nil, workflow.State{}, err
	}
	defer session.mu.Unlock()

	state := session.state
	if state.Phase != workflow.PhasePairSelected || state.OutboundChoice == nil || state.ReturnChoice == nil {
		return nil, state, fmt.Errorf("no flight pair selected: %w", apperrors.ErrValidation)
	}

	outboundLeg, err := offerToLeg(state.OutboundChoice, bookOutbound)
	if err != nil {
		return nil, state, fmt.Errorf("outbound offer: %v: %w", err, apperrors.ErrValidation)
	}
	returnLeg, err := offerToLeg(state.ReturnChoice, bookReturn)
	if err != nil {
		return nil, state, fmt.Errorf("return offer: %v: %w", err, apperrors.ErrValidation)
	}

	outbound, ret, err := s.store.ReplaceFlightPair(tripID, outboundLeg, returnLeg)
	if err != nil {
		session.state, _ = workflow.Reduce(state, workflow.SaveFailed{Message: err.Error()})
		return nil, session.state, fmt.Errorf("failed to save flight pair: %v: %w", err, apperrors.ErrPersistence)
	}

	result := &ConfirmResult{
		Outbound: outbound,
		Return:   ret,
	}
	if outbound.Booked && outbound.BookingToken != nil {
		result.OutboundBookingURL = s.searcher.BookingURL(*outbound.BookingToken)
	}
	if ret.Booked && ret.BookingToken != nil {
		result.ReturnBookingURL = s.searcher.BookingURL(*ret.BookingToken)
	}

	session.state, _ = workflow.Reduce(state, workflow.PairSaved{})
	s.evict(userID, tripID)
	return result, session.state, nil
}

// Cancel abandons the session, discarding any in-flight selection
func (s *SelectionService) Cancel(userID, tripID uuid.UUID) (workflow.State, error) {
	session, err := s.lockSession(userID, tripID)
	if err != nil {
		return workflow.State{}, err
	}
	defer session.mu.Unlock()

	session.state, _ = workflow.Reduce(session.state, workflow.Cancelled{})
	s.evict(userID, tripID)
	return session.state, nil
}

// lockSession loads or creates the selection session for (user, trip) and
// returns it locked; the caller must unlock it. The trip is re-fetched each
// time so ownership and dates stay current, and a session whose trip is gone
// is dropped.
func (s *SelectionService) lockSession(userID, tripID uuid.UUID) (*selectionSession, error) {
	trip, err := s.store.GetTripByID(tripID, userID)
	if err != nil {
		s.evict(userID, tripID)
		return nil, err
	}

	key := sessionKey{userID: userID, tripID: tripID}

	s.mu.Lock()
	session, ok := s.sessions[key]
	if !ok {
		session = &selectionSession{state: workflow.NewState()}
		s.sessions[key] = session
	}
	s.mu.Unlock()

	session.mu.Lock()
	session.trip = trip
	return session, nil
}

// evict drops the session for (user, trip) from the map. Sessions that have
// returned to a clean idle state hold nothing worth keeping, so they are
// evicted rather than accumulating for every trip ever touched.
func (s *SelectionService) evict(userID, tripID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, sessionKey{userID: userID, tripID: tripID})
	s.mu.Unlock()
}

// offerToLeg flattens an offer into the persisted leg shape: carrier and
// flight number from the first segment, departure from the first segment,
// arrival from the last. The booking token is only kept on booked legs.
func offerToLeg(offer *flightsearch.Offer, booked bool) (models.FlightLegData, error) {
	if len(offer.Flights) == 0 {
		return models.FlightLegData{}, fmt.Errorf("offer has no flight segments")
	}

	first := offer.Flights[0]
	last := offer.Flights[len(offer.Flights)-1]

	departure, err := parseOfferTime(first.DepartureAirport.Time)
	if err != nil {
		return models.FlightLegData{}, fmt.Errorf("invalid departure time %q", first.DepartureAirport.Time)
	}
	arrival, err := parseOfferTime(last.ArrivalAirport.Time)
	if err != nil {
		return models.FlightLegData{}, fmt.Errorf("invalid arrival time %q", last.ArrivalAirport.Time)
	}

	leg := models.FlightLegData{
		Airline:       first.Airline,
		FlightNumber:  first.FlightNumber,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Cost:          offer.Price,
		Booked:        booked,
	}
	if booked && offer.BookingToken != "" {
		token := offer.BookingToken
		leg.BookingToken = &token
	}

	return leg, nil
}

// parseOfferTime parses the provider's "2006-01-02 15:04" timestamps,
// falling back to RFC 3339
func parseOfferTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
