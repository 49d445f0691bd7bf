// Package workflow holds the flight selection state machine: an explicit
// state value advanced by a pure reducer, with no knowledge of HTTP, storage
// or the search provider. The selection service drives it; tests exercise it
// directly.
package workflow

import (
	"errors"
	"fmt"

	"github.com/wanderplan/trip-planner-backend/pkg/flightsearch"
)

// Phase identifies where a selection session currently is
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseSearchingOutbound Phase = "searching_outbound"
	PhaseOutboundResults   Phase = "outbound_results"
	PhaseSearchingReturn   Phase = "searching_return"
	PhaseReturnResults     Phase = "return_results"
	PhasePairSelected      Phase = "pair_selected"
)

// ErrInvalidTransition indicates an event that is not legal in the current phase
var ErrInvalidTransition = errors.New("invalid transition")

// ErrMissingDates indicates a search attempted before both trip dates are set
var ErrMissingDates = errors.New("trip start and end dates must be set before searching flights")

// State is the full selection state. The zero value is not valid; use
// NewState. Message retains the most recent user-facing error so a failed
// step can be shown without losing the surrounding state.
type State struct {
	Phase          Phase                `json:"phase"`
	OutboundOffers []flightsearch.Offer `json:"outbound_offers,omitempty"`
	OutboundChoice *flightsearch.Offer  `json:"outbound_choice,omitempty"`
	ReturnOffers   []flightsearch.Offer `json:"return_offers,omitempty"`
	ReturnChoice   *flightsearch.Offer  `json:"return_choice,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// NewState returns the idle starting state
func NewState() State {
	return State{Phase: PhaseIdle}
}

// Event advances the state machine
type Event interface {
	isSelectionEvent()
}

// SearchRequested starts an outbound search. Both trip dates must be set.
type SearchRequested struct {
	StartDate string
	EndDate   string
}

// OutboundResults delivers the outbound search response
type OutboundResults struct {
	Offers []flightsearch.Offer
}

// OutboundFailed reports a failed outbound search
type OutboundFailed struct {
	Message string
}

// OutboundPicked selects one outbound offer by index
type OutboundPicked struct {
	Index int
}

// ReturnResults delivers the return search response
type ReturnResults struct {
	Offers []flightsearch.Offer
}

// ReturnFailed reports a failed return search
type ReturnFailed struct {
	Message string
}

// ReturnPicked selects one return offer by index
type ReturnPicked struct {
	Index int
}

// PairSaved reports that the selected pair was persisted
type PairSaved struct{}

// SaveFailed reports that persisting the pair failed
type SaveFailed struct {
	Message string
}

// Cancelled abandons the session from any phase
type Cancelled struct{}

func (SearchRequested) isSelectionEvent() {}
func (OutboundResults) isSelectionEvent() {}
func (OutboundFailed) isSelectionEvent()  {}
func (OutboundPicked) isSelectionEvent()  {}
func (ReturnResults) isSelectionEvent()   {}
func (ReturnFailed) isSelectionEvent()    {}
func (ReturnPicked) isSelectionEvent()    {}
func (PairSaved) isSelectionEvent()       {}
func (SaveFailed) isSelectionEvent()      {}
func (Cancelled) isSelectionEvent()       {}

// Reduce applies one event and returns the next state. The input state is
// never mutated. An error means the event was rejected and the state is
// unchanged; the caller decides whether that is a user mistake or a bug.
func Reduce(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Cancelled:
		// Legal from any phase; in-flight selections are discarded.
		return NewState(), nil

	case SearchRequested:
		if s.Phase != PhaseIdle && s.Phase != PhaseOutboundResults && s.Phase != PhaseReturnResults && s.Phase != PhasePairSelected {
			return s, fmt.Errorf("search while %s: %w", s.Phase, ErrInvalidTransition)
		}
		if ev.StartDate == "" || ev.EndDate == "" {
			return s, ErrMissingDates
		}
		// A fresh search discards whatever was selected before.
		return State{Phase: PhaseSearchingOutbound}, nil

	case OutboundResults:
		if s.Phase != PhaseSearchingOutbound {
			return s, fmt.Errorf("outbound results while %s: %w", s.Phase, ErrInvalidTransition)
		}
		if len(ev.Offers) == 0 {
			next := NewState()
			next.Message = "No flights found for the selected dates"
			return next, nil
		}
		return State{Phase: PhaseOutboundResults, OutboundOffers: ev.Offers}, nil

	case OutboundFailed:
		if s.Phase != PhaseSearchingOutbound {
			return s, fmt.Errorf("outbound failure while %s: %w", s.Phase, ErrInvalidTransition)
		}
		next := NewState()
		next.Message = ev.Message
		return next, nil

	case OutboundPicked:
		if s.Phase != PhaseOutboundResults {
			return s, fmt.Errorf("outbound pick while %s: %w", s.Phase, ErrInvalidTransition)
		}
		if ev.Index < 0 || ev.Index >= len(s.OutboundOffers) {
			return s, fmt.Errorf("offer index %d out of range: %w", ev.Index, ErrInvalidTransition)
		}
		choice := s.OutboundOffers[ev.Index]
		next := s
		next.Phase = PhaseSearchingReturn
		next.OutboundChoice = &choice
		next.ReturnOffers = nil
		next.ReturnChoice = nil
		next.Message = ""
		return next, nil

	case ReturnResults:
		if s.Phase != PhaseSearchingReturn {
			return s, fmt.Errorf("return results while %s: %w", s.Phase, ErrInvalidTransition)
		}
		if len(ev.Offers) == 0 {
			// Back to the outbound list, selection preserved, so the user
			// can pick a different outbound offer.
			next := s
			next.Phase = PhaseOutboundResults
			next.Message = "No return flights found for this selection"
			return next, nil
		}
		next := s
		next.Phase = PhaseReturnResults
		next.ReturnOffers = ev.Offers
		next.Message = ""
		return next, nil

	case ReturnFailed:
		if s.Phase != PhaseSearchingReturn {
			return s, fmt.Errorf("return failure while %s: %w", s.Phase, ErrInvalidTransition)
		}
		next := s
		next.Phase = PhaseOutboundResults
		next.Message = ev.Message
		return next, nil

	case ReturnPicked:
		if s.Phase != PhaseReturnResults {
			return s, fmt.Errorf("return pick while %s: %w", s.Phase, ErrInvalidTransition)
		}
		if ev.Index < 0 || ev.Index >= len(s.ReturnOffers) {
			return s, fmt.Errorf("offer index %d out of range: %w", ev.Index, ErrInvalidTransition)
		}
		choice := s.ReturnOffers[ev.Index]
		next := s
		next.Phase = PhasePairSelected
		next.ReturnChoice = &choice
		next.Message = ""
		return next, nil

	case PairSaved:
		if s.Phase != PhasePairSelected {
			return s, fmt.Errorf("save while %s: %w", s.Phase, ErrInvalidTransition)
		}
		return NewState(), nil

	case SaveFailed:
		if s.Phase != PhasePairSelected {
			return s, fmt.Errorf("save failure while %s: %w", s.Phase, ErrInvalidTransition)
		}
		next := s
		next.Message = ev.Message
		return next, nil

	default:
		return s, fmt.Errorf("unknown event %T: %w", e, ErrInvalidTransition)
	}
}
