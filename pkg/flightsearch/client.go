package flightsearch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
	"github.com/wanderplan/trip-planner-backend/pkg/validator"
)

// Config holds configuration for the flight search client
type Config struct {
	APIURL         string // Base URL of the aggregator (e.g. https://serpapi.com)
	APIKey         string // SECRET - never expose to client
	Currency       string
	Language       string
	Country        string
	BookingBaseURL string
	Timeout        time.Duration
}

// Client queries the SerpApi google_flights engine. It is a stateless
// request translator: one search request in, one normalized offer list out.
type Client struct {
	apiURL         string
	apiKey         string
	currency       string
	language       string
	country        string
	bookingBaseURL string
	locations      *validator.LocationValidator
	client         *http.Client
}

// NewClient creates a new flight search client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}

	return &Client{
		apiURL:         cfg.APIURL,
		apiKey:         cfg.APIKey,
		currency:       currency,
		language:       language,
		country:        country,
		bookingBaseURL: cfg.BookingBaseURL,
		locations:      validator.NewLocationValidator(),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search issues one search against the aggregator and returns the merged,
// normalized offer list. "Best" offers come first, then the rest, each
// sub-list keeping the provider's internal order. The provider's top-level
// booking token is attached to every offer. A search that matches nothing
// returns an empty slice, not an error.
func (c *Client) Search(req SearchRequest) ([]Offer, error) {
	if req.Origin == "" || req.Destination == "" || req.DepartureDate == "" {
		return nil, fmt.Errorf("origin, destination and departure date are required: %w", apperrors.ErrValidation)
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("flight search API key is not set: %w", apperrors.ErrConfiguration)
	}

	originCode, err := c.locations.ExtractCode(req.Origin)
	if err != nil {
		return nil, fmt.Errorf("origin: %v: %w", err, apperrors.ErrValidation)
	}
	destinationCode, err := c.locations.ExtractCode(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %v: %w", err, apperrors.ErrValidation)
	}
	if err := c.locations.ValidateDate(req.DepartureDate); err != nil {
		return nil, fmt.Errorf("departure date: %v: %w", err, apperrors.ErrValidation)
	}
	if req.ReturnDate != "" {
		if err := c.locations.ValidateDate(req.ReturnDate); err != nil {
			return nil, fmt.Errorf("return date: %v: %w", err, apperrors.ErrValidation)
		}
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google_flights")
	params.Set("hl", c.language)
	params.Set("gl", c.country)
	params.Set("currency", c.currency)
	params.Set("departure_id", originCode)
	params.Set("arrival_id", destinationCode)
	params.Set("outbound_date", req.DepartureDate)
	// Searches are always round-trip; the provider requires the return date
	// even when only outbound offers are being listed.
	params.Set("type", "1")
	if req.ReturnDate != "" {
		params.Set("return_date", req.ReturnDate)
	}
	// A departure token turns this into a return-leg search tied to one
	// previously chosen outbound offer.
	if req.DepartureToken != "" {
		params.Set("departure_token", req.DepartureToken)
	}

	searchURL := fmt.Sprintf("%s/search.json?%s", c.apiURL, params.Encode())

	resp, err := c.client.Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("flight search request failed: %v: %w", err, apperrors.ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %v: %w", err, apperrors.ErrUpstream)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %v: %w", err, apperrors.ErrUpstream)
	}

	if resp.StatusCode != http.StatusOK {
		message := parsed.Error
		if message == "" {
			message = resp.Status
		}
		return nil, fmt.Errorf("flight search returned status %d: %s: %w", resp.StatusCode, message, apperrors.ErrUpstream)
	}

	offers := make([]Offer, 0, len(parsed.BestFlights)+len(parsed.OtherFlights))
	offers = append(offers, parsed.BestFlights...)
	offers = append(offers, parsed.OtherFlights...)

	if parsed.BookingToken != "" {
		for i := range offers {
			offers[i].BookingToken = parsed.BookingToken
		}
	}

	return offers, nil
}

// BookingURL builds the external booking page URL for one leg's booking token
func (c *Client) BookingURL(bookingToken string) string {
	return fmt.Sprintf("%s?token=%s", c.bookingBaseURL, url.QueryEscape(bookingToken))
}
