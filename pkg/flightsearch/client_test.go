package flightsearch

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/trip-planner-backend/internal/apperrors"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		APIURL:         serverURL,
		APIKey:         "test-key",
		BookingBaseURL: "https://www.google.com/travel/flights/booking",
	})
}

func validRequest() SearchRequest {
	return SearchRequest{
		Origin:        "New York (JFK)",
		Destination:   "Tokyo (NRT)",
		DepartureDate: "2026-04-01",
		ReturnDate:    "2026-04-08",
	}
}

func TestSearch(t *testing.T) {
	t.Run("Merges Best And Other Flights In Order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"best_flights": [
					{"price": 850, "departure_token": "best-1"},
					{"price": 910, "departure_token": "best-2"}
				],
				"other_flights": [
					{"price": 700, "departure_token": "other-1"}
				]
			}`))
		}))
		defer server.Close()

		offers, err := newTestClient(server.URL).Search(validRequest())
		require.NoError(t, err)
		require.Len(t, offers, 3)
		assert.Equal(t, "best-1", offers[0].DepartureToken)
		assert.Equal(t, "best-2", offers[1].DepartureToken)
		assert.Equal(t, "other-1", offers[2].DepartureToken)
	})

	t.Run("Sends Provider Query Parameters", func(t *testing.T) {
		var query url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			assert.Equal(t, "/search.json", r.URL.Path)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		req := validRequest()
		req.DepartureToken = "dep-token"
		_, err := newTestClient(server.URL).Search(req)
		require.NoError(t, err)

		assert.Equal(t, "google_flights", query.Get("engine"))
		assert.Equal(t, "test-key", query.Get("api_key"))
		assert.Equal(t, "JFK", query.Get("departure_id"))
		assert.Equal(t, "NRT", query.Get("arrival_id"))
		assert.Equal(t, "2026-04-01", query.Get("outbound_date"))
		assert.Equal(t, "2026-04-08", query.Get("return_date"))
		assert.Equal(t, "1", query.Get("type"))
		assert.Equal(t, "USD", query.Get("currency"))
		assert.Equal(t, "en", query.Get("hl"))
		assert.Equal(t, "us", query.Get("gl"))
		assert.Equal(t, "dep-token", query.Get("departure_token"))
	})

	t.Run("Raw Labels Pass Through Without Code", func(t *testing.T) {
		var query url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		req := validRequest()
		req.Origin = "Paris"
		_, err := newTestClient(server.URL).Search(req)
		require.NoError(t, err)
		assert.Equal(t, "Paris", query.Get("departure_id"))
	})

	t.Run("No Matches Is Empty Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"best_flights": [], "other_flights": []}`))
		}))
		defer server.Close()

		offers, err := newTestClient(server.URL).Search(validRequest())
		require.NoError(t, err)
		assert.NotNil(t, offers)
		assert.Empty(t, offers)
	})

	t.Run("Top Level Booking Token Attached To Every Offer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"best_flights": [{"price": 850}],
				"other_flights": [{"price": 700}],
				"booking_token": "tok-123"
			}`))
		}))
		defer server.Close()

		offers, err := newTestClient(server.URL).Search(validRequest())
		require.NoError(t, err)
		require.Len(t, offers, 2)
		assert.Equal(t, "tok-123", offers[0].BookingToken)
		assert.Equal(t, "tok-123", offers[1].BookingToken)
	})

	t.Run("Provider Error Is Upstream Error With Message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Invalid API key"}`))
		}))
		defer server.Close()

		offers, err := newTestClient(server.URL).Search(validRequest())
		assert.Nil(t, offers)
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.Contains(t, err.Error(), "Invalid API key")
	})

	t.Run("Missing Required Fields Is Validation Error", func(t *testing.T) {
		client := newTestClient("http://unused.invalid")

		req := validRequest()
		req.Destination = ""
		_, err := client.Search(req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Malformed Date Is Validation Error", func(t *testing.T) {
		client := newTestClient("http://unused.invalid")

		req := validRequest()
		req.DepartureDate = "04/01/2026"
		_, err := client.Search(req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Missing API Key Is Configuration Error", func(t *testing.T) {
		client := NewClient(Config{APIURL: "http://unused.invalid"})

		_, err := client.Search(validRequest())
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func TestBookingURL(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	assert.Equal(t,
		"https://www.google.com/travel/flights/booking?token=abc%2F123",
		client.BookingURL("abc/123"),
	)
}
