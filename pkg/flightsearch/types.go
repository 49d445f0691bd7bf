package flightsearch

// SearchRequest describes one flight search. Origin and destination are
// free-text labels; a parenthesized 3-letter code ("Chicago (ORD)") is
// extracted before the request is sent, otherwise the label passes through
// unchanged. A non-empty DepartureToken turns the call into a return-leg
// search tied to a previously chosen outbound offer.
type SearchRequest struct {
	Origin         string `json:"originLocationCode"`
	Destination    string `json:"destinationLocationCode"`
	DepartureDate  string `json:"departureDate"` // YYYY-MM-DD
	ReturnDate     string `json:"returnDate,omitempty"`
	DepartureToken string `json:"departure_token,omitempty"`
}

// Airport identifies one end of a flight segment
type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// Segment is one flight within an offer's itinerary
type Segment struct {
	DepartureAirport Airport  `json:"departure_airport"`
	ArrivalAirport   Airport  `json:"arrival_airport"`
	Duration         int      `json:"duration"`
	Airplane         string   `json:"airplane,omitempty"`
	Airline          string   `json:"airline"`
	AirlineLogo      string   `json:"airline_logo,omitempty"`
	TravelClass      string   `json:"travel_class,omitempty"`
	FlightNumber     string   `json:"flight_number"`
	Legroom          string   `json:"legroom,omitempty"`
	Extensions       []string `json:"extensions,omitempty"`
}

// Layover is a stop between two segments
type Layover struct {
	Duration  int    `json:"duration"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	Overnight bool   `json:"overnight,omitempty"`
}

// CarbonEmissions carries the provider's emissions estimate for an offer
type CarbonEmissions struct {
	ThisFlight        int `json:"this_flight"`
	TypicalForRoute   int `json:"typical_for_this_route"`
	DifferencePercent int `json:"difference_percent"`
}

// Offer is one bookable itinerary returned by the search. Offers are
// ephemeral: they live only for the duration of a search session and are
// never persisted. DepartureToken replays the search to fetch matching
// return offers; BookingToken deep-links to the provider's booking page.
type Offer struct {
	Flights         []Segment        `json:"flights"`
	Layovers        []Layover        `json:"layovers,omitempty"`
	TotalDuration   int              `json:"total_duration"`
	CarbonEmissions *CarbonEmissions `json:"carbon_emissions,omitempty"`
	Price           float64          `json:"price"`
	Type            string           `json:"type,omitempty"`
	AirlineLogo     string           `json:"airline_logo,omitempty"`
	DepartureToken  string           `json:"departure_token,omitempty"`
	BookingToken    string           `json:"booking_token,omitempty"`
}

// searchResponse is the provider's wire format
type searchResponse struct {
	BestFlights  []Offer `json:"best_flights"`
	OtherFlights []Offer `json:"other_flights"`
	BookingToken string  `json:"booking_token"`
	Error        string  `json:"error"`
}
