package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrEmptyLocation indicates a location label is empty
	ErrEmptyLocation = errors.New("location cannot be empty")

	// ErrEmptyDate indicates a travel date is empty
	ErrEmptyDate = errors.New("date cannot be empty")

	// ErrInvalidDate indicates a travel date is not in YYYY-MM-DD format
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// iataRegex matches a parenthesized 3-letter IATA code suffix, e.g. "(ORD)"
var iataRegex = regexp.MustCompile(`\(([A-Z]{3})\)`)

// LocationValidator normalizes free-text location labels for flight searches
type LocationValidator struct{}

// NewLocationValidator creates a new location validator instance
func NewLocationValidator() *LocationValidator {
	return &LocationValidator{}
}

// ExtractCode extracts the IATA code from a location label such as
// "Chicago (ORD)". When the label carries no parenthesized 3-letter code the
// raw label is returned unchanged; the provider resolves plain city names
// itself, so passthrough is a fallback rather than a failure.
func (v *LocationValidator) ExtractCode(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", ErrEmptyLocation
	}

	if match := iataRegex.FindStringSubmatch(trimmed); match != nil {
		return match[1], nil
	}

	return trimmed, nil
}

// ValidateDate checks a travel date string is a real YYYY-MM-DD date
func (v *LocationValidator) ValidateDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return ErrEmptyDate
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}

	return nil
}
