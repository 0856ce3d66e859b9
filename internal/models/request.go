package models

import (
	"fmt"
	"strings"
)

type TransportPriority string

const (
	PriorityNone     TransportPriority = ""
	PriorityPrice    TransportPriority = "PRICE"
	PriorityDuration TransportPriority = "DURATION"
)

func ParseTransportPriority(s string) (TransportPriority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return PriorityNone, nil
	case "PRICE", "CHEAPEST":
		return PriorityPrice, nil
	case "DURATION", "TIME", "FASTEST":
		return PriorityDuration, nil
	}
	return PriorityNone, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

type LodgingPriority string

const (
	LodgingPriorityNone   LodgingPriority = ""
	LodgingPriorityPrice  LodgingPriority = "PRICE"
	LodgingPriorityRating LodgingPriority = "RATING"
)

func ParseLodgingPriority(s string) (LodgingPriority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return LodgingPriorityNone, nil
	case "PRICE", "CHEAPEST":
		return LodgingPriorityPrice, nil
	case "RATING", "STAR", "STARS":
		return LodgingPriorityRating, nil
	}
	return LodgingPriorityNone, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

type SearchRequest struct {
	Origin            string            `json:"origin" validate:"required"`
	Destination       string            `json:"destination" validate:"required"`
	DepartureDate     string            `json:"departure_date"`
	Nights            int               `json:"nights" validate:"gte=0"`
	MaxBudget         float64           `json:"max_budget" validate:"gte=0"`
	PreferredMode     Mode              `json:"preferred_mode,omitempty"`
	TransportPriority TransportPriority `json:"transport_priority,omitempty"`
	MinRating         int               `json:"min_rating" validate:"gte=0,lte=5"`
	LodgingPriority   LodgingPriority   `json:"lodging_priority,omitempty"`
	Categories        []string          `json:"categories,omitempty"`
	MaxDistanceKm     float64           `json:"max_distance_km" validate:"gte=0"`
}

// Validate checks required fields and normalizes enumerated values
// (modes and priorities accept their aliases) in place.
func (r *SearchRequest) Validate() error {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.Nights < 0 {
		return ErrNegativeNights
	}
	if r.MaxBudget < 0 {
		return ErrNegativeBudget
	}
	if r.MinRating < 0 || r.MinRating > 5 {
		return ErrRatingOutOfRange
	}

	mode, err := ParseMode(string(r.PreferredMode))
	if err != nil {
		return err
	}
	r.PreferredMode = mode

	tp, err := ParseTransportPriority(string(r.TransportPriority))
	if err != nil {
		return err
	}
	r.TransportPriority = tp

	lp, err := ParseLodgingPriority(string(r.LodgingPriority))
	if err != nil {
		return err
	}
	r.LodgingPriority = lp

	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin      ValidationError = "origin is required"
	ErrMissingDestination ValidationError = "destination is required"
	ErrNegativeNights     ValidationError = "nights must not be negative"
	ErrNegativeBudget     ValidationError = "max_budget must not be negative"
	ErrRatingOutOfRange   ValidationError = "min_rating must be between 0 and 5"
	ErrUnknownMode        ValidationError = "unknown transport mode"
	ErrUnknownPriority    ValidationError = "unknown priority"
)
