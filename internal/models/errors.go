package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when neither transports nor lodgings exist for a request.
	ErrNoData = errors.New("no data available for given criteria")

	// ErrInfeasibleConstraint marks a strict requirement that cannot be met
	// (requested mode, minimum rating, connection time, budget).
	ErrInfeasibleConstraint = errors.New("infeasible constraint")

	// ErrCollaborator marks a failure of a catalog, geocoder or distance service.
	ErrCollaborator = errors.New("collaborator failure")

	// ErrMalformedInput marks request input that could not be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrGeocoding is returned when an address cannot be resolved to coordinates.
	ErrGeocoding = fmt.Errorf("geocoding failed: %w", ErrCollaborator)
)

var (
	ErrInvalidLeg       = errors.New("invalid transport leg")
	ErrEmptyPath        = errors.New("transport path has no legs")
	ErrTooManyLegs      = errors.New("transport path exceeds maximum leg count")
	ErrBrokenContinuity = errors.New("transport path is not continuous")
	ErrMixedModes       = errors.New("transport path mixes modes")
	ErrShortConnection  = errors.New("connection shorter than minimum")
)
