package providers

import (
	"context"

	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/pathsearch"
)

// TransportCatalog answers a transport query with direct alternatives or an
// assembled connection.
type TransportCatalog interface {
	Name() string
	FindTransports(ctx context.Context, q pathsearch.Query) (models.TransportLookup, error)
}

type LodgingCatalog interface {
	Name() string
	FindLodgings(ctx context.Context, q filter.LodgingQuery) ([]models.Lodging, error)
}

type ActivityCatalog interface {
	Name() string
	FindActivities(ctx context.Context, q filter.ActivityQuery) ([]models.Activity, error)
}

// Catalog is a source serving all three kinds of records.
type Catalog interface {
	TransportCatalog
	LodgingCatalog
	ActivityCatalog
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() []error {
	return []error{models.ErrCollaborator, e.Err}
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
