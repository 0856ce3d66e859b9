package geo

import (
	"context"
	"log/slog"

	"github.com/dharmasatrya/holitrip/internal/cache"
	"github.com/dharmasatrya/holitrip/internal/models"
)

// CachedGeocoder reads through a coordinate cache before calling the
// wrapped geocoder. Failures are not cached.
type CachedGeocoder struct {
	next   Geocoder
	cache  cache.Cache
	logger *slog.Logger
}

func NewCachedGeocoder(next Geocoder, c cache.Cache, logger *slog.Logger) *CachedGeocoder {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGeocoder{next: next, cache: c, logger: logger}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	if coords, ok := g.cache.Get(ctx, address); ok {
		return coords, nil
	}

	coords, err := g.next.Geocode(ctx, address)
	if err != nil {
		return models.Coordinates{}, err
	}

	if err := g.cache.Set(ctx, address, coords); err != nil {
		g.logger.Warn("failed to cache coordinates", "address", address, "error", err)
	}
	return coords, nil
}
