// Package activity chooses the activities of an itinerary: in range of the
// lodging, at most one per calendar day, cheapest first within budget.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dharmasatrya/holitrip/internal/geo"
	"github.com/dharmasatrya/holitrip/internal/models"
)

var ErrNoLodgingLocation = errors.New("lodging location unknown")

type Picker struct {
	geocoder geo.Geocoder
	distance geo.DistanceCalculator
	logger   *slog.Logger
}

func NewPicker(geocoder geo.Geocoder, distance geo.DistanceCalculator, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{
		geocoder: geocoder,
		distance: distance,
		logger:   logger,
	}
}

// Pick keeps the candidates within maxDistanceKm of lodging, keeps the first
// activity of each date, then takes the cheapest ones while their running
// total stays within remainingBudget. A nil lodging excludes every candidate.
func (p *Picker) Pick(ctx context.Context, candidates []models.Activity, lodging *models.Coordinates, maxDistanceKm, remainingBudget float64) []models.Activity {
	inRange := p.WithinDistance(ctx, candidates, lodging, maxDistanceKm)
	return PickWithinBudget(UniqueByDate(inRange), remainingBudget)
}

// WithinDistance keeps the candidates whose distance to lodging is at most
// maxDistanceKm. Any failure to locate a candidate excludes it.
func (p *Picker) WithinDistance(ctx context.Context, candidates []models.Activity, lodging *models.Coordinates, maxDistanceKm float64) []models.Activity {
	result := make([]models.Activity, 0, len(candidates))
	for _, a := range candidates {
		d, err := p.distanceTo(ctx, a, lodging)
		if err != nil {
			p.logger.Debug("activity excluded", "activity", a.Name, "error", err)
			continue
		}
		if d <= maxDistanceKm {
			result = append(result, a)
		}
	}
	return result
}

func (p *Picker) distanceTo(ctx context.Context, a models.Activity, lodging *models.Coordinates) (float64, error) {
	if lodging == nil {
		return 0, ErrNoLodgingLocation
	}
	if a.Address == "" {
		return 0, geo.NewGeocodingError(a.FullAddress(), errors.New("activity has no address"))
	}
	coords, err := p.geocoder.Geocode(ctx, a.FullAddress())
	if err != nil {
		return 0, err
	}
	d, err := p.distance.Distance(*lodging, coords)
	if err != nil {
		return 0, fmt.Errorf("distance to %q: %w", a.Name, errors.Join(models.ErrCollaborator, err))
	}
	return d, nil
}

// UniqueByDate keeps, in order, the first activity seen for each date.
// Undated activities are always kept.
func UniqueByDate(activities []models.Activity) []models.Activity {
	seen := make(map[string]bool)
	result := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		key, dated := a.DateKey()
		if dated {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result = append(result, a)
	}
	return result
}

// PickWithinBudget sorts by ascending price and accumulates while the total
// stays at or under budget. Equal prices keep their input order.
func PickWithinBudget(activities []models.Activity, budget float64) []models.Activity {
	sorted := make([]models.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	result := make([]models.Activity, 0, len(sorted))
	sum := 0.0
	for _, a := range sorted {
		if sum+a.Price <= budget {
			result = append(result, a)
			sum += a.Price
		}
	}
	return result
}

// RemainingBudget is what is left for activities once transport and lodging
// are paid, never negative.
func RemainingBudget(maxBudget float64, outbound, ret *models.TransportPath, lodging *models.Lodging, nights int) float64 {
	remaining := maxBudget - outbound.TotalPrice() - ret.TotalPrice()
	if lodging != nil {
		remaining -= lodging.Cost(nights)
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}
