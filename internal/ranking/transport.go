package ranking

import (
	"math"
	"time"

	"github.com/dharmasatrya/holitrip/internal/models"
)

// unbounded ranks legs missing a timestamp behind every timed leg.
const unbounded = time.Duration(math.MaxInt64)

func legDuration(l models.TransportLeg) time.Duration {
	d, ok := l.Duration()
	if !ok {
		return unbounded
	}
	return d
}

// FilterByMode keeps the candidates of the preferred mode. When no candidate
// carries mode metadata the set is returned unchanged; when metadata exists
// but nothing matches, the result is empty.
func FilterByMode(candidates []models.TransportLeg, preferred models.Mode) []models.TransportLeg {
	if !preferred.Known() || !anyWithMode(candidates) {
		return candidates
	}

	result := make([]models.TransportLeg, 0, len(candidates))
	for _, c := range candidates {
		if c.Mode == preferred {
			result = append(result, c)
		}
	}
	return result
}

func anyWithMode(legs []models.TransportLeg) bool {
	for _, l := range legs {
		if l.Mode.Known() {
			return true
		}
	}
	return false
}

// SelectTransport picks one leg among direct alternatives.
func SelectTransport(candidates []models.TransportLeg, preferred models.Mode, priority models.TransportPriority) (models.TransportLeg, bool) {
	candidates = FilterByMode(candidates, preferred)
	if len(candidates) == 0 {
		return models.TransportLeg{}, false
	}

	var better func(a, b models.TransportLeg) bool
	switch priority {
	case models.PriorityPrice:
		better = cheaperThenFaster
	case models.PriorityDuration:
		better = fasterThenCheaper
	default:
		return candidates[0], true
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func cheaperThenFaster(a, b models.TransportLeg) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return legDuration(a) < legDuration(b)
}

func fasterThenCheaper(a, b models.TransportLeg) bool {
	da, db := legDuration(a), legDuration(b)
	if da != db {
		return da < db
	}
	return a.Price < b.Price
}

// ValidatePathMode reports whether an assembled path honors the preferred
// mode. A path without any mode metadata is accepted.
func ValidatePathMode(p *models.TransportPath, preferred models.Mode) bool {
	if p == nil || len(p.Legs) == 0 {
		return false
	}
	if !preferred.Known() || !p.HasModeInfo() {
		return true
	}
	for _, l := range p.Legs {
		if l.Mode != preferred {
			return false
		}
	}
	return true
}
