package ranking

import "github.com/dharmasatrya/holitrip/internal/models"

// FilterByRating keeps lodgings rated at least minRating. Zero keeps all.
func FilterByRating(lodgings []models.Lodging, minRating int) []models.Lodging {
	if minRating <= 0 {
		return lodgings
	}
	result := make([]models.Lodging, 0, len(lodgings))
	for _, h := range lodgings {
		if h.Rating >= minRating {
			result = append(result, h)
		}
	}
	return result
}

// SelectLodging picks the cheapest or highest-rated lodging; without a
// priority the first candidate wins. Ties keep catalog order.
func SelectLodging(candidates []models.Lodging, priority models.LodgingPriority) (models.Lodging, bool) {
	if len(candidates) == 0 {
		return models.Lodging{}, false
	}

	best := candidates[0]
	for _, h := range candidates[1:] {
		switch priority {
		case models.LodgingPriorityPrice:
			if h.PricePerNight < best.PricePerNight {
				best = h
			}
		case models.LodgingPriorityRating:
			if h.Rating > best.Rating {
				best = h
			}
		}
	}
	return best, true
}
