package filter

import (
	"strings"
	"time"

	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/timezone"
)

// TransportQuery selects catalog legs. Empty cities, a zero Date and
// ModeUnknown each match anything.
type TransportQuery struct {
	Origin      string
	Destination string
	Date        time.Time
	Mode        models.Mode
}

type LodgingQuery struct {
	City      string
	MinRating int
	MaxPrice  *float64
}

type ActivityQuery struct {
	City       string
	Categories []string
	Date       *models.Date
	MaxPrice   *float64
}

func Transports(legs []models.TransportLeg, q TransportQuery) []models.TransportLeg {
	result := make([]models.TransportLeg, 0, len(legs))
	for _, l := range legs {
		if MatchesTransport(l, q) {
			result = append(result, l)
		}
	}
	return result
}

func MatchesTransport(l models.TransportLeg, q TransportQuery) bool {
	if q.Origin != "" && !models.SameCity(l.Origin, q.Origin) {
		return false
	}
	if q.Destination != "" && !models.SameCity(l.Destination, q.Destination) {
		return false
	}
	if !q.Date.IsZero() && !timezone.SameDay(l.Departure, q.Date) {
		return false
	}
	if q.Mode.Known() && l.Mode != q.Mode {
		return false
	}
	return true
}

func Lodgings(lodgings []models.Lodging, q LodgingQuery) []models.Lodging {
	result := make([]models.Lodging, 0, len(lodgings))
	for _, h := range lodgings {
		if matchesLodging(h, q) {
			result = append(result, h)
		}
	}
	return result
}

func matchesLodging(h models.Lodging, q LodgingQuery) bool {
	if q.City != "" && !models.SameCity(h.City, q.City) {
		return false
	}
	if h.Rating < q.MinRating {
		return false
	}
	if q.MaxPrice != nil && h.PricePerNight > *q.MaxPrice {
		return false
	}
	return true
}

func Activities(activities []models.Activity, q ActivityQuery) []models.Activity {
	result := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if matchesActivity(a, q) {
			result = append(result, a)
		}
	}
	return result
}

func matchesActivity(a models.Activity, q ActivityQuery) bool {
	if q.City != "" && !models.SameCity(a.City, q.City) {
		return false
	}

	if len(q.Categories) > 0 {
		found := false
		for _, c := range q.Categories {
			if strings.EqualFold(strings.TrimSpace(c), a.Category) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.Date != nil {
		key, ok := a.DateKey()
		if !ok || key != q.Date.String() {
			return false
		}
	}

	if q.MaxPrice != nil && a.Price > *q.MaxPrice {
		return false
	}

	return true
}
