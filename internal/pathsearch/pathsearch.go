// Package pathsearch finds transport journeys in a leg catalog: direct legs
// first, then the fewest-legs connection honoring mode homogeneity and
// minimum connection time.
package pathsearch

import (
	"strings"
	"time"

	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/timezone"
)

type Query struct {
	Origin      string
	Destination string
	Date        time.Time // zero means any day
	Mode        models.Mode
}

// Find answers a transport query from legs. Matching direct legs are returned
// as independent candidates; otherwise a breadth-first search assembles the
// path with the fewest legs, up to models.MaxLegs.
func Find(legs []models.TransportLeg, q Query) models.TransportLookup {
	direct := filter.Transports(legs, filter.TransportQuery{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date,
		Mode:        q.Mode,
	})
	if len(direct) > 0 {
		return models.DirectCandidates(direct)
	}

	if q.Origin == "" || q.Destination == "" {
		return models.NoTransport()
	}
	if !Reachable(legs, q.Origin, q.Destination, q.Mode) {
		return models.NoTransport()
	}
	if path := search(legs, q); path != nil {
		return models.AssembledPath(path)
	}
	return models.NoTransport()
}

type partial struct {
	legs    []models.TransportLeg
	visited map[string]struct{}
}

func (p partial) last() models.TransportLeg {
	return p.legs[len(p.legs)-1]
}

func (p partial) extend(l models.TransportLeg) partial {
	legs := make([]models.TransportLeg, len(p.legs), len(p.legs)+1)
	copy(legs, p.legs)

	visited := make(map[string]struct{}, len(p.visited)+1)
	for c := range p.visited {
		visited[c] = struct{}{}
	}
	visited[cityKey(l.Destination)] = struct{}{}

	return partial{legs: append(legs, l), visited: visited}
}

func search(legs []models.TransportLeg, q Query) *models.TransportPath {
	origin := cityKey(q.Origin)

	var queue []partial
	for _, l := range legs {
		if !models.SameCity(l.Origin, q.Origin) {
			continue
		}
		if !q.Date.IsZero() && !timezone.SameDay(l.Departure, q.Date) {
			continue
		}
		if q.Mode.Known() && l.Mode != q.Mode {
			continue
		}
		if cityKey(l.Destination) == origin {
			continue
		}
		seed := partial{visited: map[string]struct{}{origin: {}}}
		queue = append(queue, seed.extend(l))
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		last := cur.last()
		if models.SameCity(last.Destination, q.Destination) {
			return models.NewTransportPath(cur.legs...)
		}
		if len(cur.legs) >= models.MaxLegs {
			continue
		}

		mode := cur.legs[0].Mode
		for _, next := range legs {
			if !canFollow(cur, last, next, mode) {
				continue
			}
			queue = append(queue, cur.extend(next))
		}
	}

	return nil
}

func canFollow(cur partial, last, next models.TransportLeg, mode models.Mode) bool {
	if !models.SameCity(next.Origin, last.Destination) {
		return false
	}
	if _, seen := cur.visited[cityKey(next.Destination)]; seen {
		return false
	}
	if next.Mode != mode {
		return false
	}
	if last.Arrival.IsZero() || next.Departure.IsZero() {
		return false
	}
	return next.Departure.Sub(last.Arrival) >= models.MinConnection
}

func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
