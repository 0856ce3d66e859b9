package pathsearch

import (
	"fmt"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/dharmasatrya/holitrip/internal/models"
)

// Reachable reports whether destination can be reached from origin in at
// most models.MaxLegs hops of the city graph built from legs. Timing and
// revisits are ignored, so a false answer proves no path exists.
func Reachable(legs []models.TransportLeg, origin, destination string, mode models.Mode) bool {
	g, err := CityGraph(legs, mode)
	if err != nil {
		// nothing proven, leave it to the timed search
		return true
	}

	res, err := bfs.BFS(g, cityKey(origin), bfs.WithMaxDepth(models.MaxLegs))
	if err != nil {
		// origin has no outgoing leg
		return false
	}
	_, ok := res.Depth[cityKey(destination)]
	return ok
}

// CityGraph builds the directed multigraph of cities with one edge per leg
// of the given mode (every leg when mode is unknown).
func CityGraph(legs []models.TransportLeg, mode models.Mode) (*core.Graph, error) {
	g, err := core.NewGraph(core.WithDirected(true), core.WithMultiEdges())
	if err != nil {
		return nil, fmt.Errorf("pathsearch.CityGraph: %w", err)
	}
	for _, l := range legs {
		if mode.Known() && l.Mode != mode {
			continue
		}
		from, to := cityKey(l.Origin), cityKey(l.Destination)
		if from == "" || to == "" || from == to {
			continue
		}
		if _, err := g.AddEdge(from, to, 0); err != nil {
			return nil, fmt.Errorf("pathsearch.CityGraph: edge %s -> %s: %w", from, to, err)
		}
	}
	return g, nil
}
