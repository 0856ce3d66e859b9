// Package assembler builds itineraries: it fetches transport, lodging and
// activity candidates from the catalogs, selects one of each according to the
// traveler's priorities and records every unmet constraint as a diagnostic.
package assembler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/holitrip/internal/activity"
	"github.com/dharmasatrya/holitrip/internal/cache"
	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/geo"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/pathsearch"
	"github.com/dharmasatrya/holitrip/internal/providers"
	"github.com/dharmasatrya/holitrip/internal/ranking"
	"github.com/dharmasatrya/holitrip/internal/timezone"
)

const (
	outboundHour = 8
	returnHour   = 18
)

type Config struct {
	Transports providers.TransportCatalog
	Lodgings   providers.LodgingCatalog
	Activities providers.ActivityCatalog
	Geocoder   geo.Geocoder
	Distance   geo.DistanceCalculator

	// Cache memoizes resolved coordinates for the lifetime of the Assembler.
	// Defaults to an in-memory cache.
	Cache  cache.Cache
	Logger *slog.Logger
}

type Assembler struct {
	transports providers.TransportCatalog
	lodgings   providers.LodgingCatalog
	activities providers.ActivityCatalog
	geocoder   geo.Geocoder
	picker     *activity.Picker
	logger     *slog.Logger
	newID      func() string
}

func New(cfg Config) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	memo := cfg.Cache
	if memo == nil {
		memo = cache.NewMemoryCache()
	}
	distance := cfg.Distance
	if distance == nil {
		distance = geo.Haversine{}
	}

	geocoder := geo.NewCachedGeocoder(cfg.Geocoder, memo, logger)
	return &Assembler{
		transports: cfg.Transports,
		lodgings:   cfg.Lodgings,
		activities: cfg.Activities,
		geocoder:   geocoder,
		picker:     activity.NewPicker(geocoder, distance, logger),
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// FindPackages assembles the itinerary for req. It always returns exactly one
// itinerary; catalog and geocoding failures are recorded as diagnostics.
// req is expected to have passed models.SearchRequest.Validate.
func (a *Assembler) FindPackages(ctx context.Context, req models.SearchRequest) []models.Itinerary {
	start := time.Now()
	it := models.Itinerary{
		ID:         a.newID(),
		Nights:     max(req.Nights, 0),
		Activities: []models.Activity{},
	}

	outDay, retDay, resolved := window(req)
	if !resolved {
		it.AddDiagnostic(models.CodeMalformedDate, "departure date %q is not YYYY-MM-DD, searching any date", req.DepartureDate)
	}

	outbound := a.selectJourney(ctx, &it, journeyQuery{
		from:     req.Origin,
		to:       req.Destination,
		day:      outDay,
		mode:     req.PreferredMode,
		priority: req.TransportPriority,
	})
	ret := a.selectJourney(ctx, &it, journeyQuery{
		from:     req.Destination,
		to:       req.Origin,
		day:      retDay,
		mode:     req.PreferredMode,
		priority: req.TransportPriority,
		relax:    true,
	})
	stay := a.selectLodging(ctx, &it, req)

	noTransport := outbound.status == journeyNone && ret.status == journeyNone
	if noTransport && stay.status == lodgingNone {
		a.logger.Info("no data for search", "origin", req.Origin, "destination", req.Destination, "date", req.DepartureDate)
		return []models.Itinerary{placeholder(a.newID(), req, it.Diagnostics)}
	}

	recordJourney(&it, outbound, "outbound", req)
	recordJourney(&it, ret, "return", req)
	it.Outbound = outbound.path
	it.Return = ret.path

	switch stay.status {
	case lodgingNone:
		it.AddDiagnostic(models.CodeNoLodging, "no lodging in %s", req.Destination)
	case lodgingRatingUnmet:
		it.AddDiagnostic(models.CodeRatingUnmet, "no lodging in %s rated %d stars or more", req.Destination, req.MinRating)
	}
	it.Lodging = stay.lodging

	it.Activities = a.pickActivities(ctx, &it, req)

	if it.Outbound != nil && it.Return != nil {
		arrival, okArr := it.Outbound.LastArrival()
		departure, okDep := it.Return.FirstDeparture()
		if okArr && okDep && !departure.After(arrival) {
			it.AddDiagnostic(models.CodeConnectionInfeasible, "return departs %s, before the outbound arrives %s",
				departure.Format(time.RFC3339), arrival.Format(time.RFC3339))
		}
	}

	if total := it.TotalPrice(); total > req.MaxBudget {
		it.AddDiagnostic(models.CodeBudgetExceeded, "total %.2f exceeds budget %.2f", total, req.MaxBudget)
	}

	a.logger.Info("itinerary assembled",
		"id", it.ID,
		"origin", req.Origin,
		"destination", req.Destination,
		"valid", it.Valid(),
		"errors", len(it.Errors()),
		"warnings", len(it.Warnings()),
		"duration", time.Since(start),
	)
	return []models.Itinerary{it}
}

// window resolves the outbound and return days. An empty date searches any
// day; an unparsable one does too and reports false.
func window(req models.SearchRequest) (outbound, ret time.Time, ok bool) {
	if req.DepartureDate == "" {
		return time.Time{}, time.Time{}, true
	}
	outDay, err := timezone.ParseDate(req.DepartureDate, req.Origin)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	retDay, err := timezone.ParseDate(req.DepartureDate, req.Destination)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return timezone.At(outDay, 0, outboundHour, 0), timezone.At(retDay, max(req.Nights, 0), returnHour, 0), true
}

// placeholder is the itinerary returned when nothing was found. It keeps the
// catalog failures seen so far, so an outage is not mistaken for no data.
func placeholder(id string, req models.SearchRequest, seen []models.Diagnostic) models.Itinerary {
	it := models.Itinerary{
		ID:         id,
		Nights:     max(req.Nights, 0),
		Activities: []models.Activity{},
	}
	it.AddDiagnostic(models.CodeNoData, "no transport between %s and %s and no lodging in %s",
		req.Origin, req.Destination, req.Destination)
	for _, d := range seen {
		if d.Code == models.CodeCatalogUnavailable {
			it.Diagnostics = append(it.Diagnostics, d)
		}
	}
	return it
}

func recordJourney(it *models.Itinerary, j journey, direction string, req models.SearchRequest) {
	switch j.status {
	case journeyNone:
		it.AddDiagnostic(models.CodeNoTransport, "no %s transport from %s to %s", direction, j.from, j.to)
	case journeyModeUnmatched:
		it.AddDiagnostic(models.CodeModeUnmatched, "no %s transport from %s to %s by %s", direction, j.from, j.to, req.PreferredMode)
	case journeyRelaxed:
		it.AddDiagnostic(models.CodeReturnModeRelaxed, "no %s transport by %s, using %s", direction, req.PreferredMode, j.path.Mode())
	}
}

func (a *Assembler) pickActivities(ctx context.Context, it *models.Itinerary, req models.SearchRequest) []models.Activity {
	candidates, err := a.activities.FindActivities(ctx, filter.ActivityQuery{
		City:       req.Destination,
		Categories: req.Categories,
	})
	if err != nil {
		a.catalogFailed(it, a.activities.Name(), "activities", err)
		return []models.Activity{}
	}

	var coords *models.Coordinates
	if it.Lodging != nil && len(candidates) > 0 {
		c, err := a.geocoder.Geocode(ctx, it.Lodging.FullAddress())
		if err != nil {
			a.logger.Warn("lodging geocoding failed", "lodging", it.Lodging.Name, "error", err)
			it.AddDiagnostic(models.CodeGeocodingFailed, "could not locate %s, activities are excluded", it.Lodging.Name)
		} else {
			coords = &c
		}
	}

	remaining := activity.RemainingBudget(req.MaxBudget, it.Outbound, it.Return, it.Lodging, it.Nights)
	return a.picker.Pick(ctx, candidates, coords, req.MaxDistanceKm, remaining)
}

func (a *Assembler) catalogFailed(it *models.Itinerary, catalog, what string, err error) {
	a.logger.Warn("catalog lookup failed", "catalog", catalog, "records", what, "error", err)
	it.AddDiagnostic(models.CodeCatalogUnavailable, "%s catalog unavailable for %s", catalog, what)
}

type journeyStatus int

const (
	journeyNone journeyStatus = iota
	journeyFound
	journeyRelaxed
	journeyModeUnmatched
)

type journeyQuery struct {
	from, to string
	day      time.Time
	mode     models.Mode
	priority models.TransportPriority
	// relax allows falling back to any mode when the preferred one is unmet.
	relax bool
}

type journey struct {
	from, to string
	status   journeyStatus
	path     *models.TransportPath
}

// selectJourney asks the catalog for the preferred mode first. When that
// yields nothing it asks again for any mode, both to tell an unmatched mode
// apart from a missing route and to honor candidates without mode metadata.
func (a *Assembler) selectJourney(ctx context.Context, it *models.Itinerary, q journeyQuery) journey {
	j := journey{from: q.from, to: q.to}

	if p := a.choose(a.lookup(ctx, it, q, q.mode), q.mode, q.priority); p != nil {
		j.status, j.path = journeyFound, p
		return j
	}
	if !q.mode.Known() {
		return j
	}

	anyMode := a.lookup(ctx, it, q, models.ModeUnknown)
	if anyMode.Empty() {
		return j
	}
	if p := a.choose(anyMode, q.mode, q.priority); p != nil {
		j.status, j.path = journeyFound, p
		return j
	}
	if q.relax {
		if p := a.choose(anyMode, models.ModeUnknown, q.priority); p != nil {
			j.status, j.path = journeyRelaxed, p
			return j
		}
	}
	j.status = journeyModeUnmatched
	return j
}

func (a *Assembler) lookup(ctx context.Context, it *models.Itinerary, q journeyQuery, mode models.Mode) models.TransportLookup {
	lk, err := a.transports.FindTransports(ctx, pathsearch.Query{
		Origin:      q.from,
		Destination: q.to,
		Date:        q.day,
		Mode:        mode,
	})
	if err != nil {
		a.catalogFailed(it, a.transports.Name(), "transports "+q.from+" -> "+q.to, err)
		return models.NoTransport()
	}
	return lk
}

func (a *Assembler) choose(lk models.TransportLookup, mode models.Mode, priority models.TransportPriority) *models.TransportPath {
	switch lk.Kind {
	case models.LookupPath:
		if err := lk.Path.Validate(); err != nil {
			a.logger.Warn("catalog returned an invalid path", "error", err)
			return nil
		}
		if !ranking.ValidatePathMode(lk.Path, mode) {
			return nil
		}
		return lk.Path
	case models.LookupDirect:
		leg, ok := ranking.SelectTransport(lk.Candidates, mode, priority)
		if !ok {
			return nil
		}
		return models.NewTransportPath(leg)
	default:
		return nil
	}
}

type lodgingStatus int

const (
	lodgingNone lodgingStatus = iota
	lodgingFound
	lodgingRatingUnmet
)

type stay struct {
	status  lodgingStatus
	lodging *models.Lodging
}

func (a *Assembler) selectLodging(ctx context.Context, it *models.Itinerary, req models.SearchRequest) stay {
	candidates, err := a.lodgings.FindLodgings(ctx, filter.LodgingQuery{City: req.Destination, MinRating: req.MinRating})
	if err != nil {
		a.catalogFailed(it, a.lodgings.Name(), "lodgings", err)
		return stay{}
	}

	candidates = ranking.FilterByRating(candidates, req.MinRating)
	if best, ok := ranking.SelectLodging(candidates, req.LodgingPriority); ok && best.Rating >= req.MinRating {
		return stay{status: lodgingFound, lodging: &best}
	}
	if req.MinRating <= 0 {
		return stay{}
	}

	// Distinguish an unmet rating from a city without lodging.
	all, err := a.lodgings.FindLodgings(ctx, filter.LodgingQuery{City: req.Destination})
	if err != nil {
		a.catalogFailed(it, a.lodgings.Name(), "lodgings", err)
		return stay{}
	}
	if len(all) == 0 {
		return stay{}
	}
	return stay{status: lodgingRatingUnmet}
}
