package assembler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/pathsearch"
	"github.com/dharmasatrya/holitrip/internal/providers"
	"github.com/dharmasatrya/holitrip/internal/timezone"
)

// fakeCatalog delegates each lookup to a function field; nil fields answer
// with nothing.
type fakeCatalog struct {
	transportsFn func(ctx context.Context, q pathsearch.Query) (models.TransportLookup, error)
	lodgingsFn   func(ctx context.Context, q filter.LodgingQuery) ([]models.Lodging, error)
	activitiesFn func(ctx context.Context, q filter.ActivityQuery) ([]models.Activity, error)
}

func (f *fakeCatalog) Name() string { return "fake" }

func (f *fakeCatalog) FindTransports(ctx context.Context, q pathsearch.Query) (models.TransportLookup, error) {
	if f.transportsFn == nil {
		return models.NoTransport(), nil
	}
	return f.transportsFn(ctx, q)
}

func (f *fakeCatalog) FindLodgings(ctx context.Context, q filter.LodgingQuery) ([]models.Lodging, error) {
	if f.lodgingsFn == nil {
		return nil, nil
	}
	return f.lodgingsFn(ctx, q)
}

func (f *fakeCatalog) FindActivities(ctx context.Context, q filter.ActivityQuery) ([]models.Activity, error) {
	if f.activitiesFn == nil {
		return nil, nil
	}
	return f.activitiesFn(ctx, q)
}

// withData answers from in-memory records the way the json catalog does.
func withData(legs []models.TransportLeg, lodgings []models.Lodging, activities []models.Activity) *fakeCatalog {
	return &fakeCatalog{
		transportsFn: func(_ context.Context, q pathsearch.Query) (models.TransportLookup, error) {
			return pathsearch.Find(legs, q), nil
		},
		lodgingsFn: func(_ context.Context, q filter.LodgingQuery) ([]models.Lodging, error) {
			return filter.Lodgings(lodgings, q), nil
		},
		activitiesFn: func(_ context.Context, q filter.ActivityQuery) ([]models.Activity, error) {
			return filter.Activities(activities, q), nil
		},
	}
}

type fakeGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (models.Coordinates, error)
	calls     atomic.Int32
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	g.calls.Add(1)
	return g.geocodeFn(ctx, address)
}

func failingGeocoder() *fakeGeocoder {
	return &fakeGeocoder{geocodeFn: func(_ context.Context, address string) (models.Coordinates, error) {
		return models.Coordinates{}, models.ErrGeocoding
	}}
}

// sameSpot places every address at the same point, so every activity is at
// distance zero from the lodging.
func sameSpot() *fakeGeocoder {
	return &fakeGeocoder{geocodeFn: func(context.Context, string) (models.Coordinates, error) {
		return models.Coordinates{Latitude: 45.76, Longitude: 4.83}, nil
	}}
}

func newAssembler(c providers.Catalog, g *fakeGeocoder) *Assembler {
	if g == nil {
		g = sameSpot()
	}
	return New(Config{
		Transports: c,
		Lodgings:   c,
		Activities: c,
		Geocoder:   g,
	})
}

func embedded(t *testing.T) *providers.JSONCatalog {
	t.Helper()
	c, err := providers.NewEmbeddedCatalog(nil)
	require.NoError(t, err)
	return c
}

func findOne(t *testing.T, a *Assembler, req models.SearchRequest) models.Itinerary {
	t.Helper()
	require.NoError(t, req.Validate())
	got := a.FindPackages(context.Background(), req)
	require.Len(t, got, 1)
	return got[0]
}

func codes(it models.Itinerary) []models.DiagnosticCode {
	var out []models.DiagnosticCode
	for _, d := range it.Diagnostics {
		out = append(out, d.Code)
	}
	return out
}

var day = time.Date(2026, time.June, 15, 0, 0, 0, 0, timezone.CET)

func at(days, hour, min int) time.Time {
	return timezone.At(day, days, hour, min)
}

func leg(from, to string, dep, arr time.Time, mode models.Mode, price float64) models.TransportLeg {
	return models.TransportLeg{Origin: from, Destination: to, Departure: dep, Arrival: arr, Mode: mode, Price: price}
}

var (
	parisLyonTrains = []models.TransportLeg{
		leg("Paris", "Lyon", at(0, 8, 0), at(0, 10, 0), models.ModeTrain, 60),
		leg("Lyon", "Paris", at(2, 18, 0), at(2, 20, 0), models.ModeTrain, 55),
	}
	lyonHotels = []models.Lodging{
		{Name: "Hotel des Celestins", Address: "4 Rue des Archers", City: "Lyon", Rating: 3, PricePerNight: 95},
	}
)

func baseRequest() models.SearchRequest {
	return models.SearchRequest{
		Origin:        "Paris",
		Destination:   "Lyon",
		DepartureDate: "2026-06-15",
		Nights:        2,
		MaxBudget:     1000,
	}
}

func TestFindPackages_ScenarioA_CheapestBothWays(t *testing.T) {
	a := newAssembler(embedded(t), nil)
	req := baseRequest()
	req.Nights = 3
	req.TransportPriority = "PRICE"

	it := findOne(t, a, req)

	assert.Empty(t, it.Diagnostics)
	assert.True(t, it.Valid())
	require.True(t, it.Outbound.IsDirect())
	require.True(t, it.Return.IsDirect())
	assert.Equal(t, 45.0, it.Outbound.TotalPrice())
	assert.Equal(t, 55.0, it.Return.TotalPrice())
	assert.Equal(t, "Ibis Lyon Part-Dieu", it.Lodging.Name)
	assert.Len(t, it.Activities, 4, "one of the two 2026-06-16 activities is dropped")
	assert.InDelta(t, 45+55+70*3+37, it.TotalPrice(), 1e-9)
	assert.NotEmpty(t, it.ID)
}

func TestFindPackages_ScenarioB_TrainConnection(t *testing.T) {
	a := newAssembler(embedded(t), nil)
	req := baseRequest()
	req.Origin, req.Destination = "Tours", "Nice"
	req.Nights = 3
	req.PreferredMode = "TRAIN"

	it := findOne(t, a, req)

	assert.Empty(t, it.Diagnostics)
	require.NotNil(t, it.Outbound)
	require.Len(t, it.Outbound.Legs, 2)
	assert.NoError(t, it.Outbound.Validate())
	assert.Equal(t, models.ModeTrain, it.Outbound.Mode())
	gap := it.Outbound.Legs[1].Departure.Sub(it.Outbound.Legs[0].Arrival)
	assert.GreaterOrEqual(t, gap, models.MinConnection)

	require.NotNil(t, it.Return)
	assert.Len(t, it.Return.Legs, 2)
	assert.NoError(t, it.Return.Validate())
}

func TestFindPackages_ScenarioC_FiveStarLodging(t *testing.T) {
	a := newAssembler(embedded(t), nil)
	req := baseRequest()
	req.Nights = 3
	req.MinRating = 5
	req.MaxBudget = 5000

	it := findOne(t, a, req)

	require.NotNil(t, it.Lodging)
	assert.Equal(t, 5, it.Lodging.Rating)
	assert.Equal(t, "Villa Florentine", it.Lodging.Name)
	assert.Empty(t, it.Diagnostics)
}

func TestFindPackages_ScenarioD_ZeroBudget(t *testing.T) {
	a := newAssembler(embedded(t), nil)
	req := baseRequest()
	req.Nights = 3
	req.MaxBudget = 0

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeBudgetExceeded}, codes(it))
	assert.False(t, it.Valid())
	require.NotNil(t, it.Outbound, "the itinerary is annotated, not discarded")
	for _, act := range it.Activities {
		assert.Zero(t, act.Price)
	}
}

func TestFindPackages_NoDataPlaceholder(t *testing.T) {
	a := newAssembler(&fakeCatalog{}, nil)

	it := findOne(t, a, baseRequest())

	assert.Equal(t, []models.DiagnosticCode{models.CodeNoData}, codes(it))
	assert.Nil(t, it.Outbound)
	assert.Nil(t, it.Return)
	assert.Nil(t, it.Lodging)
	assert.True(t, errors.Is(it.Diagnostics[0], models.ErrNoData))
}

func TestFindPackages_NoDataKeepsCatalogFailures(t *testing.T) {
	down := errors.New("connection refused")
	a := newAssembler(&fakeCatalog{
		transportsFn: func(context.Context, pathsearch.Query) (models.TransportLookup, error) {
			return models.TransportLookup{}, down
		},
		lodgingsFn: func(context.Context, filter.LodgingQuery) ([]models.Lodging, error) {
			return nil, down
		},
	}, nil)

	it := findOne(t, a, baseRequest())

	got := codes(it)
	require.NotEmpty(t, got)
	assert.Equal(t, models.CodeNoData, got[0])
	assert.Contains(t, got[1:], models.CodeCatalogUnavailable)
	for _, c := range got[1:] {
		assert.Equal(t, models.CodeCatalogUnavailable, c)
	}
	assert.Nil(t, it.Outbound)
	assert.Nil(t, it.Lodging)
}

func TestFindPackages_NoLodging(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, nil, nil), nil)

	it := findOne(t, a, baseRequest())

	assert.Equal(t, []models.DiagnosticCode{models.CodeNoLodging}, codes(it))
	assert.NotNil(t, it.Outbound)
	assert.NotNil(t, it.Return)
	assert.False(t, it.Valid())
}

func TestFindPackages_NoTransport(t *testing.T) {
	a := newAssembler(withData(nil, lyonHotels, nil), nil)

	it := findOne(t, a, baseRequest())

	assert.Equal(t, []models.DiagnosticCode{models.CodeNoTransport, models.CodeNoTransport}, codes(it))
	assert.NotNil(t, it.Lodging)
	assert.True(t, errors.Is(it.Diagnostics[0], models.ErrInfeasibleConstraint))
}

func TestFindPackages_ModeUnmatchedOutboundRelaxedReturn(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, nil), nil)
	req := baseRequest()
	req.PreferredMode = "PLANE"

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeModeUnmatched, models.CodeReturnModeRelaxed}, codes(it))
	assert.Nil(t, it.Outbound)
	require.NotNil(t, it.Return)
	assert.Equal(t, models.ModeTrain, it.Return.Mode())
	assert.Equal(t, models.SeverityWarning, it.Diagnostics[1].Severity)
}

func TestFindPackages_ModeIgnoredWithoutMetadata(t *testing.T) {
	legs := []models.TransportLeg{
		leg("Paris", "Lyon", at(0, 8, 0), at(0, 10, 0), models.ModeUnknown, 60),
		leg("Lyon", "Paris", at(2, 18, 0), at(2, 20, 0), models.ModeUnknown, 55),
	}
	a := newAssembler(withData(legs, lyonHotels, nil), nil)
	req := baseRequest()
	req.PreferredMode = "PLANE"

	it := findOne(t, a, req)

	assert.Empty(t, it.Diagnostics)
	assert.True(t, it.Valid())
}

func TestFindPackages_RatingUnmet(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, nil), nil)
	req := baseRequest()
	req.MinRating = 4

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeRatingUnmet}, codes(it))
	assert.Nil(t, it.Lodging)
}

func TestFindPackages_ConnectionInfeasible(t *testing.T) {
	legs := []models.TransportLeg{
		leg("Paris", "Lyon", at(0, 8, 0), at(0, 10, 0), models.ModeTrain, 60),
		leg("Lyon", "Paris", at(0, 9, 0), at(0, 11, 0), models.ModeTrain, 55),
	}
	a := newAssembler(withData(legs, lyonHotels, nil), nil)
	req := baseRequest()
	req.Nights = 0

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeConnectionInfeasible}, codes(it))
}

func TestFindPackages_BudgetExceeded(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, nil), nil)
	req := baseRequest()
	req.MaxBudget = 304.99

	it := findOne(t, a, req)
	assert.Equal(t, []models.DiagnosticCode{models.CodeBudgetExceeded}, codes(it))

	req.MaxBudget = 305
	it = findOne(t, a, req)
	assert.Empty(t, it.Diagnostics, "a total equal to the budget fits")
}

func TestFindPackages_MalformedDateSearchesAnyDay(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, nil), nil)
	req := baseRequest()
	req.DepartureDate = "15/06/2026"

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeMalformedDate}, codes(it))
	assert.NotNil(t, it.Outbound)
	assert.NotNil(t, it.Return)
	assert.True(t, it.Valid(), "warnings do not invalidate")
}

func TestFindPackages_CatalogFailureIsRecovered(t *testing.T) {
	c := withData(parisLyonTrains, lyonHotels, nil)
	c.activitiesFn = func(context.Context, filter.ActivityQuery) ([]models.Activity, error) {
		return nil, errors.New("connection refused")
	}
	a := newAssembler(c, nil)

	it := findOne(t, a, baseRequest())

	assert.Equal(t, []models.DiagnosticCode{models.CodeCatalogUnavailable}, codes(it))
	assert.Empty(t, it.Activities)
	assert.True(t, errors.Is(it.Diagnostics[0], models.ErrCollaborator))
}

var lyonActivities = []models.Activity{
	{Name: "near", Address: "1 Place Bellecour", City: "Lyon", Category: "CULTURE", Price: 10},
	{Name: "far", Address: "Aeroport Saint-Exupery", City: "Lyon", Category: "CULTURE", Price: 10},
}

func locator() *fakeGeocoder {
	coords := map[string]models.Coordinates{
		"4 Rue des Archers, Lyon":      {Latitude: 45.7606, Longitude: 4.8345},
		"1 Place Bellecour, Lyon":      {Latitude: 45.7578, Longitude: 4.8320},
		"Aeroport Saint-Exupery, Lyon": {Latitude: 45.7256, Longitude: 5.0811},
	}
	return &fakeGeocoder{geocodeFn: func(_ context.Context, address string) (models.Coordinates, error) {
		c, ok := coords[address]
		if !ok {
			return models.Coordinates{}, models.ErrGeocoding
		}
		return c, nil
	}}
}

func TestFindPackages_ActivitiesWithinDistance(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, lyonActivities), locator())
	req := baseRequest()
	req.MaxDistanceKm = 5

	it := findOne(t, a, req)

	assert.Empty(t, it.Diagnostics)
	require.Len(t, it.Activities, 1)
	assert.Equal(t, "near", it.Activities[0].Name)
}

func TestFindPackages_LodgingGeocodingFailure(t *testing.T) {
	a := newAssembler(withData(parisLyonTrains, lyonHotels, lyonActivities), failingGeocoder())
	req := baseRequest()
	req.MaxDistanceKm = 5

	it := findOne(t, a, req)

	assert.Equal(t, []models.DiagnosticCode{models.CodeGeocodingFailed}, codes(it))
	assert.Empty(t, it.Activities)
	assert.True(t, it.Valid())
}

func TestFindPackages_ZeroDistanceExcludesDistantActivities(t *testing.T) {
	activities := append([]models.Activity{
		{Name: "Far Museum", Address: "Rue de Rivoli", City: "Lyon", Category: "CULTURE", Price: 10},
		{Name: "Hotel bar", Address: "4 Rue des Archers", City: "Lyon", Category: "CULTURE", Price: 10},
	}, lyonActivities...)
	g := locator()
	inner := g.geocodeFn
	g.geocodeFn = func(ctx context.Context, address string) (models.Coordinates, error) {
		if address == "Rue de Rivoli, Lyon" {
			return models.Coordinates{Latitude: 48.8606, Longitude: 2.3376}, nil
		}
		return inner(ctx, address)
	}
	a := newAssembler(withData(parisLyonTrains, lyonHotels, activities), g)
	req := baseRequest()
	req.MaxDistanceKm = 0

	it := findOne(t, a, req)

	assert.Empty(t, it.Diagnostics)
	require.Len(t, it.Activities, 1)
	assert.Equal(t, "Hotel bar", it.Activities[0].Name)
	assert.Positive(t, g.calls.Load())
}

func TestFindPackages_MemoizesCoordinates(t *testing.T) {
	g := locator()
	a := newAssembler(withData(parisLyonTrains, lyonHotels, lyonActivities), g)
	req := baseRequest()
	req.MaxDistanceKm = 5

	findOne(t, a, req)
	first := g.calls.Load()
	findOne(t, a, req)

	assert.Equal(t, int32(3), first)
	assert.Equal(t, first, g.calls.Load(), "second search is served from the memo")
}
