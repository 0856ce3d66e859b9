package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dharmasatrya/holitrip/internal/filter"
	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/internal/pathsearch"
	"github.com/dharmasatrya/holitrip/internal/providers/data"
	"github.com/dharmasatrya/holitrip/internal/timezone"
)

type rawTransport struct {
	DepartureCity     string  `json:"departureCity"`
	ArrivalCity       string  `json:"arrivalCity"`
	DepartureDateTime string  `json:"departureDateTime"`
	ArrivalDateTime   string  `json:"arrivalDateTime"`
	Mode              string  `json:"mode"`
	Price             float64 `json:"price"`
}

type rawHotel struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Rating        int     `json:"rating"`
	PricePerNight float64 `json:"pricePerNight"`
}

type rawActivity struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
}

// JSONCatalog serves transports, hotels and activities loaded once from JSON
// documents. Records failing validation are skipped at load time.
type JSONCatalog struct {
	legs       []models.TransportLeg
	lodgings   []models.Lodging
	activities []models.Activity
}

func NewEmbeddedCatalog(logger *slog.Logger) (*JSONCatalog, error) {
	return NewJSONCatalog(data.Transports, data.Hotels, data.Activities, logger)
}

func NewJSONCatalog(transports, hotels, activities []byte, logger *slog.Logger) (*JSONCatalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &JSONCatalog{}

	var rawLegs []rawTransport
	if err := json.Unmarshal(transports, &rawLegs); err != nil {
		return nil, NewProviderError("json", fmt.Errorf("decode transports: %w", err))
	}
	for i, r := range rawLegs {
		l, err := r.normalize()
		if err != nil {
			logger.Warn("skipping transport", "index", i, "error", err)
			continue
		}
		c.legs = append(c.legs, l)
	}

	var rawHotels []rawHotel
	if err := json.Unmarshal(hotels, &rawHotels); err != nil {
		return nil, NewProviderError("json", fmt.Errorf("decode hotels: %w", err))
	}
	for i, r := range rawHotels {
		h, err := r.normalize()
		if err != nil {
			logger.Warn("skipping hotel", "index", i, "error", err)
			continue
		}
		c.lodgings = append(c.lodgings, h)
	}

	var rawActivities []rawActivity
	if err := json.Unmarshal(activities, &rawActivities); err != nil {
		return nil, NewProviderError("json", fmt.Errorf("decode activities: %w", err))
	}
	for i, r := range rawActivities {
		a, err := r.normalize()
		if err != nil {
			logger.Warn("skipping activity", "index", i, "error", err)
			continue
		}
		c.activities = append(c.activities, a)
	}

	logger.Info("json catalog loaded",
		"transports", len(c.legs),
		"hotels", len(c.lodgings),
		"activities", len(c.activities),
	)
	return c, nil
}

func (c *JSONCatalog) Name() string {
	return "json"
}

func (c *JSONCatalog) FindTransports(ctx context.Context, q pathsearch.Query) (models.TransportLookup, error) {
	if err := ctx.Err(); err != nil {
		return models.NoTransport(), err
	}
	return pathsearch.Find(c.legs, q), nil
}

func (c *JSONCatalog) FindLodgings(ctx context.Context, q filter.LodgingQuery) ([]models.Lodging, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter.Lodgings(c.lodgings, q), nil
}

func (c *JSONCatalog) FindActivities(ctx context.Context, q filter.ActivityQuery) ([]models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter.Activities(c.activities, q), nil
}

func (r rawTransport) normalize() (models.TransportLeg, error) {
	dep, err := timezone.ParseTimeWithOffset(r.DepartureDateTime, r.DepartureCity)
	if err != nil {
		return models.TransportLeg{}, fmt.Errorf("%w: departure: %v", models.ErrInvalidLeg, err)
	}
	arr, err := timezone.ParseTimeWithOffset(r.ArrivalDateTime, r.ArrivalCity)
	if err != nil {
		return models.TransportLeg{}, fmt.Errorf("%w: arrival: %v", models.ErrInvalidLeg, err)
	}
	mode, err := models.ParseMode(r.Mode)
	if err != nil {
		return models.TransportLeg{}, err
	}

	l := models.TransportLeg{
		Origin:      r.DepartureCity,
		Destination: r.ArrivalCity,
		Departure:   dep,
		Arrival:     arr,
		Mode:        mode,
		Price:       r.Price,
	}
	if err := l.Validate(); err != nil {
		return models.TransportLeg{}, err
	}
	return l, nil
}

func (r rawHotel) normalize() (models.Lodging, error) {
	if r.Name == "" || r.City == "" {
		return models.Lodging{}, errors.New("hotel without name or city")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return models.Lodging{}, fmt.Errorf("hotel %q: rating %d out of range", r.Name, r.Rating)
	}
	if r.PricePerNight < 0 {
		return models.Lodging{}, fmt.Errorf("hotel %q: negative price", r.Name)
	}
	return models.Lodging{
		Name:          r.Name,
		Address:       r.Address,
		City:          r.City,
		Rating:        r.Rating,
		PricePerNight: r.PricePerNight,
	}, nil
}

func (r rawActivity) normalize() (models.Activity, error) {
	if r.Name == "" || r.City == "" {
		return models.Activity{}, errors.New("activity without name or city")
	}
	if r.Price < 0 {
		return models.Activity{}, fmt.Errorf("activity %q: negative price", r.Name)
	}

	a := models.Activity{
		Name:     r.Name,
		Address:  r.Address,
		City:     r.City,
		Category: r.Category,
		Price:    r.Price,
	}
	if r.Date != "" {
		d, err := models.ParseDate(r.Date)
		if err != nil {
			return models.Activity{}, fmt.Errorf("activity %q: %w", r.Name, err)
		}
		a.Date = &d
	}
	return a, nil
}
