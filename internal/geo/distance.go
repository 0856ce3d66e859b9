package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/dharmasatrya/holitrip/internal/models"
)

const EarthRadiusKm = 6371.0

type DistanceCalculator interface {
	Distance(a, b models.Coordinates) (float64, error)
}

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Haversine computes great-circle distances in kilometers.
type Haversine struct{}

func (Haversine) Distance(a, b models.Coordinates) (float64, error) {
	if err := checkCoordinates(a); err != nil {
		return 0, err
	}
	if err := checkCoordinates(b); err != nil {
		return 0, err
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

func checkCoordinates(c models.Coordinates) error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinates, c.Latitude, c.Longitude)
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
