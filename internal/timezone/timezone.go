package timezone

import (
	"strings"
	"time"
)

var (
	CET *time.Location // UTC+1 - Central European (France, Italy, Spain)
	WET *time.Location // UTC+0 - Western European (Portugal, UK)
)

func init() {
	CET = loadOr("Europe/Paris", time.FixedZone("CET", 1*60*60))
	WET = loadOr("Europe/Lisbon", time.FixedZone("WET", 0))
}

func loadOr(name string, fallback *time.Location) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return fallback
}

var cityTimezones = map[string]string{
	// CET
	"paris":      "CET",
	"lyon":       "CET",
	"marseille":  "CET",
	"nice":       "CET",
	"toulouse":   "CET",
	"bordeaux":   "CET",
	"tours":      "CET",
	"nantes":     "CET",
	"rennes":     "CET",
	"lille":      "CET",
	"strasbourg": "CET",
	"madrid":     "CET",
	"barcelona":  "CET",
	"rome":       "CET",
	"milan":      "CET",
	"brussels":   "CET",
	"geneva":     "CET",

	// WET
	"lisbon": "WET",
	"porto":  "WET",
	"london": "WET",
}

func GetTimezoneByCity(city string) string {
	if tz, ok := cityTimezones[strings.ToLower(strings.TrimSpace(city))]; ok {
		return tz
	}
	return "CET"
}

func GetLocationByCity(city string) *time.Location {
	switch GetTimezoneByCity(city) {
	case "WET":
		return WET
	default:
		return CET
	}
}

// ParseTimeWithOffset parses a catalog timestamp. Timestamps that carry an
// offset keep it; naive ones are read in the local time of city.
func ParseTimeWithOffset(timeStr string, city string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	loc := GetLocationByCity(city)
	simpleFormats := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, format := range simpleFormats {
		if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// ParseDate parses an ISO-8601 calendar date at midnight in the city's zone.
func ParseDate(dateStr string, city string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(dateStr), GetLocationByCity(city))
}

// At returns day shifted by days, at hour:min in day's location.
func At(day time.Time, days, hour, min int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+days, hour, min, 0, 0, day.Location())
}

// SameDay compares calendar days, each time read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
