package models

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type Lodging struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Rating        int     `json:"rating"`
	PricePerNight float64 `json:"price_per_night"`
}

// FullAddress is the string handed to the geocoder.
func (l Lodging) FullAddress() string {
	return joinAddress(l.Address, l.City)
}

func (l Lodging) Cost(nights int) float64 {
	if nights < 0 {
		nights = 0
	}
	return l.PricePerNight * float64(nights)
}

func joinAddress(address, city string) string {
	switch {
	case address == "":
		return city
	case city == "":
		return address
	default:
		return address + ", " + city
	}
}
