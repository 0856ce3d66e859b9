package models

type SearchMetadata struct {
	SearchID      string `json:"search_id"`
	TotalResults  int    `json:"total_results"`
	SearchTimeMs  int64  `json:"search_time_ms"`
	CatalogDriver string `json:"catalog_driver"`
}

type ItineraryView struct {
	Itinerary
	Valid               bool    `json:"valid"`
	TotalPrice          float64 `json:"total_price"`
	TotalPriceFormatted string  `json:"total_price_formatted"`
}

type SearchResponse struct {
	SearchCriteria SearchRequest   `json:"search_criteria"`
	Metadata       SearchMetadata  `json:"metadata"`
	Itineraries    []ItineraryView `json:"itineraries"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
