package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/holitrip/internal/models"
	"github.com/dharmasatrya/holitrip/pkg/currency"
)

type PackageFinder interface {
	FindPackages(ctx context.Context, req models.SearchRequest) []models.Itinerary
}

type SearchHandler struct {
	finder        PackageFinder
	validate      *validator.Validate
	catalogDriver string
}

func NewSearchHandler(finder PackageFinder, catalogDriver string) *SearchHandler {
	return &SearchHandler{
		finder:        finder,
		validate:      validator.New(),
		catalogDriver: catalogDriver,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Validation failed: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	itineraries := h.finder.FindPackages(c.Request().Context(), req)

	views := make([]models.ItineraryView, 0, len(itineraries))
	for _, it := range itineraries {
		total := it.TotalPrice()
		views = append(views, models.ItineraryView{
			Itinerary:           it,
			Valid:               it.Valid(),
			TotalPrice:          total,
			TotalPriceFormatted: currency.FormatEUR(total),
		})
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchCriteria: req,
		Metadata: models.SearchMetadata{
			SearchID:      uuid.NewString(),
			TotalResults:  len(views),
			SearchTimeMs:  time.Since(startTime).Milliseconds(),
			CatalogDriver: h.catalogDriver,
		},
		Itineraries: views,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
