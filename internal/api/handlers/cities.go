package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/core"
	"aitendule/internal/types"
)

// CityRepo is the data access contract for a user's saved city list.
type CityRepo interface {
	ListForUser(ctx context.Context, userID int) ([]types.City, error)
	Add(ctx context.Context, userID int, cityName string) error
	DeleteByName(ctx context.Context, userID int, cityName string) error
}

// AddCityRequest is the request body for POST /api/v1/users/{id}/cities.
type AddCityRequest struct {
	CityName string `json:"city_name" validate:"required,max=100"`
}

// CityHandler manages the saved city list shown on the weather screen.
type CityHandler struct {
	cities    CityRepo
	validator *core.Validator
	logger    *slog.Logger
}

func NewCityHandler(cities CityRepo, v *core.Validator, l *slog.Logger) *CityHandler {
	if l == nil {
		l = slog.Default()
	}
	return &CityHandler{cities: cities, validator: v, logger: l}
}

// RegisterRoutes mounts city routes on the provided chi.Router.
func (h *CityHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{id}/cities", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{city}", h.Delete)
	})
}

// List handles GET /api/v1/users/{id}/cities.
func (h *CityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	cities, err := h.cities.ListForUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if cities == nil {
		cities = []types.City{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: cities})
}

// Add handles POST /api/v1/users/{id}/cities. Duplicate cities for the
// same user are a 409 conflict.
func (h *CityHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req AddCityRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.cities.Add(r.Context(), userID, req.CityName); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: map[string]any{
		"city_name": req.CityName,
	}})
}

// Delete handles DELETE /api/v1/users/{id}/cities/{city}. The city segment
// is URL-decoded so Japanese city names round-trip.
func (h *CityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	cityName := chi.URLParam(r, "city")
	if decoded, decErr := url.PathUnescape(cityName); decErr == nil {
		cityName = decoded
	}
	if cityName == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"city name must not be empty",
			nil,
		))
		return
	}

	if err := h.cities.DeleteByName(r.Context(), userID, cityName); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"deleted": cityName,
	}})
}
