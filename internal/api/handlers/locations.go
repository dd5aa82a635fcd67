package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/core"
	"aitendule/internal/types"
)

// LocationWriter persists user positions.
type LocationWriter interface {
	Insert(ctx context.Context, loc *types.UserLocation) error
}

// SaveLocationRequest is the request body for POST /api/v1/users/{id}/locations.
type SaveLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationHandler records device positions so the recommendation flow can
// resolve local weather.
type LocationHandler struct {
	locations LocationWriter
	logger    *slog.Logger
}

func NewLocationHandler(locations LocationWriter, l *slog.Logger) *LocationHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LocationHandler{locations: locations, logger: l}
}

// RegisterRoutes mounts location routes on the provided chi.Router.
func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users/{id}/locations", h.Save)
}

// Save handles POST /api/v1/users/{id}/locations.
func (h *LocationHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req SaveLocationRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidLat,
			"latitude must be between -90 and 90",
			nil,
		))
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidLon,
			"longitude must be between -180 and 180",
			nil,
		))
		return
	}

	loc := &types.UserLocation{
		UserID:    userID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.locations.Insert(r.Context(), loc); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: map[string]any{
		"user_id":   userID,
		"latitude":  req.Latitude,
		"longitude": req.Longitude,
	}})
}
