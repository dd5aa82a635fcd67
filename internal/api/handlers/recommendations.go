package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aitendule/internal/core"
	"aitendule/internal/types"
)

// RecLocationRepo resolves a user's most recent recorded position.
type RecLocationRepo interface {
	LatestForUser(ctx context.Context, userID int) (*types.UserLocation, error)
}

// RecWeatherProvider fetches current conditions for a coordinate pair.
type RecWeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*types.WeatherObservation, error)
}

// Recommender produces the per-category outfit recommendation.
type Recommender interface {
	RecommendAll(ctx context.Context, rc types.RawContext) (types.Recommendation, error)
}

// RecAdviceProvider generates the optional advice text. May be nil.
type RecAdviceProvider interface {
	Advise(ctx context.Context, obs *types.WeatherObservation, rec types.Recommendation) (string, error)
}

// RecImageProvider resolves an item name to an image URL. May be nil.
type RecImageProvider interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// RecommendationResponse is the body for GET /api/v1/users/{id}/recommendation.
// Recommendation always carries every category key; a null value means no
// model could produce a prediction for that category.
type RecommendationResponse struct {
	Recommendation types.Recommendation `json:"recommendation"`
	Weather        string               `json:"weather"`
	TemperatureC   float64              `json:"temperature"`
	Advice         string               `json:"advice,omitempty"`
	ImageURL       string               `json:"image_url,omitempty"`
}

// RecommendationHandler drives the full recommendation flow: location,
// weather, inference, and optional enrichment.
type RecommendationHandler struct {
	locations   RecLocationRepo
	weather     RecWeatherProvider
	recommender Recommender
	adviser     RecAdviceProvider
	images      RecImageProvider
	logger      *slog.Logger
}

func NewRecommendationHandler(
	locations RecLocationRepo,
	weather RecWeatherProvider,
	recommender Recommender,
	adviser RecAdviceProvider,
	images RecImageProvider,
	l *slog.Logger,
) *RecommendationHandler {
	if l == nil {
		l = slog.Default()
	}
	return &RecommendationHandler{
		locations:   locations,
		weather:     weather,
		recommender: recommender,
		adviser:     adviser,
		images:      images,
		logger:      l,
	}
}

// RegisterRoutes mounts recommendation routes on the provided chi.Router.
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{id}/recommendation", h.Get)
}

// Get handles GET /api/v1/users/{id}/recommendation.
//
// Location and weather are hard dependencies: without either there is no
// context to recommend against. Inference degrades per category. Advice
// and imagery are soft dependencies and are simply omitted on failure.
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	loc, err := h.locations.LatestForUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	obs, err := h.weather.Current(r.Context(), loc.Latitude, loc.Longitude)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	rc := types.RawContext{
		Temperature:      obs.TemperatureC,
		WeatherCondition: obs.Condition,
		UserID:           userID,
		Timestamp:        time.Now().UTC(),
	}

	rec, err := h.recommender.RecommendAll(r.Context(), rc)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := RecommendationResponse{
		Recommendation: rec,
		Weather:        obs.Condition,
		TemperatureC:   obs.TemperatureC,
	}

	if h.adviser != nil {
		advice, err := h.adviser.Advise(r.Context(), obs, rec)
		if err != nil {
			h.logger.Warn("advice generation failed", slog.Int("user_id", userID), slog.Any("error", err))
		} else {
			resp.Advice = advice
		}
	}

	if h.images != nil {
		if query := firstRecommendedItem(rec); query != "" {
			imageURL, err := h.images.SearchImage(r.Context(), query)
			if err != nil {
				h.logger.Warn("image search failed", slog.String("query", query), slog.Any("error", err))
			} else {
				resp.ImageURL = imageURL
			}
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// firstRecommendedItem picks the image search query: the first present
// prediction in canonical category order.
func firstRecommendedItem(rec types.Recommendation) string {
	for _, cat := range types.KnownCategories() {
		if v := rec[cat]; v != nil {
			return *v
		}
	}
	return ""
}
