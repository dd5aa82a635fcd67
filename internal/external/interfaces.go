package external

import (
	"context"

	"aitendule/internal/types"
)

// WeatherProvider returns current conditions for a coordinate pair.
// The recommendation flow depends on it; a failure here fails the
// whole recommendation request.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*types.WeatherObservation, error)
}

// AdviceProvider generates a short natural-language dressing tip for an
// assembled recommendation. Optional: callers treat a failure as
// "no advice", never as a request failure.
type AdviceProvider interface {
	Advise(ctx context.Context, obs *types.WeatherObservation, rec types.Recommendation) (string, error)
}

// ImageProvider resolves an item name to a representative image URL.
// Optional in the same way AdviceProvider is.
type ImageProvider interface {
	SearchImage(ctx context.Context, query string) (string, error)
}
