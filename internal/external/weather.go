package external

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aitendule/internal/types"
)

// openWeatherAPIBase is the default OpenWeatherMap API base URL.
// Overridable in tests via WeatherClientConfig.BaseURL.
const openWeatherAPIBase = "https://api.openweathermap.org"

// WeatherClientConfig holds the configuration for creating a WeatherClient.
type WeatherClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to openWeatherAPIBase
	Logger  *slog.Logger
}

// WeatherClient implements WeatherProvider against the OpenWeatherMap
// current weather API through BaseClient.
type WeatherClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
}

// NewWeatherClient creates a new WeatherClient.
func NewWeatherClient(httpClient *http.Client, cfg WeatherClientConfig) *WeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"openweathermap",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    250 * time.Millisecond,
			MaxWait:    2 * time.Second,
		},
		types.ErrCodeUpstreamWeather,
	)

	return &WeatherClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// owmResponse is the subset of the current weather payload we consume.
type owmResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Current fetches current conditions for the coordinate pair. The
// condition is lowercased so it matches the vocabulary the models were
// trained on.
func (c *WeatherClient) Current(ctx context.Context, lat, lon float64) (*types.WeatherObservation, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey.Unmask())

	reqURL := c.baseURL + "/data/2.5/weather?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create weather request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather lookup rejected",
			slog.Int("status", resp.StatusCode),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon))
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather provider rejected the request",
			nil,
		)
	}

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"failed to decode weather response",
			err,
		)
	}
	if len(payload.Weather) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamWeather,
			"weather response missing condition",
			nil,
		)
	}

	return &types.WeatherObservation{
		TemperatureC: payload.Main.Temp,
		Condition:    strings.ToLower(payload.Weather[0].Main),
	}, nil
}
