package external

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aitendule/internal/types"
)

const pixabayAPIBase = "https://pixabay.com/api/"

// PixabayClientConfig holds the configuration for creating a PixabayClient.
type PixabayClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to pixabayAPIBase
	Logger  *slog.Logger
}

// PixabayClient implements ImageProvider against the Pixabay image search
// API. Like advice, imagery is best-effort enrichment.
type PixabayClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
}

// NewPixabayClient creates a new PixabayClient.
func NewPixabayClient(httpClient *http.Client, cfg PixabayClientConfig) *PixabayClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pixabayAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"pixabay",
		RetryPolicy{
			MaxRetries: 1,
			MinWait:    250 * time.Millisecond,
			MaxWait:    time.Second,
		},
		types.ErrCodeUpstreamImage,
	)

	return &PixabayClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type pixabayResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

// SearchImage looks up an item name and returns the first hit's webformat
// URL, or "" when no image matches. Queries are normalized to at most
// three keywords with full-width spaces collapsed.
func (c *PixabayClient) SearchImage(ctx context.Context, query string) (string, error) {
	keywords := strings.Fields(strings.ReplaceAll(query, "　", " "))
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}
	if len(keywords) == 0 {
		return "", nil
	}

	q := url.Values{}
	q.Set("key", c.apiKey.Unmask())
	q.Set("q", strings.Join(keywords, " "))
	q.Set("image_type", "photo")
	q.Set("safesearch", "true")
	q.Set("per_page", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create image search request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("image search rejected", slog.Int("status", resp.StatusCode))
		return "", types.NewAppError(
			types.ErrCodeUpstreamImage,
			"image provider rejected the request",
			nil,
		)
	}

	var payload pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamImage,
			"failed to decode image search response",
			err,
		)
	}
	if len(payload.Hits) == 0 {
		return "", nil
	}

	return payload.Hits[0].WebformatURL, nil
}
