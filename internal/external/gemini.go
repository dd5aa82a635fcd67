package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aitendule/internal/types"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com"

// GeminiClientConfig holds the configuration for creating a GeminiClient.
type GeminiClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to geminiAPIBase
	Model   string
	Logger  *slog.Logger
}

// GeminiClient implements AdviceProvider against the Gemini generateContent
// API. Advice is a best-effort enrichment: the recommendation handler drops
// it on any failure.
type GeminiClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	model   string
	logger  *slog.Logger
}

// NewGeminiClient creates a new GeminiClient.
func NewGeminiClient(httpClient *http.Client, cfg GeminiClientConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIBase
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"gemini",
		RetryPolicy{
			MaxRetries: 1,
			MinWait:    500 * time.Millisecond,
			MaxWait:    2 * time.Second,
		},
		types.ErrCodeUpstreamAdvice,
	)

	return &GeminiClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		logger:  logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Advise asks the model for a one-to-two sentence Japanese dressing tip
// covering the recommended outfit under the observed conditions.
func (c *GeminiClient) Advise(ctx context.Context, obs *types.WeatherObservation, rec types.Recommendation) (string, error) {
	var items []string
	for _, cat := range types.KnownCategories() {
		if v := rec[cat]; v != nil {
			items = append(items, fmt.Sprintf("%s: %s", cat, *v))
		}
	}

	prompt := fmt.Sprintf(
		"以下の服装提案に基づいて、自然な日本語のアドバイス文を1〜2文で生成してください。\n"+
			"天気: %s, 気温: %.1f°C\n%s\n"+
			"季節感や気候も考慮した親しみやすい表現でお願いします。",
		obs.Condition, obs.TemperatureC, strings.Join(items, "\n"))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal advice request",
			err,
		)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey.Unmask()))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create advice request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("advice generation rejected", slog.Int("status", resp.StatusCode))
		return "", types.NewAppError(
			types.ErrCodeUpstreamAdvice,
			"advice provider rejected the request",
			nil,
		)
	}

	var payload geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamAdvice,
			"failed to decode advice response",
			err,
		)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", types.NewAppError(
			types.ErrCodeUpstreamAdvice,
			"advice response contained no candidates",
			nil,
		)
	}

	return strings.TrimSpace(payload.Candidates[0].Content.Parts[0].Text), nil
}
