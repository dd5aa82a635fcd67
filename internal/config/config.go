// Package config defines the global configuration structure for the service.
// Configuration is loaded once at process initialization and is immutable
// thereafter. It follows 12-Factor App principles by strictly separating
// code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes startup to fail
// immediately (fail fast).
package config

import (
	"time"

	"aitendule/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"aitendule"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Model    ModelConfig
	Weather  WeatherConfig
	Advice   AdviceConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	// AllowedOrigins is the comma-separated CORS allowlist for the mobile
	// frontend dev servers.
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
}

// ModelConfig holds the model artifact location and the feature-derivation
// constants shared by the trainer and the inference path. TempBinWidth is a
// trained constant: changing it invalidates every persisted artifact, so it
// must match the value the artifacts were trained with.
type ModelConfig struct {
	Dir          string  `envconfig:"MODEL_DIR" default:"./models"`
	TempBinWidth float64 `envconfig:"TEMP_BIN_WIDTH" default:"5" validate:"gt=0"`
	// Trees is the forest size used by the trainer.
	Trees int `envconfig:"MODEL_TREES" default:"100" validate:"gt=0"`
	// Seed fixes the trainer's randomness for reproducible runs.
	Seed uint64 `envconfig:"MODEL_SEED" default:"42"`
}

// WeatherConfig holds the OpenWeatherMap client configuration.
type WeatherConfig struct {
	APIKey  SecretString  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	BaseURL string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org"`
	Timeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"5s"`
}

// AdviceConfig holds the optional enrichment providers. Both keys are
// optional: without them the recommendation response simply omits the advice
// text or image URL.
type AdviceConfig struct {
	GeminiAPIKey  SecretString  `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash-latest"`
	PixabayAPIKey SecretString  `envconfig:"PIXABAY_API_KEY"`
	PixabayURL    string        `envconfig:"PIXABAY_BASE_URL" default:"https://pixabay.com/api/"`
	Timeout       time.Duration `envconfig:"ADVICE_TIMEOUT" default:"10s"`
}
