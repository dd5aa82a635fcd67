package types

import "time"

// RawContext is the raw inference context for one recommendation call:
// location-derived weather plus the caller's user id and civil timestamp.
// It is immutable once constructed for a single call.
type RawContext struct {
	// Temperature is the current temperature in degrees Celsius.
	Temperature float64
	// WeatherCondition is the lower-cased canonical condition token
	// reported by the weather provider (e.g. "clear", "rain").
	WeatherCondition string
	// UserID identifies the requesting user.
	UserID int
	// Timestamp is the civil datetime the recommendation is for.
	// Month, day, hour and weekday features are derived from it.
	Timestamp time.Time
}

// FeatureColumns returns the fixed, category-independent feature schema, in
// encoding order. The schema and its order MUST be byte-identical between
// training and inference; per-category pipelines are fit against exactly
// these columns.
func FeatureColumns() []string {
	return []string{"weather", "user_id", "month", "day", "hour", "weekday", "temp_bin"}
}

// FeatureVector is the canonical stringified context representation consumed
// by every category's pipeline. Every value is a string because the
// downstream encoder treats all features as categorical.
type FeatureVector struct {
	Weather string
	UserID  string
	Month   string
	Day     string
	Hour    string
	Weekday string
	TempBin string
}

// Values returns the feature values in FeatureColumns order.
func (fv FeatureVector) Values() []string {
	return []string{fv.Weather, fv.UserID, fv.Month, fv.Day, fv.Hour, fv.Weekday, fv.TempBin}
}

// Recommendation maps every known category to a recommended item name.
// A nil value is the explicit "no prediction available" marker; the key set
// is always total so callers can rely on a stable shape.
type Recommendation map[Category]*string

// NewRecommendation returns a Recommendation with every known category
// present and marked absent.
func NewRecommendation() Recommendation {
	rec := make(Recommendation, len(KnownCategories()))
	for _, c := range KnownCategories() {
		rec[c] = nil
	}
	return rec
}

// WeatherObservation is the boundary contract with the weather provider.
type WeatherObservation struct {
	// TemperatureC is the observed temperature in degrees Celsius.
	TemperatureC float64 `json:"temperature"`
	// Condition is the lower-cased condition token (e.g. "clear", "rain").
	Condition string `json:"weather_condition"`
}

// HistoricalChoice is one recorded clothing choice joined with the weather
// context in effect at choice time. It is the unit of training data.
type HistoricalChoice struct {
	UserID           int
	ItemName         string
	Category         string // raw label; may be localized
	ChosenAt         time.Time
	WeatherCondition string
	TemperatureC     float64
}
