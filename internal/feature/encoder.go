// Package feature turns raw inference context into the canonical stringified
// feature representation consumed by every category's pipeline.
//
// The encoder is the single source of truth for the feature schema. The
// trainer and the inference path construct it from the same configuration, so
// the representation fed to a pipeline at prediction time is byte-identical
// to the one it was fit with. Any drift here silently produces nonsensical
// predictions rather than an error, which is why nothing else in the
// repository is allowed to derive features.
package feature

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"aitendule/internal/types"
)

// DefaultBinWidth is the temperature bin width in degrees Celsius used when
// no explicit width is configured. It must match the width the deployed
// artifacts were trained with.
const DefaultBinWidth = 5.0

// Encoder derives FeatureVectors from RawContexts. It is stateless apart
// from the bin width and safe for concurrent use.
type Encoder struct {
	binWidth float64
}

// NewEncoder creates an Encoder with the given temperature bin width.
func NewEncoder(binWidth float64) (*Encoder, error) {
	if binWidth <= 0 || math.IsNaN(binWidth) || math.IsInf(binWidth, 0) {
		return nil, fmt.Errorf("bin width must be a positive finite number, got %v", binWidth)
	}
	return &Encoder{binWidth: binWidth}, nil
}

// BinWidth returns the configured temperature bin width.
func (e *Encoder) BinWidth() float64 {
	return e.binWidth
}

// Encode converts a RawContext into the fixed 7-key FeatureVector.
//
// Temperature must be finite and the weather condition non-empty. The
// condition token is otherwise used verbatim: a previously-unseen value is
// not an encoding error, it is handled by the pipeline's unknown-category
// policy downstream.
//
// Encode is a pure function of its input and deterministic.
func (e *Encoder) Encode(rc types.RawContext) (types.FeatureVector, error) {
	if math.IsNaN(rc.Temperature) || math.IsInf(rc.Temperature, 0) {
		return types.FeatureVector{}, types.NewAppError(types.ErrCodeValidationTemperature,
			"temperature must be a finite number", nil)
	}
	if rc.WeatherCondition == "" {
		return types.FeatureVector{}, types.NewAppError(types.ErrCodeValidationWeather,
			"weather condition must not be empty", nil)
	}

	t := rc.Timestamp
	return types.FeatureVector{
		Weather: rc.WeatherCondition,
		UserID:  strconv.Itoa(rc.UserID),
		Month:   strconv.Itoa(int(t.Month())),
		Day:     strconv.Itoa(t.Day()),
		Hour:    strconv.Itoa(t.Hour()),
		Weekday: strconv.Itoa(mondayIndexedWeekday(t)),
		TempBin: strconv.Itoa(e.tempBin(rc.Temperature)),
	}, nil
}

// tempBin discretizes a temperature into its bucket index. math.Floor keeps
// sub-zero temperatures in the same buckets the training distribution used
// (-3°C with width 5 bins to -1, not 0).
func (e *Encoder) tempBin(temp float64) int {
	return int(math.Floor(temp / e.binWidth))
}

// mondayIndexedWeekday maps time.Weekday (Sunday=0) to the Monday=0 indexing
// the historical training data was recorded with.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
