package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"aitendule/internal/types"
)

// ExportCSV writes the assembled training dataset to w: one row per usable
// historical record, with the feature columns in schema order followed by
// the label and canonical category. Records that would be dropped by
// training (unknown category, unencodable context) are dropped here too, so
// the export matches what the models actually see.
func (t *Trainer) ExportCSV(w io.Writer, records []types.HistoricalChoice) (int, error) {
	cw := csv.NewWriter(w)

	header := append(types.FeatureColumns(), "label", "category")
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("csv export: %w", err)
	}

	written := 0
	for _, rec := range records {
		category, ok := types.CanonicalCategory(rec.Category)
		if !ok {
			continue
		}
		fv, err := t.encoder.Encode(types.RawContext{
			Temperature:      rec.TemperatureC,
			WeatherCondition: strings.ToLower(rec.WeatherCondition),
			UserID:           rec.UserID,
			Timestamp:        rec.ChosenAt,
		})
		if err != nil {
			continue
		}
		row := append(fv.Values(), rec.ItemName, string(category))
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("csv export: %w", err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("csv export: %w", err)
	}
	return written, nil
}
