// Package training implements the offline training pipeline: it re-derives
// the inference-time feature representation from historical choice records,
// fits one classification pipeline and label codec per category, and
// persists them in the artifact format the model registry loads.
//
// Feature parity is the central invariant: the trainer consumes the same
// feature.Encoder the server does, so the representation a pipeline is fit
// with is byte-identical to the one it will be fed at prediction time.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"aitendule/internal/feature"
	"aitendule/internal/model"
	"aitendule/internal/types"
)

// holdoutFraction is the share of each category's samples reserved for the
// accuracy check when the category has enough data to split.
const holdoutFraction = 5 // one fifth

// Trainer is the offline batch job. It is not safe to run two trainers
// concurrently against the same artifact directory: artifact files would
// race on write. The design assumes at most one training run per deployment.
type Trainer struct {
	encoder *feature.Encoder
	dir     string
	trees   int
	seed    uint64
	logger  *slog.Logger
}

// NewTrainer creates a Trainer writing artifacts to dir.
func NewTrainer(encoder *feature.Encoder, dir string, trees int, seed uint64, logger *slog.Logger) (*Trainer, error) {
	if encoder == nil {
		return nil, fmt.Errorf("encoder must not be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("artifact directory must not be empty")
	}
	if trees <= 0 {
		return nil, fmt.Errorf("tree count must be positive, got %d", trees)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &Trainer{
		encoder: encoder,
		dir:     dir,
		trees:   trees,
		seed:    seed,
		logger:  logger.With("component", "trainer"),
	}, nil
}

// CategoryStats summarizes one trained category.
type CategoryStats struct {
	Category types.Category
	Samples  int
	Classes  int
	// FullFit is true when the category had fewer than two samples, so the
	// train/test split was skipped and the model was fit on all data. This
	// is a documented degradation: holdout accuracy cannot be measured.
	FullFit bool
	// HoldoutAccuracy is the accuracy on the held-out fifth of the data.
	// Meaningless when FullFit is true.
	HoldoutAccuracy float64
}

// Report is the outcome of one training run.
type Report struct {
	Trained []CategoryStats
	// Skipped maps categories that could not be trained to the reason.
	Skipped map[types.Category]string
	// DroppedRecords counts input records that could not be used
	// (unrecognized category label or unencodable context).
	DroppedRecords int
}

// dataset is the per-category supervised dataset: stringified feature rows
// in types.FeatureColumns order plus the chosen item name per row.
type dataset struct {
	rows   [][]string
	labels []string
}

// Run trains one artifact per category present in the historical records.
//
// Record-level problems (unknown category label, unencodable weather
// context) drop that record with a diagnostic. Category-level problems skip
// that category. Only an empty input fails the run as a whole.
func (t *Trainer) Run(ctx context.Context, records []types.HistoricalChoice) (*Report, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no historical records to train on")
	}

	report := &Report{Skipped: make(map[types.Category]string)}
	byCategory := t.prepare(records, report)

	for _, category := range types.KnownCategories() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, ok := byCategory[category]
		if !ok {
			continue
		}

		stats, err := t.trainCategory(category, ds)
		if err != nil {
			t.logger.Error("category training failed, skipping",
				"category", string(category),
				"samples", len(ds.rows),
				"error", err,
			)
			report.Skipped[category] = err.Error()
			continue
		}
		report.Trained = append(report.Trained, *stats)
	}

	t.logger.Info("training run complete",
		"trained", len(report.Trained),
		"skipped", len(report.Skipped),
		"dropped_records", report.DroppedRecords,
	)
	return report, nil
}

// prepare groups records into per-category datasets using the shared
// feature encoder.
func (t *Trainer) prepare(records []types.HistoricalChoice, report *Report) map[types.Category]*dataset {
	byCategory := make(map[types.Category]*dataset)
	for _, rec := range records {
		category, ok := types.CanonicalCategory(rec.Category)
		if !ok {
			t.logger.Warn("dropping record with unrecognized category",
				"category", rec.Category,
				"item", rec.ItemName,
			)
			report.DroppedRecords++
			continue
		}

		fv, err := t.encoder.Encode(types.RawContext{
			Temperature:      rec.TemperatureC,
			WeatherCondition: strings.ToLower(rec.WeatherCondition),
			UserID:           rec.UserID,
			Timestamp:        rec.ChosenAt,
		})
		if err != nil {
			t.logger.Warn("dropping record with unencodable context",
				"category", string(category),
				"item", rec.ItemName,
				"error", err,
			)
			report.DroppedRecords++
			continue
		}

		ds, ok := byCategory[category]
		if !ok {
			ds = &dataset{}
			byCategory[category] = ds
		}
		ds.rows = append(ds.rows, fv.Values())
		ds.labels = append(ds.labels, rec.ItemName)
	}
	return byCategory
}

// trainCategory fits and persists one category's artifact.
func (t *Trainer) trainCategory(category types.Category, ds *dataset) (*CategoryStats, error) {
	codec, err := model.FitLabels(ds.labels)
	if err != nil {
		return nil, err
	}
	y := make([]int, len(ds.labels))
	for i, label := range ds.labels {
		numeric, err := codec.Encode(label)
		if err != nil {
			return nil, err
		}
		y[i] = numeric
	}

	stats := &CategoryStats{
		Category: category,
		Samples:  len(ds.rows),
		Classes:  codec.Len(),
	}

	var pipeline *model.Pipeline
	if len(ds.rows) < 2 {
		// Not enough data to hold anything out; fit on everything.
		t.logger.Warn("not enough data to split, training on full data",
			"category", string(category),
			"samples", len(ds.rows),
		)
		stats.FullFit = true
		pipeline, err = model.FitPipeline(ds.rows, y, codec.Len(), t.trees, t.seed)
		if err != nil {
			return nil, err
		}
	} else {
		trainIdx, testIdx := t.split(len(ds.rows))
		pipeline, err = model.FitPipeline(subsetRows(ds.rows, trainIdx), subsetInts(y, trainIdx),
			codec.Len(), t.trees, t.seed)
		if err != nil {
			return nil, err
		}
		stats.HoldoutAccuracy = accuracy(pipeline, ds.rows, y, testIdx)
		t.logger.Info("category trained",
			"category", string(category),
			"samples", len(ds.rows),
			"classes", codec.Len(),
			"holdout_accuracy", stats.HoldoutAccuracy,
		)
	}

	art := &model.Artifact{Category: category, Pipeline: pipeline, Labels: codec}
	if err := art.Save(t.dir); err != nil {
		return nil, err
	}
	return stats, nil
}

// split partitions [0,n) into seeded-shuffled train and holdout index sets.
// The holdout gets a fifth of the samples, at least one, and the training
// side always keeps at least one.
func (t *Trainer) split(n int) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewPCG(t.seed, t.seed+1))
	perm := rng.Perm(n)
	holdout := n / holdoutFraction
	if holdout < 1 {
		holdout = 1
	}
	if holdout >= n {
		holdout = n - 1
	}
	return perm[holdout:], perm[:holdout]
}

func accuracy(p *model.Pipeline, rows [][]string, y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	correct := 0
	for _, i := range idx {
		fv, err := vectorFromValues(rows[i])
		if err != nil {
			continue
		}
		pred, err := p.Predict(fv)
		if err == nil && pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(idx))
}

// vectorFromValues rebuilds a FeatureVector from a stored row in
// types.FeatureColumns order.
func vectorFromValues(values []string) (types.FeatureVector, error) {
	if len(values) != len(types.FeatureColumns()) {
		return types.FeatureVector{}, fmt.Errorf("row has %d values, schema has %d",
			len(values), len(types.FeatureColumns()))
	}
	return types.FeatureVector{
		Weather: values[0],
		UserID:  values[1],
		Month:   values[2],
		Day:     values[3],
		Hour:    values[4],
		Weekday: values[5],
		TempBin: values[6],
	}, nil
}

func subsetRows(rows [][]string, idx []int) [][]string {
	out := make([][]string, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func subsetInts(xs []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
