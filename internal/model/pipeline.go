// Package model implements the per-category classification pipeline and the
// artifact format it is persisted in: a one-hot encoder over the canonical
// feature schema, a random-forest classifier on the encoded vectors, and a
// label codec mapping item names to the numeric classes the forest predicts.
//
// Callers outside the trainer treat the pipeline as an opaque capability:
// FeatureVector in, numeric label out. The registry in this package owns
// loading, shape validation, and process-lifetime caching of artifacts.
package model

import (
	"fmt"
	"slices"

	"aitendule/internal/types"
)

// Pipeline couples the fitted preprocessor and classifier for one category.
// It is immutable after fit and safe for concurrent prediction. Fields are
// exported for gob serialization only; callers use Predict.
type Pipeline struct {
	Encoder *OneHotEncoder
	Forest  *Forest
}

// FitPipeline fits the preprocessing and classification stages on stringified
// feature rows (in types.FeatureColumns order) and numeric labels.
func FitPipeline(rows [][]string, y []int, numClasses, numTrees int, seed uint64) (*Pipeline, error) {
	enc, err := FitOneHot(types.FeatureColumns(), rows)
	if err != nil {
		return nil, err
	}

	x := make([][]float64, len(rows))
	for i, row := range rows {
		encoded, err := enc.Transform(row)
		if err != nil {
			return nil, err
		}
		x[i] = encoded
	}

	forest, err := FitForest(x, y, numClasses, numTrees, seed)
	if err != nil {
		return nil, err
	}

	return &Pipeline{Encoder: enc, Forest: forest}, nil
}

// Predict applies the pipeline to a single feature vector and returns the
// numeric class label.
//
// The vector is reconstructed in exactly the column order the encoder was
// fit with. A schema mismatch means the artifact was trained against a
// different feature contract than this binary encodes; that is a
// configuration error, distinct from an unseen feature value (which the
// encoder absorbs as an all-zero block).
func (p *Pipeline) Predict(fv types.FeatureVector) (int, error) {
	if !slices.Equal(p.Encoder.Columns, types.FeatureColumns()) {
		return 0, types.NewAppError(types.ErrCodeModelFeatureMismatch,
			fmt.Sprintf("pipeline was fit with schema %v, expected %v",
				p.Encoder.Columns, types.FeatureColumns()), nil)
	}

	x, err := p.Encoder.Transform(fv.Values())
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeModelFeatureMismatch, "feature transform failed", err)
	}
	return p.Forest.Predict(x)
}
