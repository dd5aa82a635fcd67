// Package recommend implements the recommendation inference pipeline: it
// encodes the raw context once, routes the shared feature vector through
// each category's fitted pipeline, and assembles the per-category result.
//
// Categories are independent: a failure or model-absence for one category
// never affects the others. The result always carries the total known
// category key set, with an explicit absent marker where no prediction was
// possible.
package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"aitendule/internal/feature"
	"aitendule/internal/model"
	"aitendule/internal/types"
)

// Service fans a single encoded context out across all category models.
// It holds only immutable, already-loaded state and is safe for concurrent
// use; each call is CPU-bound and performs no I/O.
type Service struct {
	registry *model.Registry
	encoder  *feature.Encoder
	logger   *slog.Logger
}

// NewService creates the recommendation service.
func NewService(registry *model.Registry, encoder *feature.Encoder, logger *slog.Logger) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry must not be nil")
	}
	if encoder == nil {
		return nil, fmt.Errorf("encoder must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &Service{
		registry: registry,
		encoder:  encoder,
		logger:   logger.With("component", "recommend"),
	}, nil
}

// RecommendAll computes one recommendation per known category.
//
// The feature vector is computed exactly once and shared across all
// category predictions, so the categories cannot drift apart within one
// request. An invalid raw context fails the whole call; everything after
// encoding degrades per category instead.
func (s *Service) RecommendAll(ctx context.Context, rc types.RawContext) (types.Recommendation, error) {
	fv, err := s.encoder.Encode(rc)
	if err != nil {
		return nil, err
	}

	categories := types.KnownCategories()
	results := make([]*string, len(categories))

	g, _ := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			if item, ok := s.PredictCategory(category, fv); ok {
				results[i] = &item
			}
			return nil
		})
	}
	// Prediction closures never return errors; per-category failures have
	// already been converted to absent.
	_ = g.Wait()

	rec := types.NewRecommendation()
	for i, category := range categories {
		rec[category] = results[i]
	}
	return rec, nil
}

// PredictCategory predicts the item for one category. The second return
// value is false when the category has no usable model or its prediction
// failed; such failures are logged here with diagnostic detail and never
// propagate.
func (s *Service) PredictCategory(category types.Category, fv types.FeatureVector) (item string, ok bool) {
	// A corrupted artifact could make the opaque pipeline panic; that must
	// degrade this category, not abort the other four.
	defer func() {
		if rvr := recover(); rvr != nil {
			s.logger.Error("prediction panicked",
				"category", string(category),
				"panic", fmt.Sprintf("%v", rvr),
			)
			item, ok = "", false
		}
	}()

	art, found := s.registry.Get(category)
	if !found {
		// No model for this category. Absence was already logged once at
		// load time; stay quiet per request.
		return "", false
	}

	numeric, err := art.Pipeline.Predict(fv)
	if err != nil {
		s.logger.Warn("prediction failed",
			"category", string(category),
			"error", err,
		)
		return "", false
	}

	item, err = art.Labels.Decode(numeric)
	if err != nil {
		s.logger.Warn("label decode failed",
			"category", string(category),
			"numeric_label", numeric,
			"error", err,
		)
		return "", false
	}
	return item, true
}
