package model

import (
	"errors"
	"log/slog"

	"aitendule/internal/types"
)

// Registry loads, validates, and caches one artifact per category for the
// process lifetime.
//
// Lifecycle: a single initializer calls LoadAll once at startup; thereafter
// the registry is read-only, so concurrent Get calls need no locking.
// Artifact replacement after a new training run requires a process restart.
type Registry struct {
	dir       string
	logger    *slog.Logger
	artifacts map[types.Category]*Artifact
}

// NewRegistry creates an empty registry over the given artifact directory.
func NewRegistry(dir string, logger *slog.Logger) *Registry {
	return &Registry{
		dir:       dir,
		logger:    logger.With("component", "model_registry"),
		artifacts: make(map[types.Category]*Artifact),
	}
}

// LoadAll populates the registry for the given categories. A category whose
// artifact is missing or malformed is recorded as absent with a warning
// logged once here; it never fails registry construction. Must be called
// exactly once, before any Get.
func (r *Registry) LoadAll(categories []types.Category) {
	for _, category := range categories {
		art, err := LoadArtifact(r.dir, category)
		switch {
		case errors.Is(err, ErrArtifactNotFound):
			r.logger.Warn("artifact missing, category will have no predictions",
				"code", string(types.ErrCodeModelArtifactMissing),
				"category", string(category),
				"path", ArtifactPath(r.dir, category),
			)
		case err != nil:
			r.logger.Warn("artifact malformed, category will have no predictions",
				"code", string(types.ErrCodeModelArtifactMalformed),
				"category", string(category),
				"path", ArtifactPath(r.dir, category),
				"error", err,
			)
		default:
			r.artifacts[category] = art
			r.logger.Info("artifact loaded",
				"category", string(category),
				"classes", art.Labels.Len(),
				"trees", len(art.Pipeline.Forest.Trees),
			)
		}
	}
}

// Get returns the artifact for a category, or false when the category has
// no usable model. The returned artifact is shared and read-only.
func (r *Registry) Get(category types.Category) (*Artifact, bool) {
	art, ok := r.artifacts[category]
	return art, ok
}

// Loaded returns the categories that have a usable artifact, in the
// canonical category order.
func (r *Registry) Loaded() []types.Category {
	var loaded []types.Category
	for _, c := range types.KnownCategories() {
		if _, ok := r.artifacts[c]; ok {
			loaded = append(loaded, c)
		}
	}
	return loaded
}
