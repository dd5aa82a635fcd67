package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/zstd"

	"aitendule/internal/types"
)

// artifactMagic identifies an artifact payload after decompression.
const artifactMagic = "aitendule-model"

// artifactVersion is the current payload format version. Bump on any change
// to the pipeline or codec structures.
const artifactVersion = 1

// Artifact is the per-category bundle the registry serves: a fitted pipeline
// plus the label codec that decodes its numeric predictions. Immutable after
// load; one artifact per category.
type Artifact struct {
	Category types.Category
	Pipeline *Pipeline
	Labels   *LabelCodec
}

// artifactPayload is the on-disk representation: a versioned envelope around
// exactly the (pipeline, label codec) pair. Decoding normalizes and
// validates this shape so that anything else on disk surfaces as a
// configuration error instead of a crash at prediction time.
type artifactPayload struct {
	Magic    string
	Version  int
	Category types.Category
	Pipeline *Pipeline
	Labels   *LabelCodec
}

// ArtifactFilename returns the deterministic file name for a category's
// artifact.
func ArtifactFilename(category types.Category) string {
	return string(category) + "_model.bin"
}

// ArtifactPath returns the artifact location for a category under dir.
func ArtifactPath(dir string, category types.Category) string {
	return filepath.Join(dir, ArtifactFilename(category))
}

// ErrArtifactNotFound reports that a category has no persisted artifact.
// Callers treat this as the category being absent, not as a failure.
var ErrArtifactNotFound = errors.New("model artifact not found")

// Save persists the artifact under dir using the fixed naming convention.
// The payload is gob-encoded and zstd-compressed. The write goes through a
// temp file and rename so a concurrent loader never observes a torn file.
func (a *Artifact) Save(dir string) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("artifact save: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact save: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ArtifactFilename(a.Category)+".tmp-*")
	if err != nil {
		return fmt.Errorf("artifact save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writePayload(tmp, artifactPayload{
		Magic:    artifactMagic,
		Version:  artifactVersion,
		Category: a.Category,
		Pipeline: a.Pipeline,
		Labels:   a.Labels,
	}); err != nil {
		tmp.Close()
		return fmt.Errorf("artifact save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifact save: %w", err)
	}

	if err := os.Rename(tmp.Name(), ArtifactPath(dir, a.Category)); err != nil {
		return fmt.Errorf("artifact save: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates one category's artifact from dir.
//
// A missing file returns ErrArtifactNotFound. Any other failure (corrupt
// compression, wrong magic or version, a payload that does not decompose
// into a (pipeline, label codec) pair, or a feature schema that differs
// from this binary's) is a configuration error for that category.
func LoadArtifact(dir string, category types.Category) (*Artifact, error) {
	f, err := os.Open(ArtifactPath(dir, category))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrArtifactNotFound
		}
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed, "failed to open artifact", err)
	}
	defer f.Close()

	payload, err := readPayload(f)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed, "failed to decode artifact", err)
	}

	art := &Artifact{
		Category: payload.Category,
		Pipeline: payload.Pipeline,
		Labels:   payload.Labels,
	}
	if payload.Magic != artifactMagic {
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed,
			fmt.Sprintf("unexpected artifact magic %q", payload.Magic), nil)
	}
	if payload.Version != artifactVersion {
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed,
			fmt.Sprintf("unsupported artifact version %d", payload.Version), nil)
	}
	if payload.Category != category {
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed,
			fmt.Sprintf("artifact is for category %q, expected %q", payload.Category, category), nil)
	}
	if err := art.validate(); err != nil {
		return nil, types.NewAppError(types.ErrCodeModelArtifactMalformed, err.Error(), nil)
	}
	return art, nil
}

// validate checks that the artifact decomposes into a usable
// (pipeline, label codec) pair consistent with the current feature schema.
func (a *Artifact) validate() error {
	if !a.Category.IsValid() {
		return fmt.Errorf("unknown category %q", a.Category)
	}
	if a.Pipeline == nil || a.Pipeline.Encoder == nil || a.Pipeline.Forest == nil {
		return fmt.Errorf("artifact does not contain a fitted pipeline")
	}
	if a.Labels == nil || a.Labels.Len() == 0 {
		return fmt.Errorf("artifact does not contain a fitted label codec")
	}
	if a.Pipeline.Forest.NumClasses != a.Labels.Len() {
		return fmt.Errorf("classifier has %d classes but label codec has %d",
			a.Pipeline.Forest.NumClasses, a.Labels.Len())
	}
	if !slices.Equal(a.Pipeline.Encoder.Columns, types.FeatureColumns()) {
		return fmt.Errorf("artifact feature schema %v does not match %v",
			a.Pipeline.Encoder.Columns, types.FeatureColumns())
	}
	return nil
}

func writePayload(w io.Writer, payload artifactPayload) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(zw).Encode(payload); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func readPayload(r io.Reader) (artifactPayload, error) {
	var payload artifactPayload
	zr, err := zstd.NewReader(r)
	if err != nil {
		return payload, err
	}
	defer zr.Close()
	if err := gob.NewDecoder(zr).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}
