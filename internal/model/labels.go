package model

import (
	"fmt"
	"sort"

	"aitendule/internal/types"
)

// LabelCodec maps item names to the numeric class labels a classifier
// predicts, and back. It is fit only on the labels observed for one
// category; classes are stored sorted so the mapping is independent of
// input order.
//
// Classes is exported for gob serialization; the codec is immutable after
// Fit and safe for concurrent use.
type LabelCodec struct {
	Classes []string
}

// FitLabels builds a codec from the observed item names.
func FitLabels(labels []string) (*LabelCodec, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("label fit: no labels")
	}
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return &LabelCodec{Classes: classes}, nil
}

// Len returns the number of distinct classes.
func (c *LabelCodec) Len() int {
	return len(c.Classes)
}

// Encode returns the numeric label for an item name.
func (c *LabelCodec) Encode(label string) (int, error) {
	i := sort.SearchStrings(c.Classes, label)
	if i < len(c.Classes) && c.Classes[i] == label {
		return i, nil
	}
	return 0, fmt.Errorf("label encode: %q was not observed during fit", label)
}

// Decode returns the item name for a numeric label. An out-of-range index
// indicates an artifact inconsistency, not user error.
func (c *LabelCodec) Decode(numeric int) (string, error) {
	if numeric < 0 || numeric >= len(c.Classes) {
		return "", types.NewAppError(types.ErrCodeModelDecodeRange,
			fmt.Sprintf("numeric label %d out of range [0,%d)", numeric, len(c.Classes)), nil)
	}
	return c.Classes[numeric], nil
}
