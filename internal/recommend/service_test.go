package recommend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"aitendule/internal/feature"
	"aitendule/internal/model"
	"aitendule/internal/types"
)

var (
	rcClear = types.RawContext{
		Temperature:      5,
		WeatherCondition: "clear",
		UserID:           1,
		Timestamp:        time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
	}
	rcRain = types.RawContext{
		Temperature:      21,
		WeatherCondition: "rain",
		UserID:           2,
		Timestamp:        time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
	}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEncoder(t *testing.T) *feature.Encoder {
	t.Helper()
	enc, err := feature.NewEncoder(5)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	return enc
}

// trainCategory fits an artifact for one category on a separable dataset:
// the clear context maps to itemClear, the rain context to itemRain.
func trainCategory(t *testing.T, dir string, category types.Category, itemClear, itemRain string) {
	t.Helper()
	enc := testEncoder(t)

	fvClear, err := enc.Encode(rcClear)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	fvRain, err := enc.Encode(rcRain)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	labels, err := model.FitLabels([]string{itemClear, itemRain})
	if err != nil {
		t.Fatalf("FitLabels: %v", err)
	}
	yClear, err := labels.Encode(itemClear)
	if err != nil {
		t.Fatalf("Encode label: %v", err)
	}
	yRain, err := labels.Encode(itemRain)
	if err != nil {
		t.Fatalf("Encode label: %v", err)
	}

	var rows [][]string
	var y []int
	for i := 0; i < 5; i++ {
		rows = append(rows, fvClear.Values(), fvRain.Values())
		y = append(y, yClear, yRain)
	}

	pipeline, err := model.FitPipeline(rows, y, labels.Len(), 50, 42)
	if err != nil {
		t.Fatalf("FitPipeline: %v", err)
	}
	art := &model.Artifact{Category: category, Pipeline: pipeline, Labels: labels}
	if err := art.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func newService(t *testing.T, dir string) *Service {
	t.Helper()
	reg := model.NewRegistry(dir, testLogger())
	reg.LoadAll(types.KnownCategories())
	svc, err := NewService(reg, testEncoder(t), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRecommendAllNoModels(t *testing.T) {
	svc := newService(t, t.TempDir())

	rec, err := svc.RecommendAll(context.Background(), rcClear)
	if err != nil {
		t.Fatalf("RecommendAll: %v", err)
	}

	if len(rec) != len(types.KnownCategories()) {
		t.Fatalf("result has %d keys, want %d", len(rec), len(types.KnownCategories()))
	}
	for _, c := range types.KnownCategories() {
		item, present := rec[c]
		if !present {
			t.Errorf("category %s missing from result", c)
		}
		if item != nil {
			t.Errorf("category %s = %q, want absent", c, *item)
		}
	}
}

func TestRecommendAllSeparableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	items := map[types.Category][2]string{
		types.CategoryTops:      {"long sleeve shirt", "t-shirt"},
		types.CategoryBottoms:   {"jeans", "shorts"},
		types.CategoryShoes:     {"boots", "sandals"},
		types.CategoryOuter:     {"coat", "raincoat"},
		types.CategoryAccessory: {"scarf", "umbrella"},
	}
	for c, pair := range items {
		trainCategory(t, dir, c, pair[0], pair[1])
	}

	svc := newService(t, dir)

	rec, err := svc.RecommendAll(context.Background(), rcClear)
	if err != nil {
		t.Fatalf("RecommendAll(clear): %v", err)
	}
	for c, pair := range items {
		if rec[c] == nil {
			t.Errorf("category %s absent, want %q", c, pair[0])
			continue
		}
		if *rec[c] != pair[0] {
			t.Errorf("category %s = %q, want %q", c, *rec[c], pair[0])
		}
	}

	rec, err = svc.RecommendAll(context.Background(), rcRain)
	if err != nil {
		t.Fatalf("RecommendAll(rain): %v", err)
	}
	for c, pair := range items {
		if rec[c] == nil {
			t.Errorf("category %s absent, want %q", c, pair[1])
			continue
		}
		if *rec[c] != pair[1] {
			t.Errorf("category %s = %q, want %q", c, *rec[c], pair[1])
		}
	}
}

func TestRecommendAllIsolatesMalformedCategory(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []types.Category{
		types.CategoryTops, types.CategoryBottoms, types.CategoryOuter, types.CategoryAccessory,
	} {
		trainCategory(t, dir, c, "clear item", "rain item")
	}
	// Shoes artifact exists but is garbage.
	if err := os.WriteFile(model.ArtifactPath(dir, types.CategoryShoes), []byte("corrupt"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc := newService(t, dir)
	rec, err := svc.RecommendAll(context.Background(), rcClear)
	if err != nil {
		t.Fatalf("RecommendAll: %v", err)
	}

	if rec[types.CategoryShoes] != nil {
		t.Errorf("shoes = %q, want absent", *rec[types.CategoryShoes])
	}
	for _, c := range []types.Category{
		types.CategoryTops, types.CategoryBottoms, types.CategoryOuter, types.CategoryAccessory,
	} {
		if rec[c] == nil {
			t.Errorf("category %s absent; a malformed shoes artifact must not affect it", c)
		}
	}
}

func TestRecommendAllInvalidContext(t *testing.T) {
	svc := newService(t, t.TempDir())

	bad := rcClear
	bad.WeatherCondition = ""
	if _, err := svc.RecommendAll(context.Background(), bad); err == nil {
		t.Error("RecommendAll accepted an invalid raw context")
	}
}

func TestPredictCategoryAbsentModel(t *testing.T) {
	svc := newService(t, t.TempDir())

	fv, err := testEncoder(t).Encode(rcClear)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, ok := svc.PredictCategory(types.CategoryOuter, fv); ok {
		t.Error("PredictCategory returned a prediction without a model")
	}
}
