package training

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aitendule/internal/feature"
	"aitendule/internal/model"
	"aitendule/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTrainer(t *testing.T, dir string) *Trainer {
	t.Helper()
	enc, err := feature.NewEncoder(5)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	tr, err := NewTrainer(enc, dir, 50, 42, testLogger())
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	return tr
}

// choiceAt builds a historical record with a fully specified context.
func choiceAt(userID int, item, category, weather string, temp float64, ts time.Time) types.HistoricalChoice {
	return types.HistoricalChoice{
		UserID:           userID,
		ItemName:         item,
		Category:         category,
		ChosenAt:         ts,
		WeatherCondition: weather,
		TemperatureC:     temp,
	}
}

// separableRecords yields n copies each of two well-separated outer
// choices: coats in cold clear weather, raincoats in warm rain.
func separableRecords(n int) []types.HistoricalChoice {
	cold := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	warm := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	var records []types.HistoricalChoice
	for i := 0; i < n; i++ {
		records = append(records,
			choiceAt(1, "coat", "outer", "clear", 5, cold),
			choiceAt(2, "raincoat", "outer", "rain", 21, warm),
		)
	}
	return records
}

func TestRunEmptyInputFails(t *testing.T) {
	tr := newTrainer(t, t.TempDir())
	if _, err := tr.Run(context.Background(), nil); err == nil {
		t.Error("Run accepted empty input")
	}
}

func TestRunTrainsLoadablePredictingArtifact(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, dir)

	report, err := tr.Run(context.Background(), separableRecords(5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Trained) != 1 {
		t.Fatalf("trained %d categories, want 1", len(report.Trained))
	}
	stats := report.Trained[0]
	if stats.Category != types.CategoryOuter {
		t.Errorf("trained category %s, want outer", stats.Category)
	}
	if stats.FullFit {
		t.Error("10 samples must not trigger the full-fit degradation")
	}
	if stats.Classes != 2 {
		t.Errorf("classes = %d, want 2", stats.Classes)
	}
	if stats.HoldoutAccuracy != 1 {
		t.Errorf("holdout accuracy = %v, want 1 on separable data", stats.HoldoutAccuracy)
	}

	// The persisted artifact must round-trip through the registry and
	// reproduce the training labels on the training contexts.
	reg := model.NewRegistry(dir, testLogger())
	reg.LoadAll(types.KnownCategories())
	art, ok := reg.Get(types.CategoryOuter)
	if !ok {
		t.Fatal("trained artifact did not load")
	}

	enc, err := feature.NewEncoder(5)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	fv, err := enc.Encode(types.RawContext{
		Temperature:      5,
		WeatherCondition: "clear",
		UserID:           1,
		Timestamp:        time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	numeric, err := art.Pipeline.Predict(fv)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	item, err := art.Labels.Decode(numeric)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if item != "coat" {
		t.Errorf("predicted %q for the cold clear context, want \"coat\"", item)
	}
}

func TestRunSingleSampleFullFit(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, dir)

	records := []types.HistoricalChoice{
		choiceAt(1, "loafers", "shoes", "clouds", 15, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
	}
	report, err := tr.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Trained) != 1 || !report.Trained[0].FullFit {
		t.Fatalf("report = %+v, want one full-fit category", report)
	}

	if _, err := model.LoadArtifact(dir, types.CategoryShoes); err != nil {
		t.Errorf("single-sample artifact failed to load: %v", err)
	}
}

func TestRunLocalizedCategoryNames(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, dir)

	ts := time.Date(2024, 2, 10, 18, 0, 0, 0, time.UTC)
	records := []types.HistoricalChoice{
		choiceAt(1, "マフラー", "小物", "snow", -2, ts),
		choiceAt(1, "マフラー", "アクセサリー", "snow", -2, ts),
	}
	report, err := tr.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Trained) != 1 || report.Trained[0].Category != types.CategoryAccessory {
		t.Fatalf("report = %+v, want one accessory category", report)
	}
	// The artifact must be keyed by the canonical name.
	if _, err := model.LoadArtifact(dir, types.CategoryAccessory); err != nil {
		t.Errorf("canonical artifact missing: %v", err)
	}
}

func TestRunDropsBadRecordsAndContinues(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, dir)

	records := separableRecords(3)
	records = append(records,
		choiceAt(1, "towel", "bathware", "clear", 20, time.Now()), // unknown category
		choiceAt(1, "t-shirt", "tops", "", 20, time.Now()),        // empty weather condition
	)

	report, err := tr.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.DroppedRecords != 2 {
		t.Errorf("DroppedRecords = %d, want 2", report.DroppedRecords)
	}
	if len(report.Trained) != 1 {
		t.Errorf("trained %d categories, want 1", len(report.Trained))
	}
}

func TestExportCSV(t *testing.T) {
	tr := newTrainer(t, t.TempDir())

	var sb strings.Builder
	records := separableRecords(1)
	records = append(records, choiceAt(1, "towel", "bathware", "clear", 20, time.Now()))

	n, err := tr.ExportCSV(&sb, records)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d rows, want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2 rows", len(lines))
	}
	wantHeader := "weather,user_id,month,day,hour,weekday,temp_bin,label,category"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if lines[1] != "clear,1,1,15,14,0,1,coat,outer" {
		t.Errorf("first row = %q", lines[1])
	}
}

// The trainer binary exports through a freshly created file before running;
// the trainer must be usable for the export alone.
func TestExportCSVToFile(t *testing.T) {
	tr := newTrainer(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "dataset.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := tr.ExportCSV(f, separableRecords(2))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if n != 4 {
		t.Errorf("exported %d rows, want 4", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("csv has %d lines, want header + 4 rows", len(lines))
	}
}
