package model

import "testing"

func TestFitOneHotRejectsEmptyInput(t *testing.T) {
	if _, err := FitOneHot(nil, [][]string{{"a"}}); err == nil {
		t.Error("FitOneHot accepted empty schema")
	}
	if _, err := FitOneHot([]string{"c"}, nil); err == nil {
		t.Error("FitOneHot accepted zero rows")
	}
	if _, err := FitOneHot([]string{"c"}, [][]string{{"a", "b"}}); err == nil {
		t.Error("FitOneHot accepted row wider than schema")
	}
}

func TestOneHotTransform(t *testing.T) {
	enc, err := FitOneHot([]string{"weather", "user"}, [][]string{
		{"clear", "1"},
		{"rain", "1"},
		{"clear", "2"},
	})
	if err != nil {
		t.Fatalf("FitOneHot: %v", err)
	}

	// Two weather values + two user values.
	if got := enc.Width(); got != 4 {
		t.Fatalf("Width = %d, want 4", got)
	}

	x, err := enc.Transform([]string{"rain", "2"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	ones := 0
	for _, v := range x {
		if v == 1 {
			ones++
		} else if v != 0 {
			t.Fatalf("non-binary encoded value %v", v)
		}
	}
	if ones != 2 {
		t.Errorf("expected exactly one hot slot per column, got %d total", ones)
	}

	// Same input always encodes identically.
	y, err := enc.Transform([]string{"rain", "2"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("Transform not deterministic at slot %d", i)
		}
	}
}

func TestOneHotUnknownValueEncodesToZeroBlock(t *testing.T) {
	enc, err := FitOneHot([]string{"weather"}, [][]string{{"clear"}, {"rain"}})
	if err != nil {
		t.Fatalf("FitOneHot: %v", err)
	}

	x, err := enc.Transform([]string{"snow"})
	if err != nil {
		t.Fatalf("Transform with unseen value must not fail: %v", err)
	}
	for i, v := range x {
		if v != 0 {
			t.Errorf("slot %d = %v, want all-zero block for unseen value", i, v)
		}
	}
}

func TestOneHotTransformRejectsWrongWidth(t *testing.T) {
	enc, err := FitOneHot([]string{"a", "b"}, [][]string{{"x", "y"}})
	if err != nil {
		t.Fatalf("FitOneHot: %v", err)
	}
	if _, err := enc.Transform([]string{"x"}); err == nil {
		t.Error("Transform accepted a row narrower than the schema")
	}
	if _, err := enc.Transform([]string{"x", "y", "z"}); err == nil {
		t.Error("Transform accepted a row wider than the schema")
	}
}
