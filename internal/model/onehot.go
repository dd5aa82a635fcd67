package model

import "fmt"

// OneHotEncoder maps rows of categorical string features onto a fixed dense
// binary vector. Each column owns a contiguous block of the output vector,
// one slot per vocabulary value observed during Fit.
//
// Unknown handling mirrors the ignore policy the artifacts were historically
// trained with: a value not seen during Fit encodes to an all-zero block for
// that column instead of failing the prediction.
//
// All fields are exported for gob serialization. An encoder is immutable
// after Fit and safe for concurrent use.
type OneHotEncoder struct {
	// Columns is the feature schema in encoding order.
	Columns []string
	// Vocab maps, per column, each observed value to its slot offset within
	// the column's block.
	Vocab []map[string]int
	// Offsets holds, per column, the start index of the column's block in
	// the output vector.
	Offsets []int
}

// FitOneHot builds an encoder over the given schema from training rows.
// Every row must have exactly one value per column.
func FitOneHot(columns []string, rows [][]string) (*OneHotEncoder, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("one-hot fit: empty column schema")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("one-hot fit: no training rows")
	}

	vocab := make([]map[string]int, len(columns))
	for i := range vocab {
		vocab[i] = make(map[string]int)
	}

	for ri, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("one-hot fit: row %d has %d values, schema has %d columns",
				ri, len(row), len(columns))
		}
		for ci, v := range row {
			if _, seen := vocab[ci][v]; !seen {
				vocab[ci][v] = len(vocab[ci])
			}
		}
	}

	offsets := make([]int, len(columns))
	next := 0
	for ci := range columns {
		offsets[ci] = next
		next += len(vocab[ci])
	}

	return &OneHotEncoder{
		Columns: append([]string(nil), columns...),
		Vocab:   vocab,
		Offsets: offsets,
	}, nil
}

// Width returns the length of the encoded output vector.
func (e *OneHotEncoder) Width() int {
	last := len(e.Columns) - 1
	return e.Offsets[last] + len(e.Vocab[last])
}

// Transform encodes a single row. The row must match the fitted schema
// width; values unseen during Fit leave their column block at zero.
func (e *OneHotEncoder) Transform(row []string) ([]float64, error) {
	if len(row) != len(e.Columns) {
		return nil, fmt.Errorf("one-hot transform: row has %d values, encoder was fit with %d columns",
			len(row), len(e.Columns))
	}
	out := make([]float64, e.Width())
	for ci, v := range row {
		if slot, ok := e.Vocab[ci][v]; ok {
			out[e.Offsets[ci]+slot] = 1
		}
	}
	return out, nil
}
