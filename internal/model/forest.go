package model

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Forest is a fitted random-forest classifier: bootstrap-sampled CART trees
// over the one-hot feature space, combined by majority vote. Fields are
// exported for gob serialization; a forest is immutable after fit and safe
// for concurrent prediction.
type Forest struct {
	Trees      []*TreeNode
	NumClasses int
}

// FitForest trains numTrees trees on the encoded dataset. Labels must lie
// in [0, numClasses). The seed fixes bootstrap sampling and per-node
// feature selection, making training reproducible.
func FitForest(x [][]float64, y []int, numClasses, numTrees int, seed uint64) (*Forest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("forest fit: no samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("forest fit: %d samples but %d labels", len(x), len(y))
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("forest fit: numClasses must be positive, got %d", numClasses)
	}
	if numTrees <= 0 {
		return nil, fmt.Errorf("forest fit: numTrees must be positive, got %d", numTrees)
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("forest fit: sample %d has width %d, expected %d", i, len(row), width)
		}
	}
	for i, label := range y {
		if label < 0 || label >= numClasses {
			return nil, fmt.Errorf("forest fit: label %d at sample %d out of range [0,%d)", label, i, numClasses)
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	mtry := int(math.Sqrt(float64(width)))
	if mtry < 1 {
		mtry = 1
	}

	n := len(x)
	trees := make([]*TreeNode, numTrees)
	for t := range trees {
		// Bootstrap sample with replacement.
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.IntN(n)
		}
		trees[t] = growTree(x, y, idx, numClasses, mtry, 0, rng)
	}

	return &Forest{Trees: trees, NumClasses: numClasses}, nil
}

// Predict returns the majority-vote class for a single encoded row.
// Ties break toward the lowest class index for determinism.
func (f *Forest) Predict(x []float64) (int, error) {
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest predict: no fitted trees")
	}
	votes := make([]int, f.NumClasses)
	for _, tree := range f.Trees {
		votes[tree.predict(x)]++
	}
	return majorityClass(votes), nil
}
