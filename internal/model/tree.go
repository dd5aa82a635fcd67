package model

import "math/rand/v2"

// TreeNode is one node of a fitted CART decision tree over the one-hot
// feature space. Feature >= 0 marks an internal node splitting on whether
// that feature is present; Feature == leafMarker marks a leaf carrying the
// majority class. Fields are exported for gob serialization.
type TreeNode struct {
	Feature int
	Class   int
	Left    *TreeNode // feature value 0
	Right   *TreeNode // feature value 1
}

const leafMarker = -1

// maxTreeDepth bounds tree growth. One-hot features can each be split at
// most once per path, so depth is naturally bounded by the vector width;
// this is a hard stop for degenerate inputs.
const maxTreeDepth = 64

// predict walks the tree for a single encoded row.
func (n *TreeNode) predict(x []float64) int {
	node := n
	for node.Feature != leafMarker {
		if x[node.Feature] >= 0.5 {
			node = node.Right
		} else {
			node = node.Left
		}
	}
	return node.Class
}

// classCounts tallies the labels of the referenced samples.
func classCounts(y []int, idx []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

// majorityClass returns the most frequent class, preferring the lowest
// index on ties so trees are deterministic for a fixed seed.
func majorityClass(counts []int) int {
	best, bestCount := 0, -1
	for class, count := range counts {
		if count > bestCount {
			best, bestCount = class, count
		}
	}
	return best
}

// giniImpurity computes the Gini impurity of a label distribution.
func giniImpurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		sumSquares += p * p
	}
	return 1 - sumSquares
}

// splitEval holds the outcome of evaluating one candidate split feature.
type splitEval struct {
	feature    int
	impurity   float64
	leftIdx    []int
	rightIdx   []int
	informative bool
}

// evaluateSplit partitions idx on the given feature and computes the
// weighted child impurity. A split that leaves either side empty is not
// informative.
func evaluateSplit(x [][]float64, y []int, idx []int, feature, numClasses int) splitEval {
	var left, right []int
	for _, i := range idx {
		if x[i][feature] >= 0.5 {
			right = append(right, i)
		} else {
			left = append(left, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return splitEval{feature: feature}
	}
	total := len(idx)
	impurity := (float64(len(left))*giniImpurity(classCounts(y, left, numClasses), len(left)) +
		float64(len(right))*giniImpurity(classCounts(y, right, numClasses), len(right))) / float64(total)
	return splitEval{
		feature:     feature,
		impurity:    impurity,
		leftIdx:     left,
		rightIdx:    right,
		informative: true,
	}
}

// growTree recursively fits a CART tree on the referenced samples.
//
// At each node a random subset of mtry features is scanned first; when none
// of them yields an impurity decrease the scan widens to every feature, so
// a node only becomes a leaf when the training samples are genuinely
// inseparable. This keeps the forest an exact fit on separable data while
// preserving per-node feature randomness.
func growTree(x [][]float64, y []int, idx []int, numClasses, mtry, depth int, rng *rand.Rand) *TreeNode {
	counts := classCounts(y, idx, numClasses)
	parentImpurity := giniImpurity(counts, len(idx))
	if parentImpurity == 0 || depth >= maxTreeDepth || len(idx) < 2 {
		return &TreeNode{Feature: leafMarker, Class: majorityClass(counts)}
	}

	width := len(x[idx[0]])
	best := splitEval{impurity: parentImpurity}
	found := false

	consider := func(feature int) {
		eval := evaluateSplit(x, y, idx, feature, numClasses)
		if eval.informative && eval.impurity < best.impurity {
			best = eval
			found = true
		}
	}

	perm := rng.Perm(width)
	for _, feature := range perm[:mtry] {
		consider(feature)
	}
	if !found {
		for _, feature := range perm[mtry:] {
			consider(feature)
		}
	}
	if !found {
		return &TreeNode{Feature: leafMarker, Class: majorityClass(counts)}
	}

	return &TreeNode{
		Feature: best.feature,
		Left:    growTree(x, y, best.leftIdx, numClasses, mtry, depth+1, rng),
		Right:   growTree(x, y, best.rightIdx, numClasses, mtry, depth+1, rng),
	}
}
