package intent

import (
	"math"
	"sort"
)

// LinearModel is a multinomial logistic-regression model over TF-IDF
// features. Weights is indexed [class][feature]. Immutable once built;
// safe for concurrent use.
type LinearModel struct {
	Labels     []string
	Weights    [][]float64
	Intercepts []float64
}

// Predict returns the highest-scoring label and its softmax probability for
// the given sparse feature vector. Probabilities sum to 1 across the label
// set, so the returned confidence is a genuine per-class estimate.
func (m *LinearModel) Predict(features map[int]float64) (string, float64) {
	scores := m.Scores(features)
	probs := softmax(scores)

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return m.Labels[best], probs[best]
}

// Scores returns the raw linear score per class.
func (m *LinearModel) Scores(features map[int]float64) []float64 {
	return m.scoresSparse(newSparseVector(features))
}

// sparseVector holds a feature vector in ascending index order. Map
// iteration order is randomized, so summing in index order is what keeps
// the floating-point result identical across calls and across runs.
type sparseVector struct {
	indices []int
	values  []float64
}

func newSparseVector(features map[int]float64) sparseVector {
	indices := make([]int, 0, len(features))
	for idx := range features {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = features[idx]
	}
	return sparseVector{indices: indices, values: values}
}

func (m *LinearModel) scoresSparse(v sparseVector) []float64 {
	scores := make([]float64, len(m.Labels))
	for c := range m.Labels {
		s := m.Intercepts[c]
		row := m.Weights[c]
		for i, idx := range v.indices {
			if idx < len(row) {
				s += row[idx] * v.values[i]
			}
		}
		scores[c] = s
	}
	return scores
}

// softmax converts raw scores to a probability distribution. Scores are
// shifted by their maximum before exponentiation to avoid overflow.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
