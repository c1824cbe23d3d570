package intent

import (
	"fmt"
	"sort"
	"time"
)

// Example is one labeled training instance.
type Example struct {
	Text  string
	Label string
}

// TrainConfig controls gradient-descent training.
type TrainConfig struct {
	// Epochs is the number of full passes over the training set.
	Epochs int
	// LearningRate is the batch gradient-descent step size.
	LearningRate float64
	// L2Penalty is the weight-decay strength. It keeps the softmax
	// calibrated: without it the weights grow until near-duplicate
	// wording, or even a bare "write an email", scores as near-certain.
	// Intercepts are not penalized.
	L2Penalty float64
}

// DefaultTrainConfig returns settings that converge well on the small
// labeled sets this model is trained from while keeping probabilities
// calibrated: the full training set still classifies at 100%, but generic
// descriptions that match several classes stay below the confidence
// threshold.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{Epochs: 1500, LearningRate: 1.0, L2Penalty: 0.0025}
}

// Train fits a TF-IDF vectorizer and a multinomial logistic-regression
// model on the examples and returns the resulting artifact. Training is
// fully deterministic: zero initialization, batch gradients, a fixed class
// and vocabulary ordering, and feature sums accumulated in ascending index
// order.
func Train(examples []Example, cfg TrainConfig) (*Artifact, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("train: no examples")
	}
	if cfg.Epochs <= 0 || cfg.LearningRate <= 0 || cfg.L2Penalty < 0 {
		cfg = DefaultTrainConfig()
	}

	corpus := make([]string, len(examples))
	classSizes := make(map[string]int)
	for i, ex := range examples {
		if ex.Label == "" {
			return nil, fmt.Errorf("train: example %d has empty label", i)
		}
		corpus[i] = ex.Text
		classSizes[ex.Label]++
	}

	labels := make([]string, 0, len(classSizes))
	for label := range classSizes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	labelIndex := make(map[string]int, len(labels))
	for i, label := range labels {
		labelIndex[label] = i
	}

	vec := FitVectorizer(corpus)
	// Rows are materialized in ascending feature-index order once, so every
	// score and gradient sum below runs in a fixed order. That is what makes
	// the trained weights bit-identical across runs.
	rows := make([]sparseVector, len(examples))
	targets := make([]int, len(examples))
	for i, ex := range examples {
		rows[i] = newSparseVector(vec.Transform(ex.Text))
		targets[i] = labelIndex[ex.Label]
	}

	nClasses := len(labels)
	nFeatures := len(vec.IDF)
	weights := make([][]float64, nClasses)
	for c := range weights {
		weights[c] = make([]float64, nFeatures)
	}
	intercepts := make([]float64, nClasses)
	model := &LinearModel{Labels: labels, Weights: weights, Intercepts: intercepts}

	gradW := make([][]float64, nClasses)
	for c := range gradW {
		gradW[c] = make([]float64, nFeatures)
	}
	gradB := make([]float64, nClasses)
	invN := 1 / float64(len(examples))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for c := range gradW {
			for f := range gradW[c] {
				gradW[c][f] = 0
			}
			gradB[c] = 0
		}

		for i, row := range rows {
			probs := softmax(model.scoresSparse(row))
			for c := 0; c < nClasses; c++ {
				delta := probs[c]
				if c == targets[i] {
					delta -= 1
				}
				if delta == 0 {
					continue
				}
				for j, idx := range row.indices {
					gradW[c][idx] += delta * row.values[j]
				}
				gradB[c] += delta
			}
		}

		step := cfg.LearningRate * invN
		decay := cfg.LearningRate * cfg.L2Penalty
		for c := 0; c < nClasses; c++ {
			for f := 0; f < nFeatures; f++ {
				weights[c][f] -= step*gradW[c][f] + decay*weights[c][f]
			}
			intercepts[c] -= step * gradB[c]
		}
	}

	return &Artifact{
		Version:    ArtifactVersion,
		TrainedAt:  time.Now().UTC(),
		Labels:     labels,
		Vocabulary: vec.Vocabulary,
		IDF:        vec.IDF,
		Weights:    weights,
		Intercepts: intercepts,
		Examples:   len(examples),
		ClassSizes: classSizes,
	}, nil
}
