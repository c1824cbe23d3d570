// Package intent classifies free-text draft descriptions into a closed,
// versioned label set with calibrated per-class probabilities.
//
// The model is a bag-of-n-grams TF-IDF representation feeding multinomial
// logistic regression, so confidence is a genuine probability (it sums to 1
// across classes) and thresholding on it is meaningful. Literal keyword
// matching is deliberately avoided: it cannot generalize across paraphrase,
// negation, or compound sentences.
package intent

import (
	"math"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/otherjamesbrown/draftgen-cli/pkg/logging"
)

// Result is the classifier output. Label is always a member of the known
// set; failures degrade to LabelGeneral with confidence 0.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// fallbackResult is returned whenever classification cannot be performed.
func fallbackResult() Result {
	return Result{Label: LabelGeneral, Confidence: 0}
}

// Classifier maps descriptions to intent labels. The model artifact is
// loaded lazily on first use behind a single-flight guard, then treated as
// immutable and shared by unlimited concurrent readers. A failed load is
// retried on the next request rather than cached.
type Classifier struct {
	artifactPath string
	logger       logging.Logger

	loaded atomic.Pointer[loadedModel]
	group  singleflight.Group
}

type loadedModel struct {
	vec   *Vectorizer
	model *LinearModel
}

// Option configures the classifier.
type Option func(*Classifier)

// WithArtifactPath sets the path of an externally provisioned model
// artifact. When unset, a model is trained from the built-in dataset on
// first use.
func WithArtifactPath(path string) Option {
	return func(c *Classifier) {
		c.artifactPath = path
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// NewClassifier creates a classifier. No model is loaded until the first
// Classify call.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{logger: logging.MustGlobal()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.F("component", "intent_classifier"))
	return c
}

// Classify maps text to a labeled intent with a calibrated confidence.
// It never returns an error: any internal failure degrades to the general
// label with confidence 0. Deterministic for identical input and artifact.
func (c *Classifier) Classify(text string) Result {
	lm, err := c.model()
	if err != nil {
		c.logger.Warn("intent model unavailable, degrading to general", logging.Err(err))
		return fallbackResult()
	}

	features := lm.vec.Transform(text)
	label, confidence := lm.model.Predict(features)
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		c.logger.Warn("intent model produced a non-finite score, degrading to general")
		return fallbackResult()
	}
	return Result{Label: label, Confidence: confidence}
}

// Labels returns the model's label set, or nil if the model cannot load.
func (c *Classifier) Labels() []string {
	lm, err := c.model()
	if err != nil {
		return nil
	}
	return lm.model.Labels
}

func (c *Classifier) model() (*loadedModel, error) {
	if lm := c.loaded.Load(); lm != nil {
		return lm, nil
	}

	v, err, _ := c.group.Do("load", func() (interface{}, error) {
		if lm := c.loaded.Load(); lm != nil {
			return lm, nil
		}

		artifact, err := c.loadArtifact()
		if err != nil {
			return nil, err
		}

		lm := &loadedModel{vec: artifact.Vectorizer(), model: artifact.Model()}
		c.loaded.Store(lm)
		c.logger.Info("intent model loaded",
			logging.F("labels", len(artifact.Labels)),
			logging.F("vocabulary", len(artifact.Vocabulary)),
			logging.F("examples", artifact.Examples))
		return lm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loadedModel), nil
}

func (c *Classifier) loadArtifact() (*Artifact, error) {
	if c.artifactPath != "" {
		return LoadArtifact(c.artifactPath)
	}
	return Train(DefaultDataset, DefaultTrainConfig())
}
