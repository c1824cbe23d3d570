package intent

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ArtifactVersion identifies the artifact schema understood by this build.
const ArtifactVersion = "1"

// Artifact is the serialized form of a trained intent model: the feature
// transform (vocabulary + IDF) and the model parameters. It is provisioned
// externally and treated as read-only.
type Artifact struct {
	Version    string         `json:"version"`
	TrainedAt  time.Time      `json:"trained_at"`
	Labels     []string       `json:"labels"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Weights    [][]float64    `json:"weights"`
	Intercepts []float64      `json:"intercepts"`
	Examples   int            `json:"examples"`
	ClassSizes map[string]int `json:"class_sizes,omitempty"`
}

// DecodeArtifact parses and structurally validates an artifact document.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadArtifact reads an artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return DecodeArtifact(data)
}

// Encode serializes the artifact as indented JSON.
func (a *Artifact) Encode() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Save writes the artifact to disk.
func (a *Artifact) Save(path string) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (a *Artifact) check() error {
	if a.Version != ArtifactVersion {
		return fmt.Errorf("artifact version %q not supported (want %q)", a.Version, ArtifactVersion)
	}
	if len(a.Labels) == 0 {
		return fmt.Errorf("artifact has no labels")
	}
	if len(a.Vocabulary) == 0 {
		return fmt.Errorf("artifact has empty vocabulary")
	}
	if len(a.IDF) != len(a.Vocabulary) {
		return fmt.Errorf("artifact idf length %d does not match vocabulary size %d", len(a.IDF), len(a.Vocabulary))
	}
	if len(a.Weights) != len(a.Labels) || len(a.Intercepts) != len(a.Labels) {
		return fmt.Errorf("artifact parameter shape does not match label count %d", len(a.Labels))
	}
	for i, row := range a.Weights {
		if len(row) != len(a.IDF) {
			return fmt.Errorf("artifact weight row %d has length %d, want %d", i, len(row), len(a.IDF))
		}
	}
	return nil
}

// Vectorizer returns the feature transform stored in the artifact.
func (a *Artifact) Vectorizer() *Vectorizer {
	return &Vectorizer{Vocabulary: a.Vocabulary, IDF: a.IDF}
}

// Model returns the linear model stored in the artifact.
func (a *Artifact) Model() *LinearModel {
	return &LinearModel{Labels: a.Labels, Weights: a.Weights, Intercepts: a.Intercepts}
}
