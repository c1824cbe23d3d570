// Package generation calls the external text-generation service and owns
// the retry, backoff, timeout, and fallback-template behavior around it.
package generation

import "time"

// Source records which path produced the generated text.
type Source string

const (
	// SourceGenerated marks text returned by the generation service.
	SourceGenerated Source = "generated"
	// SourceFallback marks text synthesized from a static domain template.
	SourceFallback Source = "fallback"
)

// GeneratedText is the raw output of one generation run. Consumed once by
// the extractor and not retained.
type GeneratedText struct {
	Content string
	Source  Source
	Latency time.Duration
	// Attempts is the number of service calls made, including the
	// successful one. Zero when the service was never reached.
	Attempts int
}

// state is a node in the generation state machine. Retry flow is modeled
// as explicit transitions rather than nested error handling so backoff,
// deadline, and fallback selection are each a single well-defined step.
type state int

const (
	stateAttempt state = iota
	stateBackoff
	stateFallback
	stateDone
	stateFailed
)
